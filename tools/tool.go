// Package tools exposes the recipe state operations as named tools with
// JSON schemas, for agents and scripted callers.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

// toMap round-trips v through JSON to keep outputs uniform.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func stringInput(input map[string]any, key string) (string, error) {
	s, _ := input[key].(string)
	if s == "" {
		return "", fmt.Errorf("%q is required", key)
	}
	return s, nil
}

// numberInput accepts JSON numbers (float64) and Go ints. ok is false when the key is absent.
func numberInput(input map[string]any, key string) (n float64, ok bool, err error) {
	switch v := input[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int:
		return float64(v), true, nil
	default:
		return 0, true, fmt.Errorf("%q must be a number", key)
	}
}

// intInput accepts JSON numbers (float64) and Go ints. ok is false when the key is absent.
func intInput(input map[string]any, key string) (n int, ok bool, err error) {
	switch v := input[key].(type) {
	case nil:
		return 0, false, nil
	case float64:
		if v != float64(int(v)) {
			return 0, true, fmt.Errorf("%q must be a whole number", key)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	default:
		return 0, true, fmt.Errorf("%q must be a number", key)
	}
}

var (
	searchItemSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":        {Type: "string"},
			"title":     {Type: "string"},
			"publisher": {Type: "string"},
			"image":     {Type: "string"},
			"key":       {Type: "string"},
		},
		Required: []string{"id", "title", "publisher", "image"},
	}

	recipeSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":          {Type: "string"},
			"title":       {Type: "string"},
			"publisher":   {Type: "string"},
			"sourceUrl":   {Type: "string"},
			"image":       {Type: "string"},
			"servings":    {Type: "number"},
			"cookingTime": {Type: "number"},
			"bookmarked":  {Type: "boolean"},
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"quantity":    {Type: "number"},
						"unit":        {Type: "string"},
						"description": {Type: "string"},
					},
				},
			},
		},
		Required: []string{"id"},
	}

	bookmarksOutputSchema = &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"bookmarks": {Type: "array", Items: recipeSchema},
		},
		Required: []string{"bookmarks"},
	}
)
