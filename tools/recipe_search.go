package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"forkify/model"
)

type RecipeSearch struct{ state model.Model }

func NewRecipeSearch(state model.Model) *RecipeSearch { return &RecipeSearch{state: state} }

func (t *RecipeSearch) Name() string  { return "recipe_search" }
func (t *RecipeSearch) Title() string { return "Search Recipes" }
func (t *RecipeSearch) Description() string {
	return "Searches recipes by keyword and returns one page of results. Omit query to page through the last search."
}

func (t *RecipeSearch) InputSchema() *jsonschema.Schema {
	minPage := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query": {Type: "string"},
			"page":  {Type: "integer", Minimum: &minPage},
		},
	}
}

func (t *RecipeSearch) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"query":   {Type: "string"},
			"page":    {Type: "integer"},
			"pages":   {Type: "integer"},
			"results": {Type: "array", Items: searchItemSchema},
		},
		Required: []string{"query", "page", "pages", "results"},
	}
}

func (t *RecipeSearch) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	page, hasPage, err := intInput(input, "page")
	if err != nil {
		return nil, err
	}

	if query, _ := input["query"].(string); query != "" {
		if err := t.state.LoadSearchResults(ctx, query); err != nil {
			return nil, err
		}
	}

	var results []model.SearchResultItem
	if hasPage {
		results = t.state.SearchResultsPage(page)
	} else {
		results = t.state.CurrentSearchResultsPage()
	}

	search := t.state.State().Search
	return toMap(struct {
		Query   string                   `json:"query"`
		Page    int                      `json:"page"`
		Pages   int                      `json:"pages"`
		Results []model.SearchResultItem `json:"results"`
	}{
		Query:   search.Query,
		Page:    search.Page,
		Pages:   t.state.PageCount(),
		Results: results,
	})
}
