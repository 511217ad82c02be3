package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"forkify/model"
)

type RecipeGet struct{ state model.Model }

func NewRecipeGet(state model.Model) *RecipeGet { return &RecipeGet{state: state} }

func (t *RecipeGet) Name() string  { return "recipe_get" }
func (t *RecipeGet) Title() string { return "Get Recipe" }
func (t *RecipeGet) Description() string {
	return "Loads a recipe by id, makes it the current recipe and reports whether it is bookmarked."
}

func (t *RecipeGet) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {Type: "string"},
		},
		Required: []string{"id"},
	}
}

func (t *RecipeGet) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipe": recipeSchema,
		},
		Required: []string{"recipe"},
	}
}

func (t *RecipeGet) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id, err := stringInput(input, "id")
	if err != nil {
		return nil, err
	}
	if err := t.state.LoadRecipe(ctx, id); err != nil {
		return nil, err
	}
	return currentRecipe(t.state)
}

// RecipeScale rescales the current recipe's ingredients.
type RecipeScale struct{ state model.Model }

func NewRecipeScale(state model.Model) *RecipeScale { return &RecipeScale{state: state} }

func (t *RecipeScale) Name() string  { return "recipe_scale" }
func (t *RecipeScale) Title() string { return "Scale Recipe" }
func (t *RecipeScale) Description() string {
	return "Changes the servings of the current recipe and rescales ingredient quantities."
}

func (t *RecipeScale) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"servings": {Type: "number", Description: "target servings, greater than zero"},
		},
		Required: []string{"servings"},
	}
}

func (t *RecipeScale) OutputSchema() *jsonschema.Schema {
	return (&RecipeGet{}).OutputSchema()
}

func (t *RecipeScale) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	servings, ok, err := numberInput(input, "servings")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New(`"servings" is required`)
	}
	if err := t.state.UpdateServings(servings); err != nil {
		return nil, err
	}
	return currentRecipe(t.state)
}

func currentRecipe(state model.Model) (map[string]any, error) {
	recipe := state.State().Recipe
	if recipe == nil {
		return nil, errors.New("no current recipe")
	}
	return toMap(map[string]any{"recipe": recipe})
}
