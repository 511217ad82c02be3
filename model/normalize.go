package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"forkify/fetch"
)

// apiRecipe is the recipe shape used by the remote API.
type apiRecipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Publisher   string       `json:"publisher"`
	SourceURL   string       `json:"source_url"`
	ImageURL    string       `json:"image_url"`
	Servings    float64      `json:"servings"`
	CookingTime float64      `json:"cooking_time"`
	Ingredients []Ingredient `json:"ingredients"`
	Key         string       `json:"key,omitempty"`
}

type apiSearchItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	ImageURL  string `json:"image_url"`
	Key       string `json:"key,omitempty"`
}

type recipeEnvelope struct {
	Data struct {
		Recipe *apiRecipe `json:"recipe"`
	} `json:"data"`
}

type searchEnvelope struct {
	Data struct {
		Recipes *[]apiSearchItem `json:"recipes"`
	} `json:"data"`
}

// uploadPayload carries server-facing field names.
type uploadPayload struct {
	Title       string       `json:"title"`
	SourceURL   string       `json:"source_url"`
	ImageURL    string       `json:"image_url"`
	Publisher   string       `json:"publisher"`
	CookingTime float64      `json:"cooking_time"`
	Servings    float64      `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
}

func decodeRecipe(data []byte) (Recipe, error) {
	var env recipeEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Recipe{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Data.Recipe == nil || env.Data.Recipe.ID == "" {
		return Recipe{}, fmt.Errorf("%w: missing data.recipe", ErrMalformedResponse)
	}
	return newRecipe(*env.Data.Recipe), nil
}

func decodeSearchResults(data []byte) ([]SearchResultItem, error) {
	var env searchEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.Data.Recipes == nil {
		return nil, fmt.Errorf("%w: missing data.recipes", ErrMalformedResponse)
	}

	items := make([]SearchResultItem, 0, len(*env.Data.Recipes))
	for _, rec := range *env.Data.Recipes {
		items = append(items, SearchResultItem{
			ID:        rec.ID,
			Title:     rec.Title,
			Publisher: rec.Publisher,
			Image:     rec.ImageURL,
			Key:       rec.Key,
		})
	}
	return items, nil
}

func newRecipe(r apiRecipe) Recipe {
	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []Ingredient{}
	}
	return Recipe{
		ID:          r.ID,
		Title:       r.Title,
		Publisher:   r.Publisher,
		SourceURL:   r.SourceURL,
		Image:       r.ImageURL,
		Servings:    r.Servings,
		CookingTime: r.CookingTime,
		Ingredients: ingredients,
		Key:         r.Key,
	}
}

// fetchFailure classifies an error returned by the Fetcher.
func fetchFailure(err error) error {
	if errors.Is(err, fetch.ErrDecode) {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
