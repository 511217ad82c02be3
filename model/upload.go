package model

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const ingredientPrefix = "ingredient"

// newUploadPayload turns submitted form entries into the API payload.
// Ingredient slots (ingredient1, ingredient2, ...) hold "quantity,unit,description";
// empty slots are skipped and an empty quantity becomes nil.
func newUploadPayload(form map[string]string) (uploadPayload, error) {
	ingredients, err := parseIngredients(form)
	if err != nil {
		return uploadPayload{}, err
	}

	cookingTime, err := formNumber(form, "cookingTime")
	if err != nil {
		return uploadPayload{}, err
	}
	servings, err := formNumber(form, "servings")
	if err != nil {
		return uploadPayload{}, err
	}

	return uploadPayload{
		Title:       form["title"],
		SourceURL:   form["sourceUrl"],
		ImageURL:    form["image"],
		Publisher:   form["publisher"],
		CookingTime: cookingTime,
		Servings:    servings,
		Ingredients: ingredients,
	}, nil
}

func parseIngredients(form map[string]string) ([]Ingredient, error) {
	fields := make([]string, 0)
	for field, value := range form {
		if strings.HasPrefix(field, ingredientPrefix) && value != "" {
			fields = append(fields, field)
		}
	}
	sortIngredientFields(fields)

	ingredients := make([]Ingredient, 0, len(fields))
	for _, field := range fields {
		value := form[field]
		parts := strings.Split(value, ",")
		if len(parts) != 3 {
			return nil, &IngredientFormatError{Field: field, Value: value}
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		ing := Ingredient{Unit: parts[1], Description: parts[2]}
		if parts[0] != "" {
			q, err := strconv.ParseFloat(parts[0], 64)
			if err != nil {
				return nil, &IngredientFormatError{Field: field, Value: value}
			}
			ing.Quantity = Quantity(q)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, nil
}

// sortIngredientFields orders slots by their numeric suffix; slots without
// one sort after the numbered ones, by name.
func sortIngredientFields(fields []string) {
	index := func(field string) (int, bool) {
		n, err := strconv.Atoi(strings.TrimPrefix(field, ingredientPrefix))
		return n, err == nil
	}
	sort.Slice(fields, func(i, j int) bool {
		a, aok := index(fields[i])
		b, bok := index(fields[j])
		switch {
		case aok && bok && a != b:
			return a < b
		case aok != bok:
			return aok
		default:
			return fields[i] < fields[j]
		}
	})
}

// formNumber reads a numeric form field. Fractions are allowed; NaN and
// infinities are not, since they cannot be encoded as JSON.
func formNumber(form map[string]string, field string) (float64, error) {
	raw := strings.TrimSpace(form[field])
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", ErrInvalidForm, field, form[field])
	}
	return n, nil
}
