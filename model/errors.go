package model

import (
	"errors"
	"fmt"
)

// Operation kinds. Errors returned by RecipeState wrap one of these together
// with the cause, so both can be matched with errors.Is.
var (
	ErrRecipeLoad = errors.New("failed to load recipe")
	ErrSearch     = errors.New("failed to load search results")
	ErrUpload     = errors.New("failed to upload recipe")
)

// Causes.
var (
	ErrNetwork           = errors.New("network error")
	ErrMalformedResponse = errors.New("malformed response")
	ErrIngredientFormat  = errors.New("wrong ingredient format")
	ErrInvalidServings   = errors.New("invalid servings")
	ErrInvalidForm       = errors.New("invalid recipe form")
	ErrPersist           = errors.New("failed to persist bookmarks")
	// ErrUnreadableBookmarks blocks bookmark writes while the stored list
	// could not be loaded, so it is never replaced unseen.
	ErrUnreadableBookmarks = errors.New("stored bookmarks are unreadable")
	// ErrSuperseded is returned by a load whose response arrived after a
	// newer load of the same kind was started; the response is discarded.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// IngredientFormatError reports an ingredient slot that is not
// "quantity,unit,description".
type IngredientFormatError struct {
	Field string
	Value string
}

func (e *IngredientFormatError) Error() string {
	return fmt.Sprintf("%s: %s=%q, use the format \"quantity,unit,description\"", ErrIngredientFormat, e.Field, e.Value)
}

func (e *IngredientFormatError) Is(target error) bool {
	return target == ErrIngredientFormat
}
