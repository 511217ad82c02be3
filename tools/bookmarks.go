package tools

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"forkify/model"
)

type BookmarkList struct{ state model.Model }

func NewBookmarkList(state model.Model) *BookmarkList { return &BookmarkList{state: state} }

func (t *BookmarkList) Name() string  { return "bookmark_list" }
func (t *BookmarkList) Title() string { return "List Bookmarks" }
func (t *BookmarkList) Description() string {
	return "Returns the saved bookmarks in the order they were added."
}

func (t *BookmarkList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *BookmarkList) OutputSchema() *jsonschema.Schema { return bookmarksOutputSchema }

func (t *BookmarkList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	return bookmarks(t.state)
}

// BookmarkAdd bookmarks the current recipe.
type BookmarkAdd struct{ state model.Model }

func NewBookmarkAdd(state model.Model) *BookmarkAdd { return &BookmarkAdd{state: state} }

func (t *BookmarkAdd) Name() string  { return "bookmark_add" }
func (t *BookmarkAdd) Title() string { return "Bookmark Current Recipe" }
func (t *BookmarkAdd) Description() string {
	return "Adds the current recipe (loaded with recipe_get) to the bookmarks."
}

func (t *BookmarkAdd) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *BookmarkAdd) OutputSchema() *jsonschema.Schema { return bookmarksOutputSchema }

func (t *BookmarkAdd) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	recipe := t.state.State().Recipe
	if recipe == nil {
		return nil, errors.New("no current recipe to bookmark")
	}
	if err := t.state.AddBookmark(ctx, *recipe); err != nil {
		return nil, err
	}
	return bookmarks(t.state)
}

type BookmarkDelete struct{ state model.Model }

func NewBookmarkDelete(state model.Model) *BookmarkDelete { return &BookmarkDelete{state: state} }

func (t *BookmarkDelete) Name() string  { return "bookmark_delete" }
func (t *BookmarkDelete) Title() string { return "Delete Bookmark" }
func (t *BookmarkDelete) Description() string {
	return "Removes the bookmark with the given recipe id."
}

func (t *BookmarkDelete) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {Type: "string"},
		},
		Required: []string{"id"},
	}
}

func (t *BookmarkDelete) OutputSchema() *jsonschema.Schema { return bookmarksOutputSchema }

func (t *BookmarkDelete) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id, err := stringInput(input, "id")
	if err != nil {
		return nil, err
	}
	if err := t.state.DeleteBookmark(ctx, id); err != nil {
		return nil, err
	}
	return bookmarks(t.state)
}

func bookmarks(state model.Model) (map[string]any, error) {
	return toMap(map[string]any{"bookmarks": state.State().Bookmarks})
}
