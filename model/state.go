package model

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"sync"

	"forkify/storage"
)

var _ Model = (*RecipeState)(nil)

// Options configures the remote API and pagination.
type Options struct {
	BaseURL        string
	Key            string
	ResultsPerPage int
}

// RecipeState owns the ApplicationState and is safe for concurrent use.
// Fetcher calls run without holding the lock; overlapping loads of the same
// kind are resolved by generation: only the most recently started one may
// commit.
type RecipeState struct {
	fetcher Fetcher
	store   storage.Store
	baseURL string
	key     string

	mu        sync.Mutex
	state     ApplicationState
	recipeGen uint64
	searchGen uint64

	// unreadable is set when the stored bookmarks could not be loaded and
	// were not set aside; writes would replace data that was never read.
	unreadable error
}

// New builds the state and hydrates bookmarks from store. A missing or
// unreadable bookmarks entry leaves the list empty. An entry that cannot be
// parsed is copied to UnreadableBookmarksKey first; if that copy fails, or
// the store could not be read at all, bookmark writes fail with
// ErrUnreadableBookmarks until ClearBookmarks succeeds.
func New(ctx context.Context, fetcher Fetcher, store storage.Store, opts Options) *RecipeState {
	perPage := opts.ResultsPerPage
	if perPage <= 0 {
		perPage = DefaultResultsPerPage
	}

	s := &RecipeState{
		fetcher: fetcher,
		store:   store,
		baseURL: opts.BaseURL,
		key:     opts.Key,
		state: ApplicationState{
			Search: Search{
				Results:        []SearchResultItem{},
				Page:           1,
				ResultsPerPage: perPage,
			},
			Bookmarks: []Recipe{},
		},
	}
	s.loadBookmarks(ctx)
	return s
}

func (s *RecipeState) loadBookmarks(ctx context.Context) {
	raw, ok, err := s.store.Get(ctx, BookmarksKey)
	if err != nil {
		slog.Warn("STATE: Failed to read bookmarks, starting empty with writes disabled", "error", err)
		s.unreadable = err
		return
	}
	if !ok || raw == "" {
		return
	}

	var bookmarks []Recipe
	if err := json.Unmarshal([]byte(raw), &bookmarks); err != nil {
		if serr := s.store.Set(ctx, UnreadableBookmarksKey, raw); serr != nil {
			slog.Warn("STATE: Stored bookmarks are unreadable and could not be set aside, starting empty with writes disabled",
				"error", err, "set_aside_error", serr)
			s.unreadable = err
			return
		}
		slog.Warn("STATE: Stored bookmarks are unreadable, set aside and starting empty",
			"error", err, "key", UnreadableBookmarksKey)
		return
	}
	if bookmarks != nil {
		s.state.Bookmarks = bookmarks
	}
	slog.Debug("STATE: Bookmarks hydrated", "count", len(s.state.Bookmarks))
}

func (s *RecipeState) recipeURL(id string) string {
	return fmt.Sprintf("%s%s?key=%s", s.baseURL, url.PathEscape(id), url.QueryEscape(s.key))
}

func (s *RecipeState) searchURL(query string) string {
	return fmt.Sprintf("%s?search=%s&key=%s", s.baseURL, url.QueryEscape(query), url.QueryEscape(s.key))
}

func (s *RecipeState) uploadURL() string {
	return fmt.Sprintf("%s?key=%s", s.baseURL, url.QueryEscape(s.key))
}

// LoadRecipe fetches id and makes it the current recipe. On failure the
// previous current recipe is kept.
func (s *RecipeState) LoadRecipe(ctx context.Context, id string) error {
	s.mu.Lock()
	s.recipeGen++
	gen := s.recipeGen
	s.mu.Unlock()

	data, err := s.fetcher.Request(ctx, s.recipeURL(id), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRecipeLoad, fetchFailure(err))
	}
	recipe, err := decodeRecipe(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRecipeLoad, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.recipeGen {
		slog.Info("STATE: Discarding superseded recipe load", "id", id)
		return fmt.Errorf("%w: %w", ErrRecipeLoad, ErrSuperseded)
	}

	recipe.Bookmarked = s.isBookmarkedLocked(id)
	s.state.Recipe = &recipe
	slog.Debug("STATE: Recipe loaded", "id", id, "bookmarked", recipe.Bookmarked)
	return nil
}

// LoadSearchResults records query, fetches matching recipes and resets the
// page to 1. The query is recorded even when the request fails; results are
// only replaced on success.
func (s *RecipeState) LoadSearchResults(ctx context.Context, query string) error {
	s.mu.Lock()
	s.state.Search.Query = query
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()

	data, err := s.fetcher.Request(ctx, s.searchURL(query), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSearch, fetchFailure(err))
	}
	results, err := decodeSearchResults(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSearch, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.searchGen {
		slog.Info("STATE: Discarding superseded search", "query", query)
		return fmt.Errorf("%w: %w", ErrSearch, ErrSuperseded)
	}

	s.state.Search.Results = results
	s.state.Search.Page = 1
	slog.Debug("STATE: Search results loaded", "query", query, "count", len(results))
	return nil
}

// SearchResultsPage records page as the current page and returns its slice of
// results. Pages past the end, or below 1, yield an empty slice.
func (s *RecipeState) SearchResultsPage(page int) []SearchResultItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Search.Page = page
	return s.pageLocked(page)
}

// CurrentSearchResultsPage is SearchResultsPage with the stored page.
func (s *RecipeState) CurrentSearchResultsPage() []SearchResultItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pageLocked(s.state.Search.Page)
}

func (s *RecipeState) pageLocked(page int) []SearchResultItem {
	results := s.state.Search.Results
	perPage := s.state.Search.ResultsPerPage
	if page < 1 {
		return []SearchResultItem{}
	}

	start := (page - 1) * perPage
	if start >= len(results) {
		return []SearchResultItem{}
	}
	end := min(page*perPage, len(results))
	return append([]SearchResultItem{}, results[start:end]...)
}

// PageCount returns the number of result pages.
func (s *RecipeState) PageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	perPage := s.state.Search.ResultsPerPage
	return (len(s.state.Search.Results) + perPage - 1) / perPage
}

// UpdateServings rescales every ingredient with a quantity to newServings.
// newServings must be a finite number greater than zero, and the current
// recipe must have non-zero servings; otherwise ErrInvalidServings is
// returned and nothing changes.
func (s *RecipeState) UpdateServings(newServings float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.state.Recipe
	switch {
	case r == nil:
		return fmt.Errorf("%w: no current recipe", ErrInvalidServings)
	case r.Servings == 0:
		return fmt.Errorf("%w: recipe %s has 0 servings", ErrInvalidServings, r.ID)
	case !(newServings > 0) || math.IsInf(newServings, 0):
		return fmt.Errorf("%w: %v", ErrInvalidServings, newServings)
	}

	previous := r.Servings
	for i := range r.Ingredients {
		q := r.Ingredients[i].Quantity
		if q == nil {
			continue
		}
		r.Ingredients[i].Quantity = Quantity(*q * newServings / previous)
	}
	r.Servings = newServings
	return nil
}

// AddBookmark appends recipe to the bookmarks without checking for an
// existing entry and persists the list.
func (s *RecipeState) AddBookmark(ctx context.Context, recipe Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.state.Recipe != nil && s.state.Recipe.ID == recipe.ID
	entry := recipe.clone()
	if current {
		entry.Bookmarked = true
	}

	next := append(cloneRecipes(s.state.Bookmarks), entry)
	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}

	s.state.Bookmarks = next
	if current {
		s.state.Recipe.Bookmarked = true
	}
	return nil
}

// DeleteBookmark removes the first bookmark with id and persists the list.
// An unknown id leaves the list as it is.
func (s *RecipeState) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Recipe, 0, len(s.state.Bookmarks))
	removed := false
	for _, b := range s.state.Bookmarks {
		if !removed && b.ID == id {
			removed = true
			continue
		}
		next = append(next, b.clone())
	}

	if err := s.persistLocked(ctx, next); err != nil {
		return err
	}

	s.state.Bookmarks = next
	if s.state.Recipe != nil && s.state.Recipe.ID == id {
		s.state.Recipe.Bookmarked = false
	}
	if !removed {
		slog.Debug("STATE: No bookmark to delete", "id", id)
	}
	return nil
}

// ClearBookmarks removes the persisted bookmarks entry. The in-memory list is
// left untouched, so the next bookmark mutation writes it back. Clearing also
// lifts the write block left by an unreadable entry.
func (s *RecipeState) ClearBookmarks(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(ctx, BookmarksKey); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.unreadable = nil
	return nil
}

// UploadRecipe validates form, sends it to the API and makes the created
// recipe current and bookmarked. Nothing is mutated unless every step
// succeeds.
func (s *RecipeState) UploadRecipe(ctx context.Context, form map[string]string) error {
	payload, err := newUploadPayload(form)
	if err != nil {
		return err
	}

	data, err := s.fetcher.Request(ctx, s.uploadURL(), payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, fetchFailure(err))
	}
	recipe, err := decodeRecipe(data)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recipe.Bookmarked = true
	next := append(cloneRecipes(s.state.Bookmarks), recipe.clone())
	if err := s.persistLocked(ctx, next); err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}

	// a load started before this commit must not overwrite the upload
	s.recipeGen++
	s.state.Recipe = &recipe
	s.state.Bookmarks = next
	slog.Info("STATE: Recipe uploaded", "id", recipe.ID, "title", recipe.Title)
	return nil
}

func (s *RecipeState) persistLocked(ctx context.Context, bookmarks []Recipe) error {
	if s.unreadable != nil {
		return fmt.Errorf("%w: %w: %w", ErrPersist, ErrUnreadableBookmarks, s.unreadable)
	}
	data, err := json.Marshal(bookmarks)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := s.store.Set(ctx, BookmarksKey, string(data)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *RecipeState) isBookmarkedLocked(id string) bool {
	for _, b := range s.state.Bookmarks {
		if b.ID == id {
			return true
		}
	}
	return false
}

// State returns a deep copy of the application state.
func (s *RecipeState) State() ApplicationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Recipe returns a copy of the current recipe, or false before any load.
func (s *RecipeState) Recipe() (Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Recipe == nil {
		return Recipe{}, false
	}
	return s.state.Recipe.clone(), true
}

func (s *RecipeState) Search() Search {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.Search
	out.Results = append([]SearchResultItem{}, s.state.Search.Results...)
	return out
}

func (s *RecipeState) Bookmarks() []Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecipes(s.state.Bookmarks)
}
