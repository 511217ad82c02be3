// Package model owns the application state of the recipe client: the
// current recipe, the search results and the persisted bookmark list.
package model

import "context"

// BookmarksKey is the store key holding the JSON-encoded bookmark list.
const BookmarksKey = "bookmarks"

// UnreadableBookmarksKey keeps a copy of a bookmarks entry that failed to parse.
const UnreadableBookmarksKey = "bookmarks.unreadable"

// DefaultResultsPerPage is used when Options.ResultsPerPage is not positive.
const DefaultResultsPerPage = 10

// Fetcher performs a request and returns the JSON response body. A nil body
// means GET; anything else is sent as a JSON POST.
type Fetcher interface {
	Request(ctx context.Context, url string, body any) ([]byte, error)
}

// Model is the operation set of RecipeState. Instrumented implements it too.
type Model interface {
	LoadRecipe(ctx context.Context, id string) error
	LoadSearchResults(ctx context.Context, query string) error
	SearchResultsPage(page int) []SearchResultItem
	CurrentSearchResultsPage() []SearchResultItem
	PageCount() int
	UpdateServings(newServings float64) error
	AddBookmark(ctx context.Context, recipe Recipe) error
	DeleteBookmark(ctx context.Context, id string) error
	UploadRecipe(ctx context.Context, form map[string]string) error
	ClearBookmarks(ctx context.Context) error
	State() ApplicationState
}

// Recipe is the normalized recipe shape. Bookmarked is derived from the
// bookmark list whenever the recipe becomes current or bookmarks change.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title,omitempty"`
	Publisher   string       `json:"publisher,omitempty"`
	SourceURL   string       `json:"sourceUrl,omitempty"`
	Image       string       `json:"image,omitempty"`
	Servings    float64      `json:"servings,omitempty"`
	CookingTime float64      `json:"cookingTime,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
	Key         string       `json:"key,omitempty"`
	Bookmarked  bool         `json:"bookmarked,omitempty"`
}

// Ingredient quantities are nil when the source gave no amount; those are
// never rescaled.
type Ingredient struct {
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit"`
	Description string   `json:"description"`
}

// SearchResultItem is the list projection of a recipe.
type SearchResultItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Publisher string `json:"publisher"`
	Image     string `json:"image"`
	Key       string `json:"key,omitempty"`
}

type Search struct {
	Query          string             `json:"query"`
	Results        []SearchResultItem `json:"results"`
	Page           int                `json:"page"`
	ResultsPerPage int                `json:"resultsPerPage"`
}

// ApplicationState is the aggregate root. Recipe is nil until the first
// successful load or upload.
type ApplicationState struct {
	Recipe    *Recipe  `json:"recipe"`
	Search    Search   `json:"search"`
	Bookmarks []Recipe `json:"bookmarks"`
}

// Quantity returns a pointer to v, for building ingredients.
func Quantity(v float64) *float64 {
	return &v
}

func (r Recipe) clone() Recipe {
	out := r
	if r.Ingredients != nil {
		out.Ingredients = make([]Ingredient, len(r.Ingredients))
		for i, ing := range r.Ingredients {
			out.Ingredients[i] = ing
			if ing.Quantity != nil {
				out.Ingredients[i].Quantity = Quantity(*ing.Quantity)
			}
		}
	}
	return out
}

func cloneRecipes(in []Recipe) []Recipe {
	out := make([]Recipe, len(in))
	for i, r := range in {
		out[i] = r.clone()
	}
	return out
}

func (a ApplicationState) clone() ApplicationState {
	out := ApplicationState{
		Search:    a.Search,
		Bookmarks: cloneRecipes(a.Bookmarks),
	}
	out.Search.Results = append([]SearchResultItem{}, a.Search.Results...)
	if a.Recipe != nil {
		r := a.Recipe.clone()
		out.Recipe = &r
	}
	return out
}
