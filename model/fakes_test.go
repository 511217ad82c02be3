package model

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"forkify/storage"

	"github.com/stretchr/testify/require"
)

const (
	testBaseURL = "https://forkify.test/api/v2/recipes/"
	testKey     = "test-key"
)

type fakeCall struct {
	URL  string
	Body any
}

// fakeFetcher returns canned responses keyed by URL, or a default response.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	data      []byte
	err       error
	calls     []fakeCall
}

func (f *fakeFetcher) Request(ctx context.Context, url string, body any) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{URL: url, Body: body})
	if f.err != nil {
		return nil, f.err
	}
	if data, ok := f.responses[url]; ok {
		return data, nil
	}
	return f.data, nil
}

func (f *fakeFetcher) Calls() []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]fakeCall{}, f.calls...)
}

// gatedFetcher blocks each request for a URL until its gate is released.
type gatedFetcher struct {
	gates     map[string]chan struct{}
	started   chan string
	responses map[string][]byte
}

func newGatedFetcher(responses map[string][]byte) *gatedFetcher {
	g := &gatedFetcher{
		gates:     make(map[string]chan struct{}),
		started:   make(chan string, len(responses)),
		responses: responses,
	}
	for url := range responses {
		g.gates[url] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) Request(ctx context.Context, url string, body any) ([]byte, error) {
	g.started <- url
	select {
	case <-g.gates[url]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return g.responses[url], nil
}

func (g *gatedFetcher) release(url string) {
	close(g.gates[url])
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func recipeResponse(t *testing.T, recipe map[string]any) []byte {
	return mustJSON(t, map[string]any{
		"status": "success",
		"data":   map[string]any{"recipe": recipe},
	})
}

func searchResponse(t *testing.T, recipes []map[string]any) []byte {
	return mustJSON(t, map[string]any{
		"status":  "success",
		"results": len(recipes),
		"data":    map[string]any{"recipes": recipes},
	})
}

func newTestState(t *testing.T, f Fetcher, store storage.Store) *RecipeState {
	t.Helper()
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return New(context.Background(), f, store, Options{
		BaseURL:        testBaseURL,
		Key:            testKey,
		ResultsPerPage: 10,
	})
}

func storedBookmarks(t *testing.T, store storage.Store) string {
	t.Helper()
	v, ok, err := store.Get(context.Background(), BookmarksKey)
	require.NoError(t, err)
	require.True(t, ok, "bookmarks should be persisted")
	return v
}
