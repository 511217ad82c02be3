package model

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"forkify"
	"forkify/fetch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type recordingJournal struct {
	entries []forkify.OperationLog
	err     error
}

func (r *recordingJournal) LogOperation(op forkify.OperationLog) error {
	r.entries = append(r.entries, op)
	return r.err
}

func newInstrumentedForTest(t *testing.T, f Fetcher) (*Instrumented, *recordingJournal, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	journal := &recordingJournal{}
	m := NewInstrumented(newTestState(t, f, nil), journal, tp.Tracer("test"), mp.Meter("test"))
	return m, journal, spans, reader
}

func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s should be an int64 sum", name)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstrumented(t *testing.T) {
	t.Run("successful operations are traced and journaled", func(t *testing.T) {
		f := &fakeFetcher{data: searchResponse(t, []map[string]any{
			{"id": "a", "title": "A", "publisher": "P", "image_url": "a.jpg"},
		})}
		m, journal, spans, reader := newInstrumentedForTest(t, f)

		require.NoError(t, m.LoadSearchResults(context.Background(), "pizza"))
		page := m.SearchResultsPage(1)
		require.Len(t, page, 1)
		require.NoError(t, m.AddBookmark(context.Background(), Recipe{ID: "a"}))

		require.Len(t, journal.entries, 3)
		assert.Equal(t, "LoadSearchResults", journal.entries[0].Operation)
		assert.Equal(t, map[string]any{"query": "pizza"}, journal.entries[0].Input)
		assert.Equal(t, 1, journal.entries[0].Output["results"])
		assert.Empty(t, journal.entries[0].Error)
		assert.Equal(t, 1, journal.entries[2].Output["bookmarks"])

		ended := spans.Ended()
		require.Len(t, ended, 3)
		assert.Equal(t, "RecipeState.LoadSearchResults", ended[0].Name())

		assert.Equal(t, int64(3), counterTotal(t, reader, "state_operations_total"))
		assert.Equal(t, int64(0), counterTotal(t, reader, "state_operations_failed_total"))
		assert.Equal(t, 1, m.PageCount())
	})

	t.Run("page reads are traced and journaled", func(t *testing.T) {
		results := make([]map[string]any, 0, 12)
		for i := 0; i < 12; i++ {
			results = append(results, map[string]any{"id": fmt.Sprintf("r%d", i), "title": "R", "publisher": "P", "image_url": "r.jpg"})
		}
		m, journal, spans, reader := newInstrumentedForTest(t, &fakeFetcher{data: searchResponse(t, results)})

		require.NoError(t, m.LoadSearchResults(context.Background(), "pasta"))
		assert.Equal(t, 2, m.PageCount())
		assert.Len(t, m.CurrentSearchResultsPage(), 10)

		require.Len(t, journal.entries, 3)
		assert.Equal(t, "PageCount", journal.entries[1].Operation)
		assert.Equal(t, 2, journal.entries[1].Output["pages"])
		assert.Equal(t, "CurrentSearchResultsPage", journal.entries[2].Operation)
		assert.Equal(t, 10, journal.entries[2].Output["items"])

		ended := spans.Ended()
		require.Len(t, ended, 3)
		assert.Equal(t, "RecipeState.PageCount", ended[1].Name())
		assert.Equal(t, "RecipeState.CurrentSearchResultsPage", ended[2].Name())
		assert.Equal(t, int64(3), counterTotal(t, reader, "state_operations_total"))
	})

	t.Run("failures are recorded and returned", func(t *testing.T) {
		f := &fakeFetcher{err: fmt.Errorf("%w: offline", fetch.ErrRequest)}
		m, journal, spans, reader := newInstrumentedForTest(t, f)

		err := m.LoadRecipe(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrRecipeLoad)

		require.Len(t, journal.entries, 1)
		assert.Contains(t, journal.entries[0].Error, "offline")
		require.Len(t, spans.Ended(), 1)
		assert.NotEmpty(t, spans.Ended()[0].Events(), "error should be recorded on the span")
		assert.Equal(t, int64(1), counterTotal(t, reader, "state_operations_failed_total"))

		assert.ErrorIs(t, m.UpdateServings(4), ErrInvalidServings)
		assert.Equal(t, int64(2), counterTotal(t, reader, "state_operations_failed_total"))
	})

	t.Run("journal errors do not fail the operation", func(t *testing.T) {
		m, journal, _, _ := newInstrumentedForTest(t, &fakeFetcher{})
		journal.err = errors.New("disk full")

		assert.NoError(t, m.DeleteBookmark(context.Background(), "nothing"))
		assert.NoError(t, m.ClearBookmarks(context.Background()))
		assert.Len(t, journal.entries, 2)
	})
}
