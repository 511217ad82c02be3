package model

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"forkify"
)

var _ Model = (*Instrumented)(nil)

// Instrumented wraps a RecipeState with tracing, metrics and the operation journal.
type Instrumented struct {
	next   *RecipeState
	logger forkify.OperationLogger
	tracer trace.Tracer

	operations metric.Int64Counter
	failures   metric.Int64Counter
	duration   metric.Float64Histogram
	bookmarks  metric.Int64Gauge
	results    metric.Int64Gauge
}

// NewInstrumented initializes the instruments on meter. Instrument creation
// errors fall back to no-op instruments, as the otel API guarantees.
func NewInstrumented(next *RecipeState, log forkify.OperationLogger, tracer trace.Tracer, meter metric.Meter) *Instrumented {
	operations, _ := meter.Int64Counter("state_operations_total",
		metric.WithDescription("Total number of state operations executed"))
	failures, _ := meter.Int64Counter("state_operations_failed_total",
		metric.WithDescription("Total number of state operations that failed"))
	duration, _ := meter.Float64Histogram("state_operation_duration_seconds",
		metric.WithDescription("Duration of state operations in seconds"))
	bookmarks, _ := meter.Int64Gauge("bookmarks_count",
		metric.WithDescription("Number of bookmarks held in state"))
	results, _ := meter.Int64Gauge("search_results_count",
		metric.WithDescription("Number of results of the latest search"))

	return &Instrumented{
		next:       next,
		logger:     log,
		tracer:     tracer,
		operations: operations,
		failures:   failures,
		duration:   duration,
		bookmarks:  bookmarks,
		results:    results,
	}
}

// observe runs fn inside a span and records its outcome.
func (m *Instrumented) observe(ctx context.Context, op string, input map[string]any, fn func(ctx context.Context) (map[string]any, error)) error {
	attrs := []attribute.KeyValue{attribute.String("operation", op)}
	for k, v := range input {
		switch v := v.(type) {
		case string:
			attrs = append(attrs, attribute.String("input."+k, v))
		case int:
			attrs = append(attrs, attribute.Int("input."+k, v))
		case float64:
			attrs = append(attrs, attribute.Float64("input."+k, v))
		}
	}

	ctx, span := m.tracer.Start(ctx, "RecipeState."+op, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	output, err := fn(ctx)
	elapsed := time.Since(start)

	opAttr := metric.WithAttributes(attribute.String("operation", op))
	m.operations.Add(ctx, 1, opAttr)
	m.duration.Record(ctx, elapsed.Seconds(), opAttr)

	entry := forkify.OperationLog{
		Operation: op,
		Timestamp: start,
		Duration:  elapsed,
		Input:     input,
		Output:    output,
	}
	if err != nil {
		m.failures.Add(ctx, 1, opAttr)
		span.SetStatus(codes.Error, op+" failed")
		span.RecordError(err)
		entry.Error = err.Error()
		slog.Error("STATE: Operation failed", "operation", op, "error", err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if lerr := m.logger.LogOperation(entry); lerr != nil {
		slog.Warn("STATE: Failed to journal operation", "operation", op, "error", lerr)
	}
	return err
}

func (m *Instrumented) recordSizes(ctx context.Context) map[string]any {
	st := m.next.State()
	m.bookmarks.Record(ctx, int64(len(st.Bookmarks)))
	m.results.Record(ctx, int64(len(st.Search.Results)))
	return map[string]any{
		"bookmarks": len(st.Bookmarks),
		"results":   len(st.Search.Results),
	}
}

func (m *Instrumented) LoadRecipe(ctx context.Context, id string) error {
	return m.observe(ctx, "LoadRecipe", map[string]any{"id": id}, func(ctx context.Context) (map[string]any, error) {
		if err := m.next.LoadRecipe(ctx, id); err != nil {
			return nil, err
		}
		r, _ := m.next.Recipe()
		return map[string]any{"title": r.Title, "bookmarked": r.Bookmarked}, nil
	})
}

func (m *Instrumented) LoadSearchResults(ctx context.Context, query string) error {
	return m.observe(ctx, "LoadSearchResults", map[string]any{"query": query}, func(ctx context.Context) (map[string]any, error) {
		if err := m.next.LoadSearchResults(ctx, query); err != nil {
			return nil, err
		}
		return m.recordSizes(ctx), nil
	})
}

func (m *Instrumented) SearchResultsPage(page int) []SearchResultItem {
	var items []SearchResultItem
	_ = m.observe(context.Background(), "SearchResultsPage", map[string]any{"page": page}, func(ctx context.Context) (map[string]any, error) {
		items = m.next.SearchResultsPage(page)
		return map[string]any{"items": len(items)}, nil
	})
	return items
}

func (m *Instrumented) CurrentSearchResultsPage() []SearchResultItem {
	var items []SearchResultItem
	_ = m.observe(context.Background(), "CurrentSearchResultsPage", nil, func(ctx context.Context) (map[string]any, error) {
		items = m.next.CurrentSearchResultsPage()
		return map[string]any{"items": len(items)}, nil
	})
	return items
}

func (m *Instrumented) PageCount() int {
	var pages int
	_ = m.observe(context.Background(), "PageCount", nil, func(ctx context.Context) (map[string]any, error) {
		pages = m.next.PageCount()
		return map[string]any{"pages": pages}, nil
	})
	return pages
}

func (m *Instrumented) UpdateServings(newServings float64) error {
	return m.observe(context.Background(), "UpdateServings", map[string]any{"servings": newServings}, func(ctx context.Context) (map[string]any, error) {
		return nil, m.next.UpdateServings(newServings)
	})
}

func (m *Instrumented) AddBookmark(ctx context.Context, recipe Recipe) error {
	return m.observe(ctx, "AddBookmark", map[string]any{"id": recipe.ID}, func(ctx context.Context) (map[string]any, error) {
		if err := m.next.AddBookmark(ctx, recipe); err != nil {
			return nil, err
		}
		return m.recordSizes(ctx), nil
	})
}

func (m *Instrumented) DeleteBookmark(ctx context.Context, id string) error {
	return m.observe(ctx, "DeleteBookmark", map[string]any{"id": id}, func(ctx context.Context) (map[string]any, error) {
		if err := m.next.DeleteBookmark(ctx, id); err != nil {
			return nil, err
		}
		return m.recordSizes(ctx), nil
	})
}

func (m *Instrumented) UploadRecipe(ctx context.Context, form map[string]string) error {
	return m.observe(ctx, "UploadRecipe", map[string]any{"title": form["title"]}, func(ctx context.Context) (map[string]any, error) {
		if err := m.next.UploadRecipe(ctx, form); err != nil {
			return nil, err
		}
		r, _ := m.next.Recipe()
		out := m.recordSizes(ctx)
		out["id"] = r.ID
		return out, nil
	})
}

func (m *Instrumented) ClearBookmarks(ctx context.Context) error {
	return m.observe(ctx, "ClearBookmarks", nil, func(ctx context.Context) (map[string]any, error) {
		return nil, m.next.ClearBookmarks(ctx)
	})
}

func (m *Instrumented) State() ApplicationState {
	return m.next.State()
}
