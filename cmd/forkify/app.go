package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"forkify"
	"forkify/fetch"
	"forkify/model"
	"forkify/storage"
	"forkify/tools"
)

type appOptions struct {
	journal     bool
	journalFile string
	otel        bool
	debug       bool
}

type app struct {
	state    model.Model
	registry *tools.Registry
	closers  []func(ctx context.Context) error
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	var apiConfig forkify.APIConfig
	if err := envdecode.Decode(&apiConfig); err != nil {
		return nil, fmt.Errorf("decode api config: %w", err)
	}
	var storeConfig forkify.StoreConfig
	if err := envdecode.Decode(&storeConfig); err != nil {
		return nil, fmt.Errorf("decode store config: %w", err)
	}

	a := &app{}

	store, closeStore, err := openStore(ctx, storeConfig)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	slog.Debug("SETUP: Bookmarks store ready", "backend", storeConfig.Backend)

	fetcher := fetch.NewClient(fetch.ClientOpts{
		HTTPClient: http.DefaultClient,
		Timeout:    apiConfig.Timeout,
	})

	state := model.New(ctx, fetcher, store, model.Options{
		BaseURL:        apiConfig.BaseURL,
		Key:            apiConfig.Key,
		ResultsPerPage: apiConfig.ResultsPerPage,
	})

	var journal forkify.OperationLogger = forkify.NewNoOpOperationLogger()
	switch {
	case opts.journalFile != "":
		fileJournal, closeJournal, err := newFileJournal(opts.journalFile)
		if err != nil {
			a.close(ctx)
			return nil, err
		}
		a.closers = append(a.closers, closeJournal)
		journal = fileJournal
	case opts.journal:
		journal = forkify.NewStreamOperationLogger(os.Stderr)
	}

	var (
		tracer = tracenoop.NewTracerProvider().Tracer(forkify.TracerNameCLI)
		meter  = metricnoop.NewMeterProvider().Meter(forkify.TracerNameCLI)
	)
	if opts.otel {
		tracerProvider, meterProvider, otelShutdown, err := forkify.InitOtel(ctx)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("initialize OpenTelemetry: %w", err)
		}
		a.closers = append(a.closers, otelShutdown)
		tracer = tracerProvider.Tracer(forkify.TracerNameCLI)
		meter = meterProvider.Meter(forkify.TracerNameCLI)
	}

	a.state = model.NewInstrumented(state, journal, tracer, meter)
	a.registry, err = tools.NewRegistry(a.state)
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	return a, nil
}

func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// newFileJournal buffers the session's operations and writes them to path on close.
func newFileJournal(path string) (forkify.OperationLogger, func(context.Context) error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	logger := forkify.NewFileOperationLogger(logFile)
	return logger, func(context.Context) error {
		return errors.Join(logger.Flush(), logFile.Close())
	}, nil
}

func noClose(context.Context) error { return nil }

// openStore builds the bookmarks backend selected by cfg.Backend.
func openStore(ctx context.Context, cfg forkify.StoreConfig) (storage.Store, func(context.Context) error, error) {
	switch cfg.Backend {
	case "memory":
		return storage.NewMemoryStore(), noClose, nil

	case "file":
		return storage.NewFileStore(cfg.FileDir), noClose, nil

	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, errors.New("missing S3 config: BOOKMARKS_S3_BUCKET must be set")
		}
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return storage.NewS3Store(s3.NewFromConfig(awsCfg), cfg.S3Bucket, cfg.S3Prefix), noClose, nil

	case "redis":
		client, err := storage.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedisStore(client, "forkify:"), func(context.Context) error { return client.Close() }, nil

	case "sqlite":
		store, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func(context.Context) error { return store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown bookmarks backend %q (want memory, file, s3, redis or sqlite)", cfg.Backend)
	}
}
