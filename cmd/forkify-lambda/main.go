package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joeshaw/envdecode"

	"forkify"
	"forkify/fetch"
	"forkify/model"
	"forkify/storage"
	"forkify/tools"
)

// Params names a registered tool and its input, e.g.
// {"tool": "recipe_search", "input": {"query": "pizza", "page": 2}}.
type Params struct {
	Tool  string         `json:"tool"`
	Input map[string]any `json:"input"`
}

type Results struct {
	Output map[string]any `json:"output"`
}

func main() {
	fn := func(ctx context.Context, params Params) (Results, error) {
		var apiConfig forkify.APIConfig
		if err := envdecode.Decode(&apiConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode api config: %w", err)
		}

		var storeConfig forkify.StoreConfig
		if err := envdecode.Decode(&storeConfig); err != nil {
			return Results{}, fmt.Errorf("failed to decode store config: %w", err)
		}
		if storeConfig.S3Bucket == "" {
			return Results{}, errors.New("missing S3 config: BOOKMARKS_S3_BUCKET must be set")
		}

		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return Results{}, fmt.Errorf("failed to load AWS config: %w", err)
		}
		store := storage.NewS3Store(s3.NewFromConfig(awsCfg), storeConfig.S3Bucket, storeConfig.S3Prefix)
		slog.Info("SETUP: S3 bookmarks store initialized", "bucket", storeConfig.S3Bucket, "prefix", storeConfig.S3Prefix)

		tracerProvider, meterProvider, otelShutdown, err := forkify.InitOtel(ctx)
		if err != nil {
			slog.Error("SETUP: Failed to initialize OpenTelemetry", "error", err)
			return Results{}, err
		}
		defer func() {
			if err := otelShutdown(ctx); err != nil {
				slog.Error("SETUP: Failed to shutdown OpenTelemetry", "error", err)
			}
		}()

		fetcher := fetch.NewClient(fetch.ClientOpts{
			HTTPClient: http.DefaultClient,
			Timeout:    apiConfig.Timeout,
		})
		state := model.NewInstrumented(
			model.New(ctx, fetcher, store, model.Options{
				BaseURL:        apiConfig.BaseURL,
				Key:            apiConfig.Key,
				ResultsPerPage: apiConfig.ResultsPerPage,
			}),
			forkify.NewStdoutOperationLogger(),
			tracerProvider.Tracer(forkify.TracerNameLambda),
			meterProvider.Meter(forkify.TracerNameLambda),
		)

		registry, err := tools.NewRegistry(state)
		if err != nil {
			slog.Error("SETUP: Failed to create tool registry", "error", err)
			return Results{}, err
		}

		tool, err := registry.GetTool(params.Tool)
		if err != nil {
			slog.Error("RESULT: Unknown tool", "tool", params.Tool, "error", err)
			return Results{}, err
		}
		if params.Input == nil {
			params.Input = map[string]any{}
		}

		output, err := tool.Run(ctx, params.Input)
		if err != nil {
			slog.Error("RESULT: Error running tool", "tool", params.Tool, "error", err)
			return Results{}, err
		}
		slog.Info("RESULT: Tool completed", "tool", params.Tool)

		return Results{Output: output}, nil
	}

	lambda.Start(fn)
}
