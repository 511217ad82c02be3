// Package fetch performs JSON requests against the recipe API.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"forkify"
)

var (
	// ErrRequest covers transport failures, timeouts and non-2xx answers.
	ErrRequest = errors.New("request failed")
	// ErrDecode is returned when the body is not JSON.
	ErrDecode = errors.New("response is not valid JSON")
)

type Client struct {
	httpClient forkify.HTTPClient
	timeout    time.Duration
}

type ClientOpts struct {
	HTTPClient forkify.HTTPClient
	// Timeout bounds each request; zero means no limit beyond ctx.
	Timeout time.Duration
}

func NewClient(opts ClientOpts) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{httpClient: hc, timeout: opts.Timeout}
}

// apiFailure is the error envelope the API sends with non-2xx statuses.
type apiFailure struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Request GETs url when body is nil and POSTs body as JSON otherwise.
// It returns the raw JSON response body.
func (c *Client) Request(ctx context.Context, url string, body any) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := c.newRequest(ctx, url, body)
	if err != nil {
		return nil, err
	}

	slog.Debug("FETCH: Sending request", "method", req.Method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: request took too long (timeout after %s)", ErrRequest, c.timeout)
		}
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRequest, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure apiFailure
		if json.Unmarshal(data, &failure) == nil && failure.Message != "" {
			return nil, fmt.Errorf("%w: %s (%d)", ErrRequest, failure.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: %s", ErrRequest, resp.Status)
	}

	if !json.Valid(data) {
		slog.Warn("FETCH: Response is not JSON", "url", url, "status", resp.StatusCode)
		return nil, ErrDecode
	}

	return data, nil
}

func (c *Client) newRequest(ctx context.Context, url string, body any) (*http.Request, error) {
	if body == nil {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRequest, err)
		}
		return req, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
