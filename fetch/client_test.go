package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient implements the HTTPClient interface for testing
type mockHTTPClient struct {
	response *http.Response
	err      error
	request  *http.Request
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.request = req
	return m.response, m.err
}

func createMockResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func TestClient_Request(t *testing.T) {
	tests := []struct {
		name         string
		mockResponse *http.Response
		mockError    error
		body         any
		wantMethod   string
		wantBody     string
		wantErr      error
		errContains  string
	}{
		{
			name:         "get returns raw json",
			mockResponse: createMockResponse(200, `{"status":"success","data":{"recipes":[]}}`),
			wantMethod:   http.MethodGet,
			wantBody:     `{"status":"success","data":{"recipes":[]}}`,
		},
		{
			name:         "post sends json payload",
			mockResponse: createMockResponse(201, `{"status":"success","data":{"recipe":{"id":"x"}}}`),
			body:         map[string]any{"title": "Soup"},
			wantMethod:   http.MethodPost,
			wantBody:     `{"status":"success","data":{"recipe":{"id":"x"}}}`,
		},
		{
			name:         "api failure message is surfaced",
			mockResponse: createMockResponse(400, `{"status":"fail","message":"Invalid _id: nope"}`),
			wantErr:      ErrRequest,
			errContains:  "Invalid _id: nope (400)",
		},
		{
			name:         "non-json error body falls back to status",
			mockResponse: createMockResponse(502, `<html>bad gateway</html>`),
			wantErr:      ErrRequest,
			errContains:  "Bad Gateway",
		},
		{
			name:         "non-json success body",
			mockResponse: createMockResponse(200, `not json`),
			wantErr:      ErrDecode,
		},
		{
			name:        "transport error",
			mockError:   errors.New("connection refused"),
			wantErr:     ErrRequest,
			errContains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: tt.mockResponse, err: tt.mockError}
			client := NewClient(ClientOpts{HTTPClient: mock})

			got, err := client.Request(context.Background(), "https://api.test/recipes/?key=k", tt.body)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			assert.JSONEq(t, tt.wantBody, string(got))
			require.NotNil(t, mock.request)
			assert.Equal(t, tt.wantMethod, mock.request.Method)

			if tt.body != nil {
				assert.Equal(t, "application/json", mock.request.Header.Get("Content-Type"))
				sent, err := io.ReadAll(mock.request.Body)
				require.NoError(t, err)
				want, _ := json.Marshal(tt.body)
				assert.JSONEq(t, string(want), string(sent))
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(ClientOpts{HTTPClient: server.Client(), Timeout: 50 * time.Millisecond})
	_, err := client.Request(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequest)
	assert.Contains(t, err.Error(), "timeout")
}

func TestClient_AgainstServer(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"recipes":[{"id":"1"}]}}`)) // nolint: errcheck
	}))
	defer server.Close()

	client := NewClient(ClientOpts{HTTPClient: server.Client()})
	got, err := client.Request(context.Background(), server.URL+"/?search=pizza&key=abc", nil)
	require.NoError(t, err)
	assert.Equal(t, "search=pizza&key=abc", gotQuery)
	assert.JSONEq(t, `{"data":{"recipes":[{"id":"1"}]}}`, string(got))
}
