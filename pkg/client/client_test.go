package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*Config)) *Client {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "trailing slash base url",
			mutate:      func(c *Config) { c.BaseURL = "https://api.color.pizza/" },
			expectError: false,
		},
		{
			name:        "missing scheme",
			mutate:      func(c *Config) { c.BaseURL = "api.color.pizza" },
			expectError: true,
			errorMsg:    "http or https",
		},
		{
			name:        "unsupported scheme",
			mutate:      func(c *Config) { c.BaseURL = "ftp://api.color.pizza" },
			expectError: true,
			errorMsg:    "http or https",
		},
		{
			name:        "missing host",
			mutate:      func(c *Config) { c.BaseURL = "https://" },
			expectError: true,
			errorMsg:    "host",
		},
		{
			name:        "missing user agent",
			mutate:      func(c *Config) { c.UserAgent = "" },
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "negative timeout",
			mutate:      func(c *Config) { c.Timeout = -time.Second },
			expectError: true,
			errorMsg:    "timeout",
		},
		{
			name:        "negative retries",
			mutate:      func(c *Config) { c.MaxRetries = -1 },
			expectError: true,
			errorMsg:    "max_retries",
		},
		{
			name:        "negative backoff",
			mutate:      func(c *Config) { c.InitialBackoff = -time.Second },
			expectError: true,
			errorMsg:    "initial_backoff",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			client, err := New(cfg)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error containing %q, got nil", tt.errorMsg)
				} else if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if client == nil {
				t.Error("Expected client, got nil")
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent should have a default")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.MaxRetries != 0 {
		t.Errorf("MaxRetries = %d, want 0 (no retries)", cfg.MaxRetries)
	}
}

func TestFetch_Success(t *testing.T) {
	var gotPath, gotQuery, gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"colors":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL+"/", func(cfg *Config) {
		cfg.UserAgent = "TestApp/1.0"
	})

	body, err := c.Fetch(context.Background(), "/v1/?list=bestOf")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if string(body) != `{"colors":[]}` {
		t.Errorf("body = %q", body)
	}
	if gotPath != "/v1/" {
		t.Errorf("path = %q, want /v1/", gotPath)
	}
	if gotQuery != "list=bestOf" {
		t.Errorf("query = %q, want list=bestOf", gotQuery)
	}
	if gotUA != "TestApp/1.0" {
		t.Errorf("User-Agent = %q, want TestApp/1.0", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want application/json", gotAccept)
	}
	if c.BaseURL() != server.URL {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), server.URL)
	}
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		expectedClass ErrorClass
	}{
		{name: "not found", status: http.StatusNotFound, expectedClass: ErrorClassClient},
		{name: "bad request", status: http.StatusBadRequest, expectedClass: ErrorClassClient},
		{name: "too many requests", status: http.StatusTooManyRequests, expectedClass: ErrorClassRateLimit},
		{name: "server error", status: http.StatusInternalServerError, expectedClass: ErrorClassServer},
		{name: "bad gateway", status: http.StatusBadGateway, expectedClass: ErrorClassServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, nil)

			body, err := c.Fetch(context.Background(), "/v1/?list=")
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if body != nil {
				t.Errorf("Expected nil body, got %q", body)
			}

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("Expected *TransportError, got %T", err)
			}
			if te.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", te.StatusCode, tt.status)
			}
			if te.Class != tt.expectedClass {
				t.Errorf("Class = %q, want %q", te.Class, tt.expectedClass)
			}
			if te.Path != "/v1/?list=" {
				t.Errorf("Path = %q", te.Path)
			}
			if te.Attempts != 1 {
				t.Errorf("Attempts = %d, want 1", te.Attempts)
			}

			// no retries by default
			if got := calls.Load(); got != 1 {
				t.Errorf("Expected 1 request, got %d", got)
			}
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := newTestClient(t, url, nil)

	_, err := c.Fetch(context.Background(), "/v1/?list=")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T (%v)", err, err)
	}
	if te.Class != ErrorClassNetwork {
		t.Errorf("Class = %q, want %q", te.Class, ErrorClassNetwork)
	}
	if te.Err == nil {
		t.Error("Expected underlying cause")
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
	})

	_, err := c.Fetch(context.Background(), "/v1/?list=")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T (%v)", err, err)
	}
	if te.Class != ErrorClassTimeout {
		t.Errorf("Class = %q, want %q", te.Class, ErrorClassTimeout)
	}
}

func TestFetch_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, "/v1/?list=")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T (%v)", err, err)
	}
	if te.Class != ErrorClassCanceled {
		t.Errorf("Class = %q, want %q", te.Class, ErrorClassCanceled)
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("Expected errors.Is(err, context.Canceled)")
	}
}

func TestFetch_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"colors":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.MaxRetries = 2
		cfg.InitialBackoff = 10 * time.Millisecond
	})

	body, err := c.Fetch(context.Background(), "/v1/?list=")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != `{"colors":[]}` {
		t.Errorf("body = %q", body)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
}

func TestFetch_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.MaxRetries = 3
		cfg.InitialBackoff = 10 * time.Millisecond
	})

	_, err := c.Fetch(context.Background(), "/v1/?list=unknown")
	if err == nil {
		t.Fatal("Expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("Expected 1 request for 4xx, got %d", got)
	}
}

func TestFetch_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.MaxRetries = 2
		cfg.InitialBackoff = 5 * time.Millisecond
	})

	_, err := c.Fetch(context.Background(), "/v1/?list=")

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TransportError, got %T", err)
	}
	if te.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", te.Attempts)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("Expected 3 requests, got %d", got)
	}
	if !strings.Contains(err.Error(), "after 3 attempts") {
		t.Errorf("Error message should mention attempts: %q", err.Error())
	}
}

func TestFetch_Span(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("list") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"colors":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.TracerProvider = tp
	})

	if _, err := c.Fetch(context.Background(), "/v1/?list=ok"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if _, err := c.Fetch(context.Background(), "/v1/?list=broken"); err == nil {
		t.Fatal("Expected error")
	}

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("Expected 2 spans, got %d", len(spans))
	}

	if spans[0].Name() != "colorapi.fetch" {
		t.Errorf("span name = %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("first span status = %v, want Ok", spans[0].Status().Code)
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("second span status = %v, want Error", spans[1].Status().Code)
	}

	found := false
	for _, attr := range spans[1].Attributes() {
		if string(attr.Key) == "colorapi.error_class" && attr.Value.AsString() == string(ErrorClassServer) {
			found = true
		}
	}
	if !found {
		t.Error("Expected colorapi.error_class attribute on failed span")
	}
}

func TestSetHTTPClient(t *testing.T) {
	c := newTestClient(t, "https://api.color.pizza", nil)

	custom := &http.Client{Timeout: time.Second}
	c.SetHTTPClient(custom)

	if c.httpClient != custom {
		t.Error("SetHTTPClient did not replace the HTTP client")
	}
}
