// Package client provides the HTTP adapter for the color naming API.
// It issues GET requests relative to a fixed base URL and reports every
// failure as a *TransportError.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/color-cache/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultBaseURL is the public color naming API.
const DefaultBaseURL = "https://api.color.pizza"

const tracerName = "github.com/Sternrassler/color-cache/pkg/client"

// Prometheus metrics for color API client operations.
var (
	colorAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colorapi_requests_total",
		Help: "Total color API requests by status",
	}, []string{"status"})

	colorAPIRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "colorapi_request_duration_seconds",
		Help:    "Color API request duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	})

	colorAPIErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colorapi_errors_total",
		Help: "Total color API errors by class",
	}, []string{"class"})

	colorAPIRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colorapi_retries_total",
		Help: "Total number of retry attempts by error class",
	}, []string{"error_class"})

	colorAPIRetryExhaustedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "colorapi_retry_exhausted_total",
		Help: "Total number of times retry attempts were exhausted by error class",
	}, []string{"error_class"})
)

// Client is the color API HTTP client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	config     Config
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.color.pizza"
	BaseURL string

	// UserAgent is sent with every request
	UserAgent string

	// Timeout bounds a single request; 0 disables the client side timeout.
	// The query cache runs loads detached from caller contexts, so with 0
	// a hung upstream blocks its key until the cache's load timeout (if any).
	Timeout time.Duration

	// Retry (disabled by default)
	MaxRetries     int
	InitialBackoff time.Duration // overrides the per-class initial backoff when > 0

	// TracerProvider defaults to the global OpenTelemetry provider
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns the default configuration for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: "color-cache/0.1.0",
		Timeout:   30 * time.Second,
	}
}

// New creates a new color API client.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url must use http or https (got %q)", cfg.BaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url must include a host (got %q)", cfg.BaseURL)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0 (got %s)", cfg.Timeout)
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.InitialBackoff < 0 {
		return nil, fmt.Errorf("initial_backoff must be >= 0 (got %s)", cfg.InitialBackoff)
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		config:  cfg,
		tracer:  tp.Tracer(tracerName),
		logger:  logging.NewLogger("color-client"),
	}, nil
}

// Fetch performs a GET request for path and returns the response body.
// Non-2xx responses, network failures, timeouts and cancellation are
// reported as *TransportError.
func (c *Client) Fetch(ctx context.Context, path string) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "colorapi.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("colorapi.path", path)),
	)
	defer span.End()

	startTime := time.Now()
	defer func() {
		colorAPIRequestDuration.Observe(time.Since(startTime).Seconds())
	}()

	var body []byte
	var attempts int

	err := retryWithBackoff(ctx, c.logger, path, c.retryConfig, func(attempt int) error {
		attempts = attempt
		var reqErr error
		body, reqErr = c.do(ctx, path)
		return reqErr
	})

	span.SetAttributes(attribute.Int("colorapi.attempts", attempts))
	if err != nil {
		if te, ok := err.(*TransportError); ok && te.Attempts == 0 {
			te.Attempts = attempts
		}
		span.RecordError(err)
		span.SetAttributes(attribute.String("colorapi.error_class", string(classOf(err))))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return body, nil
}

// Get is an alias for Fetch.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.Fetch(ctx, path)
}

// do executes a single request.
func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Path: path, Class: ErrorClassClient, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("path", path).
		Str("method", req.Method).
		Msg("Executing color API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		errClass := classifyErr(err)
		colorAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()
		colorAPIRequestsTotal.WithLabelValues(string(errClass)).Inc()
		c.logger.Warn().Err(err).Str("path", path).Str("error_class", string(errClass)).Msg("HTTP request failed")
		return nil, &TransportError{Path: path, Class: errClass, Err: err}
	}
	defer resp.Body.Close()

	colorAPIRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errClass := classifyStatus(resp.StatusCode)
		colorAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()

		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error_class", string(errClass)).
			Msg("Color API request error")

		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)

		return nil, &TransportError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errClass := classifyErr(err)
		colorAPIErrorsTotal.WithLabelValues(string(errClass)).Inc()
		return nil, &TransportError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Class:      errClass,
			Err:        fmt.Errorf("read response body: %w", err),
		}
	}

	c.logger.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Msg("Color API request succeeded")

	return body, nil
}

// retryConfig returns the retry configuration for an error class.
func (c *Client) retryConfig(errorClass ErrorClass) RetryConfig {
	config := RetryConfigForErrorClass(errorClass)
	config.MaxAttempts = c.config.MaxRetries + 1
	if c.config.InitialBackoff > 0 {
		config.InitialBackoff = c.config.InitialBackoff
		if config.MaxBackoff < config.InitialBackoff {
			config.MaxBackoff = config.InitialBackoff
		}
	}
	return config
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
