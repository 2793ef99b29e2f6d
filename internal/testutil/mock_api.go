// Package testutil provides testing utilities for the color cache.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mocked color list.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration

	// Gate, if set, blocks the response until it is closed
	Gate <-chan struct{}
}

// MockColorAPI is a configurable mock of the color naming API. It serves
// GET /v1/?list=<name> from responses registered per list name.
type MockColorAPI struct {
	server    *httptest.Server
	mu        sync.RWMutex
	responses map[string]MockResponse

	// Tracking
	requestCount  int
	listCounts    map[string]int
	lastUserAgent string
}

// NewMockColorAPI creates a new mock color API server.
func NewMockColorAPI() *MockColorAPI {
	mock := &MockColorAPI{
		responses:  make(map[string]MockResponse),
		listCounts: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/", mock.handleList)
	mock.server = httptest.NewServer(mux)

	return mock
}

// URL returns the mock server URL.
func (m *MockColorAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockColorAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockColorAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.listCounts = make(map[string]int)
	m.lastUserAgent = ""
}

// SetResponse configures the response for a list name ("" is the default list).
func (m *MockColorAPI) SetResponse(list string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[list] = resp
}

// SetColors configures a 200 response with the given JSON colors array.
func (m *MockColorAPI) SetColors(list string, colorsJSON string) {
	m.SetResponse(list, NewColorsResponse(colorsJSON))
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockColorAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// GetListCount returns the number of requests made for one list.
func (m *MockColorAPI) GetListCount(list string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCounts[list]
}

// LastUserAgent returns the User-Agent of the most recent request.
func (m *MockColorAPI) LastUserAgent() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUserAgent
}

func (m *MockColorAPI) handleList(w http.ResponseWriter, r *http.Request) {
	list := r.URL.Query().Get("list")

	m.mu.Lock()
	m.requestCount++
	m.listCounts[list]++
	m.lastUserAgent = r.Header.Get("User-Agent")
	resp, exists := m.responses[list]
	m.mu.Unlock()

	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if !exists {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"status":404,"message":"list not found"}}`))
		return
	}

	if resp.Gate != nil {
		select {
		case <-resp.Gate:
		case <-r.Context().Done():
			return
		}
	}
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewColorsResponse creates a 200 OK response wrapping a colors array.
func NewColorsResponse(colorsJSON string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"paletteTitle":"mock","colors":` + colorsJSON + `}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":{"status":429,"message":"Rate limit exceeded"}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
			"Retry-After":  "1",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":{"status":500,"message":"Internal server error"}}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewMalformedResponse creates a 200 OK response without a colors array.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"paletteTitle":"mock","colours":[]}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
