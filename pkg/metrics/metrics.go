// Package metrics provides the Prometheus registry reference and exposition
// handler for the color cache. Metrics themselves are defined in their
// respective packages (client, cache, prefetch) via promauto.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all package metrics are registered with.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Handler serves from.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler exposing all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Client Metrics (pkg/client):
//   - colorapi_requests_total{status} (Counter): Requests by HTTP status or error class
//   - colorapi_request_duration_seconds (Histogram): Fetch duration including retries
//   - colorapi_errors_total{class} (Counter): Errors by class (client, rate_limit, server, network, timeout, canceled)
//   - colorapi_retries_total{error_class} (Counter): Retry attempts by error class
//   - colorapi_retry_exhausted_total{error_class} (Counter): Fetches that used up their retries
//
// Cache Metrics (pkg/cache):
//   - colorapi_cache_hits_total (Counter): Lists served from memory
//   - colorapi_cache_misses_total (Counter): Lookups that needed a load
//   - colorapi_cache_shared_total (Counter): Callers served by a shared in-flight load
//   - colorapi_cache_load_errors_total{reason} (Counter): Failed loads (transport, malformed, canceled)
//   - colorapi_cache_entries (Gauge): Lists held in memory
//
// Prefetch Metrics (pkg/prefetch):
//   - colorapi_prefetch_lists_total{outcome} (Counter): Lists warmed (loaded, cached, failed)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(colorapi_cache_hits_total[5m])) /
//   (sum(rate(colorapi_cache_hits_total[5m])) + sum(rate(colorapi_cache_misses_total[5m])))
//
//   # Upstream Error Rate
//   sum by (class) (rate(colorapi_errors_total[5m]))
//
//   # P95 Fetch Latency
//   histogram_quantile(0.95, rate(colorapi_request_duration_seconds_bucket[5m]))
