package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks lists served from the store
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "colorapi_cache_hits_total",
			Help: "Total number of color list cache hits",
		},
	)

	// CacheMisses tracks lookups that had to load from the API
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "colorapi_cache_misses_total",
			Help: "Total number of color list cache misses",
		},
	)

	// CacheShared tracks callers that joined an in-flight load
	CacheShared = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "colorapi_cache_shared_total",
			Help: "Total number of callers served by another caller's in-flight load",
		},
	)

	// CacheLoadErrors tracks failed loads by reason
	CacheLoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "colorapi_cache_load_errors_total",
			Help: "Total number of failed color list loads",
		},
		[]string{"reason"}, // "transport", "malformed", "panic", "canceled"
	)

	// CacheEntries tracks stored lists across all caches
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "colorapi_cache_entries",
			Help: "Current number of color lists held in memory",
		},
	)
)
