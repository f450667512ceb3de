package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks responses served from the store.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// CacheMisses tracks requests passed to the downstream handler.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// CacheWrites tracks successful asynchronous cache population.
	CacheWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_cache_writes_total",
			Help: "Total number of responses written to the cache",
		},
	)

	// CacheErrors tracks cache operation errors by operation.
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_cache_errors_total",
			Help: "Total number of response cache operation errors",
		},
		[]string{"operation"}, // "decode", "encode", "set"
	)
)
