// Package metrics provides the centralized Prometheus metrics registry
// for the blog gateway. All metrics are defined in their respective
// packages (kvstore, cache, auth) to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the gateway.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Key-Value Store Metrics (pkg/kvstore):
//   - blog_kvstore_state_transitions_total{from, to} (Counter): Connection state transitions
//   - blog_kvstore_connect_retries_total (Counter): Failed connection attempts
//   - blog_kvstore_op_errors_total{operation} (Counter): Swallowed transport errors
//   - blog_kvstore_op_skipped_total{operation} (Counter): Operations skipped while disconnected
//
// Response Cache Metrics (pkg/cache):
//   - blog_cache_hits_total (Counter): Responses served from the store
//   - blog_cache_misses_total (Counter): Requests passed to the downstream handler
//   - blog_cache_writes_total (Counter): Successful asynchronous cache writes
//   - blog_cache_errors_total{operation} (Counter): Cache operation errors
//
// Auth Metrics (pkg/auth):
//   - blog_auth_decisions_total{outcome} (Counter): Token verification decisions
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(blog_cache_hits_total[5m])) /
//   (sum(rate(blog_cache_hits_total[5m])) + sum(rate(blog_cache_misses_total[5m])))
//
//   # Store Degradation
//   rate(blog_kvstore_op_skipped_total[5m]) > 0
//
//   # Maintenance Lockout Rate
//   rate(blog_auth_decisions_total{outcome="unauthorized"}[5m])
