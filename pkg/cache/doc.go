// Package cache implements the cache-aside response middleware.
//
// The middleware intercepts qualifying GET requests, serves a stored
// payload on hit, and on a successful miss populates the store after the
// response has already been delivered:
//
// - Deterministic, caller-scoped cache keys (no cross-user leakage)
// - Fire-and-forget population (never delays or fails the response)
// - Fail-open on any store failure (degrades to "always miss")
// - Only success responses are ever cached
// - Prometheus metrics for observability
//
// # Basic Usage
//
//	store := kvstore.New(kvstore.DefaultConfig("localhost:6379"))
//	_ = store.Connect(ctx) // advisory; degrades to uncached on failure
//
//	rc := cache.New(store,
//		cache.WithTTL(10*time.Minute),
//		cache.WithIdentity(auth.CallerID),
//	)
//
//	mux.Handle("/api/posts", rc.Handler(postsHandler))
//
// # Invalidation
//
// Mutation handlers call InvalidatePrefix to drop every cached variant of
// a read path (all query-parameter and caller combinations):
//
//	rc.InvalidatePrefix(ctx, "/api/posts")
//
// # Metrics
//
//   - blog_cache_hits_total - Cache hits
//   - blog_cache_misses_total - Cache misses
//   - blog_cache_writes_total - Successful asynchronous cache writes
//   - blog_cache_errors_total{operation} - Cache operation errors
//
// # Concurrency
//
// Concurrent misses for the same key each invoke the downstream handler
// and each issue a write, last writer winning. All writers compute the
// same value from the same source of truth, so the stampede is a benign
// inefficiency and is intentionally not deduplicated.
package cache
