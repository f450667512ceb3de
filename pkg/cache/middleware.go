package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pressgate/blog-gateway/pkg/logging"
)

// DefaultTTL is the cache lifetime applied when no override is given.
const DefaultTTL = 3600 * time.Second

// Store is the key-value store surface the middleware depends on. All
// operations are fail-silent: nil/false means miss or unavailable, and
// the middleware treats both identically.
type Store interface {
	Get(ctx context.Context, key string) []byte
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	DeleteByPattern(ctx context.Context, pattern string) bool
}

// IdentityFunc extracts the caller identity from a request. Empty means
// unauthenticated (guest).
type IdentityFunc func(r *http.Request) string

// Option configures a ResponseCache.
type Option func(*ResponseCache)

// WithTTL overrides the cache lifetime for this mount point.
func WithTTL(ttl time.Duration) Option {
	return func(rc *ResponseCache) {
		if ttl > 0 {
			rc.ttl = ttl
		}
	}
}

// WithIdentity sets the caller identity extractor.
func WithIdentity(fn IdentityFunc) Option {
	return func(rc *ResponseCache) {
		if fn != nil {
			rc.identity = fn
		}
	}
}

// ResponseCache is the cache-aside middleware. It serves stored payloads
// on hit and captures success responses into the store on miss, without
// altering the downstream handler's behavior or blocking the response on
// the cache write.
type ResponseCache struct {
	store    Store
	ttl      time.Duration
	identity IdentityFunc
	logger   zerolog.Logger

	// pending tracks in-flight asynchronous cache writes.
	pending sync.WaitGroup
}

// New creates a ResponseCache over the given store.
func New(store Store, opts ...Option) *ResponseCache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	rc := &ResponseCache{
		store:    store,
		ttl:      DefaultTTL,
		identity: func(*http.Request) string { return "" },
		logger:   logging.NewLogger("response-cache"),
	}
	for _, opt := range opts {
		opt(rc)
	}
	return rc
}

// Handler wraps next with cache-aside interception.
//
// Only GET requests qualify; every other method bypasses unconditionally.
// Any store failure degrades silently to "always miss"; a cache failure
// is never converted into a client-visible error.
func (rc *ResponseCache) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		key := Key{
			Path:     r.URL.Path,
			Query:    r.URL.Query(),
			CallerID: rc.identity(r),
		}.String()

		if payload, ok := rc.lookup(r.Context(), key); ok {
			CacheHits.Inc()
			rc.logger.Debug().Str("key", key).Msg("Cache hit")

			if payload.ContentType != "" {
				w.Header().Set("Content-Type", payload.ContentType)
			}
			w.Header().Set("X-Cache", "HIT")
			w.WriteHeader(payload.StatusCode)
			if _, err := w.Write(payload.Data); err != nil {
				rc.logger.Warn().Err(err).Msg("Failed to write cached response")
			}
			return
		}

		CacheMisses.Inc()
		w.Header().Set("X-Cache", "MISS")

		rec := newRecorder(w)
		next.ServeHTTP(rec, r)

		// The client already has the response; capture it for next time.
		if rec.status >= 200 && rec.status < 300 {
			rc.capture(key, rec.snapshot())
		}
	})
}

// lookup fetches and decodes a stored payload. A decode failure is
// treated as a miss and the corrupt entry is left to expire.
func (rc *ResponseCache) lookup(ctx context.Context, key string) (*Payload, bool) {
	data := rc.store.Get(ctx, key)
	if data == nil {
		return nil, false
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		CacheErrors.WithLabelValues("decode").Inc()
		rc.logger.Warn().Err(err).Str("key", key).Msg("Invalid cache payload")
		return nil, false
	}
	return &payload, true
}

// capture writes the payload on a background goroutine, after the
// response has already been sent. Errors are logged and discarded.
// Tests await completion via Wait.
func (rc *ResponseCache) capture(key string, payload Payload) {
	rc.pending.Add(1)
	go func() {
		defer rc.pending.Done()

		data, err := json.Marshal(payload)
		if err != nil {
			CacheErrors.WithLabelValues("encode").Inc()
			rc.logger.Warn().Err(err).Str("key", key).Msg("Failed to encode cache payload")
			return
		}

		// Detached from the request context: the response is already out.
		if !rc.store.Set(context.Background(), key, data, rc.ttl) {
			CacheErrors.WithLabelValues("set").Inc()
			rc.logger.Warn().Str("key", key).Msg("Cache write skipped or failed")
			return
		}

		CacheWrites.Inc()
		rc.logger.Debug().Str("key", key).Dur("ttl", rc.ttl).Msg("Cached response")
	}()
}

// Wait blocks until all in-flight cache writes complete. Cache
// population happens-after response delivery, so tests must call Wait
// (or poll) instead of assuming synchronous consistency.
func (rc *ResponseCache) Wait() {
	rc.pending.Wait()
}

// InvalidatePrefix drops every cached variant of a read path: all
// query-parameter and caller combinations. Mutation handlers call this
// after a successful write to the source of truth.
func (rc *ResponseCache) InvalidatePrefix(ctx context.Context, path string) bool {
	return rc.store.DeleteByPattern(ctx, PrefixPattern(path))
}

// recorder is a pass-through http.ResponseWriter that keeps a copy of
// the status code and body while streaming them to the client.
type recorder struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *recorder) WriteHeader(status int) {
	if !r.wroteHeader {
		r.status = status
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *recorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

// snapshot freezes the recorded response into a Payload.
func (r *recorder) snapshot() Payload {
	return Payload{
		Data:        append([]byte(nil), r.body.Bytes()...),
		StatusCode:  r.status,
		ContentType: r.Header().Get("Content-Type"),
		CachedAt:    time.Now(),
	}
}
