// Package testutil provides test doubles for the middleware pipeline.
package testutil

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemStore is an in-memory stand-in for the key-value store client with
// real TTL semantics. Setting Down simulates the degraded (disconnected)
// client: fail-silent no-ops, exactly like the production contract.
type MemStore struct {
	mu    sync.Mutex
	cache *gocache.Cache

	// Down makes every operation a no-op returning nil/false.
	Down bool

	// SetCalls counts successful Set invocations.
	SetCalls int
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

// Get returns the stored value or nil on miss/unavailability.
func (s *MemStore) Get(_ context.Context, key string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return nil
	}
	if v, ok := s.cache.Get(key); ok {
		return v.([]byte)
	}
	return nil
}

// Set stores value under key with the given TTL.
func (s *MemStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return false
	}
	s.cache.Set(key, append([]byte(nil), value...), ttl)
	s.SetCalls++
	return true
}

// Delete removes the given keys.
func (s *MemStore) Delete(_ context.Context, keys ...string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return false
	}
	for _, key := range keys {
		s.cache.Delete(key)
	}
	return true
}

// DeleteByPattern removes keys matching a glob pattern.
func (s *MemStore) DeleteByPattern(_ context.Context, pattern string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return false
	}
	for key := range s.cache.Items() {
		if globMatch(pattern, key) {
			s.cache.Delete(key)
		}
	}
	return true
}

// FlushAll removes every key.
func (s *MemStore) FlushAll(_ context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Down {
		return false
	}
	s.cache.Flush()
	return true
}

// Keys returns the live keys, for assertions.
func (s *MemStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.cache.Items()
	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	return keys
}

// globMatch matches the store's glob dialect, where "*" may also cross
// ":" separators (path.Match treats its separator specially, so expand
// trailing-star patterns by hand).
func globMatch(pattern, key string) bool {
	if prefix, ok := strings.CutSuffix(pattern, "*"); ok && !strings.Contains(prefix, "*") {
		return strings.HasPrefix(key, prefix)
	}
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}
