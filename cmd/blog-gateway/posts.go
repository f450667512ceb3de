package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pressgate/blog-gateway/pkg/cache"
)

// post is the minimal blog post shape the demo routes serve. Real post
// persistence lives in the blog's CRUD layer; the gateway only needs a
// downstream handler for its pipeline to wrap.
type post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// postHandler is the downstream collaborator behind the cache: reads
// list posts, writes append one and invalidate the cached read path.
type postHandler struct {
	mu    sync.Mutex
	posts []post
	next  int

	cache *cache.ResponseCache
}

func newPostHandler(rc *cache.ResponseCache) *postHandler {
	return &postHandler{next: 1, cache: rc}
}

func (h *postHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodPost:
		h.create(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *postHandler) list(w http.ResponseWriter) {
	h.mu.Lock()
	posts := append([]post(nil), h.posts...)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(posts)
}

func (h *postHandler) create(w http.ResponseWriter, r *http.Request) {
	var p post
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	p.ID = h.next
	h.next++
	p.CreatedAt = time.Now().UTC()
	h.posts = append(h.posts, p)
	h.mu.Unlock()

	// Drop every cached variant of the read path now that it is stale.
	if !h.cache.InvalidatePrefix(context.Background(), r.URL.Path) {
		log.Warn().Str("path", r.URL.Path).Msg("Cache invalidation skipped")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(p)
}
