package testutil

import (
	"net/http"
	"sync"
)

// CountingHandler is a downstream handler that records how many times it
// was invoked. It stands in for the expensive read path the response
// cache is meant to short-circuit.
type CountingHandler struct {
	mu    sync.Mutex
	count int

	// Status and Body control the response; Status defaults to 200.
	Status      int
	Body        string
	ContentType string
}

// ServeHTTP implements http.Handler.
func (h *CountingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.count++
	h.mu.Unlock()

	ct := h.ContentType
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)

	status := h.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = w.Write([]byte(h.Body))
}

// Count returns the number of invocations so far.
func (h *CountingHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}
