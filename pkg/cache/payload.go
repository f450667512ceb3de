package cache

import (
	"time"
)

// Payload is the serialized envelope stored for a cached response.
type Payload struct {
	// Data is the response body.
	Data []byte `json:"data"`

	// StatusCode is the HTTP status code of the cached response.
	StatusCode int `json:"status_code"`

	// ContentType is the response Content-Type header.
	ContentType string `json:"content_type"`

	// CachedAt is when the response was captured.
	CachedAt time.Time `json:"cached_at"`
}
