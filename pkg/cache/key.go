package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pressgate/blog-gateway/pkg/user"
)

// Namespace prefixes every cache key to avoid collision with any other
// use of the same store.
const Namespace = "cache"

// GuestID is the caller identity sentinel for unauthenticated requests.
// The user store refuses to create a user under this ID, so it can
// never name an authenticated caller.
const GuestID = user.GuestID

// Key identifies one cached response: "this GET request, for this caller".
type Key struct {
	// Path is the request path (e.g., "/api/posts").
	Path string

	// Query holds the request query parameters.
	Query url.Values

	// CallerID is the authenticated user ID, or empty for guests.
	CallerID string
}

// String generates a deterministic cache key string.
// Format: cache:path:query1=val1:query2=val2:uid=<caller>
//
// Query parameters serialize sorted by name (and by value within a
// name), so the same parameter set always produces the same key
// regardless of arrival order. The caller segment is always present:
// two requests differing only in caller identity never collide.
//
// Example:
//
//	cache:api/posts:page=1:uid=guest
func (k Key) String() string {
	parts := []string{Namespace}

	if path := strings.Trim(k.Path, "/"); path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			values := append([]string(nil), k.Query[name]...)
			sort.Strings(values)
			for _, value := range values {
				parts = append(parts, fmt.Sprintf("%s=%s", name, value))
			}
		}
	}

	caller := k.CallerID
	if caller == "" {
		caller = GuestID
	}
	parts = append(parts, "uid="+caller)

	return strings.Join(parts, ":")
}

// PrefixPattern returns the glob matching every cached variant of a path
// (all query-parameter and caller combinations).
func PrefixPattern(path string) string {
	p := Namespace
	if path = strings.Trim(path, "/"); path != "" {
		p += ":" + path
	}
	return p + ":*"
}
