package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "guest, no query",
			key:  Key{Path: "/api/posts"},
			want: "cache:api/posts:uid=guest",
		},
		{
			name: "authenticated",
			key:  Key{Path: "/api/posts", CallerID: "42"},
			want: "cache:api/posts:uid=42",
		},
		{
			name: "single query param",
			key: Key{
				Path:  "/api/posts",
				Query: url.Values{"page": {"1"}},
			},
			want: "cache:api/posts:page=1:uid=guest",
		},
		{
			name: "multiple query params sorted by name",
			key: Key{
				Path:  "/api/posts",
				Query: url.Values{"page": {"1"}, "category": {"go"}},
			},
			want: "cache:api/posts:category=go:page=1:uid=guest",
		},
		{
			name: "multi-valued param sorted by value",
			key: Key{
				Path:  "/api/posts",
				Query: url.Values{"tag": {"zebra", "alpha"}},
			},
			want: "cache:api/posts:tag=alpha:tag=zebra:uid=guest",
		},
		{
			name: "path normalized",
			key:  Key{Path: "/api/posts/"},
			want: "cache:api/posts:uid=guest",
		},
		{
			name: "root path",
			key:  Key{Path: "/"},
			want: "cache:uid=guest",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_OrderIndependence(t *testing.T) {
	// Same parameter set must serialize identically regardless of
	// insertion order.
	a := url.Values{}
	a.Add("page", "1")
	a.Add("category", "go")
	a.Add("tag", "b")
	a.Add("tag", "a")

	b := url.Values{}
	b.Add("tag", "a")
	b.Add("category", "go")
	b.Add("tag", "b")
	b.Add("page", "1")

	ka := Key{Path: "/api/posts", Query: a, CallerID: "7"}.String()
	kb := Key{Path: "/api/posts", Query: b, CallerID: "7"}.String()
	if ka != kb {
		t.Errorf("keys differ for identical parameter sets:\n  %s\n  %s", ka, kb)
	}
}

func TestKey_CallerDiscrimination(t *testing.T) {
	q := url.Values{"page": {"1"}}

	alice := Key{Path: "/api/posts", Query: q, CallerID: "alice"}.String()
	bob := Key{Path: "/api/posts", Query: q, CallerID: "bob"}.String()
	guest := Key{Path: "/api/posts", Query: q}.String()

	if alice == bob {
		t.Error("different callers must never share a cache entry")
	}
	if alice == guest || bob == guest {
		t.Error("authenticated and guest requests must never share a cache entry")
	}
}

func TestPrefixPattern(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/posts", "cache:api/posts:*"},
		{"/api/posts/", "cache:api/posts:*"},
		{"/", "cache:*"},
		{"", "cache:*"},
	}

	for _, tt := range tests {
		if got := PrefixPattern(tt.path); got != tt.want {
			t.Errorf("PrefixPattern(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
