// Package devices records login devices against a user's bounded
// session history.
package devices

import (
	"net"
	"net/http"
	"strings"
)

// Fingerprint is the transport-level identity of a calling device.
type Fingerprint struct {
	DeviceType string
	OS         string
	Browser    string
	IP         string
}

// FromRequest derives a fingerprint from request metadata. Read-only:
// User-Agent header and source IP.
func FromRequest(r *http.Request) Fingerprint {
	ua := r.UserAgent()
	return Fingerprint{
		DeviceType: classifyDevice(ua),
		OS:         classifyOS(ua),
		Browser:    classifyBrowser(ua),
		IP:         clientIP(r),
	}
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// The classifiers are deliberately coarse: the device list is a user
// facing "recent logins" hint, not an analytics feature.

func classifyDevice(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "ipad") || strings.Contains(s, "tablet"):
		return "tablet"
	case strings.Contains(s, "mobi") || strings.Contains(s, "android") || strings.Contains(s, "iphone"):
		return "mobile"
	case s == "":
		return "unknown"
	default:
		return "desktop"
	}
}

func classifyOS(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "windows"):
		return "Windows"
	case strings.Contains(s, "android"):
		return "Android"
	case strings.Contains(s, "iphone"), strings.Contains(s, "ipad"), strings.Contains(s, "ios"):
		return "iOS"
	case strings.Contains(s, "mac os"), strings.Contains(s, "macintosh"):
		return "macOS"
	case strings.Contains(s, "linux"):
		return "Linux"
	default:
		return "unknown"
	}
}

func classifyBrowser(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "edg/"), strings.Contains(s, "edge"):
		return "Edge"
	case strings.Contains(s, "opr/"), strings.Contains(s, "opera"):
		return "Opera"
	case strings.Contains(s, "chrome"):
		return "Chrome"
	case strings.Contains(s, "firefox"):
		return "Firefox"
	case strings.Contains(s, "safari"):
		return "Safari"
	default:
		return "unknown"
	}
}
