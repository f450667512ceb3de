package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pressgate/blog-gateway/pkg/user"
)

var authDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_auth_decisions_total",
	Help: "Total token verification decisions by outcome",
}, []string{"outcome"})

type contextKey int

const userContextKey contextKey = iota

// UserFromContext returns the authenticated user stored by Middleware,
// or nil for unauthenticated requests.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(userContextKey).(*user.User)
	return u
}

// WithUser returns a context carrying the given user. Exported for
// handler tests.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userContextKey, u)
}

// CallerID returns the authenticated user ID for a request, or empty
// for guests. Shape matches the response cache's identity hook.
func CallerID(r *http.Request) string {
	if u := UserFromContext(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

// Middleware gates a protected route. Authorized requests proceed with
// the user in the request context; rejections carry a machine-readable
// reason and are never retried.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := ReadSessionCookie(r)

		decision := v.Verify(r.Context(), token)
		switch decision.Outcome {
		case OutcomeAuthorized:
			authDecisions.WithLabelValues("authorized").Inc()
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), decision.User)))
		case OutcomeUnauthorized:
			authDecisions.WithLabelValues("unauthorized").Inc()
			writeError(w, http.StatusUnauthorized, decision.Reason)
		default:
			authDecisions.WithLabelValues("server_error").Inc()
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
	})
}

// RequireAdmin allows only admin users past. Mount inside Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := UserFromContext(r.Context())
		if u == nil || !u.IsAdmin {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError emits the structured rejection body.
func writeError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": reason})
}
