package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/pressgate/blog-gateway/pkg/logging"
	"github.com/pressgate/blog-gateway/pkg/user"
)

// Outcome classifies a verification decision.
type Outcome int

const (
	// OutcomeAuthorized means the request may proceed.
	OutcomeAuthorized Outcome = iota

	// OutcomeUnauthorized means the caller is rejected with a reason.
	OutcomeUnauthorized

	// OutcomeServerError means verification itself failed (e.g. the user
	// record vanished after token issuance). Fatal to the request.
	OutcomeServerError
)

// Machine-readable rejection reasons.
const (
	ReasonNoToken      = "no token"
	ReasonInvalidToken = "invalid token"
	ReasonMaintenance  = "maintenance mode"
)

// Decision is the result of verifying a session token.
type Decision struct {
	Outcome Outcome
	User    *user.User
	Reason  string
}

// Verifier validates session tokens and applies authorization policy.
// It is a pure decision function over externally supplied state.
type Verifier struct {
	secret      []byte
	users       user.Finder
	maintenance *Maintenance
	logger      zerolog.Logger
}

// NewVerifier creates a Verifier. maintenance may be nil when no
// site-wide switch is wired; the per-user flag is still honored.
func NewVerifier(secret []byte, users user.Finder, maintenance *Maintenance) *Verifier {
	if len(secret) == 0 {
		panic("signing secret cannot be empty")
	}
	if users == nil {
		panic("user finder cannot be nil")
	}
	return &Verifier{
		secret:      secret,
		users:       users,
		maintenance: maintenance,
		logger:      logging.NewLogger("token-verifier"),
	}
}

// Verify decides whether the request carrying token may proceed.
//
// Admins are always authorized: they bypass maintenance mode
// unconditionally. Authorization decisions are never retried or masked.
func (v *Verifier) Verify(ctx context.Context, token string) Decision {
	if token == "" {
		return Decision{Outcome: OutcomeUnauthorized, Reason: ReasonNoToken}
	}

	userID, err := parseToken(v.secret, token)
	if err != nil {
		v.logger.Debug().Err(err).Msg("Session token rejected")
		return Decision{Outcome: OutcomeUnauthorized, Reason: ReasonInvalidToken}
	}

	u, err := v.users.FindByID(ctx, userID)
	if err != nil {
		// Token was valid, so a missing user means state changed after
		// issuance (e.g. account deleted). Surface as a server error.
		if !errors.Is(err, user.ErrNotFound) {
			v.logger.Error().Err(err).Str("user_id", userID).Msg("User lookup failed")
		}
		return Decision{Outcome: OutcomeServerError, Reason: "user lookup failed"}
	}

	if u.IsAdmin {
		return Decision{Outcome: OutcomeAuthorized, User: u}
	}

	if u.IsMaintenance || (v.maintenance != nil && v.maintenance.Enabled()) {
		return Decision{Outcome: OutcomeUnauthorized, Reason: ReasonMaintenance}
	}

	return Decision{Outcome: OutcomeAuthorized, User: u}
}
