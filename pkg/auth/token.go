// Package auth gates protected routes: it validates signed session
// tokens, loads the caller, and applies authorization and maintenance
// policy. It never mutates state; device tracking is a separate
// component invoked by the handlers that need it.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signingMethod is the only accepted token algorithm.
var signingMethod = jwt.SigningMethodHS256

// sessionClaims is the claim set carried by a session token.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// NewToken mints a signed session token for the given user. Tokens are
// issued at login time; the middleware only ever consumes them.
func NewToken(secret []byte, userID string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing secret is required")
	}
	if userID == "" {
		return "", errors.New("user ID is required")
	}

	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// parseToken validates signature and expiry and returns the user ID.
func parseToken(secret []byte, token string) (string, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{signingMethod.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("session token has no subject")
	}
	return claims.Subject, nil
}
