package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pressgate/blog-gateway/internal/testutil"
	"github.com/pressgate/blog-gateway/pkg/auth"
	"github.com/pressgate/blog-gateway/pkg/user"
)

var secret = []byte("verifier-test-secret")

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.NewToken(secret, userID, time.Hour)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	return token
}

func TestVerify_NoToken(t *testing.T) {
	v := auth.NewVerifier(secret, testutil.NewUserStore(), nil)

	d := v.Verify(context.Background(), "")
	if d.Outcome != auth.OutcomeUnauthorized {
		t.Fatalf("Outcome = %v, want Unauthorized", d.Outcome)
	}
	if d.Reason != auth.ReasonNoToken {
		t.Errorf("Reason = %q, want %q", d.Reason, auth.ReasonNoToken)
	}
}

func TestVerify_InvalidToken(t *testing.T) {
	v := auth.NewVerifier(secret, testutil.NewUserStore(), nil)

	for _, token := range []string{"garbage", mintExpired(t)} {
		d := v.Verify(context.Background(), token)
		if d.Outcome != auth.OutcomeUnauthorized {
			t.Fatalf("Outcome = %v, want Unauthorized", d.Outcome)
		}
		if d.Reason != auth.ReasonInvalidToken {
			t.Errorf("Reason = %q, want %q", d.Reason, auth.ReasonInvalidToken)
		}
	}
}

func mintExpired(t *testing.T) string {
	t.Helper()
	token, err := auth.NewToken(secret, "user-1", -time.Minute)
	if err != nil {
		t.Fatalf("NewToken failed: %v", err)
	}
	return token
}

func TestVerify_UserDeleted(t *testing.T) {
	// Valid token, but the user vanished after issuance.
	v := auth.NewVerifier(secret, testutil.NewUserStore(), nil)

	d := v.Verify(context.Background(), mintToken(t, "ghost"))
	if d.Outcome != auth.OutcomeServerError {
		t.Errorf("Outcome = %v, want ServerError", d.Outcome)
	}
}

func TestVerify_LookupError(t *testing.T) {
	store := testutil.NewUserStore(&user.User{ID: "user-1"})
	store.FindErr = errors.New("db down")
	v := auth.NewVerifier(secret, store, nil)

	d := v.Verify(context.Background(), mintToken(t, "user-1"))
	if d.Outcome != auth.OutcomeServerError {
		t.Errorf("Outcome = %v, want ServerError", d.Outcome)
	}
}

func TestVerify_Authorized(t *testing.T) {
	store := testutil.NewUserStore(&user.User{ID: "user-1"})
	v := auth.NewVerifier(secret, store, nil)

	d := v.Verify(context.Background(), mintToken(t, "user-1"))
	if d.Outcome != auth.OutcomeAuthorized {
		t.Fatalf("Outcome = %v, want Authorized", d.Outcome)
	}
	if d.User == nil || d.User.ID != "user-1" {
		t.Errorf("User = %+v, want user-1", d.User)
	}
}

func TestVerify_MaintenanceGating(t *testing.T) {
	tests := []struct {
		name        string
		u           *user.User
		globalOn    bool
		wantOutcome auth.Outcome
		wantReason  string
	}{
		{
			name:        "per-user flag locks out non-admin",
			u:           &user.User{ID: "u", IsMaintenance: true},
			wantOutcome: auth.OutcomeUnauthorized,
			wantReason:  auth.ReasonMaintenance,
		},
		{
			name:        "global switch locks out non-admin",
			u:           &user.User{ID: "u"},
			globalOn:    true,
			wantOutcome: auth.OutcomeUnauthorized,
			wantReason:  auth.ReasonMaintenance,
		},
		{
			name:        "admin bypasses per-user flag",
			u:           &user.User{ID: "u", IsAdmin: true, IsMaintenance: true},
			wantOutcome: auth.OutcomeAuthorized,
		},
		{
			name:        "admin bypasses global switch",
			u:           &user.User{ID: "u", IsAdmin: true},
			globalOn:    true,
			wantOutcome: auth.OutcomeAuthorized,
		},
		{
			name:        "no maintenance, no lockout",
			u:           &user.User{ID: "u"},
			wantOutcome: auth.OutcomeAuthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maintenance := &auth.Maintenance{}
			if tt.globalOn {
				maintenance.Enable()
			}
			v := auth.NewVerifier(secret, testutil.NewUserStore(tt.u), maintenance)

			d := v.Verify(context.Background(), mintToken(t, tt.u.ID))
			if d.Outcome != tt.wantOutcome {
				t.Fatalf("Outcome = %v, want %v", d.Outcome, tt.wantOutcome)
			}
			if tt.wantReason != "" && d.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", d.Reason, tt.wantReason)
			}
		})
	}
}

func TestMaintenance_Lifecycle(t *testing.T) {
	m := &auth.Maintenance{}
	if m.Enabled() {
		t.Error("new switch should be off")
	}
	m.Enable()
	if !m.Enabled() {
		t.Error("switch should be on after Enable")
	}
	m.Disable()
	if m.Enabled() {
		t.Error("switch should be off after Disable")
	}
}
