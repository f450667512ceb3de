package devices

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/pressgate/blog-gateway/pkg/auth"
	"github.com/pressgate/blog-gateway/pkg/logging"
	"github.com/pressgate/blog-gateway/pkg/user"
)

// Tracker records the calling device against the user's session history.
//
// The bounded push itself is delegated to the store, which must apply it
// atomically: two simultaneous logins for the same user may not race the
// cap (len(devices) <= user.MaxDevices holds after every call).
type Tracker struct {
	store  user.DeviceWriter
	logger zerolog.Logger
	now    func() time.Time
}

// NewTracker creates a Tracker over the given store.
func NewTracker(store user.DeviceWriter) *Tracker {
	if store == nil {
		panic("device store cannot be nil")
	}
	return &Tracker{
		store:  store,
		logger: logging.NewLogger("device-tracker"),
		now:    time.Now,
	}
}

// Track appends a device record for the user, evicting the oldest entry
// (FIFO) when the capacity is reached.
func (t *Tracker) Track(ctx context.Context, userID string, fp Fingerprint) error {
	rec := user.DeviceRecord{
		DeviceType: fp.DeviceType,
		OS:         fp.OS,
		Browser:    fp.Browser,
		IP:         fp.IP,
		LoginTime:  t.now().UTC(),
	}

	if err := t.store.AppendDevice(ctx, userID, rec, user.MaxDevices); err != nil {
		return fmt.Errorf("append device for user %s: %w", userID, err)
	}

	t.logger.Debug().
		Str("user_id", userID).
		Str("device_type", rec.DeviceType).
		Str("os", rec.OS).
		Str("browser", rec.Browser).
		Msg("Device session recorded")
	return nil
}

// Middleware records the calling device as a side effect of an
// authenticated mutation request, then invokes next. Read-only methods
// pass through untracked. Tracking failures are logged, not surfaced:
// losing a history entry must not fail the mutation.
func (t *Tracker) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		if u := auth.UserFromContext(r.Context()); u != nil {
			if err := t.Track(r.Context(), u.ID, FromRequest(r)); err != nil {
				t.logger.Warn().Err(err).Str("user_id", u.ID).Msg("Device tracking failed")
			}
		}
		next.ServeHTTP(w, r)
	})
}
