package devices_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pressgate/blog-gateway/internal/testutil"
	"github.com/pressgate/blog-gateway/pkg/auth"
	"github.com/pressgate/blog-gateway/pkg/devices"
	"github.com/pressgate/blog-gateway/pkg/user"
)

func TestTracker_Track(t *testing.T) {
	store := testutil.NewUserStore(&user.User{ID: "user-1"})
	tracker := devices.NewTracker(store)

	fp := devices.Fingerprint{DeviceType: "desktop", OS: "Linux", Browser: "Firefox", IP: "203.0.113.7"}
	if err := tracker.Track(context.Background(), "user-1", fp); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	recs := store.Devices("user-1")
	if len(recs) != 1 {
		t.Fatalf("devices length = %d, want 1", len(recs))
	}
	if recs[0].Browser != "Firefox" || recs[0].IP != "203.0.113.7" {
		t.Errorf("record = %+v", recs[0])
	}
	if recs[0].LoginTime.IsZero() {
		t.Error("LoginTime not set")
	}
}

func TestTracker_CapInvariant(t *testing.T) {
	store := testutil.NewUserStore(&user.User{ID: "user-1"})
	tracker := devices.NewTracker(store)
	ctx := context.Background()

	// Any sequence of calls keeps the list at or under capacity, and
	// the retained entries are the most recent ones by call order.
	for i := 0; i < 5; i++ {
		fp := devices.Fingerprint{DeviceType: "desktop", IP: fmt.Sprintf("10.0.0.%d", i)}
		if err := tracker.Track(ctx, "user-1", fp); err != nil {
			t.Fatalf("Track %d failed: %v", i, err)
		}

		recs := store.Devices("user-1")
		if len(recs) > user.MaxDevices {
			t.Fatalf("after call %d: devices length = %d, exceeds cap %d", i, len(recs), user.MaxDevices)
		}
	}

	recs := store.Devices("user-1")
	if len(recs) != 2 {
		t.Fatalf("devices length = %d, want 2", len(recs))
	}
	if recs[0].IP != "10.0.0.3" || recs[1].IP != "10.0.0.4" {
		t.Errorf("retained IPs = %s, %s; want the two most recent (10.0.0.3, 10.0.0.4)",
			recs[0].IP, recs[1].IP)
	}
}

func TestTracker_UnknownUser(t *testing.T) {
	tracker := devices.NewTracker(testutil.NewUserStore())

	err := tracker.Track(context.Background(), "ghost", devices.Fingerprint{})
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestTracker_Middleware(t *testing.T) {
	store := testutil.NewUserStore(&user.User{ID: "user-1"})
	tracker := devices.NewTracker(store)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := tracker.Middleware(next)

	// Reads pass through untracked.
	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req = req.WithContext(auth.WithUser(req.Context(), &user.User{ID: "user-1"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got := len(store.Devices("user-1")); got != 0 {
		t.Fatalf("devices after GET = %d, want 0", got)
	}

	// Authenticated mutation records the device.
	req = httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0")
	req = req.WithContext(auth.WithUser(req.Context(), &user.User{ID: "user-1"}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	recs := store.Devices("user-1")
	if len(recs) != 1 {
		t.Fatalf("devices after POST = %d, want 1", len(recs))
	}
	if recs[0].Browser != "Firefox" {
		t.Errorf("Browser = %q, want Firefox", recs[0].Browser)
	}

	// Unauthenticated mutation passes through untracked.
	req = httptest.NewRequest(http.MethodPost, "/api/posts", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got := len(store.Devices("user-1")); got != 1 {
		t.Errorf("devices after guest POST = %d, want 1", got)
	}
}
