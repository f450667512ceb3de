// Package user defines the partial user view the middleware pipeline
// operates on, together with the narrow store interfaces it depends on.
// Full user management (registration, profiles, email) lives elsewhere.
package user

import (
	"context"
	"errors"
	"time"
)

// MaxDevices is the capacity of a user's device session history.
// When exceeded, the oldest record is evicted (FIFO).
const MaxDevices = 2

// GuestID is the caller identity the pipeline assigns to
// unauthenticated requests. It is reserved: a stored user under this ID
// would share cached responses with guests.
const GuestID = "guest"

// ErrNotFound indicates the user does not exist.
var ErrNotFound = errors.New("user not found")

// ErrReservedID indicates an attempt to store a user under an ID the
// pipeline reserves.
var ErrReservedID = errors.New("user ID is reserved")

// DeviceRecord describes one login device.
type DeviceRecord struct {
	DeviceType string    `json:"device_type"`
	OS         string    `json:"os"`
	Browser    string    `json:"browser"`
	IP         string    `json:"ip"`
	LoginTime  time.Time `json:"login_time"`
}

// User is the slice of the user entity the pipeline reads.
type User struct {
	ID            string         `json:"id"`
	IsAdmin       bool           `json:"is_admin"`
	IsMaintenance bool           `json:"is_maintenance"`
	Devices       []DeviceRecord `json:"devices"`
}

// Finder looks up users by ID.
type Finder interface {
	FindByID(ctx context.Context, id string) (*User, error)
}

// DeviceWriter appends a device record to a user's bounded history.
//
// AppendDevice must be atomic with respect to concurrent calls for the
// same user: after any call returns, the stored list holds at most max
// records, the most recent ones by call order.
type DeviceWriter interface {
	AppendDevice(ctx context.Context, userID string, rec DeviceRecord, max int) error
}
