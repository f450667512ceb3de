package testutil

import (
	"context"
	"sync"

	"github.com/pressgate/blog-gateway/pkg/user"
)

// UserStore is a mutex-guarded in-memory user store implementing
// user.Finder and user.DeviceWriter.
type UserStore struct {
	mu    sync.Mutex
	users map[string]*user.User

	// FindErr, when set, is returned by every FindByID call. Simulates
	// lookup failures behind a valid token.
	FindErr error
}

// NewUserStore creates a store seeded with the given users.
func NewUserStore(users ...*user.User) *UserStore {
	s := &UserStore{users: make(map[string]*user.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

// Put inserts or replaces a user.
func (s *UserStore) Put(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
}

// FindByID returns a copy of the stored user.
func (s *UserStore) FindByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	cp := *u
	cp.Devices = append([]user.DeviceRecord(nil), u.Devices...)
	return &cp, nil
}

// AppendDevice applies the bounded push under the store mutex, matching
// the atomicity the production store provides.
func (s *UserStore) AppendDevice(_ context.Context, userID string, rec user.DeviceRecord, max int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	if max > 0 {
		for len(u.Devices) >= max {
			u.Devices = u.Devices[1:]
		}
	}
	u.Devices = append(u.Devices, rec)
	return nil
}

// Devices returns the stored device list for assertions.
func (s *UserStore) Devices(userID string) []user.DeviceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	return append([]user.DeviceRecord(nil), u.Devices...)
}
