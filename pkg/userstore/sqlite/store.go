// Package sqlite implements the user store over SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/pressgate/blog-gateway/pkg/user"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             TEXT PRIMARY KEY,
	is_admin       INTEGER NOT NULL DEFAULT 0,
	is_maintenance INTEGER NOT NULL DEFAULT 0,
	devices        TEXT    NOT NULL DEFAULT '[]'
);
`

// Store implements user.Finder and user.DeviceWriter over a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens the user store and applies the schema.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a user with an empty device history.
func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	if u.ID == user.GuestID {
		return fmt.Errorf("create user %s: %w", u.ID, user.ErrReservedID)
	}

	devices, err := json.Marshal(u.Devices)
	if err != nil {
		return fmt.Errorf("marshal devices: %w", err)
	}
	if u.Devices == nil {
		devices = []byte("[]")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, is_admin, is_maintenance, devices) VALUES (?, ?, ?, ?)`,
		u.ID, boolToInt(u.IsAdmin), boolToInt(u.IsMaintenance), string(devices))
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// FindByID loads the pipeline's view of a user.
func (s *Store) FindByID(ctx context.Context, id string) (*user.User, error) {
	var (
		u             user.User
		isAdmin       int
		isMaintenance int
		devices       string
	)

	row := s.db.QueryRowContext(ctx,
		`SELECT id, is_admin, is_maintenance, devices FROM users WHERE id = ?`, id)
	if err := row.Scan(&u.ID, &isAdmin, &isMaintenance, &devices); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}

	u.IsAdmin = isAdmin != 0
	u.IsMaintenance = isMaintenance != 0
	if err := json.Unmarshal([]byte(devices), &u.Devices); err != nil {
		return nil, fmt.Errorf("decode devices for user %s: %w", id, err)
	}
	return &u, nil
}

// AppendDevice appends rec to the user's device history, evicting the
// oldest entries so the stored list never exceeds max.
//
// The read-trim-append-write runs inside one transaction; SQLite's
// single-writer lock serializes concurrent appends for the same user,
// so the cap holds even under simultaneous logins.
func (s *Store) AppendDevice(ctx context.Context, userID string, rec user.DeviceRecord, max int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var raw string
	row := tx.QueryRowContext(ctx, `SELECT devices FROM users WHERE id = ?`, userID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.ErrNotFound
		}
		return fmt.Errorf("select devices for user %s: %w", userID, err)
	}

	var devices []user.DeviceRecord
	if err := json.Unmarshal([]byte(raw), &devices); err != nil {
		return fmt.Errorf("decode devices for user %s: %w", userID, err)
	}

	// FIFO eviction: drop from the front until one slot is free.
	if max > 0 {
		for len(devices) >= max {
			devices = devices[1:]
		}
	}
	devices = append(devices, rec)

	updated, err := json.Marshal(devices)
	if err != nil {
		return fmt.Errorf("marshal devices: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET devices = ? WHERE id = ?`, string(updated), userID); err != nil {
		return fmt.Errorf("update devices for user %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit device append: %w", err)
	}
	return nil
}

// SetMaintenance sets the per-user maintenance flag.
func (s *Store) SetMaintenance(ctx context.Context, userID string, on bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_maintenance = ? WHERE id = ?`, boolToInt(on), userID)
	if err != nil {
		return fmt.Errorf("update maintenance for user %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

// SetMaintenanceAll bulk-updates the per-user maintenance flag for every
// non-admin user. Admins keep access regardless of the flag, but they
// are excluded anyway to keep the stored records honest.
func (s *Store) SetMaintenanceAll(ctx context.Context, on bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET is_maintenance = ? WHERE is_admin = 0`, boolToInt(on))
	if err != nil {
		return fmt.Errorf("bulk update maintenance: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
