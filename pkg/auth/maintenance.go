package auth

import "sync/atomic"

// Maintenance is the process-wide maintenance switch.
//
// The user record also carries a per-user maintenance flag; the verifier
// honors both. The switch gives site-wide lockout an explicit lifecycle
// instead of requiring a bulk update of every user record.
type Maintenance struct {
	on atomic.Bool
}

// Enable turns maintenance mode on for all non-admin users.
func (m *Maintenance) Enable() { m.on.Store(true) }

// Disable turns maintenance mode off.
func (m *Maintenance) Disable() { m.on.Store(false) }

// Enabled reports whether maintenance mode is on.
func (m *Maintenance) Enabled() bool { return m.on.Load() }
