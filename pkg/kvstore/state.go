package kvstore

// ConnectionState describes the client's connection lifecycle.
//
// Legal transitions:
//
//	Disconnected --Connect--> Connecting --success--> Ready
//	Connecting --failure, retries < ceiling--> Connecting (after backoff)
//	Connecting --failure, retries >= ceiling--> Failed
//	Ready --transport error--> Reconnecting --success--> Ready
//	Reconnecting --exhausted--> Failed
//
// Failed is terminal for that connection attempt chain. It never crashes
// the process: every operation simply no-ops and the application runs
// uncached.
type ConnectionState int

const (
	// StateDisconnected is the initial state before Connect is called.
	StateDisconnected ConnectionState = iota

	// StateConnecting means the initial connect/backoff loop is running.
	StateConnecting

	// StateReady means operations are served against the store.
	StateReady

	// StateReconnecting means a transport error interrupted a Ready
	// connection and the backoff loop is running again.
	StateReconnecting

	// StateFailed means the retry ceiling was exhausted. All operations
	// no-op until a new client is constructed.
	StateFailed
)

// String returns the state name for logs and metrics labels.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateReconnecting:
		return "reconnecting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// canTransition reports whether moving from s to next is legal.
func (s ConnectionState) canTransition(next ConnectionState) bool {
	switch s {
	case StateDisconnected:
		return next == StateConnecting
	case StateConnecting:
		return next == StateConnecting || next == StateReady || next == StateFailed
	case StateReady:
		return next == StateReconnecting
	case StateReconnecting:
		return next == StateReconnecting || next == StateReady || next == StateFailed
	case StateFailed:
		return false
	default:
		return false
	}
}
