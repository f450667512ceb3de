package kvstore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StateTransitions tracks connection state machine transitions.
	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_kvstore_state_transitions_total",
			Help: "Total key-value store connection state transitions",
		},
		[]string{"from", "to"},
	)

	// ConnectRetries tracks connect/reconnect attempts that failed.
	ConnectRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_kvstore_connect_retries_total",
			Help: "Total failed connection attempts to the key-value store",
		},
	)

	// OpErrors tracks swallowed transport errors by operation.
	OpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_kvstore_op_errors_total",
			Help: "Total key-value store operation errors (swallowed, fail-open)",
		},
		[]string{"operation"}, // "get", "set", "delete", "delete_pattern", "flush"
	)

	// OpSkipped tracks operations short-circuited because the client
	// was not in the Ready state.
	OpSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_kvstore_op_skipped_total",
			Help: "Total key-value store operations skipped while not connected",
		},
		[]string{"operation"},
	)
)
