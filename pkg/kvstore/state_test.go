package kvstore

import (
	"testing"
)

func TestConnectionState_String(t *testing.T) {
	tests := []struct {
		state ConnectionState
		want  string
	}{
		{StateDisconnected, "disconnected"},
		{StateConnecting, "connecting"},
		{StateReady, "ready"},
		{StateReconnecting, "reconnecting"},
		{StateFailed, "failed"},
		{ConnectionState(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionState_Transitions(t *testing.T) {
	tests := []struct {
		name string
		from ConnectionState
		to   ConnectionState
		want bool
	}{
		{"disconnected to connecting", StateDisconnected, StateConnecting, true},
		{"disconnected to ready", StateDisconnected, StateReady, false},
		{"connecting to ready", StateConnecting, StateReady, true},
		{"connecting to failed", StateConnecting, StateFailed, true},
		{"connecting retry", StateConnecting, StateConnecting, true},
		{"ready to reconnecting", StateReady, StateReconnecting, true},
		{"ready to failed directly", StateReady, StateFailed, false},
		{"ready to connecting", StateReady, StateConnecting, false},
		{"reconnecting to ready", StateReconnecting, StateReady, true},
		{"reconnecting to failed", StateReconnecting, StateFailed, true},
		{"reconnecting retry", StateReconnecting, StateReconnecting, true},
		{"failed is terminal", StateFailed, StateConnecting, false},
		{"failed stays failed", StateFailed, StateReady, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.canTransition(tt.to); got != tt.want {
				t.Errorf("canTransition(%v -> %v) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}
