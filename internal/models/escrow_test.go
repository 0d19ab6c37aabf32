package models

import "testing"

func TestIsValidTransition(t *testing.T) {
	tests := []struct {
		from     string
		to       string
		expected bool
	}{
		// Happy path
		{EscrowStatusCreated, EscrowStatusPaid, true},
		{EscrowStatusPaid, EscrowStatusConfirmed, true},
		{EscrowStatusConfirmed, EscrowStatusReleased, true},

		// Admin reject returns a paid escrow to created
		{EscrowStatusPaid, EscrowStatusCreated, true},

		// Cancellation from any non-terminal status
		{EscrowStatusCreated, EscrowStatusCancelled, true},
		{EscrowStatusPaid, EscrowStatusCancelled, true},
		{EscrowStatusConfirmed, EscrowStatusCancelled, true},

		// No skipping predecessors
		{EscrowStatusCreated, EscrowStatusConfirmed, false},
		{EscrowStatusCreated, EscrowStatusReleased, false},
		{EscrowStatusPaid, EscrowStatusReleased, false},

		// No moving backward (except the reject edge)
		{EscrowStatusConfirmed, EscrowStatusPaid, false},
		{EscrowStatusConfirmed, EscrowStatusCreated, false},
		{EscrowStatusReleased, EscrowStatusConfirmed, false},

		// Terminal statuses are immutable
		{EscrowStatusReleased, EscrowStatusCancelled, false},
		{EscrowStatusCancelled, EscrowStatusCreated, false},
		{EscrowStatusCancelled, EscrowStatusReleased, false},

		// Self-loops are not transitions
		{EscrowStatusPaid, EscrowStatusPaid, false},
		{EscrowStatusCreated, EscrowStatusCreated, false},

		// Unknown statuses
		{"nonexistent", EscrowStatusPaid, false},
		{EscrowStatusCreated, "nonexistent", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			result := IsValidTransition(tt.from, tt.to)
			if result != tt.expected {
				t.Errorf("IsValidTransition(%q, %q) = %v, want %v", tt.from, tt.to, result, tt.expected)
			}
		})
	}
}

func TestAllStatusesHaveTransitionEntry(t *testing.T) {
	allStatuses := []string{
		EscrowStatusCreated, EscrowStatusPaid, EscrowStatusConfirmed,
		EscrowStatusReleased, EscrowStatusCancelled,
	}

	for _, status := range allStatuses {
		if _, ok := ValidEscrowTransitions[status]; !ok {
			t.Errorf("status %q missing from ValidEscrowTransitions map", status)
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	terminal := []string{EscrowStatusReleased, EscrowStatusCancelled}
	for _, status := range terminal {
		if !IsTerminalStatus(status) {
			t.Errorf("IsTerminalStatus(%q) = false, want true", status)
		}
		transitions := ValidEscrowTransitions[status]
		if len(transitions) != 0 {
			t.Errorf("terminal status %q should have no transitions, got %v", status, transitions)
		}
	}
}

func TestIsAtOrPast(t *testing.T) {
	tests := []struct {
		status   string
		target   string
		expected bool
	}{
		{EscrowStatusPaid, EscrowStatusPaid, true},
		{EscrowStatusConfirmed, EscrowStatusPaid, true},
		{EscrowStatusReleased, EscrowStatusConfirmed, true},
		{EscrowStatusCreated, EscrowStatusPaid, false},
		{EscrowStatusPaid, EscrowStatusConfirmed, false},
		{EscrowStatusCancelled, EscrowStatusPaid, false},
	}

	for _, tt := range tests {
		if got := IsAtOrPast(tt.status, tt.target); got != tt.expected {
			t.Errorf("IsAtOrPast(%q, %q) = %v, want %v", tt.status, tt.target, got, tt.expected)
		}
	}
}
