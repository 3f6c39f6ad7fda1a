package domain

import "errors"

// Error classes shared by every layer. Package-level sentinels wrap one of these,
// so callers may match either the precise error or its class.
var (
	// ErrInvalidInterval malformed interval (start >= end)
	ErrInvalidInterval = errors.New("domain: invalid interval")

	// ErrNotFound referenced salon, master, service, client or appointment does not exist
	ErrNotFound = errors.New("domain: not found")

	// ErrInvalidStateTransition appointment status change not allowed by the state machine
	ErrInvalidStateTransition = errors.New("domain: invalid state transition")

	// ErrBookingConflict occupancy changed between slot generation and commit
	ErrBookingConflict = errors.New("domain: booking conflict")

	// ErrPolicyViolation slot violates min-advance, max-future or working-hours constraints
	ErrPolicyViolation = errors.New("domain: booking policy violation")
)
