package core

import "errors"

// Control-flow signals raised by the assignment primitive. Callers searching
// for a placement swallow these and try the next candidate.
var (
	// ErrSlotConflict is returned when an assignment would double-book an
	// attendee within a time slot.
	ErrSlotConflict = errors.New("slot conflict")

	// ErrCapacityExceeded is returned when a session has no free seats.
	ErrCapacityExceeded = errors.New("session capacity exceeded")
)

// Usage errors. These indicate a programming mistake by the caller and are
// always propagated.
var (
	// ErrDuplicateEntity is returned when a time slot, topic or attendee
	// identity is added twice, or a topic lists the same time slot twice.
	ErrDuplicateEntity = errors.New("duplicate entity")

	// ErrUnknownReference is returned for ids or names that do not resolve.
	ErrUnknownReference = errors.New("unknown reference")

	// ErrInvalidRequest is returned when an operation does not apply to the
	// current state, e.g. unassigning a session that is not assigned.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrImmutableViolation is returned when an immutable assignment would be
	// removed without force.
	ErrImmutableViolation = errors.New("immutable assignment")

	// ErrCheckpointMismatch is returned when commit or rollback names a
	// checkpoint other than the most recent one.
	ErrCheckpointMismatch = errors.New("checkpoint mismatch")
)

// ErrScheduleFailure is returned when the fill phase cannot make progress.
var ErrScheduleFailure = errors.New("could not assign all attendees in fill phase")

// IsControlFlow reports whether err is one of the signals a placement search
// is expected to swallow.
func IsControlFlow(err error) bool {
	return errors.Is(err, ErrSlotConflict) || errors.Is(err, ErrCapacityExceeded)
}

// ErrInvariantViolation is returned by consistency checks when the entity
// graph breaks one of the scheduling invariants.
var ErrInvariantViolation = errors.New("invariant violation")
