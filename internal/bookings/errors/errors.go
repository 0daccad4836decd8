package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrRoomLocked means another reservation for the same room currently
	// holds the advisory lock.
	ErrRoomLocked = errors.New("room is locked by another reservation in progress")

	// ErrConcurrentConflict marks a booking that was written and then lost
	// the post-write re-validation to a concurrently created sibling. It is
	// internal; callers see it as a date-range-unavailable rejection.
	ErrConcurrentConflict = errors.New("booking lost a concurrent conflict resolution")
)
