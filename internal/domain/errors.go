package domain

import "errors"

var (
	// ErrDuplicate signals a create for a URL that already has a record.
	ErrDuplicate = errors.New("article already exists")

	// ErrNotFound signals a lookup for an unknown URL.
	ErrNotFound = errors.New("article not found")

	// ErrConflict signals a compare-and-set update that lost to a
	// concurrent writer. Not a failure: the loser skips silently.
	ErrConflict = errors.New("status conflict")

	// ErrInvalidTransition signals a status edge outside the transition
	// table. Hitting it means a lifecycle invariant was violated.
	ErrInvalidTransition = errors.New("invalid status transition")
)
