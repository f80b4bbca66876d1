package repository

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist or a
	// predicate lock matched nothing.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an insert or update violates a
	// uniqueness constraint (driver phone, idempotency key, trip ride_id).
	ErrDuplicate = errors.New("duplicate entity")
)
