package repos

import "errors"

var (
	// ErrStorageUnavailable wraps any backing-store failure that is not a
	// constraint violation: unreachable database, timeout, bad connection.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrConstraintViolation is returned when an insert trips a schema
	// constraint (the one-completion-per-concern schema variant).
	ErrConstraintViolation = errors.New("constraint violation")
)
