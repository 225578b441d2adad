package app

import "errors"

// Sentinel kinds for engine errors. Callers classify with errors.Is; any
// other failure is unclassified and must not be retried.
var (
	// ErrAlreadyExists reports creation of a collection item that exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound reports a reference to a nonexistent event, player or scan.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable reports a lock-acquisition timeout. Transient; the
	// caller may retry the whole operation.
	ErrUnavailable = errors.New("unavailable")
)
