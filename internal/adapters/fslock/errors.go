package fslock

import "errors"

// Sentinel kinds for lock acquisition errors.
var (
	// ErrUnavailable reports that a lock could not be acquired within the
	// wait bound. Transient; the caller may retry the whole operation.
	ErrUnavailable = errors.New("lock unavailable")
)
