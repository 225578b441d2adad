// Package fslock provides scoped shared/exclusive locking of named
// resources for coordination across independent OS processes.
//
// The production Source is backed by flock(2) lock files, so locks are
// released by the kernel if the holding process disappears. A memory-backed
// Source implements the same contract for unit tests of locking discipline.
package fslock

import "context"

// Mode selects shared (read) or exclusive (write) locking.
type Mode int

const (
	Shared Mode = iota
	Exclusive
)

// String returns the lower-case mode name used as a metrics label.
func (m Mode) String() string {
	if m == Shared {
		return "shared"
	}
	return "exclusive"
}

// Release frees a held lock. It must be called on every exit path of the
// scope the lock protects; calling it more than once is harmless.
type Release func()

// Source grants scoped acquisition of named locks.
type Source interface {
	// Acquire takes the named lock in the given mode, waiting up to the
	// source's bounded wait. On timeout it returns an error matching
	// ErrUnavailable and leaves nothing held.
	Acquire(ctx context.Context, name string, mode Mode) (Release, error)
}
