// Package repository maps events, players and scans onto files under a
// single root directory and performs whole-file record I/O.
package repository

import (
	"fmt"
	"path/filepath"
)

// Kind identifies a stored resource class. The byte value doubles as the
// filename prefix, so listings can filter by prefix alone.
type Kind byte

const (
	KindEvent   Kind = 'e'
	KindPlayer  Kind = 'p'
	KindScan    Kind = 's'
	KindPayload Kind = 'd'
)

// Filename prefixes for lock files and collection masters.
const (
	lockPrefix   = "l"
	masterPrefix = "m"
)

// String returns the kind name used as a metrics label.
func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "event"
	case KindPlayer:
		return "player"
	case KindScan:
		return "scan"
	case KindPayload:
		return "payload"
	}
	return "unknown"
}

// Resolver derives data and lock paths under a single root directory.
//
// Event resources live directly under the root; player, scan and payload
// resources live inside their event's directory. Passing the wrong scope is
// a programming error, not a runtime condition, and panics: a player or
// scan path without an event would silently escape its namespace.
type Resolver struct {
	root string
}

// NewResolver creates a Resolver rooted at the given directory.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the root directory.
func (r *Resolver) Root() string { return r.root }

func (r *Resolver) checkScope(kind Kind, event string) {
	if kind == KindEvent {
		if event != "" {
			panic(fmt.Sprintf("repository: event-kind path must not be event-scoped (event=%q)", event))
		}
		return
	}
	if event == "" {
		panic(fmt.Sprintf("repository: %s path requires an event scope", kind))
	}
}

func (r *Resolver) join(event, name string) string {
	if event == "" {
		return filepath.Join(r.root, name)
	}
	return filepath.Join(r.root, string(KindEvent)+event, name)
}

// DataPath returns the data file (or, for events, directory) path for an item.
func (r *Resolver) DataPath(kind Kind, id, event string) string {
	r.checkScope(kind, event)
	return r.join(event, string(kind)+id)
}

// LockPath returns the lock file path for an item. The lock file is always
// distinct from the item's data path.
func (r *Resolver) LockPath(kind Kind, id, event string) string {
	r.checkScope(kind, event)
	return r.join(event, lockPrefix+string(kind)+id)
}

// MasterLockPath returns the lock file path for a collection's master
// pseudo-resource. The events master is unscoped; the players and scans
// masters live inside their event's directory.
func (r *Resolver) MasterLockPath(kind Kind, event string) string {
	r.checkScope(kind, event)
	return r.join(event, lockPrefix+masterPrefix+string(kind))
}

// EventDir returns the directory owning all of an event's resources.
func (r *Resolver) EventDir(name string) string {
	return r.DataPath(KindEvent, name, "")
}
