// Package model contains domain models passed between layers.
package model

// Event groups one occasion's players and scans under a single namespace.
// Creating the event is a prerequisite for every player or scan operation
// scoped to it; deleting it destroys everything it owns.
type Event struct {
	Name string
}

// Player is a participant identified by a caller-supplied id. ScanID holds
// the id of the scan the player currently owns; empty means none. ScanID is
// only ever mutated by the mark transition.
type Player struct {
	ID     string
	Name   string
	ScanID string
}

// Scan is a captured payload identified by a server-generated id. PlayerID
// is the owning player, empty meaning unmarked, and is only ever mutated by
// the mark transition. Data carries the raw payload and is populated only on
// single-scan reads; listings leave it nil.
type Scan struct {
	ID       string
	PlayerID string
	Data     []byte
}

// Marked reports whether the scan is currently assigned to a player.
func (s Scan) Marked() bool { return s.PlayerID != "" }

// HoldsScan reports whether the player currently owns a scan.
func (p Player) HoldsScan() bool { return p.ScanID != "" }
