package record

import "errors"

// Sentinel kinds for record codec errors.
var (
	ErrCorrupt            = errors.New("corrupt record")
	ErrUnsupportedVersion = errors.New("unsupported record version")
)
