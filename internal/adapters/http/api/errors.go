package api

import "errors"

// Sentinel kinds for API validation errors.
var (
	ErrMissingName     = errors.New("missing event name")
	ErrInvalidName     = errors.New("event name must not contain path separators")
	ErrMissingPlayerID = errors.New("missing player id")
	ErrMissingPayload  = errors.New("missing scan payload")
	ErrPayloadTooLarge = errors.New("scan payload too large")
)
