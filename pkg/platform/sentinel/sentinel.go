// Package sentinel holds the storage facts stores report. Services match
// them with errors.Is and translate them into domain errors; they never
// reach HTTP callers as-is.
package sentinel

import "errors"

var (
	// ErrNotFound means no row exists for the key, or none the caller owns.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState means the write conflicts with what is stored, such as
	// a duplicate id or email.
	ErrInvalidState = errors.New("invalid state")
)
