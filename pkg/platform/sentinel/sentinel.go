// Package sentinel holds the storage facts case stores report. Services turn
// them into domain errors; input validation never uses them.
package sentinel

import "errors"

var (
	// ErrNotFound means no case, viewer or scope matched the lookup.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a concurrent writer changed the case first.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
