// Package sentinel holds the facts session stores report about persisted
// state. Stores return them, possibly wrapped, and the onboarding service
// maps them onto domain errors. Input problems never use these; they are
// domain errors from the start.
package sentinel

import "errors"

var (
	// ErrNotFound means no session is stored under the id, or it expired.
	ErrNotFound = errors.New("not found")
	// ErrConflict means the session already exists or changed underneath
	// an optimistic write.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable means the backing store could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
