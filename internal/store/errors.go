package store

import "errors"

var (
	// ErrNotOpen is returned by every query made before Init succeeds.
	ErrNotOpen = errors.New("store: database not initialized")
	// ErrNotFound is returned when a keyed row does not exist.
	ErrNotFound = errors.New("store: not found")
)
