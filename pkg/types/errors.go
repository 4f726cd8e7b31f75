package types

import "errors"

var (
	// Acquire errors
	ErrConflict    = errors.New("lock is held with an incompatible kind")
	ErrEmptyName   = errors.New("lock name must not be empty")
	ErrInvalidKind = errors.New("invalid lock kind")

	// Release / renew errors
	ErrNotFound = errors.New("no matching holder for lock")
)
