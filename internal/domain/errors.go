package domain

import "errors"

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnknownSourceKind is returned when no adapter is registered for a kind.
	ErrUnknownSourceKind = errors.New("unknown source kind")
	// ErrInvalidTransition is returned when a status change would go backwards.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrMisconfigured marks a component that lacks required settings.
	ErrMisconfigured = errors.New("misconfigured")
	// ErrUnknownCategory is returned for a stack category with no current tool.
	ErrUnknownCategory = errors.New("unknown stack category")
)
