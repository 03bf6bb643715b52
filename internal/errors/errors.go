package errors

import (
	"errors"
)

// Common error types
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnknownEvent     = errors.New("unknown event")
	ErrSessionClosed    = errors.New("session closed")
)
