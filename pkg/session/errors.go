package session

import "errors"

var (
	// ErrNotConfigured is returned when the session middleware is not in
	// the pipeline.
	ErrNotConfigured = errors.New("session: not configured")
	ErrNotFound      = errors.New("session: not found")
	ErrTypeMismatch  = errors.New("session: value has a different type")
)
