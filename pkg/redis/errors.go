package redis

import "errors"

// Errors returned by Connect and Healthcheck.
var (
	ErrEmptyConnectionURL = errors.New("redis: cache url is not configured")
	ErrFailedToParseURL   = errors.New("redis: invalid cache url")
	ErrConnectionFailed   = errors.New("redis: server unreachable")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
)
