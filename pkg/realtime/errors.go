package realtime

import "errors"

var (
	ErrClosed        = errors.New("realtime: connection closed")
	ErrUnknownHub    = errors.New("realtime: unknown hub")
	ErrUnknownMethod = errors.New("realtime: unknown method")
	ErrBadMessage    = errors.New("realtime: malformed message")
	ErrSlowClient    = errors.New("realtime: send buffer full")
)
