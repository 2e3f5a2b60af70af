package store

import "errors"

var (
	ErrNotFound  = errors.New("store: record not found")
	ErrDuplicate = errors.New("store: duplicate record")
	ErrProvider  = errors.New("store: unknown provider")
	ErrClosed    = errors.New("store: closed")
)
