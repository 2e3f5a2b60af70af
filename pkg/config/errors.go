package config

import "errors"

var (
	// ErrFileNotFound is returned when a required configuration file does not exist.
	ErrFileNotFound = errors.New("config: file not found")

	// ErrParse is returned when a configuration file cannot be decoded.
	ErrParse = errors.New("config: failed to parse source")

	// ErrBind is returned when merged values cannot be bound into a struct.
	ErrBind = errors.New("config: failed to bind values")
)
