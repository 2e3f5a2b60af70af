package mvc

import "errors"

var (
	ErrInvalidTemplate   = errors.New("mvc: invalid route template")
	ErrDuplicateRoute    = errors.New("mvc: duplicate route name")
	ErrUnknownConstraint = errors.New("mvc: unknown route constraint")
	ErrUnknownRoute      = errors.New("mvc: unknown route")
	ErrMissingValue      = errors.New("mvc: missing route value")
)
