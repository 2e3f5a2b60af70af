package internal

import (
	"errors"
	"net/http"
)

// HTTPError is an error carrying the status code to respond with.
type HTTPError struct {
	// Err is the cause. It is logged, never shown to users.
	Err error

	Message   string
	Detail    string
	RequestID string
	Code      int
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.Code)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

func (e *HTTPError) StatusText() string { return http.StatusText(e.Code) }

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// NewHTTPError creates an HTTPError. An empty message falls back to the
// status text.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// IsHTTPError reports whether err wraps an HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError returns the HTTPError wrapped by err, or nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// StatusCode returns the status code for err: the HTTPError code when one
// is wrapped, 500 otherwise.
func StatusCode(err error) int {
	if he := AsHTTPError(err); he != nil && he.Code > 0 {
		return he.Code
	}
	return http.StatusInternalServerError
}
