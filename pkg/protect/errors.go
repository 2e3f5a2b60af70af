package protect

import "errors"

var (
	ErrShortSecret = errors.New("protect: secret must be 32+ bytes")
	ErrMalformed   = errors.New("protect: malformed payload")
	ErrInvalid     = errors.New("protect: payload failed authentication")
	ErrSerialize   = errors.New("protect: serialization failed")
)
