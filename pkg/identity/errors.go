package identity

import "errors"

var (
	ErrUserNotFound      = errors.New("identity: user not found")
	ErrDuplicateUserName = errors.New("identity: user name is already taken")
	ErrDuplicateEmail    = errors.New("identity: email is already taken")
	ErrDuplicateRole     = errors.New("identity: role already exists")
	ErrInvalidUserName   = errors.New("identity: user name is invalid")
	ErrPasswordTooShort  = errors.New("identity: password is too short")
	ErrPasswordNoDigit   = errors.New("identity: password must contain a digit")
	ErrPasswordNoLower   = errors.New("identity: password must contain a lowercase letter")
	ErrPasswordNoUpper   = errors.New("identity: password must contain an uppercase letter")
	ErrPasswordNoSymbol  = errors.New("identity: password must contain a non-alphanumeric character")
	ErrPasswordMismatch  = errors.New("identity: incorrect password")
	ErrInvalidToken      = errors.New("identity: invalid token")
	ErrTokenProvider     = errors.New("identity: token provider not registered")
	ErrMessageProvider   = errors.New("identity: message provider not registered")
	ErrNoDestination     = errors.New("identity: user has no address for this provider")
	ErrNotAuthenticated  = errors.New("identity: not authenticated")
	ErrExternalLoginInfo = errors.New("identity: external login information is missing")
	ErrInvalidOptions    = errors.New("identity: invalid options")
)
