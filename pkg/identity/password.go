package identity

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) error
}

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h BcryptHasher) Verify(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// ValidatePassword checks password against the policy and returns every
// violated rule joined together.
func ValidatePassword(opts PasswordOptions, password string) error {
	var errs []error
	if len(password) < opts.RequiredLength {
		errs = append(errs, ErrPasswordTooShort)
	}

	var digit, lower, upper, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			symbol = true
		}
	}

	if opts.RequireDigit && !digit {
		errs = append(errs, ErrPasswordNoDigit)
	}
	if opts.RequireLowercase && !lower {
		errs = append(errs, ErrPasswordNoLower)
	}
	if opts.RequireUppercase && !upper {
		errs = append(errs, ErrPasswordNoUpper)
	}
	if opts.RequireNonAlphanumeric && !symbol {
		errs = append(errs, ErrPasswordNoSymbol)
	}
	return errors.Join(errs...)
}
