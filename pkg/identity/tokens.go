package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Names of the default token providers.
const (
	DefaultProvider     = "Default"
	EmailProvider       = "Email"
	PhoneNumberProvider = "Phone"
	dataProtectorIssuer = "musicstore/identity"
	codeDigits          = 1000000
)

// TokenProvider issues and checks one-time tokens bound to a user.
type TokenProvider interface {
	Name() string
	Generate(ctx context.Context, purpose string, user *store.User) (string, error)
	Validate(ctx context.Context, purpose, token string, user *store.User) bool
}

// DataProtectorTokenProvider issues signed JWTs. A token stops validating
// when it expires or when the user's security stamp changes.
type DataProtectorTokenProvider struct {
	key      []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewDataProtectorTokenProvider creates the Default provider.
func NewDataProtectorTokenProvider(key []byte, lifetime time.Duration) *DataProtectorTokenProvider {
	return &DataProtectorTokenProvider{key: key, lifetime: lifetime, now: time.Now}
}

func (p *DataProtectorTokenProvider) Name() string { return DefaultProvider }

type dataProtectorClaims struct {
	Purpose string `json:"purpose"`
	Stamp   string `json:"stamp"`
	jwt.RegisteredClaims
}

func (p *DataProtectorTokenProvider) Generate(_ context.Context, purpose string, user *store.User) (string, error) {
	now := p.now()
	claims := dataProtectorClaims{
		Purpose: purpose,
		Stamp:   user.SecurityStamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    dataProtectorIssuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.key)
}

func (p *DataProtectorTokenProvider) Validate(_ context.Context, purpose, token string, user *store.User) bool {
	var claims dataProtectorClaims
	keyFunc := func(*jwt.Token) (any, error) { return p.key, nil }
	_, err := jwt.ParseWithClaims(token, &claims, keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(dataProtectorIssuer),
		jwt.WithSubject(user.ID),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return false
	}
	return claims.Purpose == purpose && claims.Stamp == user.SecurityStamp
}

// CodeTokenProvider issues short numeric codes derived from the security
// stamp and the current time step. A code stays valid for the current and
// the previous step.
type CodeTokenProvider struct {
	name string
	step time.Duration
	now  func() time.Time
	// destination returns the address codes are sent to.
	destination func(u *store.User) string
}

// NewEmailTokenProvider creates the Email provider.
func NewEmailTokenProvider(step time.Duration) *CodeTokenProvider {
	return &CodeTokenProvider{
		name: EmailProvider, step: step, now: time.Now,
		destination: func(u *store.User) string { return u.Email },
	}
}

// NewPhoneNumberTokenProvider creates the Phone provider.
func NewPhoneNumberTokenProvider(step time.Duration) *CodeTokenProvider {
	return &CodeTokenProvider{
		name: PhoneNumberProvider, step: step, now: time.Now,
		destination: func(u *store.User) string { return u.PhoneNumber },
	}
}

func (p *CodeTokenProvider) Name() string { return p.name }

func (p *CodeTokenProvider) Generate(_ context.Context, purpose string, user *store.User) (string, error) {
	if p.destination(user) == "" {
		return "", ErrNoDestination
	}
	return p.code(purpose, user, p.timestep(p.now())), nil
}

func (p *CodeTokenProvider) Validate(_ context.Context, purpose, token string, user *store.User) bool {
	if p.destination(user) == "" {
		return false
	}
	step := p.timestep(p.now())
	for _, s := range []uint64{step, step - 1} {
		if hmac.Equal([]byte(p.code(purpose, user, s)), []byte(token)) {
			return true
		}
	}
	return false
}

func (p *CodeTokenProvider) timestep(t time.Time) uint64 {
	step := p.step
	if step <= 0 {
		step = defaultCodeStep
	}
	return uint64(t.UnixNano()) / uint64(step)
}

// code computes an RFC 4226 style truncated HMAC over the time step.
func (p *CodeTokenProvider) code(purpose string, user *store.User, step uint64) string {
	key := []byte(user.SecurityStamp + "|" + p.name + "|" + purpose + "|" + p.destination(user))
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], step)

	mac := hmac.New(sha1.New, key)
	mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := binary.BigEndian.Uint32(sum[offset:offset+4]) & 0x7fffffff
	return fmt.Sprintf("%06d", bin%codeDigits)
}

func tokenProviderError(name string) error {
	return errors.Join(ErrTokenProvider, fmt.Errorf("provider %q", name))
}
