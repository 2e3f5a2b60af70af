package protect

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// MinSecretLength is the minimum root secret size in bytes.
const MinSecretLength = 32

// Protector seals payloads with AES-256-GCM using a key derived from the
// root secret and the purpose chain.
type Protector struct {
	secret  []byte
	purpose []string
	aead    cipher.AEAD
}

// New creates a root protector. The secret must be at least 32 bytes.
func New(secret []byte) (*Protector, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrShortSecret
	}
	return newProtector(secret, nil)
}

// NewRandom creates a root protector with a random secret.
// Output does not survive a process restart.
func NewRandom() (*Protector, error) {
	secret := make([]byte, MinSecretLength)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, err
	}
	return newProtector(secret, nil)
}

func newProtector(secret []byte, purpose []string) (*Protector, error) {
	info := []byte("musicstore/" + strings.Join(purpose, "/"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, info), key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Protector{secret: secret, purpose: purpose, aead: aead}, nil
}

// Purpose returns a child protector isolated by the given purposes.
func (p *Protector) Purpose(purposes ...string) *Protector {
	chain := append(append([]string{}, p.purpose...), purposes...)
	child, err := newProtector(p.secret, chain)
	if err != nil {
		// hkdf and AES-256 only fail on invalid key sizes, which are fixed here.
		panic(err)
	}
	return child
}

// Purposes returns the purpose chain.
func (p *Protector) Purposes() []string {
	return append([]string{}, p.purpose...)
}

// Protect encrypts and authenticates plaintext. The output is URL-safe.
func (p *Protector) Protect(plaintext []byte) (string, error) {
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := p.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Unprotect reverses Protect.
func (p *Protector) Unprotect(token string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	if len(data) < p.aead.NonceSize() {
		return nil, ErrMalformed
	}

	nonce, ciphertext := data[:p.aead.NonceSize()], data[p.aead.NonceSize():]
	plaintext, err := p.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrInvalid
	}
	return plaintext, nil
}
