package mockidp

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"github.com/dmitrymomot/musicstore/pkg/oidc"
)

var ErrFormat = errors.New("mockidp: value is not in the expected format")

// StringFormat encodes strings as unpadded base64url without sealing them,
// so a test can read the nonce out of a cookie name.
type StringFormat struct{}

func (StringFormat) Protect(v string) (string, error) {
	return base64.RawURLEncoding.EncodeToString([]byte(v)), nil
}

func (StringFormat) Unprotect(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", errors.Join(ErrFormat, err)
	}
	return string(b), nil
}

// StateFormat encodes state properties as base64url JSON without sealing.
type StateFormat struct{}

func (StateFormat) Protect(v oidc.Properties) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (StateFormat) Unprotect(s string) (oidc.Properties, error) {
	var v oidc.Properties
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return v, errors.Join(ErrFormat, err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, errors.Join(ErrFormat, err)
	}
	return v, nil
}
