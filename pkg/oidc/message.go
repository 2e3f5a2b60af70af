package oidc

import (
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/identity"
)

// Message is an OpenID Connect protocol message: an authorization request
// on the way out or an authorization response on the way back.
type Message struct {
	IssuerAddress    string
	ClientID         string
	RedirectURI      string
	ResponseType     string
	ResponseMode     string
	Scope            string
	State            string
	Nonce            string
	Code             string
	IDToken          string
	Error            string
	ErrorDescription string
	// Extra holds parameters without a dedicated field.
	Extra url.Values
}

var messageFields = map[string]func(m *Message) *string{
	"client_id":         func(m *Message) *string { return &m.ClientID },
	"redirect_uri":      func(m *Message) *string { return &m.RedirectURI },
	"response_type":     func(m *Message) *string { return &m.ResponseType },
	"response_mode":     func(m *Message) *string { return &m.ResponseMode },
	"scope":             func(m *Message) *string { return &m.Scope },
	"state":             func(m *Message) *string { return &m.State },
	"nonce":             func(m *Message) *string { return &m.Nonce },
	"code":              func(m *Message) *string { return &m.Code },
	"id_token":          func(m *Message) *string { return &m.IDToken },
	"error":             func(m *Message) *string { return &m.Error },
	"error_description": func(m *Message) *string { return &m.ErrorDescription },
}

// MessageFromValues reads a message from form or query values.
func MessageFromValues(v url.Values) *Message {
	m := &Message{Extra: url.Values{}}
	for key, vals := range v {
		if len(vals) == 0 {
			continue
		}
		if field, ok := messageFields[key]; ok {
			*field(m) = vals[0]
			continue
		}
		m.Extra[key] = vals
	}
	return m
}

// Values encodes the message parameters.
func (m *Message) Values() url.Values {
	v := url.Values{}
	for key, vals := range m.Extra {
		v[key] = append([]string(nil), vals...)
	}
	for key, field := range messageFields {
		if s := *field(m); s != "" {
			v.Set(key, s)
		}
	}
	return v
}

// AuthenticationRequestURL builds the redirect to IssuerAddress.
func (m *Message) AuthenticationRequestURL() string {
	sep := "?"
	if strings.Contains(m.IssuerAddress, "?") {
		sep = "&"
	}
	return m.IssuerAddress + sep + m.Values().Encode()
}

// Properties survive the round trip to the provider inside the state.
type Properties struct {
	RedirectURI  string            `json:".redirect,omitempty"`
	Items        map[string]string `json:"items,omitempty"`
	IsPersistent bool              `json:".persistent,omitempty"`
	IssuedUTC    time.Time         `json:".issued,omitempty"`
	ExpiresUTC   time.Time         `json:".expires,omitempty"`
}

// Property keys.
const (
	PropCodeRedirectURI = ".oidc.code.redirect_uri"
)

// Ticket is the authentication result built from a validated id_token.
type Ticket struct {
	Principal  *identity.Principal
	Properties *Properties
}
