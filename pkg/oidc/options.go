package oidc

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/protect"
)

// Defaults.
const (
	DefaultScheme        = "OpenIdConnect"
	DefaultCallbackPath  = "/signin-oidc"
	ResponseTypeHybrid   = "code id_token"
	ResponseModeFormPost = "form_post"
)

// Options configure a Handler.
type Options struct {
	// Scheme names this handler. It becomes the login provider of external logins.
	Scheme string

	Authority    string
	ClientID     string
	ClientSecret string
	CallbackPath string
	ResponseType string
	ResponseMode string
	Scopes       []string

	// Backchannel carries discovery, key and token requests.
	Backchannel        http.RoundTripper
	BackchannelTimeout time.Duration
	// RefreshInterval controls how long discovery metadata is cached.
	RefreshInterval time.Duration

	// StringDataFormat protects the nonce inside its cookie name.
	StringDataFormat protect.DataFormat[string]
	// StateDataFormat protects Properties carried in the state parameter.
	StateDataFormat protect.DataFormat[Properties]

	TokenValidation   TokenValidationParameters
	ProtocolValidator ProtocolValidator

	// UseTokenLifetime makes the sign-in expire with the id_token.
	UseTokenLifetime bool

	Notifications Notifications

	// SignInScheme is the scheme the Signer persists the principal under.
	SignInScheme string

	// ErrorHandler writes callback failures. Defaults to a plain 500.
	ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

	Logger *slog.Logger
}

// TokenValidationParameters control id_token claim checks.
// The signature is always verified.
type TokenValidationParameters struct {
	ValidateIssuer   bool
	ValidateAudience bool
	ValidateLifetime bool
	ValidIssuer      string
	ClockSkew        time.Duration
}

// DefaultTokenValidation validates issuer, audience and lifetime with a
// five minute skew.
func DefaultTokenValidation() TokenValidationParameters {
	return TokenValidationParameters{
		ValidateIssuer:   true,
		ValidateAudience: true,
		ValidateLifetime: true,
		ClockSkew:        5 * time.Minute,
	}
}

// ProtocolValidator controls nonce handling.
type ProtocolValidator struct {
	RequireNonce  bool
	NonceLifetime time.Duration
}

func (o *Options) setDefaults() {
	if o.Scheme == "" {
		o.Scheme = DefaultScheme
	}
	o.Authority = strings.TrimRight(o.Authority, "/")
	if o.CallbackPath == "" {
		o.CallbackPath = DefaultCallbackPath
	}
	if o.ResponseType == "" {
		o.ResponseType = ResponseTypeHybrid
	}
	if o.ResponseMode == "" {
		o.ResponseMode = ResponseModeFormPost
	}
	if len(o.Scopes) == 0 {
		o.Scopes = []string{"openid", "profile"}
	}
	if o.Backchannel == nil {
		o.Backchannel = http.DefaultTransport
	}
	if o.BackchannelTimeout == 0 {
		o.BackchannelTimeout = time.Minute
	}
	if o.RefreshInterval == 0 {
		o.RefreshInterval = 24 * time.Hour
	}
	if o.ProtocolValidator.NonceLifetime == 0 {
		o.ProtocolValidator.NonceLifetime = time.Hour
	}
	if o.SignInScheme == "" {
		o.SignInScheme = identity.ExternalScheme
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.ErrorHandler == nil {
		o.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "OpenID Connect authentication failed", http.StatusInternalServerError)
		}
	}
}
