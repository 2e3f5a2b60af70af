package oidc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/protect"
)

// Signer persists an authenticated principal, typically as a cookie.
type Signer interface {
	SignInPrincipal(w http.ResponseWriter, scheme string, p *identity.Principal, props map[string]string, expires time.Time, persistent bool) error
}

// Handler runs the OpenID Connect protocol for one provider.
type Handler struct {
	opts   Options
	signer Signer
	client *http.Client
	config *configManager
	log    *slog.Logger
	now    func() time.Time
}

// New validates opts and creates a Handler. When no data formats are set,
// state and nonce values are sealed with a random-key protector.
func New(opts Options, signer Signer) (*Handler, error) {
	if opts.Authority == "" {
		return nil, ErrMissingAuthority
	}
	if opts.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if signer == nil {
		return nil, ErrMissingSigner
	}
	opts.setDefaults()

	if opts.StringDataFormat == nil || opts.StateDataFormat == nil {
		p, err := protect.NewRandom()
		if err != nil {
			return nil, err
		}
		if opts.StringDataFormat == nil {
			opts.StringDataFormat = protect.NewStringFormat(p.Purpose("oidc", opts.Scheme, "nonce"))
		}
		if opts.StateDataFormat == nil {
			opts.StateDataFormat = protect.NewJSONFormat[Properties](p.Purpose("oidc", opts.Scheme, "state"))
		}
	}

	client := &http.Client{Transport: opts.Backchannel, Timeout: opts.BackchannelTimeout}
	h := &Handler{
		opts:   opts,
		signer: signer,
		client: client,
		log:    opts.Logger.With(slog.String("component", "oidc"), slog.String("scheme", opts.Scheme)),
		now:    time.Now,
	}
	h.config = &configManager{
		authority: opts.Authority,
		client:    client,
		refresh:   opts.RefreshInterval,
		now:       func() time.Time { return h.now() },
	}
	return h, nil
}

// Options returns the effective options.
func (h *Handler) Options() Options { return h.opts }

// Configuration returns the provider metadata, fetching it when stale.
func (h *Handler) Configuration(ctx context.Context) (*Configuration, error) {
	cfg, _, err := h.config.get(ctx)
	return cfg, err
}

// Middleware intercepts requests to CallbackPath.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.EqualFold(r.URL.Path, h.opts.CallbackPath) {
			next.ServeHTTP(w, r)
			return
		}
		handled, err := h.HandleCallback(w, r)
		if err != nil {
			h.log.ErrorContext(r.Context(), "authentication failed", slog.String("error", err.Error()))
			h.opts.ErrorHandler(w, r, err)
			return
		}
		if !handled {
			next.ServeHTTP(w, r)
		}
	})
}

// Challenge redirects the browser to the provider's authorization endpoint.
// props.RedirectURI is where the browser returns after a successful sign-in.
func (h *Handler) Challenge(w http.ResponseWriter, r *http.Request, props *Properties) error {
	ctx := r.Context()
	cfg, err := h.Configuration(ctx)
	if err != nil {
		return err
	}

	if props == nil {
		props = &Properties{}
	}
	if props.RedirectURI == "" {
		props.RedirectURI = r.URL.RequestURI()
	}
	if props.Items == nil {
		props.Items = map[string]string{}
	}
	redirectURI := h.callbackURL(r)
	props.Items[PropCodeRedirectURI] = redirectURI

	msg := &Message{
		IssuerAddress: cfg.AuthorizationEndpoint,
		ClientID:      h.opts.ClientID,
		RedirectURI:   redirectURI,
		ResponseType:  h.opts.ResponseType,
		ResponseMode:  h.opts.ResponseMode,
		Scope:         strings.Join(h.opts.Scopes, " "),
		Extra:         map[string][]string{},
	}

	if h.opts.ProtocolValidator.RequireNonce {
		nonce, err := newNonce(h.now())
		if err != nil {
			return err
		}
		msg.Nonce = nonce
		if err := h.writeNonceCookie(w, r, nonce); err != nil {
			return err
		}
	}

	n := &RedirectToIdentityProviderNotification{
		BaseNotification: h.base(w, r),
		Message:          msg,
		Properties:       props,
	}
	state, err := notify(ctx, h.opts.Notifications.RedirectToIdentityProvider, n)
	if err != nil {
		return err
	}
	if state != stateContinue {
		return nil
	}

	msg.State, err = h.opts.StateDataFormat.Protect(*props)
	if err != nil {
		return err
	}

	http.Redirect(w, r, msg.AuthenticationRequestURL(), http.StatusFound)
	return nil
}

// HandleCallback processes an authorization response. It reports whether
// the response was written.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) (bool, error) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		return false, errors.Join(ErrProtocol, err)
	}
	values := r.URL.Query()
	if r.Method == http.MethodPost {
		values = r.PostForm
	}
	msg := MessageFromValues(values)

	state, err := notify(ctx, h.opts.Notifications.MessageReceived, &MessageReceivedNotification{
		BaseNotification: h.base(w, r),
		Message:          msg,
	})
	if err != nil {
		return h.fail(w, r, msg, err)
	}
	if state != stateContinue {
		return state == stateHandled, nil
	}

	handled, err := h.processMessage(w, r, msg)
	if err != nil {
		return h.fail(w, r, msg, err)
	}
	return handled, nil
}

func (h *Handler) processMessage(w http.ResponseWriter, r *http.Request, msg *Message) (bool, error) {
	ctx := r.Context()

	if msg.Error != "" {
		return false, fmt.Errorf("%w: %s %s", ErrProtocol, msg.Error, msg.ErrorDescription)
	}
	if msg.State == "" {
		return false, ErrMissingState
	}
	props, err := h.opts.StateDataFormat.Unprotect(msg.State)
	if err != nil {
		return false, errors.Join(ErrInvalidState, err)
	}

	state, err := notify(ctx, h.opts.Notifications.SecurityTokenReceived, &SecurityTokenReceivedNotification{
		BaseNotification: h.base(w, r),
		Message:          msg,
		Properties:       &props,
	})
	if err != nil || state != stateContinue {
		return state == stateHandled, err
	}

	if msg.IDToken == "" {
		return false, ErrMissingIDToken
	}
	cfg, keyFunc, err := h.config.get(ctx)
	if err != nil {
		return false, err
	}
	token, claims, err := h.validateIDToken(msg.IDToken, cfg, keyFunc)
	if err != nil {
		return false, err
	}
	if err := h.validateNonce(w, r, claims.Nonce); err != nil {
		return false, err
	}
	if msg.Code != "" {
		if err := validateCHash(claims.CHash, msg.Code); err != nil {
			return false, err
		}
	}

	ticket := &Ticket{Principal: h.principal(claims), Properties: &props}
	if h.opts.UseTokenLifetime {
		if claims.IssuedAt != nil {
			props.IssuedUTC = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			props.ExpiresUTC = claims.ExpiresAt.Time
		}
	}

	state, err = notify(ctx, h.opts.Notifications.SecurityTokenValidated, &SecurityTokenValidatedNotification{
		BaseNotification: h.base(w, r),
		Message:          msg,
		Ticket:           ticket,
	})
	if err != nil || state != stateContinue {
		return state == stateHandled, err
	}

	if msg.Code != "" {
		state, err = notify(ctx, h.opts.Notifications.AuthorizationCodeReceived, &AuthorizationCodeReceivedNotification{
			BaseNotification: h.base(w, r),
			Message:          msg,
			Ticket:           ticket,
			Code:             msg.Code,
			RedirectURI:      props.Items[PropCodeRedirectURI],
			JWT:              token,
			redeem: func(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
				return h.redeem(ctx, cfg, code, redirectURI)
			},
		})
		if err != nil || state != stateContinue {
			return state == stateHandled, err
		}
	}

	items := map[string]string{identity.PropLoginProvider: h.opts.Scheme}
	for k, v := range props.Items {
		if k != PropCodeRedirectURI {
			items[k] = v
		}
	}
	var expires time.Time
	if h.opts.UseTokenLifetime {
		expires = props.ExpiresUTC
	}
	if err := h.signer.SignInPrincipal(w, h.opts.SignInScheme, ticket.Principal, items, expires, props.IsPersistent); err != nil {
		return false, err
	}

	redirect := props.RedirectURI
	if redirect == "" {
		redirect = "/"
	}
	h.log.InfoContext(ctx, "signed in", slog.String("subject", ticket.Principal.ID()))
	http.Redirect(w, r, redirect, http.StatusFound)
	return true, nil
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg *Message, cause error) (bool, error) {
	state, err := notify(r.Context(), h.opts.Notifications.AuthenticationFailed, &AuthenticationFailedNotification{
		BaseNotification: h.base(w, r),
		Message:          msg,
		Err:              cause,
	})
	if err != nil {
		return false, errors.Join(cause, err)
	}
	switch state {
	case stateHandled:
		return true, nil
	case stateSkipped:
		return false, nil
	}
	return false, cause
}

func (h *Handler) redeem(ctx context.Context, cfg *Configuration, code, redirectURI string) (*oauth2.Token, error) {
	conf := &oauth2.Config{
		ClientID:     h.opts.ClientID,
		ClientSecret: h.opts.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       h.opts.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.AuthorizationEndpoint,
			TokenURL: cfg.TokenEndpoint,
		},
	}
	tok, err := conf.Exchange(context.WithValue(ctx, oauth2.HTTPClient, h.client), code)
	if err != nil {
		return nil, errors.Join(ErrRedeemCode, err)
	}
	return tok, nil
}

func (h *Handler) base(w http.ResponseWriter, r *http.Request) BaseNotification {
	return BaseNotification{Request: r, Response: w, Options: &h.opts}
}

func (h *Handler) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + h.opts.CallbackPath
}

func (h *Handler) principal(c *idTokenClaims) *identity.Principal {
	p := identity.NewPrincipal(h.opts.Scheme,
		identity.Claim{Type: identity.ClaimNameIdentifier, Value: c.Subject, Issuer: c.Issuer},
		identity.Claim{Type: identity.ClaimLoginProvider, Value: h.opts.Scheme, Issuer: c.Issuer},
	)
	name := c.Name
	if name == "" {
		name = c.PreferredUsername
	}
	if name == "" {
		name = c.UniqueName
	}
	if name != "" {
		p.AddClaim(identity.Claim{Type: identity.ClaimName, Value: name, Issuer: c.Issuer})
	}
	if c.Email != "" {
		p.AddClaim(identity.Claim{Type: identity.ClaimEmail, Value: c.Email, Issuer: c.Issuer})
	}
	return p
}
