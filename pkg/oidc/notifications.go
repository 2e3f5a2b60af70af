package oidc

import (
	"context"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

type notificationState int

const (
	stateContinue notificationState = iota
	stateHandled
	stateSkipped
)

// BaseNotification is embedded in every notification.
type BaseNotification struct {
	Request  *http.Request
	Response http.ResponseWriter
	Options  *Options

	state notificationState
}

// HandleResponse stops processing. The notification must have written the
// response itself.
func (n *BaseNotification) HandleResponse() { n.state = stateHandled }

// SkipToNextMiddleware stops processing and passes the request on.
func (n *BaseNotification) SkipToNextMiddleware() { n.state = stateSkipped }

// HandledResponse reports whether HandleResponse was called.
func (n *BaseNotification) HandledResponse() bool { return n.state == stateHandled }

// Skipped reports whether SkipToNextMiddleware was called.
func (n *BaseNotification) Skipped() bool { return n.state == stateSkipped }

func (n *BaseNotification) base() *BaseNotification { return n }

// MessageReceivedNotification fires when a response arrives at the callback.
type MessageReceivedNotification struct {
	BaseNotification
	Message *Message
}

// RedirectToIdentityProviderNotification fires before the browser is sent to
// the provider. Message may be modified.
type RedirectToIdentityProviderNotification struct {
	BaseNotification
	Message    *Message
	Properties *Properties
}

// SecurityTokenReceivedNotification fires once the state has been read and
// before the id_token is validated.
type SecurityTokenReceivedNotification struct {
	BaseNotification
	Message    *Message
	Properties *Properties
}

// SecurityTokenValidatedNotification fires after the id_token and nonce are
// validated. Claims added to Ticket.Principal are persisted.
type SecurityTokenValidatedNotification struct {
	BaseNotification
	Message *Message
	Ticket  *Ticket
}

// AuthorizationCodeReceivedNotification fires when the response carries a
// code. Call RedeemCode to exchange it at the token endpoint.
type AuthorizationCodeReceivedNotification struct {
	BaseNotification
	Message     *Message
	Ticket      *Ticket
	Code        string
	RedirectURI string
	JWT         *jwt.Token
	// Token is set by RedeemCode.
	Token *oauth2.Token

	redeem func(ctx context.Context, code, redirectURI string) (*oauth2.Token, error)
}

// RedeemCode exchanges Code for tokens over the backchannel.
func (n *AuthorizationCodeReceivedNotification) RedeemCode(ctx context.Context) (*oauth2.Token, error) {
	tok, err := n.redeem(ctx, n.Code, n.RedirectURI)
	if err != nil {
		return nil, err
	}
	n.Token = tok
	return tok, nil
}

// AuthenticationFailedNotification fires when callback processing fails.
type AuthenticationFailedNotification struct {
	BaseNotification
	Message *Message
	Err     error
}

// Notifications are optional hooks into the protocol flow.
type Notifications struct {
	MessageReceived            func(ctx context.Context, n *MessageReceivedNotification) error
	RedirectToIdentityProvider func(ctx context.Context, n *RedirectToIdentityProviderNotification) error
	SecurityTokenReceived      func(ctx context.Context, n *SecurityTokenReceivedNotification) error
	SecurityTokenValidated     func(ctx context.Context, n *SecurityTokenValidatedNotification) error
	AuthorizationCodeReceived  func(ctx context.Context, n *AuthorizationCodeReceivedNotification) error
	AuthenticationFailed       func(ctx context.Context, n *AuthenticationFailedNotification) error
}

type notification interface {
	base() *BaseNotification
}

// notify runs fn when set and reports the resulting state.
func notify[N notification](ctx context.Context, fn func(context.Context, N) error, n N) (notificationState, error) {
	if fn == nil {
		return stateContinue, nil
	}
	if err := fn(ctx, n); err != nil {
		return stateContinue, err
	}
	return n.base().state, nil
}
