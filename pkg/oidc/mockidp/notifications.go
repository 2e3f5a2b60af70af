package mockidp

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/oidc"
)

// Claim granted to every user this provider signs in.
const (
	ManageStoreClaim = "ManageStore"
	ManageStoreValue = "Allowed"
)

// ErrUnexpected reports a protocol message that a conforming flow never
// produces.
var ErrUnexpected = errors.New("mockidp: unexpected protocol message")

// Notifications returns hooks that check each stage of the hybrid flow,
// grant the ManageStore claim once the id_token is validated and redeem the
// authorization code against this provider.
func (p *IdP) Notifications() oidc.Notifications {
	return oidc.Notifications{
		MessageReceived: func(_ context.Context, n *oidc.MessageReceivedNotification) error {
			if n.Message.Error == "" && (n.Message.Code == "" || n.Message.IDToken == "" || n.Message.State == "") {
				return fmt.Errorf("%w: response lacks code, id_token or state", ErrUnexpected)
			}
			return nil
		},
		RedirectToIdentityProvider: func(_ context.Context, n *oidc.RedirectToIdentityProviderNotification) error {
			m := n.Message
			if m.ClientID != p.clientID || m.Nonce == "" || m.ResponseType != oidc.ResponseTypeHybrid {
				return fmt.Errorf("%w: authorization request %q", ErrUnexpected, m.AuthenticationRequestURL())
			}
			return nil
		},
		SecurityTokenReceived: func(_ context.Context, n *oidc.SecurityTokenReceivedNotification) error {
			if n.Properties == nil || n.Properties.RedirectURI == "" {
				return fmt.Errorf("%w: state carries no redirect uri", ErrUnexpected)
			}
			return nil
		},
		SecurityTokenValidated: func(_ context.Context, n *oidc.SecurityTokenValidatedNotification) error {
			n.Ticket.Principal.AddClaim(identity.Claim{
				Type:   ManageStoreClaim,
				Value:  ManageStoreValue,
				Issuer: p.issuer,
			})
			return nil
		},
		AuthorizationCodeReceived: func(ctx context.Context, n *oidc.AuthorizationCodeReceivedNotification) error {
			if n.JWT == nil || !n.JWT.Valid {
				return fmt.Errorf("%w: code received without a validated id_token", ErrUnexpected)
			}
			tok, err := n.RedeemCode(ctx)
			if err != nil {
				return err
			}
			if tok.AccessToken == "" {
				return fmt.Errorf("%w: token response has no access_token", ErrUnexpected)
			}
			return nil
		},
	}
}
