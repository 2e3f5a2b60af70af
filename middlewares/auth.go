package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/authz"
	"github.com/dmitrymomot/musicstore/pkg/identity"
)

// Authentication attaches the principal from the application cookie to the
// request. Requests without a valid cookie stay anonymous.
func Authentication(signIn *identity.SignInManager) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			ticket, err := signIn.Authenticate(c.Request(), identity.ApplicationScheme)
			switch {
			case err == nil:
				c.SetContext(identity.WithPrincipal(c.Request().Context(), ticket.Principal))
			case !errors.Is(err, identity.ErrNotAuthenticated):
				return err
			}
			return next(c)
		}
	}
}

// Authorize evaluates policy against the request principal. Anonymous
// users are redirected to the login path and authenticated users that fail
// the policy to the access denied path, both with a ReturnUrl.
func Authorize(a *authz.Authorizer, policy string, opts identity.CookieOptions) internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			decision, err := a.Authorize(c.Principal(), policy)
			if err != nil {
				return err
			}
			switch decision {
			case authz.Challenge:
				c.LogDebug("authorization challenge", "policy", policy)
				return c.Redirect(http.StatusFound, withReturnURL(opts.LoginPath, c.Request()))
			case authz.Forbid:
				c.LogInfo("authorization forbidden", "policy", policy, "user_id", c.UserID())
				return c.Redirect(http.StatusFound, withReturnURL(opts.AccessDeniedPath, c.Request()))
			}
			return next(c)
		}
	}
}

func withReturnURL(path string, r *http.Request) string {
	return path + "?" + url.Values{"ReturnUrl": {r.URL.RequestURI()}}.Encode()
}

func principalID(ctx context.Context) string {
	p := identity.PrincipalFromContext(ctx)
	if !p.IsAuthenticated() {
		return ""
	}
	return p.ID()
}
