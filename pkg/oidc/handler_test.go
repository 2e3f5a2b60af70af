package oidc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/logger"
	"github.com/dmitrymomot/musicstore/pkg/oidc"
	"github.com/dmitrymomot/musicstore/pkg/oidc/mockidp"
)

const (
	authority = "https://login.windows.net/musicstore.onmicrosoft.com"
	clientID  = "c99497aa-3ee2-4707-b8a8-c33f51323fef"
)

type signedIn struct {
	scheme     string
	principal  *identity.Principal
	props      map[string]string
	expires    time.Time
	persistent bool
}

type recordingSigner struct {
	calls []signedIn
}

func (s *recordingSigner) SignInPrincipal(_ http.ResponseWriter, scheme string, p *identity.Principal, props map[string]string, expires time.Time, persistent bool) error {
	s.calls = append(s.calls, signedIn{scheme, p, props, expires, persistent})
	return nil
}

func newHandler(t *testing.T, mutate func(*oidc.Options)) (*oidc.Handler, *mockidp.IdP, *recordingSigner) {
	t.Helper()

	idp, err := mockidp.New(authority, clientID)
	require.NoError(t, err)

	opts := oidc.Options{
		Authority:        authority,
		ClientID:         clientID,
		Backchannel:      idp.Transport(),
		StringDataFormat: mockidp.StringFormat{},
		StateDataFormat:  mockidp.StateFormat{},
		TokenValidation:  oidc.DefaultTokenValidation(),
		ProtocolValidator: oidc.ProtocolValidator{
			RequireNonce:  true,
			NonceLifetime: 36500 * 24 * time.Hour,
		},
		Notifications: idp.Notifications(),
		Logger:        logger.NewNope(),
	}
	if mutate != nil {
		mutate(&opts)
	}

	signer := &recordingSigner{}
	h, err := oidc.New(opts, signer)
	require.NoError(t, err)
	return h, idp, signer
}

// challenge runs Challenge and returns the provider redirect and cookies.
func challenge(t *testing.T, h *oidc.Handler, returnURL string) (string, []*http.Cookie) {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "http://musicstore.test/Account/ExternalLogin", nil)
	w := httptest.NewRecorder()
	require.NoError(t, h.Challenge(w, r, &oidc.Properties{RedirectURI: returnURL}))

	resp := w.Result()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	return resp.Header.Get("Location"), resp.Cookies()
}

func callbackRequest(redirectURI string, form url.Values, cookies []*http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodPost, redirectURI, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}
	return r
}

var alice = mockidp.User{Subject: "alice-sub", Name: "Alice", Email: "alice@musicstore.test"}

func TestHandler_HybridFlow(t *testing.T) {
	t.Parallel()

	h, idp, signer := newHandler(t, nil)

	location, cookies := challenge(t, h, "/Account/ExternalLoginCallback?ReturnUrl=%2F")
	assert.True(t, strings.HasPrefix(location, idp.Endpoint(mockidp.AuthorizePath)+"?"))

	u, err := url.Parse(location)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, clientID, q.Get("client_id"))
	assert.Equal(t, "code id_token", q.Get("response_type"))
	assert.Equal(t, "form_post", q.Get("response_mode"))
	assert.Equal(t, "http://musicstore.test/signin-oidc", q.Get("redirect_uri"))
	require.NotEmpty(t, q.Get("nonce"))

	require.Len(t, cookies, 1)
	assert.True(t, strings.HasPrefix(cookies[0].Name, oidc.NonceCookiePrefix))
	assert.True(t, cookies[0].Expires.After(time.Now().Add(365*24*time.Hour)))

	redirectURI, form, err := idp.Authorize(location, alice)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("callback must not reach the next handler")
	})
	w := httptest.NewRecorder()
	h.Middleware(next).ServeHTTP(w, callbackRequest(redirectURI, form, cookies))

	resp := w.Result()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/Account/ExternalLoginCallback?ReturnUrl=%2F", resp.Header.Get("Location"))

	deleted := false
	for _, c := range resp.Cookies() {
		if c.Name == cookies[0].Name && c.MaxAge < 0 {
			deleted = true
		}
	}
	assert.True(t, deleted, "nonce cookie should be removed")

	require.Len(t, signer.calls, 1)
	call := signer.calls[0]
	assert.Equal(t, identity.ExternalScheme, call.scheme)
	assert.Equal(t, oidc.DefaultScheme, call.props[identity.PropLoginProvider])
	assert.NotContains(t, call.props, oidc.PropCodeRedirectURI)
	assert.True(t, call.expires.IsZero())
	assert.Equal(t, "alice-sub", call.principal.ID())
	assert.Equal(t, "Alice", call.principal.Name())
	assert.True(t, call.principal.HasClaim(identity.ClaimEmail, "alice@musicstore.test"))
	assert.True(t, call.principal.HasClaim(mockidp.ManageStoreClaim, mockidp.ManageStoreValue))
}

func TestHandler_NonceCookieAttributes(t *testing.T) {
	t.Parallel()

	h, _, _ := newHandler(t, nil)
	for _, tt := range []struct {
		target   string
		secure   bool
		sameSite http.SameSite
	}{
		{"http://musicstore.test/Account/ExternalLogin", false, 0},
		{"https://musicstore.test/Account/ExternalLogin", true, http.SameSiteNoneMode},
	} {
		t.Run(tt.target, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			require.NoError(t, h.Challenge(w, httptest.NewRequest(http.MethodGet, tt.target, nil), &oidc.Properties{RedirectURI: "/"}))
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, tt.secure, cookies[0].Secure)
			assert.Equal(t, tt.sameSite, cookies[0].SameSite)
		})
	}
}

func TestHandler_PassesOtherPaths(t *testing.T) {
	t.Parallel()

	h, _, _ := newHandler(t, nil)

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { called = true })
	h.Middleware(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/Home/Index", nil))
	assert.True(t, called)
}

func TestHandler_TokenLifetime(t *testing.T) {
	t.Parallel()

	t.Run("expired token accepted when lifetime is not validated", func(t *testing.T) {
		t.Parallel()

		h, idp, signer := newHandler(t, func(o *oidc.Options) {
			o.TokenValidation.ValidateLifetime = false
		})
		idp.TokenLifetime = -time.Hour

		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)

		handled, err := h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.NoError(t, err)
		assert.True(t, handled)
		assert.Len(t, signer.calls, 1)
	})

	t.Run("expired token rejected when lifetime is validated", func(t *testing.T) {
		t.Parallel()

		h, idp, signer := newHandler(t, nil)
		idp.TokenLifetime = -time.Hour

		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.ErrorIs(t, err, oidc.ErrTokenExpired)
		assert.Empty(t, signer.calls)
	})

	t.Run("token lifetime drives the sign-in expiry", func(t *testing.T) {
		t.Parallel()

		h, idp, signer := newHandler(t, func(o *oidc.Options) { o.UseTokenLifetime = true })

		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.NoError(t, err)
		require.Len(t, signer.calls, 1)
		assert.WithinDuration(t, time.Now().Add(time.Hour), signer.calls[0].expires, time.Minute)
	})
}

func TestHandler_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing nonce cookie", func(t *testing.T) {
		t.Parallel()

		h, idp, _ := newHandler(t, nil)
		location, _ := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, nil))
		require.ErrorIs(t, err, oidc.ErrNonceNotFound)
	})

	t.Run("nonce older than its lifetime", func(t *testing.T) {
		t.Parallel()

		h, idp, signer := newHandler(t, func(o *oidc.Options) {
			o.ProtocolValidator.NonceLifetime = time.Nanosecond
		})
		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.ErrorIs(t, err, oidc.ErrNonceExpired)
		assert.Empty(t, signer.calls)
	})

	t.Run("tampered state", func(t *testing.T) {
		t.Parallel()

		h, idp, _ := newHandler(t, nil)
		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)
		form.Set("state", "!!not-base64!!")

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.ErrorIs(t, err, oidc.ErrInvalidState)
	})

	t.Run("code does not match c_hash", func(t *testing.T) {
		t.Parallel()

		h, idp, _ := newHandler(t, nil)
		location, cookies := challenge(t, h, "/")
		redirectURI, form, err := idp.Authorize(location, alice)
		require.NoError(t, err)
		form.Set("code", "swapped")

		_, err = h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
		require.ErrorIs(t, err, oidc.ErrInvalidCHash)
	})

	t.Run("provider error", func(t *testing.T) {
		t.Parallel()

		h, _, _ := newHandler(t, nil)
		form := url.Values{"error": {"access_denied"}, "error_description": {"user cancelled"}}

		_, err := h.HandleCallback(httptest.NewRecorder(), callbackRequest("http://musicstore.test/signin-oidc", form, nil))
		require.ErrorIs(t, err, oidc.ErrProtocol)
	})

	t.Run("failure notification handles the response", func(t *testing.T) {
		t.Parallel()

		var seen error
		h, _, _ := newHandler(t, func(o *oidc.Options) {
			o.Notifications.MessageReceived = nil
			o.Notifications.AuthenticationFailed = func(_ context.Context, n *oidc.AuthenticationFailedNotification) error {
				seen = n.Err
				http.Redirect(n.Response, n.Request, "/Home/Error", http.StatusFound)
				n.HandleResponse()
				return nil
			}
		})

		w := httptest.NewRecorder()
		form := url.Values{"code": {"c"}, "id_token": {"t"}}
		handled, err := h.HandleCallback(w, callbackRequest("http://musicstore.test/signin-oidc", form, nil))
		require.NoError(t, err)
		assert.True(t, handled)
		assert.ErrorIs(t, seen, oidc.ErrMissingState)
		assert.Equal(t, "/Home/Error", w.Header().Get("Location"))
	})
}

func TestHandler_MiddlewareErrorHandler(t *testing.T) {
	t.Parallel()

	var seen error
	h, _, _ := newHandler(t, func(o *oidc.Options) {
		o.ErrorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			seen = err
			w.WriteHeader(http.StatusTeapot)
		}
	})

	w := httptest.NewRecorder()
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("failed callback must not reach the next handler")
	})
	h.Middleware(next).ServeHTTP(w, callbackRequest("http://musicstore.test/signin-oidc", url.Values{"code": {"c"}}, nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	require.ErrorIs(t, seen, mockidp.ErrUnexpected)
}

func TestHandler_MessageReceivedSkips(t *testing.T) {
	t.Parallel()

	h, _, signer := newHandler(t, func(o *oidc.Options) {
		o.Notifications.MessageReceived = func(_ context.Context, n *oidc.MessageReceivedNotification) error {
			n.SkipToNextMiddleware()
			return nil
		}
	})

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { called = true })
	h.Middleware(next).ServeHTTP(httptest.NewRecorder(), callbackRequest("http://musicstore.test/signin-oidc", url.Values{}, nil))
	assert.True(t, called)
	assert.Empty(t, signer.calls)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := oidc.New(oidc.Options{ClientID: clientID}, &recordingSigner{})
	require.ErrorIs(t, err, oidc.ErrMissingAuthority)

	_, err = oidc.New(oidc.Options{Authority: authority}, &recordingSigner{})
	require.ErrorIs(t, err, oidc.ErrMissingClientID)

	_, err = oidc.New(oidc.Options{Authority: authority, ClientID: clientID}, nil)
	require.ErrorIs(t, err, oidc.ErrMissingSigner)
}

func TestHandler_DefaultFormatsSealValues(t *testing.T) {
	t.Parallel()

	idp, err := mockidp.New(authority, clientID)
	require.NoError(t, err)
	signer := &recordingSigner{}
	h, err := oidc.New(oidc.Options{
		Authority:         authority,
		ClientID:          clientID,
		Backchannel:       idp.Transport(),
		ProtocolValidator: oidc.ProtocolValidator{RequireNonce: true},
		Logger:            logger.NewNope(),
	}, signer)
	require.NoError(t, err)

	location, cookies := challenge(t, h, "/")
	u, err := url.Parse(location)
	require.NoError(t, err)
	_, err = mockidp.StateFormat{}.Unprotect(u.Query().Get("state"))
	assert.Error(t, err, "state should be sealed, not plain base64 JSON")

	redirectURI, form, err := idp.Authorize(location, alice)
	require.NoError(t, err)
	handled, err := h.HandleCallback(httptest.NewRecorder(), callbackRequest(redirectURI, form, cookies))
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Len(t, signer.calls, 1)
}
