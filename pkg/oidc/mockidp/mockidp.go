// Package mockidp is an in-process OpenID Connect provider. Its Transport
// answers discovery, key and token requests without a network, so it can be
// plugged into oidc.Options.Backchannel.
package mockidp

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrymomot/musicstore/pkg/oidc"
)

// Well-known values of the test tenant.
const (
	TenantID      = "4afbc689-805b-48cf-a24c-d4aa3248a248"
	KeyID         = "mock-signing-key"
	AuthorizePath = "/oauth2/authorize"
	TokenPath     = "/oauth2/token"
	KeysPath      = "/discovery/keys"
	LogoutPath    = "/oauth2/logout"
)

var (
	ErrBadAuthorize  = errors.New("mockidp: malformed authorization request")
	ErrUnknownClient = errors.New("mockidp: unknown client")
)

// User is the identity the provider asserts.
type User struct {
	Subject string
	Name    string
	Email   string
}

// IdP is a single-tenant provider holding one RSA signing key.
type IdP struct {
	authority *url.URL
	issuer    string
	clientID  string
	key       *rsa.PrivateKey
	mux       *http.ServeMux

	// TokenLifetime is added to the issue time of every id_token. A negative
	// value issues tokens that are already expired.
	TokenLifetime time.Duration

	mu    sync.Mutex
	codes map[string]User
	now   func() time.Time
}

// New creates a provider serving authority for clientID.
func New(authority, clientID string) (*IdP, error) {
	u, err := url.Parse(strings.TrimRight(authority, "/"))
	if err != nil {
		return nil, err
	}
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	p := &IdP{
		authority:     u,
		issuer:        "https://sts.windows.net/" + TenantID + "/",
		clientID:      clientID,
		key:           key,
		TokenLifetime: time.Hour,
		codes:         map[string]User{},
		now:           time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+u.Path+oidc.DiscoveryPath, p.handleDiscovery)
	mux.HandleFunc("GET "+u.Path+KeysPath, p.handleKeys)
	mux.HandleFunc("POST "+u.Path+TokenPath, p.handleToken)
	p.mux = mux
	return p, nil
}

// Issuer returns the iss claim of issued tokens.
func (p *IdP) Issuer() string { return p.issuer }

// Endpoint returns the absolute URL of a provider path.
func (p *IdP) Endpoint(path string) string {
	return p.authority.String() + path
}

// Metadata returns the discovery document.
func (p *IdP) Metadata() oidc.Configuration {
	return oidc.Configuration{
		Issuer:                p.issuer,
		AuthorizationEndpoint: p.Endpoint(AuthorizePath),
		TokenEndpoint:         p.Endpoint(TokenPath),
		EndSessionEndpoint:    p.Endpoint(LogoutPath),
		JWKSURI:               p.Endpoint(KeysPath),
		ResponseModes:         []string{"query", "fragment", oidc.ResponseModeFormPost},
		SigningAlgorithms:     []string{"RS256"},
	}
}

// Transport serves provider requests in-process. Requests for other hosts
// get a 404 response.
func (p *IdP) Transport() http.RoundTripper {
	return roundTripper(func(r *http.Request) (*http.Response, error) {
		rec := httptest.NewRecorder()
		if !strings.EqualFold(r.URL.Host, p.authority.Host) {
			http.NotFound(rec, r)
		} else {
			p.mux.ServeHTTP(rec, r)
		}
		resp := rec.Result()
		resp.Request = r
		return resp, nil
	})
}

type roundTripper func(*http.Request) (*http.Response, error)

func (f roundTripper) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// Authorize plays the provider's login page: it reads an authorization
// request URL and returns the form a browser would post to redirect_uri.
func (p *IdP) Authorize(authorizeURL string, user User) (redirectURI string, form url.Values, err error) {
	u, err := url.Parse(authorizeURL)
	if err != nil {
		return "", nil, errors.Join(ErrBadAuthorize, err)
	}
	q := u.Query()
	if q.Get("client_id") != p.clientID {
		return "", nil, ErrUnknownClient
	}
	redirectURI = q.Get("redirect_uri")
	if redirectURI == "" || q.Get("state") == "" {
		return "", nil, ErrBadAuthorize
	}

	code := uuid.NewString()
	p.mu.Lock()
	p.codes[code] = user
	p.mu.Unlock()

	idToken, err := p.IssueIDToken(user, q.Get("nonce"), code)
	if err != nil {
		return "", nil, err
	}

	form = url.Values{}
	form.Set("code", code)
	form.Set("id_token", idToken)
	form.Set("state", q.Get("state"))
	form.Set("session_state", uuid.NewString())
	return redirectURI, form, nil
}

// IssueIDToken signs an id_token for user. code, when set, is bound
// through the c_hash claim.
func (p *IdP) IssueIDToken(user User, nonce, code string) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		"iss": p.issuer,
		"aud": p.clientID,
		"sub": user.Subject,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(p.TokenLifetime).Unix(),
		"tid": TenantID,
	}
	if user.Name != "" {
		claims["name"] = user.Name
	}
	if user.Email != "" {
		claims["email"] = user.Email
		claims["unique_name"] = user.Email
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	if code != "" {
		claims["c_hash"] = oidc.CHash(code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = KeyID
	return token.SignedString(p.key)
}

func (p *IdP) handleDiscovery(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, p.Metadata())
}

func (p *IdP) handleKeys(w http.ResponseWriter, _ *http.Request) {
	pub := p.key.PublicKey
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"use": "sig",
			"alg": "RS256",
			"kid": KeyID,
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
}

func (p *IdP) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if r.PostForm.Get("grant_type") != "authorization_code" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	clientID := r.PostForm.Get("client_id")
	if id, _, ok := r.BasicAuth(); ok {
		clientID = id
	}
	if clientID != p.clientID {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_client"})
		return
	}

	code := r.PostForm.Get("code")
	p.mu.Lock()
	user, ok := p.codes[code]
	delete(p.codes, code)
	p.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant"})
		return
	}

	idToken, err := p.IssueIDToken(user, "", "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  uuid.NewString(),
		"refresh_token": uuid.NewString(),
		"token_type":    "Bearer",
		"expires_in":    int(p.TokenLifetime.Seconds()),
		"id_token":      idToken,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
