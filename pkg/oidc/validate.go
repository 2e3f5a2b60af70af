package oidc

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// NonceCookiePrefix starts the name of every nonce cookie. The rest of the
// name is the nonce protected by StringDataFormat.
const NonceCookiePrefix = ".oidc.nonce."

type idTokenClaims struct {
	Nonce             string `json:"nonce,omitempty"`
	CHash             string `json:"c_hash,omitempty"`
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	UniqueName        string `json:"unique_name,omitempty"`
	Email             string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// validateIDToken verifies the signature, then checks claims according to
// TokenValidation. Claims validation in the jwt package is disabled so that
// lifetime checks can be switched off independently.
func (h *Handler) validateIDToken(raw string, cfg *Configuration, keyFunc jwt.Keyfunc) (*jwt.Token, *idTokenClaims, error) {
	claims := &idTokenClaims{}
	algs := cfg.SigningAlgorithms
	if len(algs) == 0 {
		algs = []string{"RS256"}
	}
	token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
		jwt.WithValidMethods(algs),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return nil, nil, errors.Join(ErrInvalidIDToken, err)
	}

	v := h.opts.TokenValidation
	if v.ValidateIssuer {
		want := v.ValidIssuer
		if want == "" {
			want = cfg.Issuer
		}
		if claims.Issuer != want {
			return nil, nil, ErrInvalidIssuer
		}
	}
	if v.ValidateAudience && !slices.Contains(claims.Audience, h.opts.ClientID) {
		return nil, nil, ErrInvalidAudience
	}
	if v.ValidateLifetime {
		now := h.now()
		if claims.ExpiresAt == nil || now.After(claims.ExpiresAt.Add(v.ClockSkew)) {
			return nil, nil, ErrTokenExpired
		}
		if claims.NotBefore != nil && now.Add(v.ClockSkew).Before(claims.NotBefore.Time) {
			return nil, nil, ErrTokenExpired
		}
	}
	return token, claims, nil
}

// newNonce returns "<unix nanoseconds>.<random>". The timestamp lets the
// callback enforce NonceLifetime.
func newNonce(now time.Time) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strconv.FormatInt(now.UnixNano(), 10) + "." + base64.RawURLEncoding.EncodeToString(b), nil
}

// writeNonceCookie sets the nonce cookie. The form_post callback is a
// cross-site POST, which only SameSite=None cookies survive, and browsers
// accept those only with Secure. Over plain HTTP the attribute is left out
// so the browser default applies.
func (h *Handler) writeNonceCookie(w http.ResponseWriter, r *http.Request, nonce string) error {
	protected, err := h.opts.StringDataFormat.Protect(nonce)
	if err != nil {
		return err
	}
	c := &http.Cookie{
		Name:     NonceCookiePrefix + protected,
		Value:    "N",
		Path:     "/",
		Expires:  h.now().Add(h.opts.ProtocolValidator.NonceLifetime),
		HttpOnly: true,
		SameSite: http.SameSiteDefaultMode,
	}
	if r.TLS != nil {
		c.Secure = true
		c.SameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, c)
	return nil
}

// validateNonce matches the id_token nonce to a nonce cookie, deletes the
// cookie and checks the nonce age.
func (h *Handler) validateNonce(w http.ResponseWriter, r *http.Request, nonce string) error {
	pv := h.opts.ProtocolValidator
	if nonce == "" {
		if pv.RequireNonce {
			return ErrNonceMissing
		}
		return nil
	}

	found := false
	for _, c := range r.Cookies() {
		protected, ok := strings.CutPrefix(c.Name, NonceCookiePrefix)
		if !ok {
			continue
		}
		v, err := h.opts.StringDataFormat.Unprotect(protected)
		if err != nil || v != nonce {
			continue
		}
		found = true
		http.SetCookie(w, &http.Cookie{Name: c.Name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
		break
	}
	if !found {
		return ErrNonceNotFound
	}

	ts, _, ok := strings.Cut(nonce, ".")
	if !ok {
		return ErrNonceExpired
	}
	nanos, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrNonceExpired
	}
	if h.now().Sub(time.Unix(0, nanos)) > pv.NonceLifetime {
		return ErrNonceExpired
	}
	return nil
}

// validateCHash checks the code hash when the provider sent one.
func validateCHash(cHash, code string) error {
	if cHash == "" {
		return nil
	}
	if CHash(code) != cHash {
		return ErrInvalidCHash
	}
	return nil
}

// CHash computes the c_hash claim for code under RS256.
func CHash(code string) string {
	sum := sha256.Sum256([]byte(code))
	return base64.RawURLEncoding.EncodeToString(sum[:len(sum)/2])
}
