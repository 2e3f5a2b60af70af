package identity

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/protect"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Authentication schemes handled by SignInManager.
const (
	ApplicationScheme = "Identity.Application"
	ExternalScheme    = "Identity.External"
)

// Property keys carried on tickets.
const (
	PropLoginProvider = "LoginProvider"
	PropRedirectURI   = "RedirectURI"
	PropXsrf          = "XsrfId"
)

// Ticket is the authenticated session stored in a cookie.
type Ticket struct {
	Scheme     string            `json:"scheme"`
	Principal  *Principal        `json:"principal"`
	Properties map[string]string `json:"props,omitempty"`
	IssuedAt   time.Time         `json:"iat"`
	ExpiresAt  time.Time         `json:"exp"`
}

// SignInResult is the outcome of a sign-in attempt.
type SignInResult int

const (
	SignInFailed SignInResult = iota
	SignInSucceeded
	SignInNotAllowed
)

func (r SignInResult) String() string {
	switch r {
	case SignInSucceeded:
		return "Succeeded"
	case SignInNotAllowed:
		return "NotAllowed"
	default:
		return "Failed"
	}
}

// ExternalLoginInfo describes an identity established by an external
// provider but not yet linked to a local account.
type ExternalLoginInfo struct {
	Principal     *Principal
	LoginProvider string
	ProviderKey   string
	DisplayName   string
}

// SignInManager reads and writes the identity cookies.
type SignInManager struct {
	users   *UserManager
	opts    CookieOptions
	tickets protect.DataFormat[Ticket]
	now     func() time.Time
}

// NewSignInManager creates a SignInManager. Tickets are sealed with a child
// of p dedicated to identity cookies.
func NewSignInManager(users *UserManager, p *protect.Protector, opts CookieOptions) *SignInManager {
	return &SignInManager{
		users:   users,
		opts:    opts,
		tickets: protect.NewJSONFormat[Ticket](p.Purpose("identity", "cookies")),
		now:     time.Now,
	}
}

// Options returns the cookie options.
func (m *SignInManager) Options() CookieOptions { return m.opts }

func (m *SignInManager) cookieName(scheme string) string {
	if scheme == ExternalScheme {
		return m.opts.ExternalCookieName
	}
	return m.opts.ApplicationCookieName
}

func (m *SignInManager) lifetime(scheme string) time.Duration {
	if scheme == ExternalScheme {
		return m.opts.ExternalExpire
	}
	return m.opts.ExpireTimeSpan
}

// SignInPrincipal issues a cookie for scheme. A zero expires uses the
// scheme's configured lifetime. persistent cookies survive browser restarts.
func (m *SignInManager) SignInPrincipal(w http.ResponseWriter, scheme string, p *Principal, props map[string]string, expires time.Time, persistent bool) error {
	now := m.now()
	if expires.IsZero() {
		expires = now.Add(m.lifetime(scheme))
	}

	value, err := m.tickets.Protect(Ticket{
		Scheme:     scheme,
		Principal:  p,
		Properties: props,
		IssuedAt:   now,
		ExpiresAt:  expires,
	})
	if err != nil {
		return err
	}

	c := &http.Cookie{
		Name:     m.cookieName(scheme),
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if persistent {
		c.Expires = expires
		c.MaxAge = int(expires.Sub(now).Seconds())
	}
	http.SetCookie(w, c)
	return nil
}

// SignIn issues the application cookie for user.
func (m *SignInManager) SignIn(ctx context.Context, w http.ResponseWriter, user *store.User, persistent bool) (*Principal, error) {
	p, err := m.users.CreatePrincipal(ctx, user, ApplicationScheme)
	if err != nil {
		return nil, err
	}
	return p, m.SignInPrincipal(w, ApplicationScheme, p, nil, time.Time{}, persistent)
}

// Authenticate reads the ticket for scheme from r.
func (m *SignInManager) Authenticate(r *http.Request, scheme string) (*Ticket, error) {
	c, err := r.Cookie(m.cookieName(scheme))
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	t, err := m.tickets.Unprotect(c.Value)
	if err != nil {
		return nil, errors.Join(ErrNotAuthenticated, err)
	}
	if t.Scheme != scheme || t.Principal == nil || !m.now().Before(t.ExpiresAt) {
		return nil, ErrNotAuthenticated
	}
	return &t, nil
}

// SignOut removes the cookies of the given schemes, or of both schemes
// when none are named.
func (m *SignInManager) SignOut(w http.ResponseWriter, schemes ...string) {
	if len(schemes) == 0 {
		schemes = []string{ApplicationScheme, ExternalScheme}
	}
	for _, s := range schemes {
		http.SetCookie(w, &http.Cookie{
			Name:     m.cookieName(s),
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   m.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// PasswordSignIn checks credentials and signs the user in.
func (m *SignInManager) PasswordSignIn(ctx context.Context, w http.ResponseWriter, userName, password string, persistent bool) (SignInResult, error) {
	user, err := m.users.FindByName(ctx, userName)
	if errors.Is(err, ErrUserNotFound) {
		return SignInFailed, nil
	}
	if err != nil {
		return SignInFailed, err
	}
	if !m.users.CheckPassword(user, password) {
		return SignInFailed, nil
	}
	if _, err := m.SignIn(ctx, w, user, persistent); err != nil {
		return SignInFailed, err
	}
	return SignInSucceeded, nil
}

// ExternalLoginInfo reads the external cookie written by a remote
// authentication handler.
func (m *SignInManager) ExternalLoginInfo(r *http.Request) (*ExternalLoginInfo, error) {
	t, err := m.Authenticate(r, ExternalScheme)
	if err != nil {
		return nil, errors.Join(ErrExternalLoginInfo, err)
	}

	provider := t.Properties[PropLoginProvider]
	if provider == "" {
		if c, ok := t.Principal.FindFirst(ClaimLoginProvider); ok {
			provider = c.Value
		}
	}
	key := t.Principal.ID()
	if provider == "" || key == "" {
		return nil, ErrExternalLoginInfo
	}

	return &ExternalLoginInfo{
		Principal:     t.Principal,
		LoginProvider: provider,
		ProviderKey:   key,
		DisplayName:   provider,
	}, nil
}

// ExternalSignIn signs in the local account linked to info and clears the
// external cookie. It returns SignInFailed when no account is linked.
func (m *SignInManager) ExternalSignIn(ctx context.Context, w http.ResponseWriter, info *ExternalLoginInfo, persistent bool) (SignInResult, error) {
	user, err := m.users.FindByLogin(ctx, info.LoginProvider, info.ProviderKey)
	if errors.Is(err, ErrUserNotFound) {
		return SignInFailed, nil
	}
	if err != nil {
		return SignInFailed, err
	}
	if _, err := m.SignIn(ctx, w, user, persistent); err != nil {
		return SignInFailed, err
	}
	m.SignOut(w, ExternalScheme)
	return SignInSucceeded, nil
}
