package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/oidc"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Account signs users in through the external provider and out again.
type Account struct {
	users  *identity.UserManager
	signIn *identity.SignInManager
	oidc   *oidc.Handler
}

func NewAccount(users *identity.UserManager, signIn *identity.SignInManager, h *oidc.Handler) *Account {
	return &Account{users: users, signIn: signIn, oidc: h}
}

func (a *Account) Register(c *mvc.Controllers) {
	c.Register("", "Account",
		mvc.GET("Login", a.login),
		mvc.POST("ExternalLogin", a.externalLogin),
		mvc.GET("ExternalLoginCallback", a.externalLoginCallback),
		mvc.POST("LogOff", a.logOff),
		mvc.GET("AccessDenied", a.accessDenied),
	)
}

type loginModel struct {
	ReturnURL string
	Providers []string
}

func (a *Account) login(c internal.Context) error {
	return render(c, http.StatusOK, "account/login", "Log in", loginModel{
		ReturnURL: localURL(c.Query("ReturnUrl")),
		Providers: []string{a.oidc.Options().Scheme},
	})
}

// externalLogin challenges the chosen provider. The provider sends the
// browser back to ExternalLoginCallback once the external cookie is set.
func (a *Account) externalLogin(c internal.Context) error {
	provider := c.Form("provider")
	if provider != a.oidc.Options().Scheme {
		return internal.ErrBadRequest("unknown login provider")
	}
	callback := "/Account/ExternalLoginCallback?" + url.Values{
		"ReturnUrl": {localURL(c.Form("ReturnUrl"))},
	}.Encode()
	return a.oidc.Challenge(c.Response(), c.Request(), &oidc.Properties{RedirectURI: callback})
}

// externalLoginCallback signs in the account linked to the external
// identity, creating and linking one on first use.
func (a *Account) externalLoginCallback(c internal.Context) error {
	returnURL := c.Query("ReturnUrl")
	info, err := a.signIn.ExternalLoginInfo(c.Request())
	if err != nil {
		c.LogInfo("external login info missing", slog.Any("error", err))
		return c.Redirect(http.StatusFound, "/Account/Login")
	}

	res, err := a.signIn.ExternalSignIn(c, c.Response(), info, false)
	if err != nil {
		return err
	}
	if res == identity.SignInSucceeded {
		return redirectLocal(c, returnURL)
	}

	if err := a.provision(c, info); err != nil {
		c.LogWarn("external account provisioning failed",
			slog.String("provider", info.LoginProvider),
			slog.Any("error", err),
		)
		return render(c, http.StatusOK, "account/externalloginfailure", "Login Failure", nil)
	}
	res, err = a.signIn.ExternalSignIn(c, c.Response(), info, false)
	if err != nil {
		return err
	}
	if res != identity.SignInSucceeded {
		return render(c, http.StatusOK, "account/externalloginfailure", "Login Failure", nil)
	}
	return redirectLocal(c, returnURL)
}

// Claims minted by the sign-in itself are not copied to the local account.
var transientClaims = map[string]bool{
	identity.ClaimNameIdentifier: true,
	identity.ClaimName:           true,
	identity.ClaimEmail:          true,
	identity.ClaimLoginProvider:  true,
	identity.ClaimSecurityStamp:  true,
}

func (a *Account) provision(c internal.Context, info *identity.ExternalLoginInfo) error {
	name := info.Principal.Name()
	if name == "" {
		name = info.ProviderKey
	}
	email, _ := info.Principal.FindFirst(identity.ClaimEmail)

	user := &store.User{UserName: name, Email: email.Value}
	err := a.users.Create(c, user, "")
	if errors.Is(err, identity.ErrDuplicateUserName) && name != info.ProviderKey {
		user = &store.User{UserName: info.ProviderKey, Email: email.Value}
		err = a.users.Create(c, user, "")
	}
	if err != nil {
		return err
	}

	if err := a.users.AddLogin(c, user, store.UserLogin{
		LoginProvider: info.LoginProvider,
		ProviderKey:   info.ProviderKey,
		DisplayName:   info.DisplayName,
	}); err != nil {
		return err
	}
	for _, cl := range info.Principal.Claims {
		if transientClaims[cl.Type] {
			continue
		}
		if err := a.users.AddClaim(c, user, identity.Claim{Type: cl.Type, Value: cl.Value}); err != nil {
			return err
		}
	}
	c.LogInfo("external account linked", slog.String("user_id", user.ID), slog.String("provider", info.LoginProvider))
	return nil
}

func (a *Account) logOff(c internal.Context) error {
	a.signIn.SignOut(c.Response())
	return c.Redirect(http.StatusFound, "/")
}

func (a *Account) accessDenied(c internal.Context) error {
	return render(c, http.StatusOK, "account/accessdenied", "Access Denied", nil)
}
