package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/logger"
	"github.com/dmitrymomot/musicstore/pkg/mailer"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/pkg/store/memory"
)

type smsRecorder struct {
	mu   sync.Mutex
	sent map[string]string
}

func (s *smsRecorder) SendSMS(_ context.Context, to, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sent == nil {
		s.sent = make(map[string]string)
	}
	s.sent[to] = body
	return nil
}

type fixture struct {
	db     *memory.Store
	users  *identity.UserManager
	roles  *identity.RoleManager
	emails *mailer.LogSender
	sms    *smsRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := memory.New()
	emails := mailer.NewLogSender(logger.NewNope())
	sms := &smsRecorder{}

	users := identity.NewUserManager(db, identity.DefaultOptions(),
		identity.WithPasswordHasher(identity.BcryptHasher{Cost: bcrypt.MinCost}),
		identity.WithLogger(logger.NewNope()),
		identity.WithTokenProvider(identity.NewDataProtectorTokenProvider([]byte("0123456789abcdef0123456789abcdef"), 24*time.Hour)),
		identity.WithTokenProvider(identity.NewEmailTokenProvider(3*time.Minute)),
		identity.WithTokenProvider(identity.NewPhoneNumberTokenProvider(3*time.Minute)),
		identity.WithMessageProvider(identity.NewEmailMessageProvider(mailer.New(emails, mailer.Config{From: "store@test.com"}))),
		identity.WithMessageProvider(identity.NewSMSMessageProvider(sms)),
	)

	return &fixture{db: db, users: users, roles: identity.NewRoleManager(db), emails: emails, sms: sms}
}

func (f *fixture) admin(t *testing.T) *store.User {
	t.Helper()

	u := &store.User{UserName: "Administrator@test.com", Email: "Administrator@test.com", PhoneNumber: "+15550100"}
	require.NoError(t, f.users.Create(context.Background(), u, "YouShouldChangeThisPassword1!"))
	return u
}

func TestUserManager_Create(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	u := f.admin(t)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ADMINISTRATOR@TEST.COM", u.NormalizedUserName)
	assert.NotEmpty(t, u.SecurityStamp)
	assert.True(t, f.users.CheckPassword(u, "YouShouldChangeThisPassword1!"))
	assert.False(t, f.users.CheckPassword(u, "nope"))

	found, err := f.users.FindByName(ctx, "administrator@TEST.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	found, err = f.users.FindByEmail(ctx, "Administrator@test.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = f.users.FindByID(ctx, "missing")
	require.ErrorIs(t, err, identity.ErrUserNotFound)

	err = f.users.Create(ctx, &store.User{UserName: "ADMINISTRATOR@test.com"}, "YouShouldChangeThisPassword1!")
	require.ErrorIs(t, err, identity.ErrDuplicateUserName)

	err = f.users.Create(ctx, &store.User{UserName: "weak@test.com"}, "weak")
	require.ErrorIs(t, err, identity.ErrPasswordTooShort)

	err = f.users.Create(ctx, &store.User{UserName: " "}, "")
	require.ErrorIs(t, err, identity.ErrInvalidUserName)

	external := &store.User{UserName: "external@test.com"}
	require.NoError(t, f.users.Create(ctx, external, ""))
	assert.False(t, f.users.CheckPassword(external, ""))
}

func TestUserManager_ClaimsRolesLogins(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	u := f.admin(t)

	require.NoError(t, f.users.AddClaim(ctx, u, identity.Claim{Type: "ManageStore", Value: "Allowed"}))

	_, err := f.roles.Create(ctx, "Administrator")
	require.NoError(t, err)
	_, err = f.roles.Create(ctx, "administrator")
	require.ErrorIs(t, err, identity.ErrDuplicateRole)

	exists, err := f.roles.Exists(ctx, "ADMINISTRATOR")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, f.users.AddToRole(ctx, u, "Administrator"))
	require.NoError(t, f.users.AddToRole(ctx, u, "Administrator"), "adding twice is a no-op")

	in, err := f.users.IsInRole(ctx, u, "administrator")
	require.NoError(t, err)
	assert.True(t, in)

	require.NoError(t, f.users.AddLogin(ctx, u, store.UserLogin{LoginProvider: "OpenIdConnect", ProviderKey: "sub-1"}))
	byLogin, err := f.users.FindByLogin(ctx, "OpenIdConnect", "sub-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byLogin.ID)

	p, err := f.users.CreatePrincipal(ctx, u, identity.ApplicationScheme)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.ID())
	assert.Equal(t, u.UserName, p.Name())
	assert.True(t, p.IsInRole("Administrator"))
	assert.True(t, p.HasClaim("ManageStore", "Allowed"))
	assert.True(t, p.HasClaim(identity.ClaimEmail, u.Email))
}

func TestUserManager_Tokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	u := f.admin(t)

	token, err := f.users.GenerateUserToken(ctx, u, "Confirmation")
	require.NoError(t, err)
	assert.True(t, f.users.VerifyUserToken(ctx, u, "Confirmation", token))

	require.NoError(t, f.users.UpdateSecurityStamp(ctx, u))
	assert.False(t, f.users.VerifyUserToken(ctx, u, "Confirmation", token))

	code, err := f.users.GenerateTwoFactorToken(ctx, u, identity.EmailProvider)
	require.NoError(t, err)
	assert.True(t, f.users.VerifyTwoFactorToken(ctx, u, identity.EmailProvider, code))
	assert.False(t, f.users.VerifyTwoFactorToken(ctx, u, "Authenticator", code))

	_, err = f.users.GenerateTwoFactorToken(ctx, u, "Authenticator")
	require.ErrorIs(t, err, identity.ErrTokenProvider)
}

func TestUserManager_Messages(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	u := f.admin(t)

	require.NoError(t, f.users.SendTwoFactorCode(ctx, u, identity.EmailProvider))
	sent := f.emails.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Security Code", sent[0].Subject)
	assert.Contains(t, sent[0].Text, "Your security code is: ")

	require.NoError(t, f.users.SendTwoFactorCode(ctx, u, identity.PhoneNumberProvider))
	assert.Contains(t, f.sms.sent["+15550100"], "Your security code is: ")

	u.PhoneNumber = ""
	require.ErrorIs(t, f.users.SendSMS(ctx, u, "hi"), identity.ErrNoDestination)

	bare := identity.NewUserManager(memory.New(), identity.DefaultOptions())
	require.ErrorIs(t, bare.SendEmail(ctx, u, "s", "b"), identity.ErrMessageProvider)
}
