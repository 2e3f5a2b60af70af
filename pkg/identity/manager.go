package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// UserManager is the entry point for account operations.
type UserManager struct {
	users    store.UserRepository
	roles    store.RoleRepository
	opts     Options
	hasher   PasswordHasher
	tokens   map[string]TokenProvider
	messages map[string]MessageProvider
	log      *slog.Logger
}

// ManagerOption configures a UserManager.
type ManagerOption func(*UserManager)

// WithTokenProvider registers a token provider under its name.
func WithTokenProvider(p TokenProvider) ManagerOption {
	return func(m *UserManager) { m.tokens[p.Name()] = p }
}

// WithMessageProvider registers a message provider under its name.
func WithMessageProvider(p MessageProvider) ManagerOption {
	return func(m *UserManager) { m.messages[p.Name()] = p }
}

// WithPasswordHasher replaces the bcrypt hasher.
func WithPasswordHasher(h PasswordHasher) ManagerOption {
	return func(m *UserManager) { m.hasher = h }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ManagerOption {
	return func(m *UserManager) { m.log = log }
}

// NewUserManager creates a UserManager over the given store context.
func NewUserManager(db store.Context, opts Options, options ...ManagerOption) *UserManager {
	m := &UserManager{
		users:    db.Users(),
		roles:    db.Roles(),
		opts:     opts,
		hasher:   BcryptHasher{},
		tokens:   make(map[string]TokenProvider),
		messages: make(map[string]MessageProvider),
		log:      slog.Default(),
	}
	for _, o := range options {
		o(m)
	}
	m.log = m.log.With(slog.String("component", "identity"))
	return m
}

// Options returns the identity options.
func (m *UserManager) Options() Options { return m.opts }

// Create validates and stores a new user. An empty password creates an
// account that can only sign in through an external provider.
func (m *UserManager) Create(ctx context.Context, user *store.User, password string) error {
	if strings.TrimSpace(user.UserName) == "" {
		return ErrInvalidUserName
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.NormalizedUserName = store.Normalize(user.UserName)
	user.NormalizedEmail = store.Normalize(user.Email)
	user.SecurityStamp = uuid.NewString()

	if _, err := m.users.GetByNormalizedName(ctx, user.NormalizedUserName); err == nil {
		return ErrDuplicateUserName
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if m.opts.User.RequireUniqueEmail && user.NormalizedEmail != "" {
		if _, err := m.users.GetByNormalizedEmail(ctx, user.NormalizedEmail); err == nil {
			return ErrDuplicateEmail
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}

	if password != "" {
		if err := ValidatePassword(m.opts.Password, password); err != nil {
			return err
		}
		hash, err := m.hasher.Hash(password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}

	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return ErrDuplicateUserName
		}
		return err
	}
	m.log.InfoContext(ctx, "user created", slog.String("user_id", user.ID))
	return nil
}

func notFound(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

func (m *UserManager) FindByID(ctx context.Context, id string) (*store.User, error) {
	u, err := m.users.Get(ctx, id)
	return u, notFound(err)
}

func (m *UserManager) FindByName(ctx context.Context, name string) (*store.User, error) {
	u, err := m.users.GetByNormalizedName(ctx, store.Normalize(name))
	return u, notFound(err)
}

func (m *UserManager) FindByEmail(ctx context.Context, email string) (*store.User, error) {
	u, err := m.users.GetByNormalizedEmail(ctx, store.Normalize(email))
	return u, notFound(err)
}

// CheckPassword reports whether password matches the stored hash.
func (m *UserManager) CheckPassword(user *store.User, password string) bool {
	if user.PasswordHash == "" {
		return false
	}
	return m.hasher.Verify(user.PasswordHash, password) == nil
}

// UpdateSecurityStamp invalidates previously issued tokens.
func (m *UserManager) UpdateSecurityStamp(ctx context.Context, user *store.User) error {
	user.SecurityStamp = uuid.NewString()
	return m.users.Update(ctx, user)
}

func (m *UserManager) AddClaim(ctx context.Context, user *store.User, c Claim) error {
	return m.users.AddClaim(ctx, &store.UserClaim{UserID: user.ID, Type: c.Type, Value: c.Value})
}

func (m *UserManager) Claims(ctx context.Context, user *store.User) ([]Claim, error) {
	stored, err := m.users.Claims(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Claim, 0, len(stored))
	for _, c := range stored {
		out = append(out, Claim{Type: c.Type, Value: c.Value})
	}
	return out, nil
}

// AddToRole adds the user to an existing role.
func (m *UserManager) AddToRole(ctx context.Context, user *store.User, role string) error {
	r, err := m.roles.GetByNormalizedName(ctx, store.Normalize(role))
	if err != nil {
		return err
	}
	err = m.users.AddToRole(ctx, user.ID, r.ID)
	if errors.Is(err, store.ErrDuplicate) {
		return nil
	}
	return err
}

func (m *UserManager) IsInRole(ctx context.Context, user *store.User, role string) (bool, error) {
	roles, err := m.users.Roles(ctx, user.ID)
	if err != nil {
		return false, err
	}
	for _, r := range roles {
		if r.NormalizedName == store.Normalize(role) {
			return true, nil
		}
	}
	return false, nil
}

func (m *UserManager) AddLogin(ctx context.Context, user *store.User, login store.UserLogin) error {
	login.UserID = user.ID
	return m.users.AddLogin(ctx, login)
}

func (m *UserManager) FindByLogin(ctx context.Context, provider, key string) (*store.User, error) {
	u, err := m.users.FindByLogin(ctx, provider, key)
	return u, notFound(err)
}

// GenerateUserToken issues a Default provider token for purpose,
// for example "ResetPassword" or "Confirmation".
func (m *UserManager) GenerateUserToken(ctx context.Context, user *store.User, purpose string) (string, error) {
	p, ok := m.tokens[DefaultProvider]
	if !ok {
		return "", tokenProviderError(DefaultProvider)
	}
	return p.Generate(ctx, purpose, user)
}

func (m *UserManager) VerifyUserToken(ctx context.Context, user *store.User, purpose, token string) bool {
	p, ok := m.tokens[DefaultProvider]
	return ok && p.Validate(ctx, purpose, token, user)
}

const twoFactorPurpose = "TwoFactor"

// GenerateTwoFactorToken issues a code through the named provider.
func (m *UserManager) GenerateTwoFactorToken(ctx context.Context, user *store.User, provider string) (string, error) {
	p, ok := m.tokens[provider]
	if !ok {
		return "", tokenProviderError(provider)
	}
	return p.Generate(ctx, twoFactorPurpose+":"+provider, user)
}

func (m *UserManager) VerifyTwoFactorToken(ctx context.Context, user *store.User, provider, token string) bool {
	p, ok := m.tokens[provider]
	return ok && p.Validate(ctx, twoFactorPurpose+":"+provider, token, user)
}

// SendEmail delivers a message to the user's email address.
func (m *UserManager) SendEmail(ctx context.Context, user *store.User, subject, body string) error {
	return m.send(ctx, EmailProvider, user.Email, subject, body)
}

// SendSMS delivers a message to the user's phone number.
func (m *UserManager) SendSMS(ctx context.Context, user *store.User, body string) error {
	return m.send(ctx, PhoneNumberProvider, user.PhoneNumber, "", body)
}

// SendTwoFactorCode generates a code with provider and sends it over the
// matching message channel.
func (m *UserManager) SendTwoFactorCode(ctx context.Context, user *store.User, provider string) error {
	code, err := m.GenerateTwoFactorToken(ctx, user, provider)
	if err != nil {
		return err
	}
	body := "Your security code is: " + code
	if provider == EmailProvider {
		return m.SendEmail(ctx, user, "Security Code", body)
	}
	return m.SendSMS(ctx, user, body)
}

func (m *UserManager) send(ctx context.Context, provider, to, subject, body string) error {
	p, ok := m.messages[provider]
	if !ok {
		return ErrMessageProvider
	}
	if to == "" {
		return ErrNoDestination
	}
	return p.Send(ctx, Message{Destination: to, Subject: subject, Body: body})
}

// CreatePrincipal builds the application principal for user.
func (m *UserManager) CreatePrincipal(ctx context.Context, user *store.User, authenticationType string) (*Principal, error) {
	p := NewPrincipal(authenticationType,
		Claim{Type: ClaimNameIdentifier, Value: user.ID},
		Claim{Type: ClaimName, Value: user.UserName},
		Claim{Type: ClaimSecurityStamp, Value: user.SecurityStamp},
	)
	if user.Email != "" {
		p.AddClaim(Claim{Type: ClaimEmail, Value: user.Email})
	}

	roles, err := m.users.Roles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		p.AddClaim(Claim{Type: ClaimRole, Value: r.Name})
	}

	claims, err := m.Claims(ctx, user)
	if err != nil {
		return nil, err
	}
	p.AddClaim(claims...)
	return p, nil
}

// RoleManager manages roles.
type RoleManager struct {
	roles store.RoleRepository
}

func NewRoleManager(db store.Context) *RoleManager {
	return &RoleManager{roles: db.Roles()}
}

func (m *RoleManager) Create(ctx context.Context, name string) (*store.Role, error) {
	r := &store.Role{ID: uuid.NewString(), Name: name, NormalizedName: store.Normalize(name)}
	if err := m.roles.Create(ctx, r); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateRole
		}
		return nil, err
	}
	return r, nil
}

func (m *RoleManager) Exists(ctx context.Context, name string) (bool, error) {
	_, err := m.roles.GetByNormalizedName(ctx, store.Normalize(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (m *RoleManager) FindByName(ctx context.Context, name string) (*store.Role, error) {
	return m.roles.GetByNormalizedName(ctx, store.Normalize(name))
}
