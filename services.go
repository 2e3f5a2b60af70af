package musicstore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"

	"github.com/dmitrymomot/musicstore/controllers"
	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/middlewares"
	"github.com/dmitrymomot/musicstore/pkg/authz"
	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/config"
	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/mailer"
	"github.com/dmitrymomot/musicstore/pkg/mailer/resend"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/oidc"
	"github.com/dmitrymomot/musicstore/pkg/oidc/mockidp"
	"github.com/dmitrymomot/musicstore/pkg/protect"
	"github.com/dmitrymomot/musicstore/pkg/realtime"
	"github.com/dmitrymomot/musicstore/pkg/redis"
	"github.com/dmitrymomot/musicstore/pkg/sampledata"
	"github.com/dmitrymomot/musicstore/pkg/session"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/pkg/store/memory"
	"github.com/dmitrymomot/musicstore/pkg/store/postgres"
	"github.com/dmitrymomot/musicstore/views"
)

// connectTimeout bounds store and cache connection attempts.
const connectTimeout = 30 * time.Second

// ConfigureServices registers every service provider on c: configuration,
// data access, identity, real-time messaging, caching and sessions, then
// authorization, OpenID Connect and the MVC controllers.
func (s *Startup) ConfigureServices(c *dig.Container) error {
	providers := []any{
		func() *config.Configuration { return s.cfg },
		func() *slog.Logger { return s.log },
		bind[ServerOptions],
		bind[OpenIDConnectOptions],

		store.LoadOptions,
		provideStore,

		identity.LoadOptions,
		bind[mailer.Config],
		bind[resend.Config],
		provideMailer,
		bind[dataProtectionOptions],
		provideProtector,
		provideUserManager,
		identity.NewRoleManager,
		provideSignInManager,

		bind[realtimeOptions],
		provideRealtime,
		realtime.NewAnnouncer,

		bind[cache.Config],
		bind[redis.Config],
		provideRedis,
		provideAlbumCache,
		bind[session.Config],
		provideSessions,

		provideAuthorizer,

		provideIdentityProvider,
		provideOpenIDConnect,

		views.New,
		provideRouter,
		provideMetrics,

		sampledata.LoadOptions,
		provideSeeder,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return fmt.Errorf("register %T: %w", p, err)
		}
	}
	return nil
}

func bind[T any](cfg *config.Configuration) (T, error) {
	var v T
	err := cfg.Bind(&v)
	return v, err
}

func provideStore(opts store.Options, log *slog.Logger) (store.Context, error) {
	provider := store.Detect(opts)
	log.Info("data store selected", slog.String("provider", string(provider)))
	if provider == store.ProviderMemory {
		return memory.New(), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return postgres.Open(ctx, postgres.ConfigFromOptions(opts), log)
}

func provideMailer(cfg mailer.Config, rc resend.Config, log *slog.Logger) (*mailer.Mailer, error) {
	switch cfg.Provider {
	case "", "log":
		return mailer.New(mailer.NewLogSender(log), cfg), nil
	case "resend":
		if rc.APIKey == "" {
			return nil, errors.New("mailer: resend requires Resend:ApiKey")
		}
		return mailer.New(resend.New(rc), cfg), nil
	}
	return nil, fmt.Errorf("mailer: unknown provider %q", cfg.Provider)
}

type dataProtectionOptions struct {
	// Secret keys cookies and protected payloads. A random key is used when
	// empty, so cookies do not survive a restart.
	Secret string `env:"DATAPROTECTION_SECRET"`
}

func provideProtector(opts dataProtectionOptions) (*protect.Protector, error) {
	if opts.Secret == "" {
		return protect.NewRandom()
	}
	return protect.New([]byte(opts.Secret))
}

func provideUserManager(db store.Context, opts identity.Options, m *mailer.Mailer, log *slog.Logger) (*identity.UserManager, error) {
	key := []byte(opts.Tokens.Secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	return identity.NewUserManager(db, opts,
		identity.WithLogger(log),
		identity.WithTokenProvider(identity.NewDataProtectorTokenProvider(key, opts.Tokens.DataProtectorLifetime)),
		identity.WithTokenProvider(identity.NewEmailTokenProvider(opts.Tokens.CodeStep)),
		identity.WithTokenProvider(identity.NewPhoneNumberTokenProvider(opts.Tokens.CodeStep)),
		identity.WithMessageProvider(identity.NewEmailMessageProvider(m)),
		identity.WithMessageProvider(identity.NewSMSMessageProvider(identity.NewLogSMSSender(log))),
	), nil
}

func provideSignInManager(users *identity.UserManager, p *protect.Protector, opts identity.Options) *identity.SignInManager {
	return identity.NewSignInManager(users, p, opts.Cookies)
}

// realtimeOptions are read from the Realtime section. Without allowed
// origins the websocket handshake requires a same-origin request.
type realtimeOptions struct {
	AllowedOrigins []string `env:"REALTIME_ALLOWEDORIGINS" envSeparator:","`
}

func provideRealtime(o realtimeOptions, log *slog.Logger) *realtime.Server {
	opts := []realtime.Option{realtime.WithLogger(log)}
	if len(o.AllowedOrigins) > 0 {
		opts = append(opts, realtime.AllowOrigins(o.AllowedOrigins...))
	}
	return realtime.New(opts...)
}

// redisConn holds the optional Redis client. client is nil when no
// Cache:RedisUrl is configured.
type redisConn struct {
	client goredis.UniversalClient
}

func provideRedis(cfg redis.Config, log *slog.Logger) (*redisConn, error) {
	if !cfg.Enabled() {
		return &redisConn{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	client, err := redis.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("redis cache connected")
	return &redisConn{client: client}, nil
}

func provideAlbumCache(cfg cache.Config, rc *redisConn) cache.Cache[[]store.Album] {
	return cache.New[[]store.Album](cfg, rc.client, "albums")
}

func provideSessions(cfg cache.Config, sc session.Config, rc *redisConn, log *slog.Logger) *internal.SessionManager {
	backend := cache.New[*session.Session](cfg, rc.client, "sessions")
	return internal.NewSessionManager(session.NewCacheStore(backend), sc, log)
}

func provideAuthorizer() *authz.Authorizer {
	opts := authz.NewOptions()
	opts.AddPolicy(ManageStorePolicy, authz.NewPolicyBuilder().
		RequireClaim(ManageStoreClaim, ManageStoreValue).
		Build())
	return authz.New(opts)
}

func provideIdentityProvider(o OpenIDConnectOptions) (*mockidp.IdP, error) {
	return mockidp.New(o.Authority(), ClientID)
}

// provideOpenIDConnect wires the handler to the in-process provider. Token
// lifetimes are not validated and the sign-in does not follow the id_token
// expiry.
func provideOpenIDConnect(o OpenIDConnectOptions, idp *mockidp.IdP, signIn *identity.SignInManager, log *slog.Logger) (*oidc.Handler, error) {
	validation := oidc.DefaultTokenValidation()
	validation.ValidateLifetime = false

	return oidc.New(oidc.Options{
		Authority:        o.Authority(),
		ClientID:         ClientID,
		ClientSecret:     o.ClientSecret,
		Backchannel:      idp.Transport(),
		StringDataFormat: mockidp.StringFormat{},
		StateDataFormat:  mockidp.StateFormat{},
		TokenValidation:  validation,
		ProtocolValidator: oidc.ProtocolValidator{
			RequireNonce:  true,
			NonceLifetime: NonceLifetime,
		},
		UseTokenLifetime: false,
		Notifications:    idp.Notifications(),
		SignInScheme:     identity.ExternalScheme,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			if !internal.ReportError(r, fmt.Errorf("openid connect callback: %w", err)) {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		},
		Logger: log,
	}, signIn)
}

type routerDeps struct {
	dig.In

	DB         store.Context
	Albums     cache.Cache[[]store.Album]
	Announcer  *realtime.Announcer
	Users      *identity.UserManager
	SignIn     *identity.SignInManager
	OIDC       *oidc.Handler
	Authorizer *authz.Authorizer
}

// provideRouter maps the area, default and api routes, in that order, and
// registers the controllers.
func provideRouter(d routerDeps) (*mvc.Router, error) {
	r := mvc.New()
	routes := []struct {
		name     string
		template string
		defaults map[string]string
	}{
		{"areaRoute", "{area:exists}/{controller}/{action}", map[string]string{"action": "Index"}},
		{"default", "{controller}/{action}/{id?}", map[string]string{"controller": "Home", "action": "Index"}},
		{"api", "{controller}/{id?}", nil},
	}
	for _, rt := range routes {
		if err := r.MapRoute(rt.name, rt.template, rt.defaults); err != nil {
			return nil, err
		}
	}

	guard := middlewares.Authorize(d.Authorizer, ManageStorePolicy, d.SignIn.Options())
	r.Register(
		controllers.NewHome(d.DB, d.Albums),
		controllers.NewStore(d.DB),
		controllers.NewAccount(d.Users, d.SignIn, d.OIDC),
		controllers.NewStoreManager(d.DB, d.Albums, d.Announcer, guard),
		controllers.NewAlbums(d.DB),
	)
	return r, nil
}

func provideMetrics() *middlewares.Metrics {
	return middlewares.NewMetrics("musicstore")
}

func provideSeeder(db store.Context, users *identity.UserManager, roles *identity.RoleManager, opts sampledata.Options, log *slog.Logger) *sampledata.Seeder {
	return sampledata.New(db, users, roles, opts, log)
}
