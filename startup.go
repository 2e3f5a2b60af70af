package musicstore

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/musicstore/middlewares"
	"github.com/dmitrymomot/musicstore/pkg/config"
	"github.com/dmitrymomot/musicstore/pkg/logger"
)

// OpenID Connect client registration.
const (
	ClientID = "c99497aa-3ee2-4707-b8a8-c33f51323fef"
	// AuthorityFormat receives the tenant name.
	AuthorityFormat = "https://login.windows.net/%s.onmicrosoft.com"
	// DefaultAuthority is the authority when no tenant is configured.
	DefaultAuthority = "https://login.windows.net/[tenantName].onmicrosoft.com"
	// NonceLifetime keeps nonces valid for 36500 days.
	NonceLifetime = 36500 * 24 * time.Hour
)

// Authorization policy and the claim it requires.
const (
	ManageStorePolicy = "ManageStore"
	ManageStoreClaim  = "ManageStore"
	ManageStoreValue  = "Allowed"
)

// StatusCodePageLocation receives status code page redirects.
const StatusCodePageLocation = "~/Home/StatusCodePage"

// ServerOptions are read from the Server section.
type ServerOptions struct {
	Address         string        `env:"SERVER_ADDRESS" envDefault:":5001"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWNTIMEOUT" envDefault:"30s"`
	// SessionSweep is the cron spec that purges expired sessions.
	SessionSweep string `env:"SERVER_SESSIONSWEEP" envDefault:"@every 1m"`
}

// OpenIDConnectOptions are read from the OpenIdConnect section.
type OpenIDConnectOptions struct {
	TenantName   string `env:"OPENIDCONNECT_TENANTNAME" envDefault:"[tenantName]"`
	ClientSecret string `env:"OPENIDCONNECT_CLIENTSECRET"`
}

// Authority returns the provider URL for the configured tenant.
func (o OpenIDConnectOptions) Authority() string {
	return fmt.Sprintf(AuthorityFormat, o.TenantName)
}

// Startup composes the application from configuration.
type Startup struct {
	cfg  *config.Configuration
	log  *slog.Logger
	opts startupOptions
}

// NewStartup loads config.json, then the environment, then any explicit
// overrides. Later sources win.
func NewStartup(opts ...Option) (*Startup, error) {
	o := startupOptions{configFile: DefaultConfigFile}
	for _, opt := range opts {
		opt(&o)
	}

	b := config.NewBuilder().
		AddJSONFile(o.configFile, true).
		AddEnvironmentVariables("")
	if len(o.overrides) > 0 {
		b.AddMap(o.overrides)
	}
	cfg, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := o.logger
	if log == nil {
		var lc logger.Config
		if err := cfg.Bind(&lc); err != nil {
			return nil, fmt.Errorf("bind logging options: %w", err)
		}
		log = logger.New(lc, middlewares.RequestIDExtractor(), middlewares.UserIDExtractor())
	}

	return &Startup{cfg: cfg, log: log, opts: o}, nil
}

// Configuration returns the merged configuration.
func (s *Startup) Configuration() *config.Configuration { return s.cfg }

// Logger returns the application logger.
func (s *Startup) Logger() *slog.Logger { return s.log }
