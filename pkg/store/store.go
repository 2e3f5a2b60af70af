package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/config"
)

// Provider names a storage backend.
type Provider string

const (
	ProviderMemory   Provider = "memory"
	ProviderPostgres Provider = "postgres"
)

type GenreRepository interface {
	List(ctx context.Context) ([]Genre, error)
	Get(ctx context.Context, id int) (*Genre, error)
	GetByName(ctx context.Context, name string) (*Genre, error)
	Create(ctx context.Context, g *Genre) error
	Count(ctx context.Context) (int, error)
}

type ArtistRepository interface {
	List(ctx context.Context) ([]Artist, error)
	Get(ctx context.Context, id int) (*Artist, error)
	GetByName(ctx context.Context, name string) (*Artist, error)
	Create(ctx context.Context, a *Artist) error
}

type AlbumRepository interface {
	List(ctx context.Context, f AlbumFilter) ([]Album, error)
	Get(ctx context.Context, id int) (*Album, error)
	Create(ctx context.Context, a *Album) error
	Count(ctx context.Context) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByNormalizedName(ctx context.Context, name string) (*User, error)
	GetByNormalizedEmail(ctx context.Context, email string) (*User, error)

	AddClaim(ctx context.Context, c *UserClaim) error
	Claims(ctx context.Context, userID string) ([]UserClaim, error)

	AddLogin(ctx context.Context, l UserLogin) error
	FindByLogin(ctx context.Context, provider, key string) (*User, error)
	Logins(ctx context.Context, userID string) ([]UserLogin, error)

	AddToRole(ctx context.Context, userID, roleID string) error
	Roles(ctx context.Context, userID string) ([]Role, error)
}

type RoleRepository interface {
	Create(ctx context.Context, r *Role) error
	GetByNormalizedName(ctx context.Context, name string) (*Role, error)
}

// Context is the store context bound into the service container.
type Context interface {
	Genres() GenreRepository
	Artists() ArtistRepository
	Albums() AlbumRepository
	Users() UserRepository
	Roles() RoleRepository

	// Migrate brings the schema up to date.
	Migrate(ctx context.Context) error
	// PendingMigrations lists migrations not yet applied.
	PendingMigrations(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
	Provider() Provider
}

// Options are the data-access settings read from configuration.
type Options struct {
	Provider         string `env:"DATA_PROVIDER"`
	ConnectionString string `env:"DATA_DEFAULTCONNECTION_CONNECTIONSTRING"`
	MigrationsTable  string `env:"DATA_MIGRATIONSTABLE" envDefault:"schema_migrations"`

	RetryAttempts int           `env:"DATA_RETRYATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATA_RETRYINTERVAL" envDefault:"2s"`
	MaxConns      int32         `env:"DATA_MAXCONNS" envDefault:"10"`
	MinConns      int32         `env:"DATA_MINCONNS" envDefault:"1"`
}

// LoadOptions binds Options from cfg.
func LoadOptions(cfg *config.Configuration) (Options, error) {
	var opts Options
	if err := cfg.Bind(&opts); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Detect picks the backend for opts. An explicit Data:Provider wins;
// otherwise a configured connection string selects PostgreSQL and its
// absence selects the in-memory store.
func Detect(opts Options) Provider {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "memory", "inmemory":
		return ProviderMemory
	case "postgres", "postgresql", "pgx":
		return ProviderPostgres
	}
	if strings.TrimSpace(opts.ConnectionString) == "" {
		return ProviderMemory
	}
	return ProviderPostgres
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(s)); p {
	case ProviderMemory, ProviderPostgres:
		return p, nil
	}
	return "", errors.Join(ErrProvider, errors.New(s))
}

// Normalize upper-cases names and emails for lookups.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
