package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Store implements store.Context on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
	// db shares the pool's connections; goose needs database/sql.
	db  *sql.DB
	cfg Config
	log *slog.Logger
}

var _ store.Context = (*Store)(nil)

// Open connects to PostgreSQL. It does not migrate.
func Open(ctx context.Context, cfg Config, log *slog.Logger) (*Store, error) {
	pool, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(pool, cfg, log), nil
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool, cfg Config, log *slog.Logger) *Store {
	if cfg.MigrationsTable == "" {
		cfg.MigrationsTable = "schema_migrations"
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		pool: pool,
		db:   stdlib.OpenDBFromPool(pool),
		cfg:  cfg,
		log:  log.With(slog.String("component", "store.postgres")),
	}
}

// Pool exposes the underlying pool.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Genres() store.GenreRepository   { return genres{s.pool} }
func (s *Store) Artists() store.ArtistRepository { return artists{s.pool} }
func (s *Store) Albums() store.AlbumRepository   { return albums{s.pool} }
func (s *Store) Users() store.UserRepository     { return users{s.pool} }
func (s *Store) Roles() store.RoleRepository     { return roles{s.pool} }

func (s *Store) Provider() store.Provider { return store.ProviderPostgres }

func (s *Store) Ping(ctx context.Context) error {
	return mapError(s.pool.Ping(ctx))
}

// Close releases the pool. Closing the database/sql wrapper alone would
// leave the pool open.
func (s *Store) Close() error {
	err := s.db.Close()
	s.pool.Close()
	return err
}
