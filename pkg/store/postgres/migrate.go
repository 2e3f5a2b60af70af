package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

func (s *Store) configureGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLogger{s.log})
	goose.SetTableName(s.cfg.MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrSetDialect, err)
	}
	return nil
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.configureGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, s.db, "migrations"); err != nil {
		return errors.Join(ErrApplyMigrations, err)
	}
	return nil
}

// PendingMigrations lists the sources of migrations newer than the
// current schema version.
func (s *Store) PendingMigrations(ctx context.Context) ([]string, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := s.configureGoose(); err != nil {
		return nil, err
	}
	return pending(ctx, s.db)
}

func pending(ctx context.Context, db *sql.DB) ([]string, error) {
	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return nil, errors.Join(ErrMigrationStatus, err)
	}
	all, err := goose.CollectMigrations("migrations", 0, goose.MaxVersion)
	if err != nil {
		return nil, errors.Join(ErrMigrationStatus, err)
	}

	var out []string
	for _, m := range all {
		if m.Version > current {
			out = append(out, m.Source)
		}
	}
	return out, nil
}

type gooseLogger struct {
	log *slog.Logger
}

func (g *gooseLogger) Printf(format string, args ...any) {
	g.log.Info(fmt.Sprintf(format, args...))
}

// Fatalf logs only; goose returns the error to the caller afterwards.
func (g *gooseLogger) Fatalf(format string, args ...any) {
	g.log.Error(fmt.Sprintf(format, args...))
}
