package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

var (
	ErrParseConfig       = errors.New("postgres: failed to parse configuration")
	ErrConnect           = errors.New("postgres: failed to open connection")
	ErrSetDialect        = errors.New("postgres migrator: failed to set dialect")
	ErrApplyMigrations   = errors.New("postgres migrator: failed to apply migrations")
	ErrMigrationStatus   = errors.New("postgres migrator: failed to read migration status")
	ErrMissingConnection = errors.New("postgres: connection string is required")
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// mapError translates driver errors into store sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return errors.Join(store.ErrDuplicate, err)
		case codeForeignKeyViolation:
			return errors.Join(store.ErrNotFound, err)
		}
	}
	return err
}

// IsDatabaseError reports whether err originated in the database layer:
// a server error, a failed connection or a failed migration.
func IsDatabaseError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	return errors.Is(err, ErrConnect) ||
		errors.Is(err, ErrApplyMigrations) ||
		errors.Is(err, ErrMigrationStatus)
}
