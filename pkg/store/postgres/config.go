package postgres

import (
	"time"

	"github.com/dmitrymomot/musicstore/pkg/store"
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	ConnectionString string
	MigrationsTable  string

	HealthCheckPeriod time.Duration
	MaxConnIdleTime   time.Duration
	MaxConnLifetime   time.Duration

	// Connection attempt N waits N*RetryInterval before trying again.
	RetryAttempts int
	RetryInterval time.Duration

	MaxConns int32
	MinConns int32
}

// ConfigFromOptions converts data-access options read from configuration.
func ConfigFromOptions(opts store.Options) Config {
	return Config{
		ConnectionString:  opts.ConnectionString,
		MigrationsTable:   opts.MigrationsTable,
		HealthCheckPeriod: time.Minute,
		MaxConnIdleTime:   10 * time.Minute,
		MaxConnLifetime:   30 * time.Minute,
		RetryAttempts:     opts.RetryAttempts,
		RetryInterval:     opts.RetryInterval,
		MaxConns:          opts.MaxConns,
		MinConns:          opts.MinConns,
	}
}
