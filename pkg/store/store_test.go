package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/config"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts store.Options
		want store.Provider
	}{
		{"nothing configured", store.Options{}, store.ProviderMemory},
		{"connection string", store.Options{ConnectionString: "postgres://localhost/db"}, store.ProviderPostgres},
		{"explicit memory wins", store.Options{Provider: "InMemory", ConnectionString: "postgres://localhost/db"}, store.ProviderMemory},
		{"explicit postgres", store.Options{Provider: "postgres"}, store.ProviderPostgres},
		{"unknown provider falls back", store.Options{Provider: "sqlserver"}, store.ProviderMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, store.Detect(tt.opts))
		})
	}
}

func TestLoadOptions(t *testing.T) {
	t.Parallel()

	cfg, err := config.NewBuilder().AddMap(map[string]string{
		"Data:DefaultConnection:ConnectionString": "postgres://db/musicstore",
		"Data:RetryInterval":                      "1s",
	}).Build()
	require.NoError(t, err)

	opts, err := store.LoadOptions(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/musicstore", opts.ConnectionString)
	assert.Equal(t, time.Second, opts.RetryInterval)
	assert.Equal(t, 3, opts.RetryAttempts)
	assert.Equal(t, "schema_migrations", opts.MigrationsTable)
}

func TestParseProvider(t *testing.T) {
	t.Parallel()

	p, err := store.ParseProvider("Memory")
	require.NoError(t, err)
	assert.Equal(t, store.ProviderMemory, p)

	_, err = store.ParseProvider("oracle")
	require.ErrorIs(t, err, store.ErrProvider)
}

func TestNormalize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ADMINISTRATOR@TEST.COM", store.Normalize(" Administrator@test.com "))
}
