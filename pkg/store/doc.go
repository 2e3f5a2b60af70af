// Package store defines the music store data model and the repository
// contracts shared by the in-memory and PostgreSQL backends.
//
// The active backend is chosen at startup by Detect:
//
//	opts, err := store.LoadOptions(cfg)
//	switch store.Detect(opts) {
//	case store.ProviderMemory:
//		ctx = memory.New()
//	case store.ProviderPostgres:
//		ctx, err = postgres.Open(ctx, opts.Postgres(), log)
//	}
//
// Repositories return ErrNotFound when a lookup misses and ErrDuplicate when
// a unique key is violated, regardless of backend.
package store
