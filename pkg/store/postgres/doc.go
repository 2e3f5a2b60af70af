// Package postgres implements store.Context on PostgreSQL using a pgx
// connection pool. The schema is managed by goose migrations embedded in
// the binary.
//
//	s, err := postgres.Open(ctx, postgres.ConfigFromOptions(opts), log)
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	if err := s.Migrate(ctx); err != nil {
//		return err
//	}
//
// Open retries the initial connection with a linear backoff so the host
// can start alongside its database container.
package postgres
