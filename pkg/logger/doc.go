// Package logger builds slog loggers for the music store host.
//
// Loggers decorate their handler with context extractors so that request-scoped
// values (request ID, signed-in user) are attached to every record written with
// a *Context method:
//
//	log := logger.New(logger.Config{Format: "json"}, requestIDExtractor)
//	log.InfoContext(ctx, "album created", slog.Int("album_id", id))
//
// When Config.SentryDSN is set, warnings and errors are also forwarded to
// Sentry. Without a DSN the logger quietly writes to the console only.
package logger
