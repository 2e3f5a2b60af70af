package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/musicstore/internal"
)

// RequestLogger logs one record per request with method, path, status,
// size and duration. Server errors log at error level.
func RequestLogger() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			if err != nil && !rw.Written() {
				status = internal.StatusCode(err)
			}

			attrs := []any{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			}
			switch {
			case status >= 500:
				if err != nil {
					attrs = append(attrs, slog.Any("error", err))
				}
				c.LogError("request", attrs...)
			case status >= 400:
				c.LogWarn("request", attrs...)
			default:
				c.LogInfo("request", attrs...)
			}
			return err
		}
	}
}
