package internal

import (
	"log/slog"
	"net/http"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware appends Context middlewares to the pipeline.
// Steps run in the order they were added, across all WithMiddleware and
// WithHTTPMiddleware calls.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		for _, m := range mw {
			if m != nil {
				a.steps = append(a.steps, step{mw: m})
			}
		}
	}
}

// WithHTTPMiddleware appends plain net/http middlewares to the pipeline.
//
//	internal.WithHTTPMiddleware(hub.Middleware("/signalr"))
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		for _, m := range mw {
			if m != nil {
				a.steps = append(a.steps, step{http: m})
			}
		}
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithMount attaches h under pattern behind the pipeline.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		a.mounts = append(a.mounts, mount{pattern: pattern, handler: h})
	}
}

// WithErrorHandler sets the handler for errors that reach the top of the
// pipeline.
//
//	internal.WithErrorHandler(func(c internal.Context, err error) error {
//	    return c.String(internal.StatusCode(err), err.Error())
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets the fallback for requests no route matched.
// The conventional MVC dispatcher is installed here.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithRenderer sets the view renderer used by Context.Render.
func WithRenderer(r Renderer) Option {
	return func(a *App) {
		a.renderer = r
	}
}

// WithHealthChecks enables /health/live and /health/ready.
//
//	internal.WithHealthChecks(
//	    internal.WithReadinessCheck("store", db.Ping),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the app logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}
