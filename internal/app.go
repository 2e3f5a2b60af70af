package internal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/musicstore/pkg/health"
	"github.com/dmitrymomot/musicstore/pkg/logger"
)

// Default server timeouts.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// App is the request pipeline: an ordered list of middleware steps in
// front of a chi router. App is immutable after creation.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	renderer                Renderer
	healthConfig            *healthConfig
	logger                  *slog.Logger
	steps                   []step
	handlers                []Handler
	mounts                  []mount
}

// step is one pipeline stage: either a Context middleware or a plain
// net/http middleware.
type step struct {
	mw   Middleware
	http func(http.Handler) http.Handler
}

type mount struct {
	pattern string
	handler http.Handler
}

// New creates a new application with the given options.
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.ErrorPage(middlewares.ShowAll())),
//	    internal.WithNotFoundHandler(router.Handler()),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router { return a.router }

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// ServeHTTP runs the pipeline.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	}

	for _, s := range a.steps {
		if s.mw != nil {
			a.router.Use(a.adaptMiddleware(s.mw))
		} else {
			a.router.Use(s.http)
		}
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(a.healthConfig.checks, health.WithLogger(a.logger)))
	}

	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	// chi bypasses its middleware stack while no route is registered, so the
	// fallback is also served from a catch-all route.
	if a.notFoundHandler != nil {
		a.router.Handle("/*", a.wrapHandler(a.notFoundHandler))
	}
}

// errSlot carries a handler error back to the middleware that called
// next, across net/http boundaries.
type errSlot struct {
	err error
}

type errSlotKey struct{}

// wrapHandler converts a HandlerFunc to http.HandlerFunc.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		if err := h(c); err != nil {
			a.report(c, err)
		}
	}
}

// adaptMiddleware converts a Middleware to chi middleware. Errors returned
// further down the chain come back out of next.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(c Context) error {
				slot := &errSlot{}
				req := c.Request()
				req = req.WithContext(context.WithValue(req.Context(), errSlotKey{}, slot))
				next.ServeHTTP(c.Response(), req)
				return slot.err
			}
			c := newContext(w, r, a)
			if err := mw(nextFunc)(c); err != nil {
				a.report(c, err)
			}
		})
	}
}

// ReportError hands err from a net/http middleware back to the enclosing
// pipeline step, where it surfaces like an error returned from next.
// It reports false when r did not pass through a pipeline step.
func ReportError(r *http.Request, err error) bool {
	slot, ok := r.Context().Value(errSlotKey{}).(*errSlot)
	if !ok {
		return false
	}
	slot.err = err
	return true
}

// report hands err to the enclosing middleware, or to the error handler
// at the top of the pipeline.
func (a *App) report(c Context, err error) {
	if slot, ok := c.Request().Context().Value(errSlotKey{}).(*errSlot); ok {
		slot.err = err
		return
	}
	a.handleError(c, err)
}

func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("error after response was written", slog.Any("error", err))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.Any("error", herr))
		}
		return
	}
	code := StatusCode(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", slog.Any("error", err))
	}
	http.Error(c.Response(), http.StatusText(code), code)
}

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if c.checks == nil {
			c.checks = make(health.Checks)
		}
		c.checks[name] = fn
	}
}
