package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps a check name to its function.
type Checks map[string]CheckFunc

// Response aggregates the outcome of all checks.
type Response struct {
	Status string           `json:"status"`
	Checks map[string]Check `json:"checks,omitempty"`
}

// Check is the outcome of one check.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type config struct {
	logger  *slog.Logger
	timeout time.Duration
}

// Option tunes Run and ReadinessHandler.
type Option func(*config)

// WithTimeout bounds the time all checks may take together. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failed checks at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes checks concurrently. The response is unhealthy when any
// check fails.
func Run(ctx context.Context, checks Checks, opts ...Option) *Response {
	cfg := &config{timeout: 5 * time.Second, logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(cfg)
	}

	resp := &Response{Status: StatusHealthy}
	if len(checks) == 0 {
		return resp
	}
	resp.Checks = make(map[string]Check, len(checks))

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var mu sync.Mutex
	var g errgroup.Group
	for name, check := range checks {
		g.Go(func() error {
			start := time.Now()
			err := check(ctx)
			res := Check{Status: StatusHealthy, Duration: time.Since(start).String()}
			if err != nil {
				res.Status, res.Error = StatusUnhealthy, err.Error()
				cfg.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.String("error", err.Error()),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = res
			if err != nil {
				resp.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return resp
}
