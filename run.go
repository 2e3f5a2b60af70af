package musicstore

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/robfig/cron/v3"
	"go.uber.org/dig"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/realtime"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

type runtimeDeps struct {
	dig.In

	Log      *slog.Logger
	Server   ServerOptions
	DB       store.Context
	Sessions *internal.SessionManager
	Realtime *realtime.Server
	Albums   cache.Cache[[]store.Album]
	Redis    *redisConn
}

// Run builds the container, configures the pipeline and serves it until
// ctx is cancelled or the process is interrupted. Expired sessions are
// swept on the Server:SessionSweep schedule.
func (s *Startup) Run(ctx context.Context) error {
	c := dig.New()
	if err := s.ConfigureServices(c); err != nil {
		return err
	}
	app, err := s.Configure(ctx, c)
	if err != nil {
		return err
	}

	return c.Invoke(func(d runtimeDeps) error {
		sched := cron.New()
		if _, err := sched.AddFunc(d.Server.SessionSweep, func() {
			n, err := d.Sessions.Purge(context.Background())
			if err != nil {
				d.Log.Warn("session sweep failed", slog.Any("error", err))
				return
			}
			if n > 0 {
				d.Log.Debug("expired sessions removed", slog.Int("count", n))
			}
		}); err != nil {
			return err
		}

		opts := []internal.RunOption{
			internal.ShutdownTimeout(d.Server.ShutdownTimeout),
			internal.StartupHook(func(context.Context) error {
				sched.Start()
				return nil
			}),
			internal.ShutdownHook(func(ctx context.Context) error {
				select {
				case <-sched.Stop().Done():
				case <-ctx.Done():
				}
				return nil
			}),
			internal.ShutdownHook(func(context.Context) error { return d.Realtime.Close() }),
			internal.ShutdownHook(func(context.Context) error {
				errs := []error{d.Albums.Close()}
				if c, ok := d.Sessions.Store().(io.Closer); ok {
					errs = append(errs, c.Close())
				}
				return errors.Join(errs...)
			}),
			internal.ShutdownHook(func(context.Context) error { return d.DB.Close() }),
		}
		if d.Redis.client != nil {
			opts = append(opts, internal.ShutdownHook(func(context.Context) error { return d.Redis.client.Close() }))
		}
		if s.opts.listener != nil {
			opts = append(opts, internal.Listener(s.opts.listener))
		}
		return app.Run(ctx, d.Server.Address, opts...)
	})
}
