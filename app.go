package musicstore

import (
	"context"
	"fmt"
	"log/slog"

	"go.uber.org/dig"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/middlewares"
	"github.com/dmitrymomot/musicstore/pkg/identity"
	"github.com/dmitrymomot/musicstore/pkg/mvc"
	"github.com/dmitrymomot/musicstore/pkg/oidc"
	"github.com/dmitrymomot/musicstore/pkg/realtime"
	"github.com/dmitrymomot/musicstore/pkg/redis"
	"github.com/dmitrymomot/musicstore/pkg/sampledata"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/views"
)

type pipelineDeps struct {
	dig.In

	Log      *slog.Logger
	DB       store.Context
	Sessions *internal.SessionManager
	Realtime *realtime.Server
	SignIn   *identity.SignInManager
	OIDC     *oidc.Handler
	Router   *mvc.Router
	Views    *views.Engine
	Metrics  *middlewares.Metrics
	Redis    *redisConn
	Seeder   *sampledata.Seeder
}

// Configure assembles the request pipeline from the services in c and
// seeds the sample data. It blocks until seeding finishes; a seeding error
// is returned and the app is not built.
//
// Pipeline order, outermost first: request ID, request log and metrics,
// then status code pages, error page, database error page, runtime info,
// session, real-time hubs, static files, identity cookie, OpenID Connect
// and finally the MVC route table.
func (s *Startup) Configure(ctx context.Context, c *dig.Container) (*internal.App, error) {
	var app *internal.App
	err := c.Invoke(func(d pipelineDeps) error {
		checks := []internal.HealthOption{
			internal.WithReadinessCheck("store", d.DB.Ping),
		}
		if d.Redis.client != nil {
			checks = append(checks, internal.WithReadinessCheck("redis", redis.Healthcheck(d.Redis.client)))
		}

		app = internal.New(
			internal.WithLogger(d.Log),
			internal.WithRenderer(d.Views),
			internal.WithMiddleware(
				middlewares.RequestID(),
				middlewares.RequestLogger(),
				d.Metrics.Middleware(),
				middlewares.StatusCodePagesWithRedirects(StatusCodePageLocation),
				middlewares.ErrorPage(middlewares.ShowAll()),
				middlewares.DatabaseErrorPage(d.DB, middlewares.DatabaseShowAll()),
				middlewares.RuntimeInfoPage(middlewares.DefaultRuntimeInfoPath),
				d.Sessions.Middleware(),
			),
			internal.WithHTTPMiddleware(
				d.Realtime.Middleware,
				middlewares.StaticFiles(views.Static()),
			),
			internal.WithMiddleware(middlewares.Authentication(d.SignIn)),
			internal.WithHTTPMiddleware(d.OIDC.Middleware),
			internal.WithNotFoundHandler(d.Router.Handler()),
			internal.WithMethodNotAllowedHandler(d.Router.Handler()),
			internal.WithHealthChecks(checks...),
			internal.WithMount(middlewares.DefaultMetricsPath, d.Metrics.Handler()),
		)

		if err := d.Seeder.Initialize(ctx); err != nil {
			return fmt.Errorf("sample data: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}
