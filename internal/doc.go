// Package internal is the HTTP host: an ordered request pipeline on top of
// chi, the request Context, and server lifecycle.
//
// # Core Types
//
//   - App: the pipeline, its routes and graceful shutdown
//   - Context: request/response access, session, principal and helpers
//   - Router: the interface handlers use to declare routes
//   - Handler: implemented by types that declare routes on a Router
//   - HandlerFunc: a handler that returns an error
//   - Middleware: wraps a HandlerFunc
//   - Renderer: executes named views for Context.Render
//
// # Pipeline
//
// Steps run in the order they are added. Context middlewares and plain
// net/http middlewares can be mixed freely:
//
//	app := internal.New(
//	    internal.WithMiddleware(middlewares.StatusCodePagesWithRedirects("~/Home/StatusCodePage")),
//	    internal.WithMiddleware(middlewares.ErrorPage(middlewares.ShowAll)),
//	    internal.WithHTTPMiddleware(middlewares.StaticFiles(assets)),
//	    internal.WithNotFoundHandler(routes.Handler()),
//	)
//
// # Errors
//
// An error returned from a handler travels back out through next in every
// enclosing Context middleware, even across net/http middlewares. A
// middleware handles an error by writing a response and returning nil.
// Errors that reach the top go to the error handler set with
// WithErrorHandler, or become a plain-text status response.
//
//	func Recover(next internal.HandlerFunc) internal.HandlerFunc {
//	    return func(c internal.Context) error {
//	        err := next(c)
//	        if internal.StatusCode(err) == http.StatusNotFound {
//	            return c.Redirect(http.StatusFound, "/")
//	        }
//	        return err
//	    }
//	}
//
// # Context as context.Context
//
// Context embeds context.Context, so it can be passed directly to store and
// identity calls:
//
//	album, err := h.store.Albums().Get(c, id)
//
// # Sessions
//
// SessionManager.Middleware makes Context.Session available. Sessions are
// created lazily and only persisted once they hold a value; the cookie is
// written right before the response header.
//
// # Running
//
//	err := app.Run(ctx, ":5001",
//	    internal.ShutdownHook(func(context.Context) error { return db.Close() }),
//	)
package internal
