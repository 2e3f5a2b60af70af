// Package middlewares provides the request pipeline stages of the music
// store host.
//
// Diagnostics:
//
//   - StatusCodePagesWithRedirects turns 4xx and 5xx HTTP errors into a
//     redirect to a status code page.
//   - ErrorPage recovers panics and renders unhandled errors with request
//     details.
//   - DatabaseErrorPage renders store failures with the pending migrations
//     and serves the endpoint that applies them.
//   - RuntimeInfoPage reports the Go runtime and module dependencies.
//
// Request plumbing:
//
//   - RequestID assigns a correlation ID. Pair RequestIDExtractor with the
//     logger to stamp it on every record.
//   - RequestLogger and Metrics record one entry per request.
//   - StaticFiles serves files from an fs.FS and falls through on misses.
//   - Authentication reads the identity cookie and Authorize enforces a
//     named policy.
//
// Order matters. Middlewares registered first see errors last:
//
//	app := internal.New(
//	    internal.WithMiddleware(
//	        middlewares.StatusCodePagesWithRedirects("~/Home/StatusCodePage"),
//	        middlewares.ErrorPage(middlewares.ShowAll()),
//	        middlewares.DatabaseErrorPage(db, middlewares.DatabaseShowAll()),
//	    ),
//	)
package middlewares
