package middlewares

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/store"
	"github.com/dmitrymomot/musicstore/pkg/store/postgres"
)

// DefaultMigrationsEndpoint applies pending migrations on POST.
const DefaultMigrationsEndpoint = "/ApplyDatabaseMigrations"

// Migrator reports and applies schema migrations. store.Context
// implements it.
type Migrator interface {
	PendingMigrations(ctx context.Context) ([]string, error)
	Migrate(ctx context.Context) error
}

// DatabaseErrorPageOptions configures DatabaseErrorPage.
type DatabaseErrorPageOptions struct {
	ShowExceptionDetails bool
	ListMigrations       bool
	// MigrationsEndpoint is served only when non-empty.
	MigrationsEndpoint string
	// IsDatabaseError selects the errors the page handles.
	IsDatabaseError func(error) bool
}

// DatabaseShowAll enables every feature of the database error page.
func DatabaseShowAll() DatabaseErrorPageOptions {
	return DatabaseErrorPageOptions{
		ShowExceptionDetails: true,
		ListMigrations:       true,
		MigrationsEndpoint:   DefaultMigrationsEndpoint,
	}
}

// IsDatabaseError reports errors raised by either store backend.
func IsDatabaseError(err error) bool {
	return postgres.IsDatabaseError(err) || errors.Is(err, store.ErrClosed)
}

// DatabaseErrorPage renders a page listing pending migrations when a
// request fails with a database error.
func DatabaseErrorPage(m Migrator, opts DatabaseErrorPageOptions) internal.Middleware {
	if opts.IsDatabaseError == nil {
		opts.IsDatabaseError = IsDatabaseError
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()
			if opts.MigrationsEndpoint != "" && r.URL.Path == opts.MigrationsEndpoint && r.Method == http.MethodPost {
				if err := m.Migrate(c); err != nil {
					return renderDatabaseErrorPage(c, m, opts, err)
				}
				c.LogInfo("database migrations applied")
				return c.NoContent(http.StatusNoContent)
			}

			err := next(c)
			if err == nil || internal.IsHTTPError(err) || !opts.IsDatabaseError(err) {
				return err
			}
			return renderDatabaseErrorPage(c, m, opts, err)
		}
	}
}

type databaseErrorPageData struct {
	Message    string
	Pending    []string
	PendingErr string
	Endpoint   string
	Opts       DatabaseErrorPageOptions
}

func renderDatabaseErrorPage(c internal.Context, m Migrator, opts DatabaseErrorPageOptions, err error) error {
	c.LogError("database error", "error", err)
	if c.Written() {
		return nil
	}

	data := databaseErrorPageData{
		Message:  "A database operation failed while processing the request.",
		Endpoint: opts.MigrationsEndpoint,
		Opts:     opts,
	}
	if opts.ShowExceptionDetails {
		data.Message = err.Error()
	}
	if opts.ListMigrations {
		pending, perr := m.PendingMigrations(c)
		if perr != nil {
			data.PendingErr = perr.Error()
		}
		data.Pending = pending
	}

	var buf bytes.Buffer
	if terr := databaseErrorPageTemplate.Execute(&buf, data); terr != nil {
		return errors.Join(err, terr)
	}
	c.SetHeader("Cache-Control", "no-cache, no-store")
	return c.HTML(http.StatusInternalServerError, buf.String())
}

var databaseErrorPageTemplate = template.Must(template.New("dberror").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Database Error</title></head>
<body>
<h1>A database operation failed</h1>
<p class="message">{{.Message}}</p>
{{- if .Opts.ListMigrations}}
{{- if .PendingErr}}<p>Pending migrations could not be read: {{.PendingErr}}</p>
{{- else if .Pending}}
<h2>Pending migrations</h2>
<ul class="pending">{{range .Pending}}<li>{{.}}</li>{{end}}</ul>
{{- if .Endpoint}}<form method="post" action="{{.Endpoint}}"><button type="submit">Apply migrations</button></form>{{end}}
{{- else}}<p>There are no pending migrations.</p>
{{- end}}
{{- end}}
</body>
</html>`))
