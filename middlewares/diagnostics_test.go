package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/middlewares"
	"github.com/dmitrymomot/musicstore/pkg/store"
)

func run(t *testing.T, mw internal.Middleware, req *http.Request, h internal.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	rec := httptest.NewRecorder()
	err := mw(h)(internal.NewContext(rec, req))
	return rec, err
}

func TestStatusCodePagesWithRedirects(t *testing.T) {
	t.Parallel()

	mw := middlewares.StatusCodePagesWithRedirects("~/Home/StatusCodePage")

	t.Run("redirects http errors", func(t *testing.T) {
		t.Parallel()

		rec, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/nope", nil), func(c internal.Context) error {
			return internal.ErrNotFound("missing")
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/Home/StatusCodePage", rec.Header().Get("Location"))
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("leaves written responses alone", func(t *testing.T) {
		t.Parallel()

		rec, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			_ = c.String(http.StatusTeapot, "short and stout")
			return internal.ErrBadRequest("late")
		})
		require.Error(t, err)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}

func TestStatusCodeLocation(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/Home/StatusCodePage", middlewares.StatusCodeLocation("~/Home/StatusCodePage", 404))
	assert.Equal(t, "/errors/500", middlewares.StatusCodeLocation("~/errors/{0}", 500))
	assert.Equal(t, "/plain", middlewares.StatusCodeLocation("/plain", 400))
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	mw := middlewares.ErrorPage(middlewares.ShowAll())

	t.Run("renders panics", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/crash?q=1", nil)
		req.AddCookie(&http.Cookie{Name: "flavor", Value: "oatmeal"})
		rec, err := run(t, mw, req, func(c internal.Context) error {
			panic("kaboom")
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, "panic: kaboom")
		assert.Contains(t, body, "Stack")
		assert.Contains(t, body, "flavor")
		assert.Contains(t, body, "oatmeal")
	})

	t.Run("renders plain errors with their chain", func(t *testing.T) {
		t.Parallel()

		inner := errors.New("disk on fire")
		rec, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return fmt.Errorf("save album: %w", inner)
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "save album: disk on fire")
		assert.Contains(t, rec.Body.String(), "Caused by")
	})

	t.Run("passes http errors through", func(t *testing.T) {
		t.Parallel()

		_, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return internal.ErrForbidden("no")
		})
		assert.True(t, internal.IsHTTPError(err))
	})

	t.Run("hides details when disabled", func(t *testing.T) {
		t.Parallel()

		rec, err := run(t, middlewares.ErrorPage(middlewares.ErrorPageOptions{}), httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return errors.New("secret detail")
		})
		require.NoError(t, err)
		assert.NotContains(t, rec.Body.String(), "secret detail")
	})
}

type fakeMigrator struct {
	pending  []string
	migrated bool
}

func (m *fakeMigrator) PendingMigrations(context.Context) ([]string, error) {
	if m.migrated {
		return nil, nil
	}
	return m.pending, nil
}

func (m *fakeMigrator) Migrate(context.Context) error {
	m.migrated = true
	return nil
}

func TestDatabaseErrorPage(t *testing.T) {
	t.Parallel()

	t.Run("lists pending migrations", func(t *testing.T) {
		t.Parallel()

		m := &fakeMigrator{pending: []string{"00001_init.sql"}}
		rec, err := run(t, middlewares.DatabaseErrorPage(m, middlewares.DatabaseShowAll()), httptest.NewRequest(http.MethodGet, "/Store", nil), func(c internal.Context) error {
			return fmt.Errorf("list genres: %w", store.ErrClosed)
		})
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "00001_init.sql")
		assert.Contains(t, rec.Body.String(), middlewares.DefaultMigrationsEndpoint)
	})

	t.Run("ignores other errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := run(t, middlewares.DatabaseErrorPage(&fakeMigrator{}, middlewares.DatabaseShowAll()), httptest.NewRequest(http.MethodGet, "/", nil), func(c internal.Context) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("applies migrations on post", func(t *testing.T) {
		t.Parallel()

		m := &fakeMigrator{pending: []string{"00001_init.sql"}}
		called := false
		rec, err := run(t, middlewares.DatabaseErrorPage(m, middlewares.DatabaseShowAll()), httptest.NewRequest(http.MethodPost, middlewares.DefaultMigrationsEndpoint, nil), func(c internal.Context) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
		assert.True(t, m.migrated)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestRuntimeInfoPage(t *testing.T) {
	t.Parallel()

	mw := middlewares.RuntimeInfoPage("")
	next := func(c internal.Context) error { return c.NoContent(http.StatusAccepted) }

	rec, err := run(t, mw, httptest.NewRequest(http.MethodGet, "/runtimeinfo", nil), next)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Runtime Information")

	rec, err = run(t, mw, httptest.NewRequest(http.MethodGet, "/runtimeinfo?format=json", nil), next)
	require.NoError(t, err)
	var info middlewares.RuntimeInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.Positive(t, info.NumCPU)

	rec, err = run(t, mw, httptest.NewRequest(http.MethodPost, "/runtimeinfo", nil), next)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestDiagnosticsPipelineOrder(t *testing.T) {
	t.Parallel()

	// failing stands in for the session step: it runs after the diagnostic
	// pages and fails before the handler when the store is gone.
	failing := func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			if c.Request().URL.Query().Get("store") == "closed" {
				return fmt.Errorf("load session: %w", store.ErrClosed)
			}
			return next(c)
		}
	}
	app := internal.New(
		internal.WithMiddleware(
			middlewares.StatusCodePagesWithRedirects("~/Home/StatusCodePage"),
			middlewares.ErrorPage(middlewares.ShowAll()),
			middlewares.DatabaseErrorPage(&fakeMigrator{pending: []string{"00001_init.sql"}}, middlewares.DatabaseShowAll()),
			middlewares.RuntimeInfoPage(middlewares.DefaultRuntimeInfoPath),
			failing,
		),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			switch c.Request().URL.Path {
			case "/boom":
				return errors.New("boom")
			case "/panic":
				panic("kaboom")
			}
			return internal.ErrNotFound("missing")
		}),
	)

	tests := []struct {
		name     string
		target   string
		code     int
		location string
		contains string
	}{
		{"database error in the session step", "/Store?store=closed", http.StatusInternalServerError, "", "00001_init.sql"},
		{"status code becomes a redirect", "/nowhere", http.StatusFound, "/Home/StatusCodePage", ""},
		{"unhandled error", "/boom", http.StatusInternalServerError, "", "boom"},
		{"panic", "/panic", http.StatusInternalServerError, "", "panic: kaboom"},
		{"runtime info before the session step", "/runtimeinfo?store=closed", http.StatusOK, "", "Runtime Information"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}
