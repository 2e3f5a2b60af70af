package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/logger"
	"github.com/dmitrymomot/musicstore/pkg/session"
)

func newSessionApp(t *testing.T) (*internal.App, session.Store) {
	t.Helper()

	store := session.NewCacheStore(cache.NewMemory[*session.Session]())
	sm := internal.NewSessionManager(store, session.Config{IdleTimeout: time.Minute}, logger.NewNope())

	app := internal.New(
		internal.WithMiddleware(sm.Middleware()),
		internal.WithHandlers(handlerFunc(func(r internal.Router) {
			r.GET("/cart/add", func(c internal.Context) error {
				sess, err := c.Session()
				if err != nil {
					return err
				}
				n, _ := sess.GetInt("count")
				sess.SetInt("count", n+1)
				return c.NoContent(http.StatusNoContent)
			})
			r.GET("/cart", func(c internal.Context) error {
				sess, err := c.Session()
				if err != nil {
					return err
				}
				n, _ := sess.GetInt("count")
				return c.JSON(http.StatusOK, map[string]int{"count": n})
			})
		})),
	)
	return app, store
}

func TestSessionManager(t *testing.T) {
	t.Parallel()

	t.Run("new session without values sets no cookie", func(t *testing.T) {
		t.Parallel()

		app, _ := newSessionApp(t)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("values survive across requests", func(t *testing.T) {
		t.Parallel()

		app, store := newSessionApp(t)

		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart/add", nil))
		require.Equal(t, http.StatusNoContent, rec.Code)
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, ".MusicStore.Session", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)

		saved, err := store.Load(context.Background(), cookies[0].Value)
		require.NoError(t, err)
		n, _ := saved.GetInt("count")
		assert.Equal(t, 1, n)

		req := httptest.NewRequest(http.MethodGet, "/cart/add", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Empty(t, rec.Result().Cookies(), "existing session must not reissue the cookie")

		req = httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.AddCookie(cookies[0])
		rec = httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.JSONEq(t, `{"count":2}`, rec.Body.String())
	})

	t.Run("unknown cookie starts a fresh session", func(t *testing.T) {
		t.Parallel()

		app, _ := newSessionApp(t)
		req := httptest.NewRequest(http.MethodGet, "/cart/add", nil)
		req.AddCookie(&http.Cookie{Name: ".MusicStore.Session", Value: "stale"})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.NotEqual(t, "stale", cookies[0].Value)
	})
}
