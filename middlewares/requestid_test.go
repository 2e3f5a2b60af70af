package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/middlewares"
	"github.com/dmitrymomot/musicstore/pkg/identity"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates new request ID when not present", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		ctx := internal.NewContext(rec, req)

		handler := middlewares.RequestID()(func(c internal.Context) error {
			return nil
		})

		require.NoError(t, handler(ctx))
		require.Len(t, rec.Header().Get("X-Request-ID"), 36)
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Correlation-ID", "upstream-123")
		rec := httptest.NewRecorder()
		ctx := internal.NewContext(rec, req)

		handler := middlewares.RequestID()(func(c internal.Context) error {
			return nil
		})

		require.NoError(t, handler(ctx))
		require.Equal(t, "upstream-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("GetRequestID returns stored ID", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		ctx := internal.NewContext(rec, req)

		var capturedID string
		handler := middlewares.RequestID(middlewares.WithRequestIDGenerator(func() string { return "fixed" }))(func(c internal.Context) error {
			capturedID = middlewares.GetRequestID(c)
			return nil
		})

		require.NoError(t, handler(ctx))
		require.Equal(t, "fixed", capturedID)
		require.Equal(t, "fixed", rec.Header().Get("X-Request-ID"))
	})
}

func TestLogExtractors(t *testing.T) {
	t.Parallel()

	t.Run("request id", func(t *testing.T) {
		t.Parallel()

		ctx := internal.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		handler := middlewares.RequestID()(func(c internal.Context) error {
			attr, ok := middlewares.RequestIDExtractor()(c.Context())
			require.True(t, ok)
			require.Equal(t, "request_id", attr.Key)
			require.NotEmpty(t, attr.Value.String())
			return nil
		})
		require.NoError(t, handler(ctx))
	})

	t.Run("user id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		_, ok := middlewares.UserIDExtractor()(req.Context())
		require.False(t, ok)

		p := identity.NewPrincipal(identity.ApplicationScheme, identity.Claim{Type: identity.ClaimNameIdentifier, Value: "u-1"})
		attr, ok := middlewares.UserIDExtractor()(identity.WithPrincipal(req.Context(), p))
		require.True(t, ok)
		require.Equal(t, "u-1", attr.Value.String())
	})
}
