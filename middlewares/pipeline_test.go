package middlewares_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
	"github.com/dmitrymomot/musicstore/middlewares"
)

func TestStaticFiles(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"Content/site.css": {Data: []byte("body{}")},
		"Images/logo.png":  {Data: []byte("png")},
	}
	h := middlewares.StaticFiles(fsys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	tests := []struct {
		name   string
		method string
		target string
		code   int
	}{
		{"serves file", http.MethodGet, "/Content/site.css", http.StatusOK},
		{"head", http.MethodHead, "/Images/logo.png", http.StatusOK},
		{"miss falls through", http.MethodGet, "/Store/Index", http.StatusTeapot},
		{"directory falls through", http.MethodGet, "/Content", http.StatusTeapot},
		{"post falls through", http.MethodPost, "/Content/site.css", http.StatusTeapot},
		{"root falls through", http.MethodGet, "/", http.StatusTeapot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.code, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/Content/site.css", nil))
	assert.Equal(t, "body{}", rec.Body.String())
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	app := internal.New(
		internal.WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))),
		internal.WithMiddleware(middlewares.RequestLogger()),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return internal.ErrNotFound("missing")
		}),
	)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/nowhere", entry["path"])
	assert.EqualValues(t, http.StatusNotFound, entry["status"])
}

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := middlewares.NewMetrics("musicstore")
	app := internal.New(
		internal.WithMiddleware(m.Middleware()),
		internal.WithMount(middlewares.DefaultMetricsPath, m.Handler()),
		internal.WithNotFoundHandler(func(c internal.Context) error {
			return c.String(http.StatusOK, "home")
		}),
	)

	for range 3 {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, f := range families {
		if f.GetName() != "musicstore_http_requests_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	assert.InDelta(t, 3, total, 0)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, middlewares.DefaultMetricsPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "musicstore_http_requests_total"))
}
