package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/health"
)

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks is healthy", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, health.StatusHealthy, health.Run(context.Background(), nil).Status)
	})

	t.Run("one failure marks the response unhealthy", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"store": func(context.Context) error { return nil },
			"redis": func(context.Context) error { return errors.New("connection refused") },
		})
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, health.StatusHealthy, resp.Checks["store"].Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	})

	t.Run("timeout cancels slow checks", func(t *testing.T) {
		t.Parallel()

		resp := health.Run(context.Background(), health.Checks{
			"slow": func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			},
		}, health.WithTimeout(10*time.Millisecond))
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
	})
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	h := health.ReadinessHandler(health.Checks{
		"store": func(context.Context) error { return errors.New("down") },
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	r.Header.Set("Accept", "application/json")
	h(w, r)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp health.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, health.StatusUnhealthy, resp.Status)
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	health.LivenessHandler()(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}
