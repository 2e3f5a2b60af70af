package internal_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
)

func TestResponseWriter_Hooks(t *testing.T) {
	t.Parallel()

	t.Run("run once before the header", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)

		var order []string
		rw.OnBeforeWrite(func() {
			order = append(order, "first")
			rw.Header().Set("X-Hook", "1")
		})
		rw.OnBeforeWrite(func() { order = append(order, "second") })

		rw.WriteHeader(http.StatusCreated)
		rw.WriteHeader(http.StatusTeapot)
		_, err := rw.Write([]byte("body"))
		require.NoError(t, err)

		assert.Equal(t, []string{"first", "second"}, order)
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "1", rec.Header().Get("X-Hook"))
		assert.Equal(t, http.StatusCreated, rw.Status())
		assert.EqualValues(t, 4, rw.Size())
	})

	t.Run("implicit status on first write", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		rw := internal.NewResponseWriter(rec)
		called := false
		rw.OnBeforeWrite(func() { called = true })

		assert.False(t, rw.Written())
		_, _ = rw.Write([]byte("x"))
		assert.True(t, called)
		assert.True(t, rw.Written())
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("late hook is dropped", func(t *testing.T) {
		t.Parallel()

		rw := internal.NewResponseWriter(httptest.NewRecorder())
		rw.WriteHeader(http.StatusNoContent)
		rw.OnBeforeWrite(func() { t.Error("hook registered after write must not run") })
		_, _ = rw.Write(nil)
	})
}

func TestNewResponseWriter_Reuses(t *testing.T) {
	t.Parallel()

	rw := internal.NewResponseWriter(httptest.NewRecorder())
	assert.Same(t, rw, internal.NewResponseWriter(rw))
}
