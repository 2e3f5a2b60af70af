package internal_test

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/internal"
)

func TestApp_Run(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var events []string
	app := internal.New(internal.WithHandlers(routes{}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.Run(ctx, "", internal.Listener(ln),
			internal.ShutdownTimeout(5*time.Second),
			internal.StartupHook(func(context.Context) error {
				events = append(events, "startup")
				return nil
			}),
			internal.ShutdownHook(func(context.Context) error {
				events = append(events, "first")
				return nil
			}),
			internal.ShutdownHook(func(context.Context) error {
				events = append(events, "second")
				return errors.New("close failed")
			}),
		)
	}()

	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get("http://" + ln.Addr().String() + "/ok")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "close failed")
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, []string{"startup", "first", "second"}, events)
}

func TestApp_RunStartupHookFails(t *testing.T) {
	t.Parallel()

	app := internal.New()
	err := app.Run(context.Background(), "127.0.0.1:0", internal.StartupHook(func(context.Context) error {
		return errors.New("not ready")
	}))
	require.EqualError(t, err, "not ready")
}
