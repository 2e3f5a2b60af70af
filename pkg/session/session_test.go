package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/musicstore/pkg/cache"
	"github.com/dmitrymomot/musicstore/pkg/session"
)

func TestSession_Values(t *testing.T) {
	t.Parallel()

	s := session.New("id", time.Now())
	assert.True(t, s.IsNew())
	assert.False(t, s.IsDirty())

	s.SetString("cart", "abc")
	assert.True(t, s.IsDirty())
	v, ok := s.GetString("cart")
	require.True(t, ok)
	assert.Equal(t, "abc", v)

	s.SetInt("count", 3)
	n, ok := s.GetInt("count")
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"cart", "count"}, s.Keys())

	s.MarkSaved()
	s.SetString("cart", "abc")
	assert.False(t, s.IsDirty(), "same value should not dirty the session")
	s.Remove("missing")
	assert.False(t, s.IsDirty())
	s.Remove("cart")
	assert.True(t, s.IsDirty())

	s.Clear()
	assert.Empty(t, s.Keys())
}

func TestTypedValues(t *testing.T) {
	t.Parallel()

	type cart struct {
		AlbumIDs []int `json:"album_ids"`
	}

	s := session.New("id", time.Now())
	require.NoError(t, session.Set(s, "cart", cart{AlbumIDs: []int{1, 2}}))

	got, err := session.Get[cart](s, "cart")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got.AlbumIDs)

	_, err = session.Get[cart](s, "missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	s.SetString("name", "plain")
	_, err = session.Get[int](s, "name")
	require.ErrorIs(t, err, session.ErrTypeMismatch)
	assert.Equal(t, 7, session.GetOr(s, "name", 7))
}

func TestCacheStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[*session.Session]()
	defer c.Close()
	store := session.NewCacheStore(c)

	_, err := store.Load(ctx, "unknown")
	require.ErrorIs(t, err, session.ErrNotFound)

	s := session.New("sid", time.Now())
	s.SetString("k", "v")
	require.NoError(t, store.Save(ctx, s, time.Minute))
	assert.False(t, s.IsNew())
	assert.False(t, s.IsDirty())

	s.SetString("k", "changed")

	loaded, err := store.Load(ctx, "sid")
	require.NoError(t, err)
	v, _ := loaded.GetString("k")
	assert.Equal(t, "v", v, "stored copy should not see unsaved changes")
	assert.False(t, loaded.IsNew())

	require.NoError(t, store.Delete(ctx, "sid"))
	_, err = store.Load(ctx, "sid")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestCacheStore_IdleExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewMemory[*session.Session](cache.WithClock(func() time.Time { return now }))
	defer c.Close()
	store := session.NewCacheStore(c)

	require.NoError(t, store.Save(ctx, session.New("a", now), session.DefaultIdleTimeout))
	require.NoError(t, store.Save(ctx, session.New("b", now), time.Minute))

	now = now.Add(5 * time.Minute)
	n, err := store.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = store.Load(ctx, "a")
	require.NoError(t, err)
}
