package session

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrymomot/musicstore/pkg/cache"
)

// Store persists sessions.
type Store interface {
	// Load returns ErrNotFound for unknown or expired sessions.
	Load(ctx context.Context, id string) (*Session, error)
	// Save writes s and resets its idle expiry to idle.
	Save(ctx context.Context, s *Session, idle time.Duration) error
	Delete(ctx context.Context, id string) error
	// Purge drops expired sessions and reports how many were removed.
	Purge(ctx context.Context) (int, error)
}

// CacheStore keeps sessions in a cache.Cache, so they live in process
// memory or in Redis depending on the cache backend.
type CacheStore struct {
	c cache.Cache[*Session]
}

// NewCacheStore creates a Store backed by c.
func NewCacheStore(c cache.Cache[*Session]) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	sess, err := s.c.Get(ctx, id)
	if errors.Is(err, cache.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out := sess.Clone()
	out.MarkSaved()
	return out, nil
}

func (s *CacheStore) Save(ctx context.Context, sess *Session, idle time.Duration) error {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	// Clone so later mutations by the request do not leak into a memory cache.
	if err := s.c.Set(ctx, sess.ID, sess.Clone(), idle); err != nil {
		return err
	}
	sess.MarkSaved()
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, id)
}

func (s *CacheStore) Purge(ctx context.Context) (int, error) {
	return s.c.Purge(ctx)
}

// Close releases the underlying cache.
func (s *CacheStore) Close() error {
	return s.c.Close()
}

var _ Store = (*CacheStore)(nil)
