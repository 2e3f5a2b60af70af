package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores values of type V under string keys.
//
// A positive ttl passed to Set expires the entry after that duration, zero
// selects the backend's default and a negative ttl never expires.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error

	// Purge drops expired entries and reports how many were removed.
	// Backends that expire entries on their own return zero.
	Purge(ctx context.Context) (int, error)

	Close() error
}

// Config selects and tunes the cache backend.
type Config struct {
	RedisURL   string        `env:"CACHE_REDISURL"`
	Prefix     string        `env:"CACHE_PREFIX" envDefault:"musicstore"`
	DefaultTTL time.Duration `env:"CACHE_DEFAULTTTL" envDefault:"1h"`
	MaxEntries int           `env:"CACHE_MAXENTRIES" envDefault:"10000"`
}

// New returns a Redis cache under cfg.Prefix when client is set, and an
// in-memory cache otherwise. name separates caches sharing one client.
func New[V any](cfg Config, client redis.UniversalClient, name string) Cache[V] {
	if client != nil {
		prefix := name
		if cfg.Prefix != "" {
			prefix = cfg.Prefix + ":" + name
		}
		return NewRedis[V](client, nil, WithPrefix(prefix), WithDefaultTTL(cfg.DefaultTTL))
	}
	return NewMemory[V](WithDefaultTTL(cfg.DefaultTTL), WithMaxEntries(cfg.MaxEntries))
}

// Marshaler converts values for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

// JSON is the default Marshaler.
type JSON[V any] struct{}

func (JSON[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (JSON[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

var group singleflight.Group

type loaded[V any] struct {
	value V
	ttl   time.Duration
}

// GetOrSet returns the cached value for key or loads it with fn. Concurrent
// misses for the same key share a single call to fn. Errors from fn are
// returned and nothing is cached.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	// The group is shared by every cache, so the key carries the cache identity.
	res, err, _ := group.Do(fmt.Sprintf("%T|%p|%s", c, c, key), func() (any, error) {
		v, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{value: v, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	l := res.(loaded[V])
	_ = c.Set(ctx, key, l.value, l.ttl)
	return l.value, nil
}
