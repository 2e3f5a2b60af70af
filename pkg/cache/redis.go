package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores values in Redis, encoded with a Marshaler.
type Redis[V any] struct {
	client redis.UniversalClient
	codec  Marshaler[V]
	opts   *options
}

// NewRedis creates a Redis cache over client. A nil m selects JSON. The
// client is owned by the caller; Close leaves it open.
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...Option) *Redis[V] {
	if m == nil {
		m = JSON[V]{}
	}
	return &Redis[V]{client: client, codec: m, opts: newOptions(opts)}
}

func (r *Redis[V]) key(k string) string {
	if r.opts.prefix == "" {
		return k
	}
	return r.opts.prefix + ":" + k
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return r.codec.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}
	// Redis reads a zero expiration as "keep forever".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	return n > 0, err
}

// Clear deletes the keys under the prefix with SCAN, or flushes the
// database when no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}
	iter := r.client.Scan(ctx, 0, r.opts.prefix+":*", 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.client.Del(ctx, batch...).Err()
	}
	return nil
}

// Purge is a no-op: Redis expires keys itself.
func (r *Redis[V]) Purge(context.Context) (int, error) { return 0, nil }

func (r *Redis[V]) Close() error { return nil }

var _ Cache[any] = (*Redis[any])(nil)
