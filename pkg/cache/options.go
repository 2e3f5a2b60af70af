package cache

import "time"

// Option tunes a cache backend. Options that do not apply to a backend are
// ignored by it.
type Option func(*options)

type options struct {
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	maxEntries      int
	prefix          string
	now             func() time.Time
}

func newOptions(opts []Option) *options {
	o := &options{
		defaultTTL: time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithDefaultTTL sets the lifetime applied when Set gets a zero ttl.
// Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) { o.defaultTTL = d }
}

// WithCleanupInterval starts a goroutine removing expired memory entries at
// the given interval. Disabled by default; callers may run Purge instead.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) { o.cleanupInterval = d }
}

// WithMaxEntries bounds the memory cache. The least recently used entry is
// evicted when the bound is hit. Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) { o.maxEntries = n }
}

// WithPrefix namespaces Redis keys as "{prefix}:{key}".
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithClock replaces time.Now for the memory cache.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
