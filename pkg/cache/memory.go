package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	key     string
	value   V
	expires time.Time // zero never expires
}

func (it *item[V]) expired(now time.Time) bool {
	return !it.expires.IsZero() && now.After(it.expires)
}

// Memory is a process-local cache with expiration and optional LRU bound.
// Lookups go through a map; recency is kept in a list with the most
// recently used entry at the front.
type Memory[V any] struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List
	opts    *options
	onEvict func(key string, value V)
	done    chan struct{}
	closed  bool
}

// NewMemory creates an in-memory cache.
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		index: make(map[string]*list.Element),
		order: list.New(),
		opts:  newOptions(opts),
		done:  make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.janitor(m.opts.cleanupInterval)
	}
	return m
}

// OnEvict registers fn to run whenever an entry leaves the cache, whether
// by expiry, LRU eviction, Delete or Clear.
func (m *Memory[V]) OnEvict(fn func(key string, value V)) {
	m.mu.Lock()
	m.onEvict = fn
	m.mu.Unlock()
}

// Len returns the number of entries, including expired ones not yet purged.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.index)
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if m.closed {
		return zero, ErrClosed
	}
	el, ok := m.index[key]
	if !ok {
		return zero, ErrNotFound
	}
	it := el.Value.(*item[V])
	if it.expired(m.opts.now()) {
		m.remove(el)
		return zero, ErrNotFound
	}
	m.order.MoveToFront(el)
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if ttl == 0 {
		ttl = m.opts.defaultTTL
	}
	var expires time.Time
	if ttl > 0 {
		expires = m.opts.now().Add(ttl)
	}

	if el, ok := m.index[key]; ok {
		it := el.Value.(*item[V])
		it.value, it.expires = value, expires
		m.order.MoveToFront(el)
		return nil
	}

	if m.opts.maxEntries > 0 && len(m.index) >= m.opts.maxEntries {
		if last := m.order.Back(); last != nil {
			m.remove(last)
		}
	}
	m.index[key] = m.order.PushFront(&item[V]{key: key, value: value, expires: expires})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if el, ok := m.index[key]; ok {
		m.remove(el)
	}
	return nil
}

func (m *Memory[V]) Has(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}
	el, ok := m.index[key]
	if !ok {
		return false, nil
	}
	if el.Value.(*item[V]).expired(m.opts.now()) {
		m.remove(el)
		return false, nil
	}
	return true, nil
}

func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	for el := m.order.Front(); el != nil; {
		next := el.Next()
		m.remove(el)
		el = next
	}
	return nil
}

// Purge removes expired entries.
func (m *Memory[V]) Purge(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, ErrClosed
	}
	now := m.opts.now()
	n := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*item[V]).expired(now) {
			m.remove(el)
			n++
		}
		el = prev
	}
	return n, nil
}

// Close stops the janitor. Further calls return ErrClosed. Close is
// idempotent.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.done)
	}
	return nil
}

func (m *Memory[V]) janitor(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			_, _ = m.Purge(context.Background())
		}
	}
}

// remove must be called with mu held.
func (m *Memory[V]) remove(el *list.Element) {
	it := m.order.Remove(el).(*item[V])
	delete(m.index, it.key)
	if m.onEvict != nil {
		m.onEvict(it.key, it.value)
	}
}

var _ Cache[any] = (*Memory[any])(nil)
