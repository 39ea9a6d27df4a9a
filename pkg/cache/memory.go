package cache

import (
	"context"
	"sync"
	"time"
)

type item[V any] struct {
	value     V
	expiresAt time.Time // zero = never
}

func (it item[V]) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// Memory is a process-local cache. Prefixes are honored so keys look the same
// as in Redis.
type Memory[V any] struct {
	items  map[string]item[V]
	opts   *options
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewMemory creates an in-memory cache and starts its janitor.
func NewMemory[V any](opts ...Option) *Memory[V] {
	m := &Memory[V]{
		items: make(map[string]item[V]),
		opts:  newOptions(opts),
		done:  make(chan struct{}),
	}
	if m.opts.cleanupInterval > 0 {
		go m.janitor(m.opts.cleanupInterval)
	}
	return m
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return zero, ErrClosed
	}
	it, ok := m.items[m.opts.key(key)]
	if !ok || it.expired(time.Now()) {
		return zero, ErrNotFound
	}
	return it.value, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	it := item[V]{value: value}
	if ttl = m.opts.ttl(ttl); ttl > 0 {
		it.expiresAt = time.Now().Add(ttl)
	}
	m.items[m.opts.key(key)] = it
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	delete(m.items, m.opts.key(key))
	return nil
}

func (m *Memory[V]) Has(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	switch err {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	}
	return false, err
}

// Len returns the number of stored entries, expired ones included until the janitor runs.
func (m *Memory[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Close stops the janitor and drops all entries.
func (m *Memory[V]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.items = nil
	return nil
}

func (m *Memory[V]) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for k, it := range m.items {
				if it.expired(now) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

var _ Cache[any] = (*Memory[any])(nil)
