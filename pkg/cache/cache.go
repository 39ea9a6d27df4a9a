package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a generic key-value store with TTL support.
type Cache[V any] interface {
	// Get returns ErrNotFound if the key does not exist or has expired.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Close() error
}

// Option configures a cache backend.
type Option func(*options)

type options struct {
	prefix          string
	defaultTTL      time.Duration
	cleanupInterval time.Duration
}

func newOptions(opts []Option) *options {
	o := &options{
		defaultTTL:      time.Hour,
		cleanupInterval: time.Minute,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithPrefix namespaces keys as "prefix:key".
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithDefaultTTL sets the expiration used when Set gets a zero TTL. Default: 1 hour.
func WithDefaultTTL(d time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = d
	}
}

// WithCleanupInterval sets how often the memory backend drops expired entries.
// Zero disables the janitor; expired entries are still never returned.
func WithCleanupInterval(d time.Duration) Option {
	return func(o *options) {
		o.cleanupInterval = d
	}
}

func (o *options) key(key string) string {
	if o.prefix == "" {
		return key
	}
	return o.prefix + ":" + key
}

func (o *options) ttl(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return o.defaultTTL
	}
	return ttl
}

var group singleflight.Group

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same key share one fn call.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, fn func(ctx context.Context) (V, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	v, err, _ := group.Do(key, func() (any, error) {
		val, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		_ = c.Set(ctx, key, val, ttl)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}

func marshal[V any](v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func unmarshal[V any](data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}
