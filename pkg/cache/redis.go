package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache stored in Redis with JSON-encoded values.
// The client lifecycle belongs to the caller (see pkg/redis).
type Redis[V any] struct {
	client redis.UniversalClient
	opts   *options
}

// NewRedis creates a Redis-backed cache.
func NewRedis[V any](client redis.UniversalClient, opts ...Option) *Redis[V] {
	return &Redis[V]{client: client, opts: newOptions(opts)}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	data, err := r.client.Get(ctx, r.opts.key(key)).Bytes()
	if err != nil {
		var zero V
		if errors.Is(err, redis.Nil) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return unmarshal[V](data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := marshal(value)
	if err != nil {
		return err
	}
	// Redis treats 0 as "no expiration".
	return r.client.Set(ctx, r.opts.key(key), data, max(r.opts.ttl(ttl), 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.opts.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.opts.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close is a no-op; close the client with redis.Shutdown.
func (r *Redis[V]) Close() error {
	return nil
}

var _ Cache[any] = (*Redis[any])(nil)
