// Package redis opens go-redis clients used by the cache and session stores.
package redis

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Option configures a connection.
type Option func(*options)

type options struct {
	poolSize     int
	attempts     int
	backoff      time.Duration
	dialTimeout  time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// WithPoolSize sets the maximum number of pooled connections. Default: 10.
func WithPoolSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithRetry sets the number of ping attempts and the linear backoff step between them.
// Default: 3 attempts, 2s step.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.backoff = backoff
	}
}

// WithTimeouts sets dial, read and write timeouts.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = dial
		o.readTimeout = read
		o.writeTimeout = write
	}
}

// Open parses a redis:// or rediss:// URL and returns a client that answered PING.
//
// Example:
//
//	client, err := redis.Open(ctx, cfg.String("redis|url"), redis.WithPoolSize(20))
func Open(ctx context.Context, url string, opts ...Option) (redis.UniversalClient, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, ErrInvalidURL
	}

	o := &options{
		poolSize:     10,
		attempts:     3,
		backoff:      2 * time.Second,
		dialTimeout:  5 * time.Second,
		readTimeout:  3 * time.Second,
		writeTimeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}

	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}
	ro.PoolSize = o.poolSize
	ro.DialTimeout = o.dialTimeout
	ro.ReadTimeout = o.readTimeout
	ro.WriteTimeout = o.writeTimeout

	var lastErr error
	for i := range max(o.attempts, 1) {
		client := redis.NewClient(ro)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectionFailed, ctx.Err())
		case <-time.After(time.Duration(i+1) * o.backoff):
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

// Healthcheck returns a readiness check that pings the server.
func Healthcheck(client redis.UniversalClient) func(context.Context) error {
	return func(ctx context.Context) error {
		if client == nil {
			return ErrUnhealthy
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrUnhealthy, err)
		}
		return nil
	}
}

// Shutdown returns a shutdown hook closing the client.
func Shutdown(client io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return client.Close()
	}
}
