package cache

import "errors"

var (
	// ErrNotFound is returned when a key is missing or expired.
	ErrNotFound = errors.New("cache: entry not found")

	// ErrClosed is returned by a closed memory cache.
	ErrClosed = errors.New("cache: closed")

	ErrMarshal   = errors.New("cache: marshal value")
	ErrUnmarshal = errors.New("cache: unmarshal value")
)
