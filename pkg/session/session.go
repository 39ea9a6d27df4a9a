// Package session holds request sessions identified by an opaque cookie token.
package session

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
)

// Session is a set of values bound to one client.
type Session struct {
	ID        string         `json:"id"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`

	dirty bool
	isNew bool
}

// New creates a session marked new and dirty.
func New(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Values:    make(map[string]any),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		dirty:     true,
		isNew:     true,
	}
}

// Get returns a value and whether it is set.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Delete removes a value. The session is marked dirty only if the key existed.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; ok {
		delete(s.Values, key)
		s.dirty = true
	}
}

// String returns a value cast to string, or "".
func (s *Session) String(key string) string {
	return cast.ToString(s.Values[key])
}

// Pull returns a value and removes it, for flash-style data.
func (s *Session) Pull(key string) (any, bool) {
	v, ok := s.Get(key)
	s.Delete(key)
	return v, ok
}

func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) MarkDirty()    { s.dirty = true }
func (s *Session) ClearDirty()   { s.dirty = false }
func (s *Session) IsNew() bool   { return s.isNew }
func (s *Session) ClearNew()     { s.isNew = false }

// IsExpired reports whether the session is past ExpiresAt.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns a typed session value. Numbers decoded from JSON are cast
// to the requested type.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	v, ok := s.Get(key)
	if !ok {
		return zero, ErrNotFound
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	var out any
	var err error
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(v)
	case int:
		out, err = cast.ToIntE(v)
	case int64:
		out, err = cast.ToInt64E(v)
	case float64:
		out, err = cast.ToFloat64E(v)
	case bool:
		out, err = cast.ToBoolE(v)
	default:
		return zero, fmt.Errorf("%w: %q", ErrTypeMismatch, key)
	}
	if err != nil {
		return zero, fmt.Errorf("%w: %q: %w", ErrTypeMismatch, key, err)
	}
	return out.(T), nil
}
