package session

import (
	"context"
	"errors"
	"time"

	"github.com/laika-mvc/laika/pkg/cache"
)

// Store persists sessions.
type Store interface {
	// Get returns ErrNotFound or ErrExpired for unusable sessions.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// CacheStore keeps sessions in a cache backend, memory or Redis.
type CacheStore struct {
	cache cache.Cache[Session]
}

// NewCacheStore wraps c as a session store.
//
//	store := session.NewCacheStore(cache.NewRedis[session.Session](client, cache.WithPrefix("session")))
func NewCacheStore(c cache.Cache[Session]) *CacheStore {
	return &CacheStore{cache: c}
}

func (st *CacheStore) Get(ctx context.Context, id string) (*Session, error) {
	s, err := st.cache.Get(ctx, id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if s.IsExpired() {
		_ = st.cache.Delete(ctx, id)
		return nil, ErrExpired
	}
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.ClearNew()
	s.ClearDirty()
	return &s, nil
}

func (st *CacheStore) Save(ctx context.Context, s *Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	return st.cache.Set(ctx, s.ID, *s, ttl)
}

func (st *CacheStore) Delete(ctx context.Context, id string) error {
	return st.cache.Delete(ctx, id)
}

var _ Store = (*CacheStore)(nil)
