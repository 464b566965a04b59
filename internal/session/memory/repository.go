// Package sessionmemory keeps the session in process memory only. The entry
// evicts itself when the refresh token expires.
package sessionmemory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hookpost/console-agent/internal/serviceerr"
	"github.com/hookpost/console-agent/internal/session"
)

const cacheKey = "auth"

type Repository struct {
	cache *gocache.Cache
	now   func() time.Time
}

var _ = session.Repository(&Repository{})

func NewRepository() *Repository {
	return &Repository{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
		now:   time.Now,
	}
}

func (r *Repository) Load(_ context.Context) (session.Session, error) {
	value, ok := r.cache.Get(cacheKey)
	if !ok {
		return session.Session{}, serviceerr.ErrNoSession
	}

	s, ok := value.(session.Session)
	if !ok {
		return session.Session{}, serviceerr.ErrNoSession
	}

	return s, nil
}

func (r *Repository) Store(_ context.Context, s session.Session) error {
	ttl := s.RefreshTokenExpiration.Sub(r.now())
	if ttl <= 0 {
		return serviceerr.ErrSessionExpired
	}

	r.cache.Set(cacheKey, s, ttl)

	return nil
}

func (r *Repository) Delete(_ context.Context) error {
	r.cache.Delete(cacheKey)
	return nil
}
