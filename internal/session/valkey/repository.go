// Package sessionvalkey persists the session in valkey, for agents that share
// state across hosts or want it gone with the cache.
package sessionvalkey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/hookpost/console-agent/internal/serviceerr"
	"github.com/hookpost/console-agent/internal/session"
)

var (
	ErrGetSession    = errors.New("getting session from store")
	ErrStoreSession  = errors.New("setting session into storage")
	ErrDeleteSession = errors.New("deleting session from store")
)

type Repository struct {
	valkey valkey.Client
	prefix string
	now    func() time.Time
}

var _ = session.Repository(&Repository{})

func NewRepository(valkeyClient valkey.Client, prefix string) *Repository {
	prefix = strings.TrimSuffix(prefix, ":")
	return &Repository{
		valkey: valkeyClient,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *Repository) Load(ctx context.Context) (session.Session, error) {
	data, err := r.valkey.Do(ctx, r.valkey.B().Get().Key(r.key()).Build()).AsBytes()
	if err != nil {
		if valkeyErr, ok := valkey.IsValkeyErr(err); ok && valkeyErr.IsNil() {
			return session.Session{}, serviceerr.ErrNoSession
		}

		return session.Session{}, errors.Join(ErrGetSession, err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return session.Session{}, errors.Join(serviceerr.ErrNoSession, err)
	}

	return s, nil
}

// Store keeps the session only as long as the refresh token can still be used:
// the key expires together with the refresh token.
func (r *Repository) Store(ctx context.Context, s session.Session) error {
	ttl := s.RefreshTokenExpiration.Sub(r.now())
	if ttl <= 0 {
		return serviceerr.ErrSessionExpired
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	cmd := r.valkey.B().Set().Key(r.key()).Value(valkey.BinaryString(data)).Ex(ttl).Build()
	if err := r.valkey.Do(ctx, cmd).Error(); err != nil {
		return errors.Join(ErrStoreSession, err)
	}

	return nil
}

func (r *Repository) Delete(ctx context.Context) error {
	if err := r.valkey.Do(ctx, r.valkey.B().Del().Key(r.key()).Build()).Error(); err != nil {
		return errors.Join(ErrDeleteSession, err)
	}

	return nil
}

func (r *Repository) key() string {
	return fmt.Sprintf("%s:auth", r.prefix)
}
