package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/internal/serviceerr"
)

// Refresh replaces the token pair using the current refresh token. A failed
// refresh forces a logout: memory, storage and the pending timer are cleared.
// Calling it while logged out is a no-op returning serviceerr.ErrNoSession.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx, triggerManual)
}

// armLocked (re)arms the refresh schedule. At most one timer is pending at any
// time; the previous one is always canceled first.
func (m *Manager) armLocked(ctx context.Context) {
	m.stopTimerLocked()
	if m.current == nil {
		return
	}

	now := m.now()
	switch {
	case !m.current.RefreshTokenExpiration.After(now):
		slogctx.Info(ctx, "Refresh token has expired, logging out")
		m.clearLocked(ctx)
	case !m.current.AccessTokenExpiration.After(now):
		// The process may have been suspended past the expiry; renew right away.
		_ = m.refreshLocked(ctx, triggerImmediate)
	default:
		delay := max(m.current.AccessTokenExpiration.Add(-m.leadTime).Sub(now), 0)

		// The timer outlives the arming call's request scope.
		timerCtx := context.WithoutCancel(ctx)

		var t *time.Timer
		t = m.afterFunc(delay, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			// A fire can lose the race against a re-arm: Stop returned false
			// while this callback was parked on the lock. Only the handle
			// owner may clear it and refresh.
			if m.refreshTimer != t {
				return
			}
			m.refreshTimer = nil
			_ = m.refreshLocked(timerCtx, triggerTimer)
		})
		m.refreshTimer = t

		slogctx.Debug(ctx, "Scheduled session refresh", "delay", delay)
	}
}

func (m *Manager) refreshLocked(ctx context.Context, trigger string) error {
	if m.current == nil {
		return serviceerr.ErrNoSession
	}

	tokens, err := m.api.Refresh(ctx, m.current.RefreshToken)
	if err != nil {
		m.refreshCount.recordTrigger(ctx, resultFailure, trigger)
		slogctx.Warn(ctx, "Session refresh failed, logging out", "trigger", trigger, "error", err)
		m.clearLocked(ctx)
		return fmt.Errorf("refreshing session: %w", err)
	}

	renewed := fromTokenResponse(tokens)
	if !renewed.AccessTokenExpiration.After(m.now()) {
		// An already stale response would schedule an endless refresh loop.
		m.refreshCount.recordTrigger(ctx, resultFailure, trigger)
		slogctx.Warn(ctx, "Refresh returned an already expired access token, logging out", "trigger", trigger)
		m.clearLocked(ctx)
		return serviceerr.ErrSessionExpired
	}

	m.refreshCount.recordTrigger(ctx, resultSuccess, trigger)
	m.adoptLocked(ctx, renewed)

	return nil
}

func (m *Manager) stopTimerLocked() {
	if m.refreshTimer == nil {
		return
	}
	m.refreshTimer.Stop()
	m.refreshTimer = nil
}

// RefreshIn reports when the next scheduled refresh would fire relative to
// now, for status logging. Returns ErrNoSession when logged out.
func (m *Manager) RefreshIn() (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0, serviceerr.ErrNoSession
	}
	if m.refreshTimer == nil {
		return 0, errors.New("no refresh scheduled")
	}

	return m.current.AccessTokenExpiration.Add(-m.leadTime).Sub(m.now()), nil
}
