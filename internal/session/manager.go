// Package session owns the console's authentication state: the current token
// pair, its persistence, the proactive refresh schedule and the navigation
// guard policy.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/internal/apiclient"
	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/router"
	"github.com/hookpost/console-agent/internal/serviceerr"
)

// AuthAPI is the slice of the console API the manager consumes.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (apiclient.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (apiclient.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
	Register(ctx context.Context, req apiclient.RegistrationRequest) (apiclient.RegistrationResponse, error)
}

// Manager holds the session singleton. All state mutation happens under mu,
// which also serializes refreshes: a timer-fired refresh and an explicit call
// can never run concurrently.
type Manager struct {
	api      AuthAPI
	sessions Repository
	router   *router.Router

	leadTime  time.Duration
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer

	loginCount   sessionCounter
	refreshCount sessionCounter

	mu           sync.Mutex
	current      *Session
	refreshTimer *time.Timer
}

func NewManager(cfg *config.SessionManager, api AuthAPI, sessions Repository, rt *router.Router) (*Manager, error) {
	if api == nil {
		return nil, errors.New("auth API must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("session repository must not be nil")
	}

	leadTime := cfg.RefreshLeadTime
	if leadTime <= 0 {
		leadTime = time.Minute
	}

	m := &Manager{
		api:       api,
		sessions:  sessions,
		router:    rt,
		leadTime:  leadTime,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}

	if err := m.initMeters(); err != nil {
		return nil, err
	}

	return m, nil
}

// Initialize installs the navigation guard and attempts to rehydrate the
// session from storage. It is the process-start entrypoint.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.router != nil {
		m.router.BeforeEach(m.Guard())
	}

	return m.Rehydrate(ctx)
}

// Login exchanges credentials for a session. On failure the error propagates
// to the caller and the state is unchanged.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	tokens, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.loginCount.record(ctx, resultFailure)
		return fmt.Errorf("logging in: %w", err)
	}

	m.loginCount.record(ctx, resultSuccess)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.adoptLocked(ctx, fromTokenResponse(tokens))

	slogctx.Info(ctx, "Logged in", "email", tokens.Email)

	return nil
}

// Register creates a new account. It does not change the session state.
func (m *Manager) Register(ctx context.Context, req apiclient.RegistrationRequest) (apiclient.RegistrationResponse, error) {
	created, err := m.api.Register(ctx, req)
	if err != nil {
		return apiclient.RegistrationResponse{}, fmt.Errorf("registering: %w", err)
	}

	return created, nil
}

// Logout best-effort invalidates the session server-side; transport failures
// are logged and swallowed. The local state, storage and pending timer are
// cleared unconditionally and the console navigates to the login route.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if m.current != nil {
		if err := m.api.Logout(ctx, m.current.AccessToken); err != nil {
			slogctx.Warn(ctx, "Logout request failed, clearing the session anyway", "error", err)
		}
	}
	m.clearLocked(ctx)
	m.mu.Unlock()

	if m.router != nil {
		if _, err := m.router.Push(router.RouteLogin); err != nil {
			slogctx.Warn(ctx, "Could not navigate to the login route", "error", err)
		}
	}
}

// Rehydrate reconstructs the session from storage. An absent, unparseable or
// refresh-expired stored value leaves the manager logged out with storage
// cleared. Calling it twice is safe: arming the schedule always cancels the
// previous timer first.
func (m *Manager) Rehydrate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.sessions.Load(ctx)
	if errors.Is(err, serviceerr.ErrNoSession) {
		m.clearLocked(ctx)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading stored session: %w", err)
	}

	if !stored.RefreshTokenExpiration.After(m.now()) {
		slogctx.Info(ctx, "Stored refresh token has expired, discarding the session")
		m.clearLocked(ctx)
		return nil
	}

	m.current = &stored
	m.armLocked(ctx)

	return nil
}

// AccessToken returns the current access token, or "" when logged out.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.AccessToken
}

// RefreshToken returns the current refresh token, or "" when logged out.
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.RefreshToken
}

// UserInfo returns the identity view of the session, or nil when logged out.
func (m *Manager) UserInfo() *UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}

	return &UserInfo{
		Email:     m.current.Email,
		FirstName: m.current.FirstName,
		LastName:  m.current.LastName,
		Name:      m.current.FirstName + " " + m.current.LastName,
	}
}

func (m *Manager) LoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Session returns a copy of the current session, or nil when logged out.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}

	s := *m.current
	return &s
}

// Guard enforces the authentication routing policy: guarded routes require a
// session, public routes with redirectIfLoggedIn bounce an authenticated user
// back home.
func (m *Manager) Guard() router.Guard {
	return func(target router.Route) (router.Name, bool) {
		loggedIn := m.LoggedIn()
		switch {
		case target.Meta.RequiresAuth && !loggedIn:
			return router.RouteLogin, true
		case !target.Meta.RequiresAuth && target.Meta.RedirectIfLoggedIn && loggedIn:
			return router.RouteHome, true
		default:
			return "", false
		}
	}
}

// adoptLocked replaces the session fields atomically, writes through to
// storage and re-arms the refresh schedule.
func (m *Manager) adoptLocked(ctx context.Context, s Session) {
	m.current = &s
	if err := m.sessions.Store(ctx, s); err != nil {
		slogctx.Error(ctx, "Could not persist the session", "error", err)
	}
	m.armLocked(ctx)
}

// clearLocked drops the timer, the in-memory state and the stored session.
func (m *Manager) clearLocked(ctx context.Context) {
	m.stopTimerLocked()
	m.current = nil
	if err := m.sessions.Delete(ctx); err != nil && !errors.Is(err, serviceerr.ErrNoSession) {
		slogctx.Warn(ctx, "Could not clear the stored session", "error", err)
	}
}

func fromTokenResponse(t apiclient.TokenResponse) Session {
	return Session{
		AccessToken:            t.AccessToken,
		AccessTokenExpiration:  t.AccessTokenExpiration,
		RefreshToken:           t.RefreshToken,
		RefreshTokenExpiration: t.RefreshTokenExpiration,
		Email:                  t.Email,
		FirstName:              t.FirstName,
		LastName:               t.LastName,
	}
}
