package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookpost/console-agent/internal/apiclient"
	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/router"
	"github.com/hookpost/console-agent/internal/serviceerr"
	"github.com/hookpost/console-agent/internal/session"
	sessionmock "github.com/hookpost/console-agent/internal/session/mock"
)

func TestManager_Login(t *testing.T) {
	now := time.Now()

	t.Run("success arms a refresh one minute before expiry", func(t *testing.T) {
		api := &fakeAPI{
			loginFn: func(_ context.Context, email, _ string) (apiclient.TokenResponse, error) {
				return testTokens(now, email), nil
			},
		}
		repo := sessionmock.NewInMemRepository()
		m, _, tr := newTestManager(t, api, repo, now)

		require.NoError(t, m.Login(t.Context(), "jane@example.com", "pw"))

		assert.True(t, m.LoggedIn())
		assert.True(t, m.TimerArmed())
		require.Len(t, tr.delays, 1)
		// access token expires in 5 minutes, lead time is 1 minute
		assert.Equal(t, 4*time.Minute, tr.delays[0])

		// write-through: storage matches the response
		stored := repo.Session()
		require.NotNil(t, stored)
		assert.Equal(t, "access-jane@example.com", stored.AccessToken)
		assert.Equal(t, "jane@example.com", stored.Email)
	})

	t.Run("failure propagates and leaves the state untouched", func(t *testing.T) {
		api := &fakeAPI{
			loginFn: func(context.Context, string, string) (apiclient.TokenResponse, error) {
				return apiclient.TokenResponse{}, serviceerr.ErrInvalidCredentials
			},
		}
		repo := sessionmock.NewInMemRepository()
		m, _, _ := newTestManager(t, api, repo, now)

		err := m.Login(t.Context(), "jane@example.com", "wrong")
		require.ErrorIs(t, err, serviceerr.ErrInvalidCredentials)
		assert.False(t, m.LoggedIn())
		assert.False(t, m.TimerArmed())
		assert.Equal(t, 0, repo.StoreCalls())
	})
}

func TestManager_Accessors(t *testing.T) {
	now := time.Now()
	api := &fakeAPI{
		loginFn: func(_ context.Context, email, _ string) (apiclient.TokenResponse, error) {
			return testTokens(now, email), nil
		},
	}
	m, _, _ := newTestManager(t, api, sessionmock.NewInMemRepository(), now)

	assert.Empty(t, m.AccessToken())
	assert.Empty(t, m.RefreshToken())
	assert.Nil(t, m.UserInfo())
	assert.Nil(t, m.Session())

	require.NoError(t, m.Login(t.Context(), "jane@example.com", "pw"))

	assert.Equal(t, "access-jane@example.com", m.AccessToken())
	assert.Equal(t, "refresh-jane@example.com", m.RefreshToken())

	info := m.UserInfo()
	require.NotNil(t, info)
	assert.Equal(t, "jane@example.com", info.Email)
	assert.Equal(t, "Jane Doe", info.Name)
}

func TestManager_Rehydrate(t *testing.T) {
	now := time.Now()

	t.Run("no stored session", func(t *testing.T) {
		m, _, _ := newTestManager(t, &fakeAPI{}, sessionmock.NewInMemRepository(), now)

		require.NoError(t, m.Rehydrate(t.Context()))
		assert.False(t, m.LoggedIn())
		assert.False(t, m.TimerArmed())
	})

	t.Run("corrupt stored value is treated as absent", func(t *testing.T) {
		repo := sessionmock.NewInMemRepository(
			sessionmock.WithLoadError(errors.Join(serviceerr.ErrNoSession, errors.New("invalid character"))),
		)
		m, _, _ := newTestManager(t, &fakeAPI{}, repo, now)

		require.NoError(t, m.Rehydrate(t.Context()))
		assert.False(t, m.LoggedIn())
	})

	t.Run("valid session arms the schedule", func(t *testing.T) {
		repo := sessionmock.NewInMemRepository(sessionmock.WithSession(testSession(now)))
		m, _, tr := newTestManager(t, &fakeAPI{}, repo, now)

		require.NoError(t, m.Rehydrate(t.Context()))
		assert.True(t, m.LoggedIn())
		assert.True(t, m.TimerArmed())
		require.Len(t, tr.delays, 1)
		assert.Equal(t, 4*time.Minute, tr.delays[0])
	})

	t.Run("is idempotent and never double-arms", func(t *testing.T) {
		repo := sessionmock.NewInMemRepository(sessionmock.WithSession(testSession(now)))
		m, _, tr := newTestManager(t, &fakeAPI{}, repo, now)

		require.NoError(t, m.Rehydrate(t.Context()))
		first := m.Session()
		require.NoError(t, m.Rehydrate(t.Context()))

		assert.Empty(t, cmp.Diff(first, m.Session()))
		assert.True(t, m.TimerArmed())
		// the second arm canceled the first timer and created a new one
		assert.Len(t, tr.delays, 2)
	})

	t.Run("expired refresh token clears storage", func(t *testing.T) {
		stored := testSession(now)
		stored.RefreshTokenExpiration = now.Add(-time.Minute)
		repo := sessionmock.NewInMemRepository(sessionmock.WithSession(stored))
		m, _, _ := newTestManager(t, &fakeAPI{}, repo, now)

		require.NoError(t, m.Rehydrate(t.Context()))
		assert.False(t, m.LoggedIn())
		assert.False(t, m.TimerArmed())
		assert.Nil(t, repo.Session())
		assert.NotZero(t, repo.DeleteCalls())
	})

	t.Run("stale access token triggers an immediate refresh", func(t *testing.T) {
		stored := testSession(now)
		stored.AccessTokenExpiration = now.Add(-time.Minute)
		repo := sessionmock.NewInMemRepository(sessionmock.WithSession(stored))

		api := &fakeAPI{
			refreshFn: func(_ context.Context, refreshToken string) (apiclient.TokenResponse, error) {
				require.Equal(t, "stored-refresh", refreshToken)
				return testTokens(now, "jane@example.com"), nil
			},
		}
		m, _, _ := newTestManager(t, api, repo, now)

		require.NoError(t, m.Rehydrate(t.Context()))
		assert.Equal(t, 1, api.refreshCalls)
		assert.True(t, m.LoggedIn())
		assert.True(t, m.TimerArmed())
		assert.Equal(t, "access-jane@example.com", m.AccessToken())
	})
}

func TestManager_Logout(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "logout call succeeds"},
		{name: "logout call fails but the session is cleared anyway", logoutErr: errors.New("connection refused")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			api := &fakeAPI{
				loginFn: func(_ context.Context, email, _ string) (apiclient.TokenResponse, error) {
					return testTokens(now, email), nil
				},
				logoutFn: func(_ context.Context, accessToken string) error {
					gotToken = accessToken
					return tt.logoutErr
				},
			}
			repo := sessionmock.NewInMemRepository()
			m, rt, _ := newTestManager(t, api, repo, now)
			require.NoError(t, m.Initialize(t.Context()))

			require.NoError(t, m.Login(t.Context(), "jane@example.com", "pw"))
			m.Logout(t.Context())

			assert.Equal(t, "access-jane@example.com", gotToken)
			assert.False(t, m.LoggedIn())
			assert.False(t, m.TimerArmed())
			assert.Nil(t, repo.Session())
			assert.Equal(t, router.RouteLogin, rt.Current())
		})
	}
}

func TestManager_Guard(t *testing.T) {
	now := time.Now()
	api := &fakeAPI{
		loginFn: func(_ context.Context, email, _ string) (apiclient.TokenResponse, error) {
			return testTokens(now, email), nil
		},
	}
	m, rt, _ := newTestManager(t, api, sessionmock.NewInMemRepository(), now)
	require.NoError(t, m.Initialize(t.Context()))

	// logged out: guarded route redirects to Login
	got, err := rt.Push("Applications")
	require.NoError(t, err)
	assert.Equal(t, router.RouteLogin, got)

	// logged out: Login passes through
	got, err = rt.Push(router.RouteLogin)
	require.NoError(t, err)
	assert.Equal(t, router.RouteLogin, got)

	require.NoError(t, m.Login(t.Context(), "jane@example.com", "pw"))

	// logged in: Login bounces Home
	got, err = rt.Push(router.RouteLogin)
	require.NoError(t, err)
	assert.Equal(t, router.RouteHome, got)

	// logged in: guarded route passes through
	got, err = rt.Push("Applications")
	require.NoError(t, err)
	assert.Equal(t, router.Name("Applications"), got)
}

func TestManager_Register(t *testing.T) {
	api := &fakeAPI{
		registerFn: func(_ context.Context, req apiclient.RegistrationRequest) (apiclient.RegistrationResponse, error) {
			assert.Equal(t, "jane@example.com", req.Email)
			return apiclient.RegistrationResponse{}, nil
		},
	}
	m, _, _ := newTestManager(t, api, sessionmock.NewInMemRepository(), time.Now())

	_, err := m.Register(t.Context(), apiclient.RegistrationRequest{Email: "jane@example.com"})
	require.NoError(t, err)
	assert.False(t, m.LoggedIn())
}

func TestNewManager_Validation(t *testing.T) {
	cfg := &config.SessionManager{}

	_, err := session.NewManager(cfg, nil, sessionmock.NewInMemRepository(), nil)
	require.Error(t, err)

	_, err = session.NewManager(cfg, &fakeAPI{}, nil, nil)
	require.Error(t, err)

	m, err := session.NewManager(cfg, &fakeAPI{}, sessionmock.NewInMemRepository(), nil)
	require.NoError(t, err)
	require.NotNil(t, m)
}
