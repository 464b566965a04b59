package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hookpost/console-agent/internal/apiclient"
	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/router"
	"github.com/hookpost/console-agent/internal/session"
	sessionmock "github.com/hookpost/console-agent/internal/session/mock"

	"github.com/stretchr/testify/require"
)

// fakeAPI implements session.AuthAPI with overridable behavior per call.
type fakeAPI struct {
	loginFn    func(ctx context.Context, email, password string) (apiclient.TokenResponse, error)
	refreshFn  func(ctx context.Context, refreshToken string) (apiclient.TokenResponse, error)
	logoutFn   func(ctx context.Context, accessToken string) error
	registerFn func(ctx context.Context, req apiclient.RegistrationRequest) (apiclient.RegistrationResponse, error)

	loginCalls, refreshCalls, logoutCalls int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (apiclient.TokenResponse, error) {
	f.loginCalls++
	if f.loginFn == nil {
		return apiclient.TokenResponse{}, nil
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (apiclient.TokenResponse, error) {
	f.refreshCalls++
	if f.refreshFn == nil {
		return apiclient.TokenResponse{}, nil
	}
	return f.refreshFn(ctx, refreshToken)
}

func (f *fakeAPI) Logout(ctx context.Context, accessToken string) error {
	f.logoutCalls++
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, accessToken)
}

func (f *fakeAPI) Register(ctx context.Context, req apiclient.RegistrationRequest) (apiclient.RegistrationResponse, error) {
	if f.registerFn == nil {
		return apiclient.RegistrationResponse{}, nil
	}
	return f.registerFn(ctx, req)
}

// timerRecorder captures timer arm requests instead of scheduling real timers.
type timerRecorder struct {
	delays []time.Duration
	fns    []func()
}

func (tr *timerRecorder) AfterFunc(d time.Duration, fn func()) *time.Timer {
	tr.delays = append(tr.delays, d)
	tr.fns = append(tr.fns, fn)

	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

// fireLast runs the most recently armed timer callback, the way time.AfterFunc
// would.
func (tr *timerRecorder) fireLast() {
	tr.fns[len(tr.fns)-1]()
}

func testTokens(now time.Time, email string) apiclient.TokenResponse {
	return apiclient.TokenResponse{
		AccessToken:            "access-" + email,
		AccessTokenExpiration:  now.Add(5 * time.Minute),
		RefreshToken:           "refresh-" + email,
		RefreshTokenExpiration: now.Add(24 * time.Hour),
		Email:                  email,
		FirstName:              "Jane",
		LastName:               "Doe",
	}
}

func testSession(now time.Time) session.Session {
	return session.Session{
		AccessToken:            "stored-access",
		AccessTokenExpiration:  now.Add(5 * time.Minute),
		RefreshToken:           "stored-refresh",
		RefreshTokenExpiration: now.Add(24 * time.Hour),
		Email:                  "jane@example.com",
		FirstName:              "Jane",
		LastName:               "Doe",
	}
}

func newConsoleRouter() *router.Router {
	r := router.New()
	r.Handle(router.RouteLogin, "/login", router.WithRequiresAuth(false))
	r.Handle(router.RouteHome, "/", router.WithRedirectIfLoggedIn(false))
	r.Handle("Applications", "/applications")
	return r
}

// newTestManager builds a manager over fakes, pinned to a fixed clock and a
// recording timer source.
func newTestManager(t *testing.T, api *fakeAPI, repo *sessionmock.Repository, now time.Time) (*session.Manager, *router.Router, *timerRecorder) {
	t.Helper()

	rt := newConsoleRouter()
	m, err := session.NewManager(&config.SessionManager{RefreshLeadTime: time.Minute}, api, repo, rt)
	require.NoError(t, err)

	m.SetClock(func() time.Time { return now })

	tr := &timerRecorder{}
	m.SetAfterFunc(tr.AfterFunc)

	return m, rt, tr
}

// StartAuthServer serves the auth endpoints over httptest for flow tests that
// exercise the real apiclient.
func StartAuthServer(t *testing.T, failRefresh bool) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()

		switch r.URL.Path {
		case "/auth/login":
			var body struct {
				Email    string `json:"email"`
				Password string `json:"password"`
			}
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.Password != "correct horse" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_ = json.NewEncoder(w).Encode(testTokens(now, body.Email))
		case "/auth/refresh":
			if failRefresh || !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer refresh-") {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			tokens := testTokens(now, "refreshed@example.com")
			_ = json.NewEncoder(w).Encode(tokens)
		case "/auth/logout":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}
