package sessionmock

import (
	"context"
	"sync"

	"github.com/hookpost/console-agent/internal/serviceerr"
	"github.com/hookpost/console-agent/internal/session"
)

type RepositoryOption func(*Repository)

// Repository is an in-memory session.Repository for tests.
type Repository struct {
	mu      sync.Mutex
	session *session.Session

	loadErr, storeErr, deleteErr error

	storeCalls, deleteCalls int
}

func WithSession(s session.Session) RepositoryOption {
	return func(r *Repository) { r.session = &s }
}
func WithLoadError(err error) RepositoryOption {
	return func(r *Repository) { r.loadErr = err }
}
func WithStoreError(err error) RepositoryOption {
	return func(r *Repository) { r.storeErr = err }
}
func WithDeleteError(err error) RepositoryOption {
	return func(r *Repository) { r.deleteErr = err }
}

var _ = session.Repository(&Repository{})

func NewInMemRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Repository) Load(_ context.Context) (session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loadErr != nil {
		return session.Session{}, r.loadErr
	}
	if r.session == nil {
		return session.Session{}, serviceerr.ErrNoSession
	}
	return *r.session, nil
}

func (r *Repository) Store(_ context.Context, s session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeCalls++
	if r.storeErr != nil {
		return r.storeErr
	}
	r.session = &s
	return nil
}

func (r *Repository) Delete(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.session = nil
	return nil
}

// Session returns the currently stored session, or nil.
func (r *Repository) Session() *session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return nil
	}
	s := *r.session
	return &s
}

func (r *Repository) StoreCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.storeCalls
}

func (r *Repository) DeleteCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deleteCalls
}
