// Package sessionfile persists the session as a JSON file on disk, the console
// agent's analog of browser local storage.
package sessionfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hookpost/console-agent/internal/serviceerr"
	"github.com/hookpost/console-agent/internal/session"
)

const fileName = "auth.json"

type Repository struct {
	dir string
}

var _ = session.Repository(&Repository{})

func NewRepository(dir string) *Repository {
	return &Repository{dir: dir}
}

func (r *Repository) Load(_ context.Context) (session.Session, error) {
	data, err := os.ReadFile(r.path())
	if errors.Is(err, fs.ErrNotExist) {
		return session.Session{}, serviceerr.ErrNoSession
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("reading session file: %w", err)
	}

	var s session.Session
	if err := json.Unmarshal(data, &s); err != nil {
		// A corrupt file is treated as an absent session.
		return session.Session{}, errors.Join(serviceerr.ErrNoSession, err)
	}

	return s, nil
}

// Store writes the session atomically: the content lands in a temp file that
// is renamed over the previous one.
func (r *Repository) Store(_ context.Context, s session.Session) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, fileName+".*")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("restricting session file permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing session file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path()); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing session file: %w", err)
	}

	return nil
}

func (r *Repository) Delete(_ context.Context) error {
	err := os.Remove(r.path())
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}

	return nil
}

func (r *Repository) path() string {
	return filepath.Join(r.dir, fileName)
}
