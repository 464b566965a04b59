// Package business wires the configured storage backend, the HTTP client and
// the router into a session manager, and hosts the entrypoints the CLI
// commands run.
package business

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valkey-io/valkey-go"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/internal/apiclient"
	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/session"
	sessionfile "github.com/hookpost/console-agent/internal/session/file"
	sessionmemory "github.com/hookpost/console-agent/internal/session/memory"
	sessionvalkey "github.com/hookpost/console-agent/internal/session/valkey"
)

// AgentMain runs the long-lived console agent: it rehydrates the session from
// storage and keeps the access token fresh until the context is canceled.
func AgentMain(ctx context.Context, cfg *config.Config) error {
	manager, closeFn, err := initSessionManager(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialising the session manager: %w", err)
	}

	defer closeFn()

	if err := manager.Initialize(ctx); err != nil {
		return fmt.Errorf("initialising the session: %w", err)
	}

	slogctx.Info(ctx, "Starting the console session agent")
	return runStatusLoop(ctx, manager, cfg)
}

func runStatusLoop(ctx context.Context, manager *session.Manager, cfg *config.Config) error {
	c := time.Tick(cfg.Agent.StatusInterval)
	for {
		logStatus(ctx, manager)

		select {
		case <-c:
			continue
		case <-ctx.Done():
			return nil
		}
	}
}

func logStatus(ctx context.Context, manager *session.Manager) {
	info := manager.UserInfo()
	if info == nil {
		slogctx.Info(ctx, "Session status", "logged_in", false)
		return
	}

	attrs := []any{"logged_in", true, "email", info.Email}
	if in, err := manager.RefreshIn(); err == nil {
		attrs = append(attrs, "refresh_in", in.Round(time.Second))
	}

	slogctx.Info(ctx, "Session status", attrs...)
}

func initSessionManager(ctx context.Context, cfg *config.Config) (_ *session.Manager, closeFn func(), _ error) {
	repo, closeFn, err := initRepository(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initialising the session storage: %w", err)
	}

	client, err := apiclient.NewClient(&cfg.API)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("creating the API client: %w", err)
	}

	manager, err := session.NewManager(&cfg.Session, client, repo, NewConsoleRouter())
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("creating the session manager: %w", err)
	}

	return manager, closeFn, nil
}

func initRepository(ctx context.Context, cfg *config.Config) (session.Repository, func(), error) {
	switch cfg.Store.Backend {
	case "", "file":
		dir := cfg.Store.Directory
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("resolving the home directory: %w", err)
			}
			dir = filepath.Join(home, ".console-agent")
		}

		slogctx.Debug(ctx, "Using the file session store", "directory", dir)
		return sessionfile.NewRepository(dir), func() {}, nil

	case "valkey":
		valkeyClient, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.ValKey.Host},
			Username:    cfg.ValKey.User,
			Password:    cfg.ValKey.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("creating a new valkey client: %w", err)
		}

		slogctx.Debug(ctx, "Using the valkey session store", "host", cfg.ValKey.Host, "prefix", cfg.ValKey.Prefix)
		return sessionvalkey.NewRepository(valkeyClient, cfg.ValKey.Prefix), valkeyClient.Close, nil

	case "memory":
		return sessionmemory.NewRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
