package business

import (
	"context"

	"github.com/hookpost/console-agent/internal/config"
	"github.com/hookpost/console-agent/internal/session"
)

func InitRepository(ctx context.Context, cfg *config.Config) (session.Repository, func(), error) {
	return initRepository(ctx, cfg)
}

func InitSessionManager(ctx context.Context, cfg *config.Config) (*session.Manager, func(), error) {
	return initSessionManager(ctx, cfg)
}
