package cmdutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/internal/config"
)

func CobraCommand(
	use, short, long, buildInfo string,
	wrapperFunc func(context.Context, func(context.Context, *config.Config) error, *config.Config) error,
	businessFunc func(context.Context, *config.Config) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			ctx := slogctx.With(cmd.Context(), "build", buildInfo)

			err = wrapperFunc(ctx, businessFunc, cfg)
			if err != nil {
				return fmt.Errorf("running the %s command: %w", use, err)
			}

			return nil
		},
	}
}

func RunAsService(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	return run(ctx, "service", fn, cfg)
}

func RunAsJob(ctx context.Context, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	return run(ctx, "job", fn, cfg)
}

func run(ctx context.Context, mode string, fn func(context.Context, *config.Config) error, cfg *config.Config) error {
	// LoggerConfig
	err := initLogger(&cfg.Logger)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	ctx = slogctx.With(ctx, "application", cfg.Application.Name, "mode", mode)
	slogctx.Debug(ctx, "Starting the application", slog.Any("config", cfg))

	// Business Logic
	err = fn(ctx, cfg)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to start the main business application")
	}

	return nil
}

func loadConfig() (*config.Config, error) {
	// .env is optional; a missing file is fine
	_ = godotenv.Load()

	cfg, err := config.Load(
		"/etc/console-agent",
		"$HOME/.console-agent",
		".",
	)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	return cfg, nil
}

func initLogger(cfg *config.Logger) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "", "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return fmt.Errorf("unknown log format %q", cfg.Format)
	}

	slog.SetDefault(slog.New(slogctx.NewHandler(handler, nil)))

	return nil
}
