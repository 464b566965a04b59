package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hookpost/console-agent/cmd/console-agent/agent"
	"github.com/hookpost/console-agent/cmd/console-agent/login"
	"github.com/hookpost/console-agent/cmd/console-agent/logout"
	"github.com/hookpost/console-agent/cmd/console-agent/register"
	"github.com/hookpost/console-agent/cmd/console-agent/whoami"
)

var (
	// BuildInfo will be set by the build system
	BuildInfo = "{}"

	isVersionCmd     bool
	gracefulShutdown time.Duration
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Console Agent Version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		isVersionCmd = true

		slog.InfoContext(cmd.Context(), BuildInfo)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console-agent",
		Short: "Console Session Agent",
		Long:  "Console Session Agent manages the authenticated session of the webhook console: login, persistence, silent refresh and logout.",
	}

	cmd.PersistentFlags().DurationVar(&gracefulShutdown, "graceful-shutdown", 1*time.Second, "graceful shutdown")

	cmd.AddCommand(
		versionCmd,
		agent.Cmd(BuildInfo),
		login.Cmd(BuildInfo),
		logout.Cmd(BuildInfo),
		register.Cmd(BuildInfo),
		whoami.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "failed to start the application", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	if !isVersionCmd {
		_, _ = fmt.Fprintf(os.Stderr, "Graceful shutdown in %s\n", gracefulShutdown)
		time.Sleep(gracefulShutdown)
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
