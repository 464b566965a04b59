package login

import (
	"github.com/spf13/cobra"

	"github.com/hookpost/console-agent/internal/business"
	"github.com/hookpost/console-agent/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"login",
		"Log in to the console",
		"Log in to the console and persist the session for the agent to keep fresh",
		buildInfo,
		cmdutils.RunAsJob,
		business.LoginMain,
	)
}
