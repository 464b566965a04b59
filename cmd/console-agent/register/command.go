package register

import (
	"github.com/spf13/cobra"

	"github.com/hookpost/console-agent/internal/business"
	"github.com/hookpost/console-agent/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"register",
		"Register a new console account",
		"Register a new console account and report the created user and organization",
		buildInfo,
		cmdutils.RunAsJob,
		business.RegisterMain,
	)
}
