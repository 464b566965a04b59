package agent

import (
	"github.com/spf13/cobra"

	"github.com/hookpost/console-agent/internal/business"
	"github.com/hookpost/console-agent/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"agent",
		"Console session agent service",
		"Console session agent service rehydrates the stored session and keeps the access token fresh",
		buildInfo,
		cmdutils.RunAsService,
		business.AgentMain,
	)
}
