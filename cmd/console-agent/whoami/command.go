package whoami

import (
	"github.com/spf13/cobra"

	"github.com/hookpost/console-agent/internal/business"
	"github.com/hookpost/console-agent/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"whoami",
		"Print the identity of the stored session",
		"Print the identity of the stored session together with the token expirations",
		buildInfo,
		cmdutils.RunAsJob,
		business.WhoamiMain,
	)
}
