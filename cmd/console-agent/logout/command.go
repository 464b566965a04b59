package logout

import (
	"github.com/spf13/cobra"

	"github.com/hookpost/console-agent/internal/business"
	"github.com/hookpost/console-agent/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"logout",
		"Log out of the console",
		"Log out of the console, revoke the refresh token and delete the stored session",
		buildInfo,
		cmdutils.RunAsJob,
		business.LogoutMain,
	)
}
