package cli

import (
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Trade alerts for followed politicians and sectors",
}

var alertsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for new alerts on the configured interval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watch(cmd.Context())
	},
}

var alertsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate alerts once and print what was sent",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CheckAlerts(cmd.Context())
	},
}

func init() {
	alertsCmd.AddCommand(alertsWatchCmd, alertsCheckCmd)
}
