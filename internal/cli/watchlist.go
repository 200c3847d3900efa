package cli

import (
	"github.com/spf13/cobra"
)

var followSector bool

var followCmd = &cobra.Command{
	Use:   "follow <politician-id|sector>",
	Short: "Add a politician (or with --sector, a sector) to the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Follow(cmd.Context(), args[0], followSector)
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <politician-id|sector>",
	Short: "Remove a politician or sector from the watchlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Unfollow(cmd.Context(), args[0], followSector)
	},
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Show followed politicians and sectors",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Watchlist(cmd.Context())
	},
}

func init() {
	followCmd.Flags().BoolVar(&followSector, "sector", false, "Treat the argument as a sector name")
	unfollowCmd.Flags().BoolVar(&followSector, "sector", false, "Treat the argument as a sector name")
}
