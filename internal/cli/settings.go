package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"politrades/internal/app"
)

var (
	accountName     string
	trialDays       int
	premiumWatch    bool
	premiumInterval time.Duration
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Settings(cmd.Context())
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <language|notifications|threshold> <value>",
	Short: "Change one preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SetSetting(cmd.Context(), args[0], args[1])
	},
}

var onboardingCmd = &cobra.Command{
	Use:       "onboarding [status|complete|reset]",
	Short:     "Inspect or change the onboarding gate",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(app.OnboardingStatus), string(app.OnboardingComplete), string(app.OnboardingReset)},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := app.OnboardingStatus
		if len(args) == 1 {
			action = app.OnboardingAction(args[0])
		}
		return getApp().Onboarding(cmd.Context(), action)
	},
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the local account profile",
}

var accountLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Start a session and cache the profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SignIn(cmd.Context(), args[0], accountName)
	},
}

var accountLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the session and cached profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().SignOut(cmd.Context())
	},
}

var premiumCmd = &cobra.Command{
	Use:   "premium",
	Short: "Show the premium entitlement",
	RunE: func(cmd *cobra.Command, args []string) error {
		if premiumInterval <= 0 {
			return fmt.Errorf("--interval must be greater than zero")
		}
		return getApp().PremiumStatus(cmd.Context(), premiumWatch, premiumInterval)
	},
}

var premiumTrialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Start a local premium trial",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().StartTrial(cmd.Context(), trialDays)
	},
}

func init() {
	settingsCmd.AddCommand(settingsSetCmd)

	accountLoginCmd.Flags().StringVar(&accountName, "name", "", "Display name")
	accountCmd.AddCommand(accountLoginCmd, accountLogoutCmd)

	premiumCmd.Flags().BoolVar(&premiumWatch, "watch", false, "Count down to expiry until interrupted")
	premiumCmd.Flags().DurationVar(&premiumInterval, "interval", time.Second, "Countdown refresh interval")
	premiumTrialCmd.Flags().IntVar(&trialDays, "days", 7, "Trial length in days")
	premiumCmd.AddCommand(premiumTrialCmd)
}
