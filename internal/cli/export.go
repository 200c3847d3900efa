package cli

import (
	"github.com/spf13/cobra"

	"politrades/internal/app"
)

var exportOpts app.ExportOptions

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades as CSV and/or a ticker sparkline as PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Export(cmd.Context(), exportOpts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOpts.CSVPath, "csv", "", "Path to write CSV trades")
	exportCmd.Flags().StringVar(&exportOpts.PNGPath, "png", "", "Path to write PNG sparkline")
	exportCmd.Flags().StringVar(&exportOpts.Symbol, "symbol", "", "Ticker to chart with --png")
	exportCmd.Flags().StringVar(&exportOpts.Type, "type", "all", "Trade type: all, buy or sell")
	exportCmd.Flags().StringVar(&exportOpts.Period, "period", "allTime", "Period: today, thisWeek, thisMonth or allTime")
	exportCmd.Flags().StringVarP(&exportOpts.Query, "query", "q", "", "Free-text filter")
	exportCmd.Flags().BoolVar(&exportOpts.Followed, "followed", false, "Only followed politicians and sectors")
}
