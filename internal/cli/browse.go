package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"politrades/internal/app"
)

var (
	tradesType     string
	tradesPeriod   string
	tradesQuery    string
	tradesFollowed bool
	tradesLimit    int

	moversLimit   int
	moversTickers bool

	relatedLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search politicians by name and tickers by symbol or company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Search(cmd.Context(), args[0])
	},
}

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "List trades grouped by filing day",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tradesLimit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		return getApp().Trades(cmd.Context(), app.TradesOptions{
			Type:     tradesType,
			Period:   tradesPeriod,
			Query:    tradesQuery,
			Followed: tradesFollowed,
			Limit:    tradesLimit,
		})
	},
}

var tradeCmd = &cobra.Command{
	Use:   "trade <id>",
	Short: "Show one trade and related trades in the same ticker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Trade(cmd.Context(), args[0], relatedLimit)
	},
}

var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "Rank trades by absolute return since filing",
	RunE: func(cmd *cobra.Command, args []string) error {
		if moversLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}
		return getApp().Movers(cmd.Context(), moversLimit, moversTickers)
	},
}

var politicianCmd = &cobra.Command{
	Use:   "politician <id>",
	Short: "Show a politician's profile and trades",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Politician(cmd.Context(), args[0])
	},
}

var tickerCmd = &cobra.Command{
	Use:   "ticker <symbol>",
	Short: "Show a ticker quote and the trades in it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Ticker(cmd.Context(), args[0])
	},
}

func init() {
	tradesCmd.Flags().StringVar(&tradesType, "type", "all", "Trade type: all, buy or sell")
	tradesCmd.Flags().StringVar(&tradesPeriod, "period", "allTime", "Period: today, thisWeek, thisMonth or allTime")
	tradesCmd.Flags().StringVarP(&tradesQuery, "query", "q", "", "Free-text filter on politician, ticker or company")
	tradesCmd.Flags().BoolVar(&tradesFollowed, "followed", false, "Only trades by followed politicians or in followed sectors")
	tradesCmd.Flags().IntVar(&tradesLimit, "limit", 0, "Maximum trades to print (0 for all)")

	moversCmd.Flags().IntVar(&moversLimit, "limit", 5, "Number of movers to display")
	moversCmd.Flags().BoolVar(&moversTickers, "tickers", false, "Rank tickers by daily change instead of trades")

	tradeCmd.Flags().IntVar(&relatedLimit, "related", 5, "Number of related trades to display")
}
