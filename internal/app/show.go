package app

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"politrades/internal/format"
	"politrades/internal/models"
	"politrades/internal/query"
)

// Search prints politicians and tickers matching q.
func (a *App) Search(ctx context.Context, q string) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		politicians := rt.Engine.SearchPoliticians(q)
		tickers := rt.Engine.SearchTickers(q)
		if len(politicians) == 0 && len(tickers) == 0 {
			fmt.Fprintln(a.Out, "no matches")
			return nil
		}

		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, p := range politicians {
			fmt.Fprintf(w, "politician\t%s\t%s\t%s %s\n", p.ID, p.Name, format.PartyTag(p.Snapshot()), p.Chamber)
		}
		for _, tk := range tickers {
			fmt.Fprintf(w, "ticker\t%s\t%s\t%s\n", tk.Symbol, tk.Company, tk.Sector)
		}
		return w.Flush()
	})
}

// Trades prints the filtered feed grouped by day.
func (a *App) Trades(ctx context.Context, opts TradesOptions) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		f, err := tradeFilter(opts.Type, opts.Period, opts.Query)
		if err != nil {
			return err
		}
		lang := rt.Stores.Preferences.Snapshot().Language

		var groups []query.DayGroup
		if opts.Followed {
			wl := rt.Stores.Watchlist.Snapshot()
			groups = rt.Engine.FollowedFeed(wl.FollowedPoliticians, wl.FollowedSectors, f, a.Now(), lang)
		} else {
			groups = rt.Engine.Feed(f, a.Now(), lang)
		}
		if len(groups) == 0 {
			fmt.Fprintln(a.Out, "no trades")
			return nil
		}

		printed := 0
		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, g := range groups {
			if opts.Limit > 0 && printed >= opts.Limit {
				break
			}
			fmt.Fprintf(w, "%s\n", g.Title)
			for _, t := range g.Trades {
				if opts.Limit > 0 && printed >= opts.Limit {
					break
				}
				writeTradeRow(w, t, lang)
				printed++
			}
		}
		return w.Flush()
	})
}

// Movers prints the top trades by return, or top tickers by daily change.
func (a *App) Movers(ctx context.Context, n int, tickers bool) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		if tickers {
			for _, tk := range rt.Engine.TopTickerMovers(n) {
				fmt.Fprintf(w, "%s\t%s\t$%s\t%s\n", tk.Symbol, tk.Company, tk.Price.StringFixed(2), format.Percent(tk.ChangePercent))
			}
			return w.Flush()
		}
		lang := rt.Stores.Preferences.Snapshot().Language
		for _, t := range rt.Engine.TopMovers(n) {
			writeTradeRow(w, t, lang)
		}
		return w.Flush()
	})
}

// Politician prints a profile card with the politician's trades.
func (a *App) Politician(ctx context.Context, id string) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		p, ok := rt.Engine.Politician(id)
		if !ok {
			return fmt.Errorf("politician %q not found", id)
		}
		lang := rt.Stores.Preferences.Snapshot().Language

		following := ""
		if rt.Stores.Watchlist.IsFollowing(p.ID) {
			following = " (following)"
		}
		fmt.Fprintf(a.Out, "%s%s\n", p.Name, following)
		fmt.Fprintf(a.Out, "%s · %s %s\n", format.PartyTag(p.Snapshot()), p.Chamber, p.Position)
		fmt.Fprintf(a.Out, "Trades: %d  Avg return: %s  Win rate: %s%%  Traded: %s  Top sector: %s\n",
			p.Stats.TotalTrades,
			format.Percent(p.Stats.AvgReturn),
			p.Stats.WinRate.StringFixed(1),
			format.Money(p.Stats.TotalValue, lang),
			p.Stats.TopSector,
		)
		fmt.Fprintln(a.Out)

		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, t := range rt.Engine.TradesByPolitician(p.ID) {
			writeTradeRow(w, t, lang)
		}
		return w.Flush()
	})
}

// Ticker prints a ticker quote and its trades.
func (a *App) Ticker(ctx context.Context, symbol string) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		tk, ok := rt.Engine.Ticker(strings.ToUpper(symbol))
		if !ok {
			return fmt.Errorf("ticker %q not found", symbol)
		}
		lang := rt.Stores.Preferences.Snapshot().Language

		fmt.Fprintf(a.Out, "%s  %s  (%s)\n", tk.Symbol, tk.Company, tk.Sector)
		fmt.Fprintf(a.Out, "$%s  %s (%s)\n", tk.Price.StringFixed(2), tk.Change.StringFixed(2), format.Percent(tk.ChangePercent))
		fmt.Fprintln(a.Out)

		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, t := range rt.Engine.TradesByTicker(tk.Symbol) {
			writeTradeRow(w, t, lang)
		}
		return w.Flush()
	})
}

// Trade prints one trade and up to n related trades in the same ticker.
func (a *App) Trade(ctx context.Context, id string, n int) error {
	return a.withRuntime(ctx, func(rt *Runtime) error {
		t, ok := rt.Engine.Trade(id)
		if !ok {
			return fmt.Errorf("trade %q not found", id)
		}
		lang := rt.Stores.Preferences.Snapshot().Language

		fmt.Fprintf(a.Out, "%s %s %s (%s)\n", t.Politician.Name, strings.ToUpper(string(t.Type)), t.Ticker, t.Company)
		fmt.Fprintf(a.Out, "Amount:      %s\n", format.AmountRange(t.Amount, lang))
		fmt.Fprintf(a.Out, "Transaction: %s\n", t.TransactionDate.Format("2006-01-02"))
		fmt.Fprintf(a.Out, "Filed:       %s (%s later, %s)\n", t.FilingDate.Format("2006-01-02"), format.FilingLag(t.FilingLag(), lang), format.Relative(t.FilingDate, a.Now()))
		fmt.Fprintf(a.Out, "Price:       %s -> %s\n", format.Price(t.PriceAtTrade), format.Price(t.CurrentPrice))
		fmt.Fprintf(a.Out, "Return:      %s\n", format.Percent(t.ReturnSinceFiling))
		if t.SourceURL != "" {
			fmt.Fprintf(a.Out, "Source:      %s (%s)\n", t.SourceURL, t.SourceType)
		}

		related := rt.Engine.RelatedTrades(t.ID, n)
		if len(related) == 0 {
			return nil
		}
		fmt.Fprintln(a.Out)
		fmt.Fprintln(a.Out, "Related")
		w := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
		for _, r := range related {
			writeTradeRow(w, r, lang)
		}
		return w.Flush()
	})
}

func tradeFilter(typ, period, text string) (query.TradeFilter, error) {
	t, err := query.ParseTypeFilter(typ)
	if err != nil {
		return query.TradeFilter{}, err
	}
	p, err := query.ParsePeriod(period)
	if err != nil {
		return query.TradeFilter{}, err
	}
	return query.TradeFilter{Type: t, Period: p, Text: text}, nil
}

func writeTradeRow(w *tabwriter.Writer, t models.Trade, lang models.Language) {
	fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\t%s\t%s\n",
		t.ID,
		t.FilingDate.Format("2006-01-02"),
		sanitizeInline(t.Politician.Name)+" ("+format.PartyTag(t.Politician)+")",
		strings.ToUpper(string(t.Type)),
		t.Ticker,
		format.AmountRange(t.Amount, lang),
		format.Percent(t.ReturnSinceFiling),
	)
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
