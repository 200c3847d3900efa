package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"politrades/internal/models"
	"politrades/internal/query"
)

// Export writes the filtered feed as CSV and/or a ticker's sparkline as PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.PNGPath != "" && opts.Symbol == "" {
		return errors.New("--png requires --symbol")
	}

	return a.withRuntime(ctx, func(rt *Runtime) error {
		if opts.CSVPath != "" {
			f, err := tradeFilter(opts.Type, opts.Period, opts.Query)
			if err != nil {
				return err
			}
			trades := a.exportTrades(rt, f, opts)
			if err := a.writeTradesCSV(opts.CSVPath, trades); err != nil {
				return err
			}
			a.Logger.Info().Int("trades", len(trades)).Str("path", opts.CSVPath).Msg("exported trades")
		}

		if opts.PNGPath != "" {
			tk, ok := rt.Engine.Ticker(strings.ToUpper(opts.Symbol))
			if !ok {
				return fmt.Errorf("ticker %q not found", opts.Symbol)
			}
			if !tk.Renderable() {
				return fmt.Errorf("ticker %s has too few price points to chart", tk.Symbol)
			}
			if err := a.writeSparklinePNG(opts.PNGPath, tk); err != nil {
				return err
			}
			a.Logger.Info().Str("symbol", tk.Symbol).Str("path", opts.PNGPath).Msg("exported sparkline")
		}
		return nil
	})
}

func (a *App) exportTrades(rt *Runtime, f query.TradeFilter, opts ExportOptions) []models.Trade {
	lang := rt.Stores.Preferences.Snapshot().Language
	var groups []query.DayGroup
	if opts.Followed {
		wl := rt.Stores.Watchlist.Snapshot()
		groups = rt.Engine.FollowedFeed(wl.FollowedPoliticians, wl.FollowedSectors, f, a.Now(), lang)
	} else {
		groups = rt.Engine.Feed(f, a.Now(), lang)
	}

	var trades []models.Trade
	for _, g := range groups {
		trades = append(trades, g.Trades...)
	}
	return trades
}

func (a *App) writeTradesCSV(path string, trades []models.Trade) error {
	if err := a.ensureDir(path); err != nil {
		return err
	}

	file, err := a.Fs.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeTradesCSV(file, trades)
}

func writeTradesCSV(out io.Writer, trades []models.Trade) error {
	writer := csv.NewWriter(out)

	header := []string{"id", "filing_date", "transaction_date", "politician_id", "politician", "party", "chamber", "state", "ticker", "company", "type", "amount_min", "amount_max", "sector", "return_since_filing_pct", "price_at_trade", "current_price", "source_type", "source_url"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, t := range trades {
		record := []string{
			t.ID,
			t.FilingDate.Format(time.RFC3339),
			t.TransactionDate.Format(time.RFC3339),
			t.PoliticianID,
			t.Politician.Name,
			t.Politician.Party.String(),
			string(t.Politician.Chamber),
			t.Politician.State,
			t.Ticker,
			t.Company,
			string(t.Type),
			nullDecimal(t.Amount.Min),
			nullDecimal(t.Amount.Max),
			t.Sector,
			t.ReturnSinceFiling.String(),
			nullDecimal(t.PriceAtTrade),
			nullDecimal(t.CurrentPrice),
			string(t.SourceType),
			t.SourceURL,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func nullDecimal(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func (a *App) writeSparklinePNG(path string, tk models.Ticker) error {
	if err := a.ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(tk.Sparkline))
	y := make([]float64, len(tk.Sparkline))
	for i, p := range tk.Sparkline {
		x[i] = float64(i)
		y[i] = p.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Title:  fmt.Sprintf("%s  %s", tk.Symbol, tk.Company),
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			Style: chart.Hidden(),
		},
		YAxis: chart.YAxis{
			Name:           "Price (USD)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    tk.Symbol,
				XValues: x,
				YValues: y,
			},
		},
	}

	file, err := a.Fs.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func (a *App) ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return a.Fs.MkdirAll(dir, 0o755)
}
