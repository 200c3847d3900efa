package dataset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"politrades/internal/logging"
	"politrades/internal/models"
)

// Source supplies the politician, trade and ticker records. The static mock
// dataset and the PostgreSQL repository both implement it.
type Source interface {
	Politicians(ctx context.Context) ([]models.Politician, error)
	Trades(ctx context.Context) ([]models.Trade, error)
	Tickers(ctx context.Context) ([]models.Ticker, error)
}

// Snapshot is an immutable, validated copy of a Source, loaded once at startup.
type Snapshot struct {
	Politicians []models.Politician
	Trades      []models.Trade
	Tickers     []models.Ticker
}

// Load reads every record from src. Invalid or duplicate records are dropped
// and logged; trades pointing at unknown politicians are dropped too.
func Load(ctx context.Context, src Source, logger zerolog.Logger) (*Snapshot, error) {
	logger = logging.Component(logger, "dataset")

	politicians, err := src.Politicians(ctx)
	if err != nil {
		return nil, fmt.Errorf("load politicians: %w", err)
	}
	trades, err := src.Trades(ctx)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	tickers, err := src.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tickers: %w", err)
	}

	snap := &Snapshot{
		Politicians: make([]models.Politician, 0, len(politicians)),
		Trades:      make([]models.Trade, 0, len(trades)),
		Tickers:     make([]models.Ticker, 0, len(tickers)),
	}

	byID := make(map[string]models.Politician, len(politicians))
	for _, p := range politicians {
		if err := models.ValidatePolitician(p); err != nil {
			logger.Warn().Err(err).Msg("dropping invalid politician")
			continue
		}
		if _, dup := byID[p.ID]; dup {
			logger.Warn().Str("id", p.ID).Msg("dropping duplicate politician")
			continue
		}
		byID[p.ID] = p
		snap.Politicians = append(snap.Politicians, p)
	}

	seenTrades := make(map[string]struct{}, len(trades))
	for _, t := range trades {
		if err := models.ValidateTrade(t); err != nil {
			logger.Warn().Err(err).Strs("fields", models.FieldErrors(err)).Msg("dropping invalid trade")
			continue
		}
		if _, dup := seenTrades[t.ID]; dup {
			logger.Warn().Str("id", t.ID).Msg("dropping duplicate trade")
			continue
		}
		p, ok := byID[t.PoliticianID]
		if !ok {
			logger.Warn().Str("id", t.ID).Str("politician_id", t.PoliticianID).Msg("dropping trade for unknown politician")
			continue
		}
		if t.Politician.Name == "" {
			t.Politician = p.Snapshot()
		}
		seenTrades[t.ID] = struct{}{}
		snap.Trades = append(snap.Trades, t)
	}

	seenTickers := make(map[string]struct{}, len(tickers))
	for _, tk := range tickers {
		if err := models.ValidateTicker(tk); err != nil {
			logger.Warn().Err(err).Msg("dropping invalid ticker")
			continue
		}
		if _, dup := seenTickers[tk.Symbol]; dup {
			logger.Warn().Str("symbol", tk.Symbol).Msg("dropping duplicate ticker")
			continue
		}
		seenTickers[tk.Symbol] = struct{}{}
		snap.Tickers = append(snap.Tickers, tk)
	}

	logger.Info().
		Int("politicians", len(snap.Politicians)).
		Int("trades", len(snap.Trades)).
		Int("tickers", len(snap.Tickers)).
		Msg("dataset loaded")
	return snap, nil
}
