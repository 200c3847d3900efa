package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"politrades/internal/models"
)

var anchor = time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

func TestMockTradesAreValidAndOrdered(t *testing.T) {
	m := NewMock(anchor, time.UTC)
	trades, err := m.Trades(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, trades)

	for i, tr := range trades {
		assert.NoError(t, models.ValidateTrade(tr), tr.ID)
		assert.True(t, tr.Amount.Ordered(), tr.ID)
		assert.False(t, tr.FilingDate.Before(tr.TransactionDate), tr.ID)
		if i > 0 {
			assert.False(t, tr.FilingDate.After(trades[i-1].FilingDate), "trades must be filed most recent first")
		}
	}
}

func TestMockAnchorsToCalendarDay(t *testing.T) {
	m := NewMock(anchor, time.UTC)
	trades, _ := m.Trades(context.Background())

	first := trades[0].FilingDate
	assert.Equal(t, anchor.Year(), first.Year())
	assert.Equal(t, anchor.YearDay(), first.YearDay())
}

func TestMockPoliticianStats(t *testing.T) {
	m := NewMock(anchor, time.UTC)
	politicians, _ := m.Politicians(context.Background())
	trades, _ := m.Trades(context.Background())

	counts := make(map[string]int)
	for _, tr := range trades {
		counts[tr.PoliticianID]++
	}
	for _, p := range politicians {
		assert.Equal(t, counts[p.ID], p.Stats.TotalTrades, p.ID)
	}
}

func TestMockTickerChange(t *testing.T) {
	m := NewMock(anchor, time.UTC)
	tickers, _ := m.Tickers(context.Background())

	var nvda models.Ticker
	for _, tk := range tickers {
		if tk.Symbol == "NVDA" {
			nvda = tk
		}
	}
	require.Equal(t, "NVDA", nvda.Symbol)
	assert.True(t, nvda.Renderable())
	assert.True(t, nvda.Price.Equal(decimal.RequireFromString("134.10")))
	assert.True(t, nvda.Change.Equal(decimal.RequireFromString("4.40")))
}

func TestComputeStats(t *testing.T) {
	trades := []models.Trade{
		{ReturnSinceFiling: decimal.NewFromInt(10), Amount: models.NewAmountRange(1001, 15000), Sector: "Energy"},
		{ReturnSinceFiling: decimal.NewFromInt(-4), Amount: models.NewAmountRange(15001, 50000), Sector: "Technology"},
		{ReturnSinceFiling: decimal.NewFromInt(6), Amount: models.AmountRange{Min: decimal.NewNullDecimal(decimal.NewFromInt(1000000))}, Sector: "Technology"},
	}
	stats := ComputeStats(trades)

	assert.Equal(t, 3, stats.TotalTrades)
	assert.Equal(t, "4", stats.AvgReturn.String())
	assert.Equal(t, "66.7", stats.WinRate.String())
	assert.Equal(t, "1065000", stats.TotalValue.String())
	assert.Equal(t, "Technology", stats.TopSector)
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)
	assert.Zero(t, stats.TotalTrades)
	assert.True(t, stats.AvgReturn.IsZero())
	assert.Empty(t, stats.TopSector)
}

type stubSource struct {
	politicians []models.Politician
	trades      []models.Trade
	tickers     []models.Ticker
	err         error
}

func (s stubSource) Politicians(context.Context) ([]models.Politician, error) {
	return s.politicians, s.err
}

func (s stubSource) Trades(context.Context) ([]models.Trade, error) { return s.trades, nil }

func (s stubSource) Tickers(context.Context) ([]models.Ticker, error) { return s.tickers, nil }

func TestLoadDropsBadRecords(t *testing.T) {
	now := anchor
	good := models.Politician{ID: "p1", Name: "Ada Lane", Party: models.PartyDemocrat, Chamber: models.ChamberHouse, State: "WA"}
	bad := models.Politician{ID: "p2", Name: "", Party: models.PartyRepublican, Chamber: models.ChamberSenate, State: "ID"}

	trade := func(id, politician string, amount models.AmountRange) models.Trade {
		return models.Trade{
			ID: id, PoliticianID: politician, Ticker: "AAPL", Type: models.TradeBuy,
			Amount: amount, TransactionDate: now.AddDate(0, 0, -3), FilingDate: now,
			SourceType: models.SourcePTR,
		}
	}
	src := stubSource{
		politicians: []models.Politician{good, bad, good},
		trades: []models.Trade{
			trade("t1", "p1", models.NewAmountRange(1001, 15000)),
			trade("t1", "p1", models.NewAmountRange(1001, 15000)),
			trade("t2", "p1", models.NewAmountRange(50000, 1000)),
			trade("t3", "ghost", models.NewAmountRange(1001, 15000)),
		},
		tickers: []models.Ticker{
			{Symbol: "AAPL", Company: "Apple Inc."},
			{Symbol: "AAPL", Company: "Apple Inc."},
			{Symbol: "", Company: "Nameless"},
		},
	}

	snap, err := Load(context.Background(), src, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, snap.Politicians, 1)
	require.Len(t, snap.Trades, 1)
	require.Len(t, snap.Tickers, 1)
	assert.Equal(t, "Ada Lane", snap.Trades[0].Politician.Name)
}

func TestLoadPropagatesSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := Load(context.Background(), stubSource{err: boom}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestLoadMock(t *testing.T) {
	m := NewMock(anchor, time.UTC)
	snap, err := Load(context.Background(), m, zerolog.Nop())
	require.NoError(t, err)

	trades, _ := m.Trades(context.Background())
	assert.Len(t, snap.Trades, len(trades))
	assert.Len(t, snap.Politicians, len(politicianSeeds))
	assert.Len(t, snap.Tickers, len(tickerSeeds))
}
