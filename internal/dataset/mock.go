package dataset

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"politrades/internal/models"
)

// Mock is the static in-memory dataset. Dates are laid out relative to the
// anchor day so that "today" and "yesterday" buckets always exist.
type Mock struct {
	politicians []models.Politician
	trades      []models.Trade
	tickers     []models.Ticker
}

type tradeSeed struct {
	id         string
	politician string
	ticker     string
	typ        models.TradeType
	min, max   int64
	filedAgo   int
	lagDays    int
	ret        string
	price      string
	source     models.SourceType
}

var politicianSeeds = []models.Politician{
	{ID: "p-hale", Name: "Margaret Hale", ShortName: "M. Hale", Initials: "MH", Party: models.PartyDemocrat, Chamber: models.ChamberHouse, State: "CA", Position: "Representative"},
	{ID: "p-ortiz", Name: "Daniel Ortiz", ShortName: "D. Ortiz", Initials: "DO", Party: models.PartyRepublican, Chamber: models.ChamberSenate, State: "TX", Position: "Senator"},
	{ID: "p-whitfield", Name: "Eleanor Whitfield", ShortName: "E. Whitfield", Initials: "EW", Party: models.PartyDemocrat, Chamber: models.ChamberSenate, State: "NY", Position: "Senator"},
	{ID: "p-brennan", Name: "Thomas Brennan", ShortName: "T. Brennan", Initials: "TB", Party: models.PartyRepublican, Chamber: models.ChamberHouse, State: "FL", Position: "Representative"},
	{ID: "p-nakamura", Name: "Grace Nakamura", ShortName: "G. Nakamura", Initials: "GN", Party: models.PartyIndependent, Chamber: models.ChamberSenate, State: "VT", Position: "Senator"},
	{ID: "p-carver", Name: "Robert Carver", ShortName: "R. Carver", Initials: "RC", Party: models.PartyRepublican, Chamber: models.ChamberHouse, State: "OH", Position: "Representative"},
	{ID: "p-delgado", Name: "Sofia Delgado", ShortName: "S. Delgado", Initials: "SD", Party: models.PartyDemocrat, Chamber: models.ChamberHouse, State: "AZ", Position: "Representative"},
	{ID: "p-lindqvist", Name: "Erik Lindqvist", ShortName: "E. Lindqvist", Initials: "EL", Party: models.PartyRepublican, Chamber: models.ChamberSenate, State: "MN", Position: "Senator"},
}

type tickerSeed struct {
	symbol, company, sector string
	spark                   []string
}

var tickerSeeds = []tickerSeed{
	{"NVDA", "NVIDIA Corporation", "Technology", []string{"118.20", "121.05", "119.80", "124.60", "127.90", "131.45", "129.70", "134.10"}},
	{"AAPL", "Apple Inc.", "Technology", []string{"226.40", "224.10", "228.75", "229.30", "231.05", "227.60", "230.20", "232.15"}},
	{"MSFT", "Microsoft Corporation", "Technology", []string{"418.10", "421.35", "419.90", "423.70", "425.10", "422.40", "427.80", "430.05"}},
	{"TSLA", "Tesla, Inc.", "Consumer Cyclical", []string{"251.30", "244.90", "238.15", "246.70", "241.20", "235.60", "229.80", "233.40"}},
	{"LMT", "Lockheed Martin Corporation", "Industrials", []string{"548.20", "552.60", "556.10", "551.90", "559.40", "563.75", "561.20", "567.30"}},
	{"XOM", "Exxon Mobil Corporation", "Energy", []string{"118.90", "117.40", "116.85", "115.20", "116.10", "114.35", "113.80", "112.95"}},
	{"JPM", "JPMorgan Chase & Co.", "Financial Services", []string{"209.50", "211.20", "210.35", "213.80", "215.10", "214.25", "216.90", "218.40"}},
	{"PFE", "Pfizer Inc.", "Healthcare", []string{"29.15", "28.90", "28.60", "28.95", "28.40", "28.10", "27.85", "28.05"}},
	{"AMZN", "Amazon.com, Inc.", "Consumer Cyclical", []string{"186.40", "188.90", "187.25", "191.60", "193.05", "190.80", "195.40", "197.10"}},
	{"RTX", "RTX Corporation", "Industrials", []string{"121.80", "122.45", "123.90", "123.10", "124.75", "125.60", "124.90", "126.35"}},
	{"SMCI", "Super Micro Computer, Inc.", "Technology", []string{"41.20"}},
}

// Seeds are ordered most recently filed first; that order is the dataset order.
var tradeSeeds = []tradeSeed{
	{"t-001", "p-hale", "NVDA", models.TradeBuy, 1000001, 5000000, 0, 12, "18.4", "113.25", models.SourcePTR},
	{"t-002", "p-ortiz", "XOM", models.TradeSell, 15001, 50000, 0, 20, "-3.2", "116.70", models.SourcePTR},
	{"t-003", "p-whitfield", "MSFT", models.TradeBuy, 50001, 100000, 0, 9, "2.1", "421.20", models.SourceForm4},
	{"t-004", "p-brennan", "LMT", models.TradeBuy, 100001, 250000, 1, 30, "6.8", "531.10", models.SourcePTR},
	{"t-005", "p-hale", "AAPL", models.TradeSell, 250001, 500000, 1, 15, "-1.4", "235.50", models.SourcePTR},
	{"t-006", "p-nakamura", "PFE", models.TradeBuy, 1001, 15000, 1, 41, "-12.5", "32.05", models.SourcePTR},
	{"t-007", "p-carver", "TSLA", models.TradeSell, 50001, 100000, 2, 18, "12.5", "266.80", models.SourcePTR},
	{"t-008", "p-delgado", "NVDA", models.TradeBuy, 15001, 50000, 3, 22, "24.7", "107.55", models.SourcePTR},
	{"t-009", "p-lindqvist", "JPM", models.TradeBuy, 500001, 1000000, 4, 11, "4.3", "209.35", models.SourceForm4},
	{"t-010", "p-ortiz", "RTX", models.TradeBuy, 15001, 50000, 5, 27, "3.7", "121.80", models.SourcePTR},
	{"t-011", "p-whitfield", "AMZN", models.TradeBuy, 100001, 250000, 6, 14, "5.9", "186.10", models.SourcePTR},
	{"t-012", "p-brennan", "XOM", models.TradeBuy, 1001, 15000, 8, 33, "-7.6", "122.25", models.SourcePTR},
	{"t-013", "p-hale", "MSFT", models.TradeBuy, 500001, 1000000, 10, 19, "8.2", "397.45", models.SourcePTR},
	{"t-014", "p-carver", "LMT", models.TradeBuy, 15001, 50000, 13, 24, "9.1", "520.00", models.SourcePTR},
	{"t-015", "p-delgado", "AAPL", models.TradeBuy, 1001, 15000, 15, 8, "3.3", "224.70", models.SourcePTR},
	{"t-016", "p-nakamura", "NVDA", models.TradeSell, 1001, 15000, 18, 29, "-21.9", "171.70", models.SourcePTR},
	{"t-017", "p-lindqvist", "PFE", models.TradeSell, 250001, 500000, 21, 36, "6.0", "29.85", models.SourceForm4},
	{"t-018", "p-ortiz", "TSLA", models.TradeBuy, 50000001, 0, 26, 40, "-9.8", "258.75", models.SourcePTR},
	{"t-019", "p-whitfield", "JPM", models.TradeSell, 15001, 50000, 33, 12, "-2.7", "224.50", models.SourcePTR},
	{"t-020", "p-brennan", "RTX", models.TradeBuy, 50001, 100000, 45, 28, "15.2", "109.65", models.SourcePTR},
	{"t-021", "p-hale", "AMZN", models.TradeSell, 1000001, 5000000, 60, 31, "-4.4", "206.20", models.SourcePTR},
	{"t-022", "p-carver", "XOM", models.TradeSell, 100001, 250000, 75, 16, "10.3", "102.40", models.SourcePTR},
}

// NewMock builds the mock dataset anchored at now's calendar day in loc.
func NewMock(now time.Time, loc *time.Location) *Mock {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	tickers := make([]models.Ticker, 0, len(tickerSeeds))
	prices := make(map[string]decimal.Decimal, len(tickerSeeds))
	sectors := make(map[string]string, len(tickerSeeds))
	for _, seed := range tickerSeeds {
		tk := buildTicker(seed)
		prices[tk.Symbol] = tk.Price
		sectors[tk.Symbol] = tk.Sector
		tickers = append(tickers, tk)
	}

	byID := make(map[string]models.Politician, len(politicianSeeds))
	for _, p := range politicianSeeds {
		byID[p.ID] = p
	}

	trades := make([]models.Trade, 0, len(tradeSeeds))
	perPolitician := make(map[string][]models.Trade)
	for i, seed := range tradeSeeds {
		// Stagger filings within a day so ordering inside a bucket is stable.
		filed := day.AddDate(0, 0, -seed.filedAgo).Add(time.Duration(12-i%8) * time.Hour)
		t := models.Trade{
			ID:                seed.id,
			PoliticianID:      seed.politician,
			Politician:        byID[seed.politician].Snapshot(),
			Ticker:            seed.ticker,
			Company:           companyFor(seed.ticker),
			Type:              seed.typ,
			Amount:            amountFor(seed.min, seed.max),
			TransactionDate:   filed.AddDate(0, 0, -seed.lagDays),
			FilingDate:        filed,
			Sector:            sectors[seed.ticker],
			ReturnSinceFiling: decimal.RequireFromString(seed.ret),
			PriceAtTrade:      decimal.NewNullDecimal(decimal.RequireFromString(seed.price)),
			CurrentPrice:      decimal.NewNullDecimal(prices[seed.ticker]),
			SourceURL:         sourceURLFor(seed),
			SourceType:        seed.source,
		}
		trades = append(trades, t)
		perPolitician[t.PoliticianID] = append(perPolitician[t.PoliticianID], t)
	}

	politicians := make([]models.Politician, 0, len(politicianSeeds))
	for _, p := range politicianSeeds {
		p.Stats = ComputeStats(perPolitician[p.ID])
		politicians = append(politicians, p)
	}

	return &Mock{politicians: politicians, trades: trades, tickers: tickers}
}

func buildTicker(seed tickerSeed) models.Ticker {
	spark := make([]decimal.Decimal, 0, len(seed.spark))
	for _, v := range seed.spark {
		spark = append(spark, decimal.RequireFromString(v))
	}
	tk := models.Ticker{
		Symbol:    seed.symbol,
		Company:   seed.company,
		Sector:    seed.sector,
		Sparkline: spark,
	}
	last := spark[len(spark)-1]
	tk.Price = last
	if len(spark) >= 2 {
		prev := spark[len(spark)-2]
		tk.Change = last.Sub(prev)
		tk.ChangePercent = tk.Change.Div(prev).Mul(hundred).Round(2)
	}
	return tk
}

func companyFor(symbol string) string {
	for _, seed := range tickerSeeds {
		if seed.symbol == symbol {
			return seed.company
		}
	}
	return symbol
}

// amountFor treats a zero max as an open-ended upper band.
func amountFor(min, max int64) models.AmountRange {
	r := models.AmountRange{Min: decimal.NewNullDecimal(decimal.NewFromInt(min))}
	if max > 0 {
		r.Max = decimal.NewNullDecimal(decimal.NewFromInt(max))
	}
	return r
}

func sourceURLFor(seed tradeSeed) string {
	if seed.source == models.SourceForm4 {
		return "https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany&type=4&ticker=" + seed.ticker
	}
	return "https://disclosures.example.gov/ptr/" + seed.id
}

// Politicians returns a copy of the mock politicians.
func (m *Mock) Politicians(context.Context) ([]models.Politician, error) {
	return append([]models.Politician(nil), m.politicians...), nil
}

// Trades returns a copy of the mock trades, most recently filed first.
func (m *Mock) Trades(context.Context) ([]models.Trade, error) {
	return append([]models.Trade(nil), m.trades...), nil
}

// Tickers returns a copy of the mock tickers.
func (m *Mock) Tickers(context.Context) ([]models.Ticker, error) {
	return append([]models.Ticker(nil), m.tickers...), nil
}

var _ Source = (*Mock)(nil)
