// Package query answers the list, search and feed questions the screens ask
// of a dataset snapshot. Every function is pure over the snapshot and its
// arguments; nothing here performs I/O.
package query

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"politrades/internal/dataset"
	"politrades/internal/models"
)

// Engine indexes a snapshot for lookups. It is safe for concurrent use.
type Engine struct {
	snap        *dataset.Snapshot
	loc         *time.Location
	politicians map[string]int
	tickers     map[string]int
	trades      map[string]int
}

// New builds an Engine. loc defines calendar-day boundaries; nil means UTC.
func New(snap *dataset.Snapshot, loc *time.Location) *Engine {
	if snap == nil {
		snap = &dataset.Snapshot{}
	}
	if loc == nil {
		loc = time.UTC
	}
	e := &Engine{
		snap:        snap,
		loc:         loc,
		politicians: make(map[string]int, len(snap.Politicians)),
		tickers:     make(map[string]int, len(snap.Tickers)),
		trades:      make(map[string]int, len(snap.Trades)),
	}
	for i, p := range snap.Politicians {
		e.politicians[p.ID] = i
	}
	for i, tk := range snap.Tickers {
		e.tickers[tk.Symbol] = i
	}
	for i, t := range snap.Trades {
		e.trades[t.ID] = i
	}
	return e
}

// Location returns the calendar-day timezone.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Politicians returns every politician in dataset order.
func (e *Engine) Politicians() []models.Politician {
	return slices.Clone(e.snap.Politicians)
}

// Tickers returns every ticker in dataset order.
func (e *Engine) Tickers() []models.Ticker {
	return slices.Clone(e.snap.Tickers)
}

// Trades returns every trade in dataset order.
func (e *Engine) Trades() []models.Trade {
	return slices.Clone(e.snap.Trades)
}

// Sectors lists the distinct trade and ticker sectors in first-seen order.
func (e *Engine) Sectors() []string {
	var out []string
	add := func(s string) {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	for _, t := range e.snap.Trades {
		add(t.Sector)
	}
	for _, tk := range e.snap.Tickers {
		add(tk.Sector)
	}
	return out
}

// Politician looks up a politician by id.
func (e *Engine) Politician(id string) (models.Politician, bool) {
	i, ok := e.politicians[id]
	if !ok {
		return models.Politician{}, false
	}
	return e.snap.Politicians[i], true
}

// Ticker looks up a ticker by symbol.
func (e *Engine) Ticker(symbol string) (models.Ticker, bool) {
	i, ok := e.tickers[symbol]
	if !ok {
		return models.Ticker{}, false
	}
	return e.snap.Tickers[i], true
}

// Trade looks up a trade by id.
func (e *Engine) Trade(id string) (models.Trade, bool) {
	i, ok := e.trades[id]
	if !ok {
		return models.Trade{}, false
	}
	return e.snap.Trades[i], true
}

// matcher folds case once for the query and reports substring hits.
type matcher struct {
	caser cases.Caser
	query string
}

func newMatcher(query string) (*matcher, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false
	}
	c := cases.Fold()
	return &matcher{caser: c, query: c.String(query)}, true
}

func (m *matcher) match(fields ...string) bool {
	for _, f := range fields {
		if f != "" && strings.Contains(m.caser.String(f), m.query) {
			return true
		}
	}
	return false
}

// SearchPoliticians matches name and short name, case-insensitively.
// An empty query returns no results.
func (e *Engine) SearchPoliticians(query string) []models.Politician {
	out := []models.Politician{}
	m, ok := newMatcher(query)
	if !ok {
		return out
	}
	for _, p := range e.snap.Politicians {
		if m.match(p.Name, p.ShortName) {
			out = append(out, p)
		}
	}
	return out
}

// SearchTickers matches symbol and company, case-insensitively.
// An empty query returns no results.
func (e *Engine) SearchTickers(query string) []models.Ticker {
	out := []models.Ticker{}
	m, ok := newMatcher(query)
	if !ok {
		return out
	}
	for _, tk := range e.snap.Tickers {
		if m.match(tk.Symbol, tk.Company) {
			out = append(out, tk)
		}
	}
	return out
}

// TradesByPolitician returns the politician's trades in dataset order.
func (e *Engine) TradesByPolitician(id string) []models.Trade {
	return e.filterTrades(func(t models.Trade) bool { return t.PoliticianID == id })
}

// TradesByTicker returns the ticker's trades in dataset order.
func (e *Engine) TradesByTicker(symbol string) []models.Trade {
	return e.filterTrades(func(t models.Trade) bool { return t.Ticker == symbol })
}

func (e *Engine) filterTrades(keep func(models.Trade) bool) []models.Trade {
	out := []models.Trade{}
	for _, t := range e.snap.Trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// RecentTrades returns the first n trades in dataset order.
func (e *Engine) RecentTrades(n int) []models.Trade {
	return head(e.snap.Trades, n)
}

// TopMovers returns the n trades with the largest absolute return since
// filing. Equal magnitudes keep dataset order.
func (e *Engine) TopMovers(n int) []models.Trade {
	ranked := slices.Clone(e.snap.Trades)
	slices.SortStableFunc(ranked, func(a, b models.Trade) int {
		return byMagnitudeDesc(a.ReturnSinceFiling, b.ReturnSinceFiling)
	})
	return head(ranked, n)
}

// TopTickerMovers returns the n tickers with the largest absolute daily
// change percentage. Equal magnitudes keep dataset order.
func (e *Engine) TopTickerMovers(n int) []models.Ticker {
	ranked := slices.Clone(e.snap.Tickers)
	slices.SortStableFunc(ranked, func(a, b models.Ticker) int {
		return byMagnitudeDesc(a.ChangePercent, b.ChangePercent)
	})
	return head(ranked, n)
}

// RelatedTrades returns up to n other trades in the same ticker.
func (e *Engine) RelatedTrades(tradeID string, n int) []models.Trade {
	t, ok := e.Trade(tradeID)
	if !ok {
		return []models.Trade{}
	}
	related := e.filterTrades(func(o models.Trade) bool {
		return o.Ticker == t.Ticker && o.ID != t.ID
	})
	return head(related, n)
}

func byMagnitudeDesc(a, b decimal.Decimal) int {
	return b.Abs().Cmp(a.Abs())
}

func head[T any](items []T, n int) []T {
	n = max(0, min(n, len(items)))
	return append([]T{}, items[:n]...)
}

// sortByFilingDesc orders trades most recently filed first, stable on ties.
func sortByFilingDesc(trades []models.Trade) {
	slices.SortStableFunc(trades, func(a, b models.Trade) int {
		return cmp.Compare(b.FilingDate.UnixNano(), a.FilingDate.UnixNano())
	})
}
