package query

import (
	"fmt"
	"slices"
	"time"

	"politrades/internal/format"
	"politrades/internal/models"
)

// TypeFilter narrows trades by direction.
type TypeFilter string

const (
	TypeAll  TypeFilter = "all"
	TypeBuy  TypeFilter = "buy"
	TypeSell TypeFilter = "sell"
)

// ParseTypeFilter accepts all, buy or sell. Empty means all.
func ParseTypeFilter(v string) (TypeFilter, error) {
	switch TypeFilter(v) {
	case "", TypeAll:
		return TypeAll, nil
	case TypeBuy, TypeSell:
		return TypeFilter(v), nil
	}
	return "", fmt.Errorf("unknown trade type filter %q", v)
}

// Period narrows trades by filing date relative to now.
type Period string

const (
	PeriodToday     Period = "today"
	PeriodThisWeek  Period = "thisWeek"
	PeriodThisMonth Period = "thisMonth"
	PeriodAllTime   Period = "allTime"
)

// ParsePeriod accepts today, thisWeek, thisMonth or allTime. Empty means allTime.
func ParsePeriod(v string) (Period, error) {
	switch Period(v) {
	case "", PeriodAllTime:
		return PeriodAllTime, nil
	case PeriodToday, PeriodThisWeek, PeriodThisMonth:
		return Period(v), nil
	}
	return "", fmt.Errorf("unknown period %q", v)
}

// TradeFilter combines the list-screen filters. All set criteria must match.
type TradeFilter struct {
	Type   TypeFilter
	Period Period
	Text   string
}

// DayGroup is one calendar-day bucket of a feed.
type DayGroup struct {
	Title  string         `json:"title"`
	Day    time.Time      `json:"day"`
	Trades []models.Trade `json:"trades"`
}

func (e *Engine) startOfDay(t time.Time) time.Time {
	local := t.In(e.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, e.loc)
}

// since returns the earliest filing time the period admits. The zero time
// means no lower bound.
func (e *Engine) since(p Period, now time.Time) time.Time {
	today := e.startOfDay(now)
	switch p {
	case PeriodToday:
		return today
	case PeriodThisWeek:
		return today.AddDate(0, 0, -6)
	case PeriodThisMonth:
		return today.AddDate(0, 0, -29)
	}
	return time.Time{}
}

// Filter applies f to trades, evaluated against now. Input order is kept.
func (e *Engine) Filter(trades []models.Trade, f TradeFilter, now time.Time) []models.Trade {
	from := e.since(f.Period, now)
	m, hasText := newMatcher(f.Text)

	out := []models.Trade{}
	for _, t := range trades {
		if f.Type != "" && f.Type != TypeAll && string(f.Type) != string(t.Type) {
			continue
		}
		if !from.IsZero() && t.FilingDate.Before(from) {
			continue
		}
		if hasText && !m.match(t.Politician.Name, t.Ticker, t.Company) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// GroupByDay splits trades into runs sharing a local filing day. Buckets
// follow input order, so concatenating them reproduces trades exactly. The
// bucket for now's day is titled Today and the one before it Yesterday.
func (e *Engine) GroupByDay(trades []models.Trade, now time.Time, lang models.Language) []DayGroup {
	today := e.startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)

	groups := []DayGroup{}
	for _, t := range trades {
		day := e.startOfDay(t.FilingDate)
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Trades = append(groups[n-1].Trades, t)
			continue
		}
		groups = append(groups, DayGroup{Title: e.dayTitle(day, today, yesterday, lang), Day: day, Trades: []models.Trade{t}})
	}
	return groups
}

func (e *Engine) dayTitle(day, today, yesterday time.Time, lang models.Language) string {
	switch {
	case day.Equal(today):
		return format.Today(lang)
	case day.Equal(yesterday):
		return format.Yesterday(lang)
	}
	return format.DayTitle(day, lang)
}

// Feed filters the whole dataset, orders it most recently filed first and
// groups it by day.
func (e *Engine) Feed(f TradeFilter, now time.Time, lang models.Language) []DayGroup {
	return e.feed(e.snap.Trades, f, now, lang)
}

// FollowedFeed is Feed restricted to trades by followed politicians or in
// followed sectors.
func (e *Engine) FollowedFeed(politicianIDs, sectors []string, f TradeFilter, now time.Time, lang models.Language) []DayGroup {
	followed := e.filterTrades(func(t models.Trade) bool {
		return slices.Contains(politicianIDs, t.PoliticianID) || slices.Contains(sectors, t.Sector)
	})
	return e.feed(followed, f, now, lang)
}

func (e *Engine) feed(trades []models.Trade, f TradeFilter, now time.Time, lang models.Language) []DayGroup {
	filtered := e.Filter(trades, f, now)
	sortByFilingDesc(filtered)
	return e.GroupByDay(filtered, now, lang)
}
