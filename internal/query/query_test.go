package query

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"politrades/internal/dataset"
	"politrades/internal/models"
)

// Thursday afternoon.
var now = time.Date(2026, time.March, 12, 15, 30, 0, 0, time.UTC)

func mockEngine(t *testing.T) *Engine {
	t.Helper()
	snap, err := dataset.Load(context.Background(), dataset.NewMock(now, time.UTC), zerolog.Nop())
	require.NoError(t, err)
	return New(snap, time.UTC)
}

func ids(trades []models.Trade) []string {
	out := make([]string, 0, len(trades))
	for _, t := range trades {
		out = append(out, t.ID)
	}
	return out
}

func TestSearchTickersIgnoresCase(t *testing.T) {
	e := mockEngine(t)

	for _, q := range []string{"nvda", "NVDA", "NvDa", "nvidia"} {
		got := e.SearchTickers(q)
		require.Len(t, got, 1, q)
		assert.Equal(t, "NVDA", got[0].Symbol)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := mockEngine(t)

	assert.Empty(t, e.SearchTickers(""))
	assert.Empty(t, e.SearchTickers("   "))
	assert.Empty(t, e.SearchPoliticians(""))
	assert.NotNil(t, e.SearchPoliticians(""))
}

func TestSearchPoliticians(t *testing.T) {
	e := mockEngine(t)

	got := e.SearchPoliticians("HALE")
	require.Len(t, got, 1)
	assert.Equal(t, "p-hale", got[0].ID)
	assert.Empty(t, e.SearchPoliticians("nobody"))
}

func TestLookups(t *testing.T) {
	e := mockEngine(t)

	p, ok := e.Politician("p-ortiz")
	require.True(t, ok)
	assert.Equal(t, models.PartyRepublican, p.Party)

	_, ok = e.Politician("missing")
	assert.False(t, ok)
	_, ok = e.Ticker("nvda")
	assert.False(t, ok, "symbol lookup is exact")
	_, ok = e.Trade("t-999")
	assert.False(t, ok)
}

func TestTradesByPoliticianKeepsDatasetOrder(t *testing.T) {
	e := mockEngine(t)

	assert.Equal(t, []string{"t-001", "t-005", "t-013", "t-021"}, ids(e.TradesByPolitician("p-hale")))
	assert.Equal(t, []string{"t-001", "t-008", "t-016"}, ids(e.TradesByTicker("NVDA")))
	assert.Empty(t, e.TradesByTicker("nvda"))
	assert.Empty(t, e.TradesByPolitician("missing"))
}

func TestRecentTrades(t *testing.T) {
	e := mockEngine(t)

	assert.Equal(t, []string{"t-001", "t-002"}, ids(e.RecentTrades(2)))
	assert.Len(t, e.RecentTrades(1000), len(e.Trades()))
	assert.Empty(t, e.RecentTrades(0))
	assert.Empty(t, e.RecentTrades(-1))
}

func TestTopMovers(t *testing.T) {
	e := mockEngine(t)
	total := len(e.Trades())

	for _, n := range []int{0, 1, 5, total, total + 10} {
		got := e.TopMovers(n)
		require.Len(t, got, min(n, total))
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].ReturnSinceFiling.Abs().GreaterThanOrEqual(got[i].ReturnSinceFiling.Abs()))
		}
	}

	top := ids(e.TopMovers(2))
	assert.Equal(t, []string{"t-008", "t-016"}, top)
}

func TestTopMoversStableOnTies(t *testing.T) {
	e := mockEngine(t)

	ranked := ids(e.TopMovers(100))
	first := indexOf(ranked, "t-006")
	second := indexOf(ranked, "t-007")
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Equal(t, first+1, second, "equal magnitudes keep dataset order")
}

func indexOf(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}

func TestTopTickerMovers(t *testing.T) {
	e := mockEngine(t)

	got := e.TopTickerMovers(3)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.True(t, got[i-1].ChangePercent.Abs().GreaterThanOrEqual(got[i].ChangePercent.Abs()))
	}
}

func TestRelatedTrades(t *testing.T) {
	e := mockEngine(t)

	assert.Equal(t, []string{"t-008", "t-016"}, ids(e.RelatedTrades("t-001", 10)))
	assert.Equal(t, []string{"t-008"}, ids(e.RelatedTrades("t-001", 1)))
	assert.Empty(t, e.RelatedTrades("missing", 5))
}

func TestFilter(t *testing.T) {
	e := mockEngine(t)
	all := e.Trades()

	cases := []struct {
		name   string
		filter TradeFilter
		want   int
	}{
		{"zero value", TradeFilter{}, len(all)},
		{"all time", TradeFilter{Type: TypeAll, Period: PeriodAllTime}, len(all)},
		{"today", TradeFilter{Period: PeriodToday}, 3},
		{"this week", TradeFilter{Period: PeriodThisWeek}, 11},
		{"this month", TradeFilter{Period: PeriodThisMonth}, 18},
		{"sells", TradeFilter{Type: TypeSell}, 8},
		{"text", TradeFilter{Text: "nvda"}, 3},
		{"politician name", TradeFilter{Text: "margaret"}, 4},
		{"combined", TradeFilter{Type: TypeBuy, Period: PeriodThisWeek, Text: "nvda"}, 2},
		{"no hits", TradeFilter{Type: TypeSell, Period: PeriodToday, Text: "nvda"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Len(t, e.Filter(all, tc.filter, now), tc.want)
		})
	}
}

func TestFilterEvaluatedAgainstNow(t *testing.T) {
	e := mockEngine(t)

	later := now.AddDate(0, 0, 1)
	assert.Empty(t, e.Filter(e.Trades(), TradeFilter{Period: PeriodToday}, later))
}

func TestParseFilters(t *testing.T) {
	typ, err := ParseTypeFilter("")
	require.NoError(t, err)
	assert.Equal(t, TypeAll, typ)

	_, err = ParseTypeFilter("hold")
	assert.Error(t, err)

	p, err := ParsePeriod("thisWeek")
	require.NoError(t, err)
	assert.Equal(t, PeriodThisWeek, p)

	_, err = ParsePeriod("decade")
	assert.Error(t, err)
}

func TestGroupByDayConcatenationReproducesInput(t *testing.T) {
	e := mockEngine(t)

	filtered := e.Filter(e.Trades(), TradeFilter{}, now)
	sortByFilingDesc(filtered)
	groups := e.GroupByDay(filtered, now, models.LanguageEnglish)

	var flat []models.Trade
	for _, g := range groups {
		require.NotEmpty(t, g.Trades)
		flat = append(flat, g.Trades...)
	}
	assert.Equal(t, ids(filtered), ids(flat))

	require.GreaterOrEqual(t, len(groups), 3)
	assert.Equal(t, "Today", groups[0].Title)
	assert.Equal(t, "Yesterday", groups[1].Title)
	assert.Equal(t, "Tuesday, March 10", groups[2].Title)
}

func TestGroupByDayOnlyRelabelsCallingDay(t *testing.T) {
	e := mockEngine(t)

	later := now.AddDate(0, 0, 2)
	groups := e.Feed(TradeFilter{}, later, models.LanguageEnglish)
	require.NotEmpty(t, groups)
	assert.Equal(t, "Thursday, March 12", groups[0].Title)
	assert.Equal(t, "Wednesday, March 11", groups[1].Title)
}

func TestGroupByDayFrench(t *testing.T) {
	e := mockEngine(t)

	groups := e.Feed(TradeFilter{}, now, models.LanguageFrench)
	require.GreaterOrEqual(t, len(groups), 3)
	assert.Equal(t, "Aujourd'hui", groups[0].Title)
	assert.Equal(t, "Hier", groups[1].Title)
	assert.Equal(t, "mardi 10 mars", groups[2].Title)
}

func TestGroupByDayUsesLocalDayBoundary(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	trade := func(id string, filed time.Time) models.Trade {
		return models.Trade{
			ID: id, PoliticianID: "p", Ticker: "AAPL", Type: models.TradeBuy,
			TransactionDate: filed, FilingDate: filed, ReturnSinceFiling: decimal.Zero,
		}
	}
	snap := &dataset.Snapshot{Trades: []models.Trade{
		trade("late", time.Date(2026, time.March, 12, 14, 0, 0, 0, time.UTC)),
		// 23:00 on March 11 in EST.
		trade("early", time.Date(2026, time.March, 12, 4, 0, 0, 0, time.UTC)),
	}}
	e := New(snap, est)

	groups := e.Feed(TradeFilter{}, now, models.LanguageEnglish)
	require.Len(t, groups, 2)
	assert.Equal(t, "Today", groups[0].Title)
	assert.Equal(t, "Yesterday", groups[1].Title)
	assert.Equal(t, []string{"early"}, ids(groups[1].Trades))
}

func TestFollowedFeed(t *testing.T) {
	e := mockEngine(t)

	groups := e.FollowedFeed([]string{"p-hale"}, []string{"Energy"}, TradeFilter{}, now, models.LanguageEnglish)
	var got []string
	for _, g := range groups {
		got = append(got, ids(g.Trades)...)
	}
	assert.ElementsMatch(t, []string{"t-001", "t-005", "t-013", "t-021", "t-002", "t-012", "t-022"}, got)

	assert.Empty(t, e.FollowedFeed(nil, nil, TradeFilter{}, now, models.LanguageEnglish))
}

func TestSectors(t *testing.T) {
	e := mockEngine(t)
	assert.Contains(t, e.Sectors(), "Technology")
	assert.Contains(t, e.Sectors(), "Energy")
}
