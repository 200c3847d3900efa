package dataset

import (
	"github.com/shopspring/decimal"

	"politrades/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeStats derives the aggregate profile figures from a politician's trades.
// Traded value sums the upper bound of each disclosed range.
func ComputeStats(trades []models.Trade) models.PoliticianStats {
	stats := models.PoliticianStats{
		AvgReturn:  decimal.Zero,
		WinRate:    decimal.Zero,
		TotalValue: decimal.Zero,
	}
	if len(trades) == 0 {
		return stats
	}

	var (
		sumReturn = decimal.Zero
		wins      int
		sectors   = make(map[string]int)
		order     []string
	)
	for _, t := range trades {
		sumReturn = sumReturn.Add(t.ReturnSinceFiling)
		if t.ReturnSinceFiling.IsPositive() {
			wins++
		}
		if upper, ok := t.Amount.Upper(); ok {
			stats.TotalValue = stats.TotalValue.Add(upper)
		}
		if t.Sector != "" {
			if _, seen := sectors[t.Sector]; !seen {
				order = append(order, t.Sector)
			}
			sectors[t.Sector]++
		}
	}

	n := decimal.NewFromInt(int64(len(trades)))
	stats.TotalTrades = len(trades)
	stats.AvgReturn = sumReturn.Div(n).Round(1)
	stats.WinRate = decimal.NewFromInt(int64(wins)).Mul(hundred).Div(n).Round(1)

	best := 0
	for _, sector := range order {
		if sectors[sector] > best {
			best = sectors[sector]
			stats.TopSector = sector
		}
	}
	return stats
}
