package alerting

import (
	"slices"

	"github.com/shopspring/decimal"

	"politrades/internal/models"
	"politrades/internal/state"
)

// Reason records which follow matched a trade.
type Reason string

const (
	ReasonPolitician Reason = "politician"
	ReasonSector     Reason = "sector"
)

// Alert is a trade worth notifying the user about.
type Alert struct {
	Trade     models.Trade
	Reason    Reason
	Threshold decimal.Decimal
}

// Evaluate selects the trades by followed politicians or in followed sectors
// whose disclosed value reaches the alert threshold. Nothing is selected while
// notifications are disabled. Trades with no disclosed bound only pass a zero
// threshold.
func Evaluate(settings state.Settings, watchlist state.Watchlist, trades []models.Trade) []Alert {
	if !settings.NotificationsEnabled {
		return nil
	}

	var alerts []Alert
	for _, t := range trades {
		reason, followed := matchFollow(watchlist, t)
		if !followed {
			continue
		}
		if !meetsThreshold(t.Amount, settings.AlertThreshold) {
			continue
		}
		alerts = append(alerts, Alert{Trade: t, Reason: reason, Threshold: settings.AlertThreshold})
	}
	return alerts
}

func matchFollow(w state.Watchlist, t models.Trade) (Reason, bool) {
	if slices.Contains(w.FollowedPoliticians, t.PoliticianID) {
		return ReasonPolitician, true
	}
	if t.Sector != "" && slices.Contains(w.FollowedSectors, t.Sector) {
		return ReasonSector, true
	}
	return "", false
}

func meetsThreshold(r models.AmountRange, threshold decimal.Decimal) bool {
	upper, ok := r.Upper()
	if !ok {
		return threshold.IsZero()
	}
	return upper.GreaterThanOrEqual(threshold)
}
