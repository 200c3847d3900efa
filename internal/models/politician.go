package models

import "github.com/shopspring/decimal"

// Politician is a public official whose disclosed trades are tracked.
type Politician struct {
	ID        string          `json:"id" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	ShortName string          `json:"shortName"`
	Initials  string          `json:"initials"`
	Party     Party           `json:"party" validate:"oneof=Democrat Republican Independent"`
	Chamber   Chamber         `json:"chamber" validate:"oneof=House Senate"`
	State     string          `json:"state" validate:"len=2"`
	Position  string          `json:"position,omitempty"`
	PhotoURL  string          `json:"photoUrl,omitempty"`
	Stats     PoliticianStats `json:"stats"`
}

// PoliticianStats are aggregate figures shown on profile cards.
type PoliticianStats struct {
	TotalTrades int             `json:"totalTrades" validate:"gte=0"`
	AvgReturn   decimal.Decimal `json:"avgReturn"`
	WinRate     decimal.Decimal `json:"winRate"`
	TotalValue  decimal.Decimal `json:"totalValue"`
	TopSector   string          `json:"topSector"`
}

// Snapshot returns the denormalised fields copied onto trades.
func (p Politician) Snapshot() PoliticianSnapshot {
	return PoliticianSnapshot{
		Name:     p.Name,
		Initials: p.Initials,
		Party:    p.Party,
		Chamber:  p.Chamber,
		State:    p.State,
	}
}
