package models

import "github.com/shopspring/decimal"

// Ticker is a traded security with its recent price history.
type Ticker struct {
	Symbol        string            `json:"symbol" validate:"required"`
	Company       string            `json:"company" validate:"required"`
	Price         decimal.Decimal   `json:"price"`
	Change        decimal.Decimal   `json:"change"`
	ChangePercent decimal.Decimal   `json:"changePercent"`
	Sparkline     []decimal.Decimal `json:"sparkline"`
	Sector        string            `json:"sector"`
}

// Renderable reports whether the sparkline has enough points to draw a line.
func (t Ticker) Renderable() bool {
	return len(t.Sparkline) >= 2
}
