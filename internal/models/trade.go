package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeType is the direction of a disclosed transaction.
type TradeType string

const (
	TradeBuy  TradeType = "buy"
	TradeSell TradeType = "sell"
)

// SourceType identifies the disclosure form a trade was read from.
type SourceType string

const (
	SourceForm4 SourceType = "form4"
	SourcePTR   SourceType = "ptr"
)

// AmountRange is a disclosed USD value band. Either bound may be unknown.
type AmountRange struct {
	Min decimal.NullDecimal `json:"min"`
	Max decimal.NullDecimal `json:"max"`
}

// NewAmountRange builds a range with both bounds known.
func NewAmountRange(min, max int64) AmountRange {
	return AmountRange{
		Min: decimal.NewNullDecimal(decimal.NewFromInt(min)),
		Max: decimal.NewNullDecimal(decimal.NewFromInt(max)),
	}
}

// Ordered reports whether min <= max when both bounds are present.
func (r AmountRange) Ordered() bool {
	if !r.Min.Valid || !r.Max.Valid {
		return true
	}
	return r.Min.Decimal.LessThanOrEqual(r.Max.Decimal)
}

// Upper returns the largest known bound, used for threshold comparisons.
func (r AmountRange) Upper() (decimal.Decimal, bool) {
	if r.Max.Valid {
		return r.Max.Decimal, true
	}
	if r.Min.Valid {
		return r.Min.Decimal, true
	}
	return decimal.Zero, false
}

// PoliticianSnapshot is the politician data denormalised onto a trade.
type PoliticianSnapshot struct {
	Name     string  `json:"name"`
	Initials string  `json:"initials"`
	Party    Party   `json:"party"`
	Chamber  Chamber `json:"chamber"`
	State    string  `json:"state"`
}

// Trade is a disclosed buy or sell tied to a politician and ticker.
type Trade struct {
	ID                string              `json:"id" validate:"required"`
	PoliticianID      string              `json:"politicianId" validate:"required"`
	Politician        PoliticianSnapshot  `json:"politician"`
	Ticker            string              `json:"ticker" validate:"required"`
	Company           string              `json:"company"`
	Type              TradeType           `json:"type" validate:"oneof=buy sell"`
	Amount            AmountRange         `json:"amount"`
	TransactionDate   time.Time           `json:"transactionDate" validate:"required"`
	FilingDate        time.Time           `json:"filingDate" validate:"required"`
	Sector            string              `json:"sector"`
	ReturnSinceFiling decimal.Decimal     `json:"returnSinceFiling"`
	PriceAtTrade      decimal.NullDecimal `json:"priceAtTrade"`
	CurrentPrice      decimal.NullDecimal `json:"currentPrice"`
	SourceURL         string              `json:"sourceUrl,omitempty" validate:"omitempty,url"`
	SourceType        SourceType          `json:"sourceType" validate:"oneof=form4 ptr"`
}

// FilingLag is the delay between the transaction and its disclosure.
func (t Trade) FilingLag() time.Duration {
	return t.FilingDate.Sub(t.TransactionDate)
}
