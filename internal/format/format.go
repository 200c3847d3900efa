// Package format renders domain values for display. Parsing and storage use
// the canonical model values; these helpers are only called at the boundary.
package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"golang.org/x/text/message"

	"politrades/internal/models"
)

// PartyTag renders the compact "D-CA" label shown beside a politician.
func PartyTag(p models.PoliticianSnapshot) string {
	return p.Party.Code() + "-" + p.State
}

// Money renders a whole-dollar amount with locale digit grouping.
func Money(d decimal.Decimal, lang models.Language) string {
	p := message.NewPrinter(lang.Tag())
	if lang == models.LanguageFrench {
		return p.Sprintf("%d $", d.IntPart())
	}
	return p.Sprintf("$%d", d.IntPart())
}

// AmountRange renders a disclosed value band such as "$1,001 - $15,000".
func AmountRange(r models.AmountRange, lang models.Language) string {
	switch {
	case r.Min.Valid && r.Max.Valid:
		return Money(r.Min.Decimal, lang) + " - " + Money(r.Max.Decimal, lang)
	case r.Min.Valid:
		return Money(r.Min.Decimal, lang) + "+"
	case r.Max.Valid:
		return "≤ " + Money(r.Max.Decimal, lang)
	}
	if lang == models.LanguageFrench {
		return "Non communiqué"
	}
	return "Undisclosed"
}

// Threshold renders the alert threshold in the compact settings form, e.g. "$50,000".
func Threshold(d decimal.Decimal) string {
	return "$" + humanize.Comma(d.IntPart())
}

// Percent renders a signed percentage with one decimal, e.g. "+12.5%".
func Percent(d decimal.Decimal) string {
	s := d.StringFixed(1) + "%"
	if d.IsPositive() {
		return "+" + s
	}
	return s
}

// Price renders a quote with two decimals, or "-" when unknown.
func Price(d decimal.NullDecimal) string {
	if !d.Valid {
		return "-"
	}
	return "$" + d.Decimal.StringFixed(2)
}

// Relative renders t relative to now, e.g. "3 days ago".
func Relative(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}

// FilingLag renders the disclosure delay in whole days.
func FilingLag(d time.Duration, lang models.Language) string {
	days := int(d.Hours() / 24)
	if lang == models.LanguageFrench {
		if days <= 1 {
			return fmt.Sprintf("%d jour", days)
		}
		return fmt.Sprintf("%d jours", days)
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}
