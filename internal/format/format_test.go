package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"politrades/internal/models"
)

func TestAmountRange(t *testing.T) {
	en := models.LanguageEnglish

	assert.Equal(t, "$1,001 - $15,000", AmountRange(models.NewAmountRange(1001, 15000), en))
	assert.Equal(t, "$50,000,001+", AmountRange(models.AmountRange{
		Min: decimal.NewNullDecimal(decimal.NewFromInt(50000001)),
	}, en))
	assert.Equal(t, "Undisclosed", AmountRange(models.AmountRange{}, en))
	assert.Equal(t, "Non communiqué", AmountRange(models.AmountRange{}, models.LanguageFrench))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "+12.5%", Percent(decimal.RequireFromString("12.5")))
	assert.Equal(t, "-3.2%", Percent(decimal.RequireFromString("-3.2")))
	assert.Equal(t, "0.0%", Percent(decimal.Zero))
}

func TestThresholdAndPrice(t *testing.T) {
	assert.Equal(t, "$50,000", Threshold(decimal.NewFromInt(50000)))
	assert.Equal(t, "$134.10", Price(decimal.NewNullDecimal(decimal.RequireFromString("134.1"))))
	assert.Equal(t, "-", Price(decimal.NullDecimal{}))
}

func TestPartyTag(t *testing.T) {
	snap := models.PoliticianSnapshot{Party: models.PartyIndependent, State: "VT"}
	assert.Equal(t, "I-VT", PartyTag(snap))
}

func TestDayTitle(t *testing.T) {
	day := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "Monday, March 9", DayTitle(day, models.LanguageEnglish))
	assert.Equal(t, "lundi 9 mars", DayTitle(day, models.LanguageFrench))
	assert.Equal(t, "Hier", Yesterday(models.LanguageFrench))
	assert.Equal(t, "Today", Today(models.LanguageEnglish))
}

func TestFilingLag(t *testing.T) {
	assert.Equal(t, "1 day", FilingLag(24*time.Hour, models.LanguageEnglish))
	assert.Equal(t, "12 days", FilingLag(12*24*time.Hour, models.LanguageEnglish))
	assert.Equal(t, "3 jours", FilingLag(72*time.Hour, models.LanguageFrench))
}

func TestRelative(t *testing.T) {
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 days ago", Relative(now.AddDate(0, 0, -3), now))
}
