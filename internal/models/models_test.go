package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePartyAcceptsBothRepresentations(t *testing.T) {
	cases := map[string]Party{
		"D":           PartyDemocrat,
		"democrat":    PartyDemocrat,
		"R":           PartyRepublican,
		" Republican": PartyRepublican,
		"i":           PartyIndependent,
		"Independent": PartyIndependent,
	}
	for in, want := range cases {
		got, err := ParseParty(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseParty("green")
	assert.Error(t, err)
}

func TestPartyJSONNormalisesCode(t *testing.T) {
	var p Politician
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","party":"R"}`), &p))
	assert.Equal(t, PartyRepublican, p.Party)
	assert.Equal(t, "R", p.Party.Code())

	out, err := json.Marshal(p.Party)
	require.NoError(t, err)
	assert.JSONEq(t, `"Republican"`, string(out))
}

func validTrade() Trade {
	tx := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return Trade{
		ID:              "t1",
		PoliticianID:    "p1",
		Ticker:          "NVDA",
		Type:            TradeBuy,
		Amount:          NewAmountRange(1001, 15000),
		TransactionDate: tx,
		FilingDate:      tx.AddDate(0, 0, 10),
		SourceType:      SourcePTR,
	}
}

func TestValidateTradeAmountRange(t *testing.T) {
	require.NoError(t, ValidateTrade(validTrade()))

	inverted := validTrade()
	inverted.Amount = NewAmountRange(50000, 15000)
	err := ValidateTrade(inverted)
	require.Error(t, err)
	assert.Contains(t, FieldErrors(err), "Amount:amount_range")

	open := validTrade()
	open.Amount = AmountRange{Min: decimal.NewNullDecimal(decimal.NewFromInt(5000000))}
	assert.NoError(t, ValidateTrade(open))
}

func TestValidateTradeFilingBeforeTransaction(t *testing.T) {
	trade := validTrade()
	trade.FilingDate = trade.TransactionDate.Add(-time.Hour)
	err := ValidateTrade(trade)
	require.Error(t, err)
	assert.Contains(t, FieldErrors(err), "FilingDate:filed_after_transaction")
}

func TestValidateTradeRejectsUnknownType(t *testing.T) {
	trade := validTrade()
	trade.Type = "hold"
	assert.Error(t, ValidateTrade(trade))
}

func TestAmountRangeUpper(t *testing.T) {
	upper, ok := NewAmountRange(1001, 15000).Upper()
	require.True(t, ok)
	assert.True(t, upper.Equal(decimal.NewFromInt(15000)))

	_, ok = AmountRange{}.Upper()
	assert.False(t, ok)
}

func TestTickerRenderable(t *testing.T) {
	tk := Ticker{Symbol: "NVDA", Sparkline: []decimal.Decimal{decimal.NewFromInt(1)}}
	assert.False(t, tk.Renderable())
	tk.Sparkline = append(tk.Sparkline, decimal.NewFromInt(2))
	assert.True(t, tk.Renderable())
}

func TestParseLanguage(t *testing.T) {
	got, err := ParseLanguage("fr-CA")
	require.NoError(t, err)
	assert.Equal(t, LanguageFrench, got)

	got, err = ParseLanguage("en-GB")
	require.NoError(t, err)
	assert.Equal(t, LanguageEnglish, got)

	_, err = ParseLanguage("de")
	assert.Error(t, err)
	_, err = ParseLanguage("!!")
	assert.Error(t, err)
}
