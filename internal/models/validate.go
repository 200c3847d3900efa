package models

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterStructValidation(tradeStructLevel, Trade{})
	})
	return validate
}

func tradeStructLevel(sl validator.StructLevel) {
	trade := sl.Current().Interface().(Trade)
	if !trade.Amount.Ordered() {
		sl.ReportError(trade.Amount, "Amount", "Amount", "amount_range", "")
	}
	if trade.FilingDate.Before(trade.TransactionDate) {
		sl.ReportError(trade.FilingDate, "FilingDate", "FilingDate", "filed_after_transaction", "")
	}
}

// ValidatePolitician checks field constraints on a politician record.
func ValidatePolitician(p Politician) error {
	if err := validatorInstance().Struct(p); err != nil {
		return fmt.Errorf("politician %q: %w", p.ID, err)
	}
	return nil
}

// ValidateTrade checks field constraints plus the amount and date ordering.
func ValidateTrade(t Trade) error {
	if err := validatorInstance().Struct(t); err != nil {
		return fmt.Errorf("trade %q: %w", t.ID, err)
	}
	return nil
}

// ValidateTicker checks field constraints on a ticker record.
func ValidateTicker(t Ticker) error {
	if err := validatorInstance().Struct(t); err != nil {
		return fmt.Errorf("ticker %q: %w", t.Symbol, err)
	}
	return nil
}

// FieldErrors extracts the failing tags from a validation error.
func FieldErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	tags := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		tags = append(tags, fe.Field()+":"+fe.Tag())
	}
	return tags
}
