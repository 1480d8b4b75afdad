package currency

import (
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ApplyRounding snaps amount to a multiple of increment.
// An increment <= 0 means no rounding is configured and amount is returned unchanged.
// Unknown modes fall back to nearest; rounding only affects presentation.
func ApplyRounding(amount decimal.Decimal, mode domain.RoundingMode, increment decimal.Decimal) decimal.Decimal {
	if !increment.IsPositive() {
		return amount
	}

	steps := amount.DivRound(increment, 16)
	switch mode {
	case domain.RoundUp:
		steps = steps.Ceil()
	case domain.RoundDown:
		steps = steps.Floor()
	default:
		steps = steps.Round(0) // Half away from zero
	}
	return steps.Mul(increment)
}

// RoundForDisplay applies the currency's rounding policy and then its display precision.
func RoundForDisplay(amount decimal.Decimal, c domain.Currency) decimal.Decimal {
	rounded := ApplyRounding(amount, c.RoundingMode, c.RoundingIncrement)
	return rounded.Round(int32(c.Precision))
}

// FormatWithCurrencyPrecision formats an amount with the correct precision for a given currency.
// Example: 12.3456 with USD (precision 2) returns "12.35"; with JPY (precision 0) returns "12".
func FormatWithCurrencyPrecision(amount decimal.Decimal, c domain.Currency) string {
	return RoundForDisplay(amount, c).StringFixed(int32(c.Precision))
}
