package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundingMode selects how display amounts snap to a currency's rounding increment.
type RoundingMode string

const (
	RoundNearest RoundingMode = "nearest"
	RoundUp      RoundingMode = "up"
	RoundDown    RoundingMode = "down"
)

// IsValid reports whether m is one of the known rounding modes.
func (m RoundingMode) IsValid() bool {
	switch m {
	case RoundNearest, RoundUp, RoundDown:
		return true
	}
	return false
}

// Currency represents a supported currency in the domain.
// Rates are expressed as units of this currency per 1 unit of the base currency.
type Currency struct {
	CurrencyCode      string           `json:"currencyCode"` // Primary Key (e.g., "CRC")
	Symbol            string           `json:"symbol"`       // e.g., "₡"
	Name              string           `json:"name"`         // e.g., "Costa Rican Colón"
	Precision         int              `json:"precision"`    // Decimal places used for display
	IsBase            bool             `json:"isBase"`
	IsEnabled         bool             `json:"isEnabled"`
	RoundingMode      RoundingMode     `json:"roundingMode"`
	RoundingIncrement decimal.Decimal  `json:"roundingIncrement"`
	CurrentRate       *decimal.Decimal `json:"currentRate,omitempty"` // Always nil for the base currency
	RateDate          *time.Time       `json:"rateDate,omitempty"`
	RateSource        string           `json:"rateSource,omitempty"`
	AuditFields
}

// LiveRate returns the rate used for records that are not finalized.
// The base currency has an implicit rate of 1 that is never stored.
func (c Currency) LiveRate() *decimal.Decimal {
	if c.IsBase {
		one := decimal.NewFromInt(1)
		return &one
	}
	return c.CurrentRate
}
