package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency represents a row of the currencies table.
type Currency struct {
	CurrencyCode      string           `db:"currency_code"` // Primary Key (e.g., "CRC")
	Symbol            string           `db:"symbol"`
	Name              string           `db:"name"`
	Precision         int              `db:"precision"`
	IsBase            bool             `db:"is_base"`
	IsEnabled         bool             `db:"is_enabled"`
	RoundingMode      string           `db:"rounding_mode"`
	RoundingIncrement decimal.Decimal  `db:"rounding_increment"`
	CurrentRate       *decimal.Decimal `db:"current_rate"` // NULL for the base currency
	RateDate          *time.Time       `db:"rate_date"`
	RateSource        *string          `db:"rate_source"`
	AuditFields
}
