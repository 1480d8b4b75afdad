package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores one day's rate for a currency against the base currency.
// (currency_code, rate_date) is unique.
type ExchangeRate struct {
	CurrencyCode string          `db:"currency_code"` // FK -> currencies.currency_code
	RateDate     time.Time       `db:"rate_date"`     // DATE column
	Rate         decimal.Decimal `db:"rate"`
	Source       string          `db:"source"`
	AuditFields
}
