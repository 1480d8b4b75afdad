package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateDateLayout is the calendar-day key format used by rate history maps.
const RateDateLayout = "2006-01-02"

// ExchangeRate is one day's rate for a non-base currency, relative to the base currency.
// There is at most one record per (CurrencyCode, RateDate).
type ExchangeRate struct {
	CurrencyCode string          `json:"currencyCode"`
	RateDate     time.Time       `json:"rateDate"` // Calendar day, UTC midnight
	Rate         decimal.Decimal `json:"rate"`     // Units of CurrencyCode per 1 base unit
	Source       string          `json:"source"`
	AuditFields
}

// RatesByDate maps a RateDateLayout day key to the rate in effect on that day.
type RatesByDate map[string]decimal.Decimal

// TruncateToDay returns t's calendar day at UTC midnight.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RateSyncStatus is the per-currency outcome of a rate sync run.
type RateSyncStatus string

const (
	RateSyncUpdated RateSyncStatus = "updated"
	RateSyncMissing RateSyncStatus = "missing" // The feed had no rate for the currency
	RateSyncFailed  RateSyncStatus = "failed"
)

// RateSyncResult reports what a sync run did for one currency.
type RateSyncResult struct {
	CurrencyCode string           `json:"currencyCode"`
	Status       RateSyncStatus   `json:"status"`
	Rate         *decimal.Decimal `json:"rate,omitempty"`
	RateDate     string           `json:"rateDate,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// FeedRates is one snapshot from an external rate provider, quoted against Base.
type FeedRates struct {
	Base   string
	AsOf   time.Time
	Source string
	Rates  map[string]decimal.Decimal
}
