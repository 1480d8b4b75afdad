// Package currency resolves exchange rates for monetary records and re-expresses
// base-currency amounts in a customer's display currency.
package currency

import (
	"fmt"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentRecord is anything carrying the payment status that decides rate pinning.
type PaymentRecord interface {
	GetPaymentStatus() string
}

// ConversionRate is a resolved rate plus where it came from.
type ConversionRate struct {
	Rate         decimal.Decimal `json:"rate"`
	IsHistorical bool            `json:"isHistorical"`
	RateDate     string          `json:"rateDate,omitempty"` // Set only for historical rates
}

// ConvertedAmount is a converted, rounded amount with its rate provenance.
type ConvertedAmount struct {
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	ConversionRate
}

// ShouldUseHistoricalRate reports whether a record's conversion must be pinned to
// the rate of its creation day. Only records whose payment status is exactly
// "paid" are pinned; everything else tracks the live rate.
func ShouldUseHistoricalRate(record PaymentRecord) bool {
	if record == nil {
		return false
	}
	return record.GetPaymentStatus() == string(domain.PaymentPaid)
}

// DateKey returns the calendar-day key (UTC) used to look up historical rates.
func DateKey(t time.Time) string {
	return t.UTC().Format(domain.RateDateLayout)
}

// GetConversionRate picks the rate for a record.
// Finalized records use the rate stored for createdAt's calendar day when one exists
// and is positive; otherwise the live rate is used when positive.
// ok is false when neither source yields a usable rate; callers must then show a
// "rate unavailable" state instead of a price.
func GetConversionRate(rates domain.RatesByDate, liveRate *decimal.Decimal, createdAt *time.Time, isFinalized bool) (ConversionRate, bool) {
	if isFinalized && createdAt != nil && rates != nil {
		key := DateKey(*createdAt)
		if rate, found := rates[key]; found && rate.IsPositive() {
			return ConversionRate{Rate: rate, IsHistorical: true, RateDate: key}, true
		}
	}
	if liveRate != nil && liveRate.IsPositive() {
		return ConversionRate{Rate: *liveRate, IsHistorical: false}, true
	}
	return ConversionRate{}, false
}

// ConversionInput groups everything needed to convert one base amount.
type ConversionInput struct {
	BaseAmount  decimal.Decimal
	Rates       domain.RatesByDate
	LiveRate    *decimal.Decimal
	CreatedAt   *time.Time
	IsFinalized bool
}

// ConvertToCustomerCurrency multiplies the base amount by the resolved rate
// (target units per 1 base unit) and applies the target currency's rounding.
func ConvertToCustomerCurrency(in ConversionInput, target domain.Currency) (ConvertedAmount, error) {
	rate, ok := GetConversionRate(in.Rates, in.LiveRate, in.CreatedAt, in.IsFinalized)
	if !ok {
		return ConvertedAmount{}, fmt.Errorf("%w: no rate for %s", apperrors.ErrRateUnavailable, target.CurrencyCode)
	}
	return ConvertedAmount{
		CurrencyCode:   target.CurrencyCode,
		Amount:         RoundForDisplay(in.BaseAmount.Mul(rate.Rate), target),
		ConversionRate: rate,
	}, nil
}

// FormatRateDisplay renders the inverse of a stored rate, e.g. "1 USD = 490.20 CRC".
// Non-positive rates render as "-".
func FormatRateDisplay(rate decimal.Decimal, targetCode, baseCode string) string {
	if !rate.IsPositive() {
		return "-"
	}
	inverse := decimal.NewFromInt(1).DivRound(rate, 8)
	return fmt.Sprintf("1 %s = %s %s", targetCode, inverse.StringFixed(2), baseCode)
}
