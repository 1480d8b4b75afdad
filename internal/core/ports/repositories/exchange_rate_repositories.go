package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRatesBetween returns the rates of one currency for the inclusive day range.
	FindRatesBetween(ctx context.Context, currencyCode string, from, to time.Time) ([]domain.ExchangeRate, error)

	// ListExchangeRates returns up to limit rates newest first, strictly before
	// the given day when before is non-nil.
	ListExchangeRates(ctx context.Context, currencyCode string, limit int, before *time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// UpsertExchangeRate stores the rate for (CurrencyCode, RateDate), replacing
	// any rate already stored for that day.
	UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange rate-related repository interfaces
// This is a facade for clients that need access to all operations
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
