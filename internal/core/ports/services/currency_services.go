package services

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
)

// CurrencyReaderSvc defines read operations for currency data
type CurrencyReaderSvc interface {
	// GetCurrencyByCode retrieves a specific currency by its code.
	GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// GetBaseCurrency retrieves the base currency every price is stored in.
	GetBaseCurrency(ctx context.Context) (*domain.Currency, error)

	// ListCurrencies retrieves all available currencies.
	ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error)
}

// CurrencyWriterSvc defines write operations for currency data
type CurrencyWriterSvc interface {
	// CreateCurrency persists a new, non-base currency.
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error)

	// UpdateCurrency changes display and rounding settings.
	UpdateCurrency(ctx context.Context, currencyCode string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error)

	// SetBaseCurrency makes currencyCode the base. Existing quotes keep their currency.
	SetBaseCurrency(ctx context.Context, currencyCode string, userID string) (*domain.Currency, error)
}

// CurrencySvcFacade combines all currency-related service interfaces
type CurrencySvcFacade interface {
	CurrencyReaderSvc
	CurrencyWriterSvc
}

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// GetRatesMap returns the day-keyed rates of a currency for the inclusive range.
	GetRatesMap(ctx context.Context, currencyCode string, from, to time.Time) (domain.RatesByDate, error)

	// ListExchangeRates returns one page of rate history, newest first.
	ListExchangeRates(ctx context.Context, currencyCode string, limit int, nextToken *string) ([]domain.ExchangeRate, *string, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// UpsertExchangeRate stores one day's rate, replacing a same-day rate.
	UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, userID string) (*domain.ExchangeRate, error)

	// SyncRates pulls today's rates from the configured feed.
	SyncRates(ctx context.Context, userID string) ([]domain.RateSyncResult, error)
}

// ExchangeRateSvcFacade combines all exchange rate-related service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
