package dto

import (
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UpsertExchangeRateRequest defines the structure for storing one day's rate.
type UpsertExchangeRateRequest struct {
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3,uppercase"`
	Rate         decimal.Decimal `json:"rate" binding:"gt=0"` // Units of CurrencyCode per 1 base unit
	RateDate     time.Time       `json:"rateDate" binding:"required"`
	Source       string          `json:"source"`
}

// ExchangeRateResponse defines the structure for API responses containing exchange rate details.
type ExchangeRateResponse struct {
	CurrencyCode  string          `json:"currencyCode"`
	RateDate      string          `json:"rateDate"`
	Rate          decimal.Decimal `json:"rate"`
	Source        string          `json:"source"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy string          `json:"lastUpdatedBy"`
}

// ListExchangeRatesResponse is one page of rate history.
type ListExchangeRatesResponse struct {
	Rates     []ExchangeRateResponse `json:"rates"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// RatesMapResponse is the day-keyed rate map of one currency.
type RatesMapResponse struct {
	CurrencyCode string             `json:"currencyCode"`
	Rates        domain.RatesByDate `json:"rates"`
}

// SyncRatesResponse reports the outcome of a rate sync.
type SyncRatesResponse struct {
	Results []domain.RateSyncResult `json:"results"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse DTO
func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		CurrencyCode:  rate.CurrencyCode,
		RateDate:      rate.RateDate.UTC().Format(domain.RateDateLayout),
		Rate:          rate.Rate,
		Source:        rate.Source,
		CreatedAt:     rate.CreatedAt,
		CreatedBy:     rate.CreatedBy,
		LastUpdatedAt: rate.LastUpdatedAt,
		LastUpdatedBy: rate.LastUpdatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of domain.ExchangeRate to a slice of ExchangeRateResponse DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	responses := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = ToExchangeRateResponse(&rates[i])
	}
	return responses
}
