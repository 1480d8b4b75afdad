package dto

import (
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/currency"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest defines the data needed to create a new currency.
type CreateCurrencyRequest struct {
	CurrencyCode      string              `json:"currencyCode" binding:"required,uppercase,len=3"`
	Symbol            string              `json:"symbol" binding:"required"`
	Name              string              `json:"name" binding:"required"`
	Precision         *int                `json:"precision" binding:"omitempty,gte=0,lte=18"`
	RoundingMode      domain.RoundingMode `json:"roundingMode" binding:"omitempty,oneof=nearest up down"`
	RoundingIncrement *decimal.Decimal    `json:"roundingIncrement" binding:"omitempty,gte=0"`
	IsEnabled         *bool               `json:"isEnabled"`
}

// UpdateCurrencyRequest carries the editable currency settings. Nil fields are left unchanged.
type UpdateCurrencyRequest struct {
	Symbol            *string              `json:"symbol" binding:"omitempty,min=1"`
	Name              *string              `json:"name" binding:"omitempty,min=1"`
	Precision         *int                 `json:"precision" binding:"omitempty,gte=0,lte=18"`
	RoundingMode      *domain.RoundingMode `json:"roundingMode" binding:"omitempty,oneof=nearest up down"`
	RoundingIncrement *decimal.Decimal     `json:"roundingIncrement" binding:"omitempty,gte=0"`
	IsEnabled         *bool                `json:"isEnabled"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	CurrencyCode      string           `json:"currencyCode"`
	Symbol            string           `json:"symbol"`
	Name              string           `json:"name"`
	Precision         int              `json:"precision"`
	IsBase            bool             `json:"isBase"`
	IsEnabled         bool             `json:"isEnabled"`
	RoundingMode      string           `json:"roundingMode"`
	RoundingIncrement decimal.Decimal  `json:"roundingIncrement"`
	CurrentRate       *decimal.Decimal `json:"currentRate,omitempty"`
	RateDate          *time.Time       `json:"rateDate,omitempty"`
	RateSource        string           `json:"rateSource,omitempty"`
	RateDisplay       string           `json:"rateDisplay,omitempty"` // e.g. "1 USD = 490.20 CRC"
	CreatedAt         time.Time        `json:"createdAt"`
	CreatedBy         string           `json:"createdBy"`
	LastUpdatedAt     time.Time        `json:"lastUpdatedAt"`
	LastUpdatedBy     string           `json:"lastUpdatedBy"`
}

// ToCurrencyResponse converts a domain.Currency to CurrencyResponse DTO.
// baseCode is used to render the rate display and may be empty.
func ToCurrencyResponse(curr *domain.Currency, baseCode string) CurrencyResponse {
	res := CurrencyResponse{
		CurrencyCode:      curr.CurrencyCode,
		Symbol:            curr.Symbol,
		Name:              curr.Name,
		Precision:         curr.Precision,
		IsBase:            curr.IsBase,
		IsEnabled:         curr.IsEnabled,
		RoundingMode:      string(curr.RoundingMode),
		RoundingIncrement: curr.RoundingIncrement,
		CurrentRate:       curr.CurrentRate,
		RateDate:          curr.RateDate,
		RateSource:        curr.RateSource,
		CreatedAt:         curr.CreatedAt,
		CreatedBy:         curr.CreatedBy,
		LastUpdatedAt:     curr.LastUpdatedAt,
		LastUpdatedBy:     curr.LastUpdatedBy,
	}
	if !curr.IsBase && baseCode != "" {
		rate := decimal.Zero
		if curr.CurrentRate != nil {
			rate = *curr.CurrentRate
		}
		res.RateDisplay = currency.FormatRateDisplay(rate, curr.CurrencyCode, baseCode)
	}
	return res
}

// ToListCurrencyResponse converts a slice of domain.Currency to a slice of CurrencyResponse DTOs
func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	baseCode := ""
	for _, curr := range currencies {
		if curr.IsBase {
			baseCode = curr.CurrencyCode
		}
	}
	res := make([]CurrencyResponse, len(currencies))
	for i := range currencies {
		res[i] = ToCurrencyResponse(&currencies[i], baseCode)
	}
	return res
}
