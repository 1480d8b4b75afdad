package dto

import (
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateQuoteRequest defines the data needed to price a new draft quote.
// Either DistanceKm or both Origin and Destination must be given.
type CreateQuoteRequest struct {
	OrderID             string           `json:"orderID" binding:"required"`
	CurrencyCode        string           `json:"currencyCode" binding:"omitempty,uppercase,len=3"` // Defaults to the base currency
	DistanceKm          *decimal.Decimal `json:"distanceKm" binding:"omitempty,gte=0"`
	DurationMinutes     *decimal.Decimal `json:"durationMinutes" binding:"omitempty,gte=0"`
	Origin              string           `json:"origin"`
	Destination         string           `json:"destination"`
	TimeFee             decimal.Decimal  `json:"timeFee" binding:"gte=0"`
	Surcharge           decimal.Decimal  `json:"surcharge" binding:"gte=0"`
	DiscountRate        decimal.Decimal  `json:"discountRate" binding:"gte=0,lte=100"`
	PickupProposedFor   *time.Time       `json:"pickupProposedFor"`
	DeliveryProposedFor *time.Time       `json:"deliveryProposedFor"`
	ValidUntil          *time.Time       `json:"validUntil"`
}

// UpdateQuoteRequest changes the pricing inputs of a draft. Nil fields are left unchanged.
type UpdateQuoteRequest struct {
	DistanceKm          *decimal.Decimal `json:"distanceKm" binding:"omitempty,gte=0"`
	DurationMinutes     *decimal.Decimal `json:"durationMinutes" binding:"omitempty,gte=0"`
	TimeFee             *decimal.Decimal `json:"timeFee" binding:"omitempty,gte=0"`
	Surcharge           *decimal.Decimal `json:"surcharge" binding:"omitempty,gte=0"`
	DiscountRate        *decimal.Decimal `json:"discountRate" binding:"omitempty,gte=0,lte=100"`
	PickupProposedFor   *time.Time       `json:"pickupProposedFor"`
	DeliveryProposedFor *time.Time       `json:"deliveryProposedFor"`
	ValidUntil          *time.Time       `json:"validUntil"`
}

// QuoteResponse defines the data returned for a quote.
type QuoteResponse struct {
	QuoteID             string              `json:"quoteID"`
	OrderID             string              `json:"orderID"`
	Version             int                 `json:"version"`
	Status              string              `json:"status"`
	PaymentStatus       string              `json:"paymentStatus"`
	IsFinal             bool                `json:"isFinal"`
	FinalizedAt         *time.Time          `json:"finalizedAt,omitempty"`
	CurrencyCode        string              `json:"currencyCode"`
	PricingRuleID       string              `json:"pricingRuleID"`
	PricingRuleVersion  int                 `json:"pricingRuleVersion"`
	DistanceKm          decimal.Decimal     `json:"distanceKm"`
	DurationMinutes     *decimal.Decimal    `json:"durationMinutes,omitempty"`
	DiscountRate        decimal.Decimal     `json:"discountRate"`
	TaxRate             decimal.Decimal     `json:"taxRate"`
	Amounts             domain.QuoteAmounts `json:"amounts"`
	PickupProposedFor   *time.Time          `json:"pickupProposedFor,omitempty"`
	DeliveryProposedFor *time.Time          `json:"deliveryProposedFor,omitempty"`
	ValidUntil          *time.Time          `json:"validUntil,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	CreatedBy           string              `json:"createdBy"`
	LastUpdatedAt       time.Time           `json:"lastUpdatedAt"`
	LastUpdatedBy       string              `json:"lastUpdatedBy"`
}

// ToQuoteResponse converts a domain.Quote to QuoteResponse DTO.
func ToQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		QuoteID:             q.QuoteID,
		OrderID:             q.OrderID,
		Version:             q.Version,
		Status:              string(q.Status),
		PaymentStatus:       string(q.PaymentStatus),
		IsFinal:             q.IsFinal,
		FinalizedAt:         q.FinalizedAt,
		CurrencyCode:        q.CurrencyCode,
		PricingRuleID:       q.PricingRuleID,
		PricingRuleVersion:  q.PricingRuleVersion,
		DistanceKm:          q.DistanceKm,
		DurationMinutes:     q.DurationMinutes,
		DiscountRate:        q.DiscountRate,
		TaxRate:             q.TaxRate,
		Amounts:             q.Amounts(),
		PickupProposedFor:   q.PickupProposedFor,
		DeliveryProposedFor: q.DeliveryProposedFor,
		ValidUntil:          q.ValidUntil,
		CreatedAt:           q.CreatedAt,
		CreatedBy:           q.CreatedBy,
		LastUpdatedAt:       q.LastUpdatedAt,
		LastUpdatedBy:       q.LastUpdatedBy,
	}
}

// ToListQuoteResponse converts a slice of quotes.
func ToListQuoteResponse(quotes []domain.Quote) []QuoteResponse {
	res := make([]QuoteResponse, len(quotes))
	for i := range quotes {
		res[i] = ToQuoteResponse(&quotes[i])
	}
	return res
}
