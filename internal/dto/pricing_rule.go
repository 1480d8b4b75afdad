package dto

import (
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PricingTierRequest is one distance band in a rule request.
type PricingTierRequest struct {
	MinKm     decimal.Decimal  `json:"minKm" binding:"gte=0"`
	MaxKm     *decimal.Decimal `json:"maxKm" binding:"omitempty,gt=0"`
	FlatFee   *decimal.Decimal `json:"flatFee" binding:"omitempty,gte=0"`
	PerKmRate *decimal.Decimal `json:"perKmRate" binding:"omitempty,gte=0"`
	SortOrder int              `json:"sortOrder"`
}

// CreatePricingRuleRequest defines the data needed to create a draft rule.
type CreatePricingRuleRequest struct {
	Name            string                 `json:"name" binding:"required"`
	CurrencyCode    string                 `json:"currencyCode" binding:"required,uppercase,len=3"`
	BaseFare        decimal.Decimal        `json:"baseFare" binding:"gte=0"`
	TaxRate         decimal.Decimal        `json:"taxRate" binding:"gte=0,lte=1"`
	CalculationMode domain.CalculationMode `json:"calculationMode" binding:"required,oneof=discrete cumulative"`
	Notes           string                 `json:"notes"`
	Tiers           []PricingTierRequest   `json:"tiers" binding:"dive"`
}

// UpdatePricingRuleRequest replaces the editable fields of a draft. Nil fields are left unchanged;
// a non-nil Tiers replaces the whole tier list.
type UpdatePricingRuleRequest struct {
	Name            *string                 `json:"name" binding:"omitempty,min=1"`
	BaseFare        *decimal.Decimal        `json:"baseFare" binding:"omitempty,gte=0"`
	TaxRate         *decimal.Decimal        `json:"taxRate" binding:"omitempty,gte=0,lte=1"`
	CalculationMode *domain.CalculationMode `json:"calculationMode" binding:"omitempty,oneof=discrete cumulative"`
	Notes           *string                 `json:"notes"`
	Tiers           *[]PricingTierRequest   `json:"tiers" binding:"omitempty,dive"`
}

// ClonePricingRuleRequest optionally renames the clone.
type ClonePricingRuleRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1"`
}

// ListPricingRulesParams filters the rule listing.
type ListPricingRulesParams struct {
	CurrencyCode string `form:"currency" binding:"omitempty,uppercase,len=3"`
	Status       string `form:"status" binding:"omitempty,oneof=draft active archived"`
}

// PreviewFareRequest prices a trip without persisting anything. The currency's
// active rule is used unless PricingRuleID names a specific (possibly draft) rule.
type PreviewFareRequest struct {
	CurrencyCode    string           `json:"currencyCode" binding:"omitempty,uppercase,len=3"`
	PricingRuleID   string           `json:"pricingRuleID"`
	DistanceKm      decimal.Decimal  `json:"distanceKm" binding:"gte=0"`
	DurationMinutes *decimal.Decimal `json:"durationMinutes" binding:"omitempty,gte=0"`
	TimeFee         decimal.Decimal  `json:"timeFee" binding:"gte=0"`
	Surcharge       decimal.Decimal  `json:"surcharge" binding:"gte=0"`
	DiscountRate    decimal.Decimal  `json:"discountRate" binding:"gte=0,lte=100"`
}

// PricingRuleResponse defines the data returned for a pricing rule.
type PricingRuleResponse struct {
	PricingRuleID   string               `json:"pricingRuleID"`
	Name            string               `json:"name"`
	Version         int                  `json:"version"`
	ClonedFromID    *string              `json:"clonedFromID,omitempty"`
	Status          string               `json:"status"`
	CurrencyCode    string               `json:"currencyCode"`
	BaseFare        decimal.Decimal      `json:"baseFare"`
	TaxRate         decimal.Decimal      `json:"taxRate"`
	CalculationMode string               `json:"calculationMode"`
	Notes           string               `json:"notes"`
	Tiers           []domain.PricingTier `json:"tiers"`
	TierWarnings    []string             `json:"tierWarnings,omitempty"`
	ActivatedAt     *time.Time           `json:"activatedAt,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
	CreatedBy       string               `json:"createdBy"`
	LastUpdatedAt   time.Time            `json:"lastUpdatedAt"`
	LastUpdatedBy   string               `json:"lastUpdatedBy"`
}

// ToPricingRuleResponse converts a domain.PricingRule to PricingRuleResponse DTO.
// Tiers are returned in evaluation order.
func ToPricingRuleResponse(rule *domain.PricingRule) PricingRuleResponse {
	return PricingRuleResponse{
		PricingRuleID:   rule.PricingRuleID,
		Name:            rule.Name,
		Version:         rule.Version,
		ClonedFromID:    rule.ClonedFromID,
		Status:          string(rule.Status),
		CurrencyCode:    rule.CurrencyCode,
		BaseFare:        rule.BaseFare,
		TaxRate:         rule.TaxRate,
		CalculationMode: string(rule.CalculationMode),
		Notes:           rule.Notes,
		Tiers:           rule.SortedTiers(),
		TierWarnings:    rule.TierGaps(),
		ActivatedAt:     rule.ActivatedAt,
		CreatedAt:       rule.CreatedAt,
		CreatedBy:       rule.CreatedBy,
		LastUpdatedAt:   rule.LastUpdatedAt,
		LastUpdatedBy:   rule.LastUpdatedBy,
	}
}

// ToListPricingRuleResponse converts a slice of rules.
func ToListPricingRuleResponse(rules []domain.PricingRule) []PricingRuleResponse {
	res := make([]PricingRuleResponse, len(rules))
	for i := range rules {
		res[i] = ToPricingRuleResponse(&rules[i])
	}
	return res
}
