package services

import (
	"context"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
)

// PricingRuleReaderSvc defines read operations for pricing rules
type PricingRuleReaderSvc interface {
	GetPricingRule(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error)
	ListPricingRules(ctx context.Context, params dto.ListPricingRulesParams) ([]domain.PricingRule, error)

	// GetActivePricingRule returns the rule quotes in currencyCode are priced with.
	GetActivePricingRule(ctx context.Context, currencyCode string) (*domain.PricingRule, error)

	// PreviewFare prices a trip without persisting anything.
	PreviewFare(ctx context.Context, req dto.PreviewFareRequest) (*fare.Breakdown, error)
}

// PricingRuleWriterSvc defines write operations for pricing rules
type PricingRuleWriterSvc interface {
	CreatePricingRule(ctx context.Context, req dto.CreatePricingRuleRequest, userID string) (*domain.PricingRule, error)
	UpdatePricingRule(ctx context.Context, pricingRuleID string, req dto.UpdatePricingRuleRequest, userID string) (*domain.PricingRule, error)
	ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string) (*domain.PricingRule, error)
	ClonePricingRule(ctx context.Context, pricingRuleID string, newName *string, userID string) (*domain.PricingRule, error)
	DeletePricingRule(ctx context.Context, pricingRuleID string, userID string) error
}

// PricingRuleSvcFacade combines all pricing rule service interfaces
type PricingRuleSvcFacade interface {
	PricingRuleReaderSvc
	PricingRuleWriterSvc
}
