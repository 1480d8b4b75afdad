package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
)

// PricingRuleFilter narrows ListPricingRules. Empty fields match everything.
type PricingRuleFilter struct {
	CurrencyCode string
	Status       domain.PricingRuleStatus
}

// PricingRuleReader defines read operations for pricing rules
type PricingRuleReader interface {
	// FindPricingRuleByID retrieves a rule with its tiers.
	FindPricingRuleByID(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error)

	// ListPricingRules retrieves rules with their tiers, newest first.
	ListPricingRules(ctx context.Context, filter PricingRuleFilter) ([]domain.PricingRule, error)

	// FindActivePricingRules returns every active rule of a currency, most
	// recently activated first. More than one result is an invariant violation.
	FindActivePricingRules(ctx context.Context, currencyCode string) ([]domain.PricingRule, error)
}

// PricingRuleWriter defines write operations for pricing rules
type PricingRuleWriter interface {
	// SavePricingRule inserts a rule and its tiers.
	SavePricingRule(ctx context.Context, rule domain.PricingRule) error

	// UpdatePricingRule replaces a draft rule's fields and tiers. It returns
	// ErrInvalidState when the rule is no longer a draft.
	UpdatePricingRule(ctx context.Context, rule domain.PricingRule) error

	// ActivatePricingRule marks the rule active with the given activation time.
	ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string, activatedAt time.Time) error

	// ArchiveActivePricingRules archives every active rule of the currency except exceptID.
	ArchiveActivePricingRules(ctx context.Context, currencyCode string, exceptID string, userID string, now time.Time) (int64, error)

	// DeletePricingRule removes a draft rule and its tiers. It returns
	// ErrInvalidState when the rule is no longer a draft.
	DeletePricingRule(ctx context.Context, pricingRuleID string) error
}

// PricingRuleRepositoryFacade combines all pricing rule repository interfaces
type PricingRuleRepositoryFacade interface {
	PricingRuleReader
	PricingRuleWriter
}
