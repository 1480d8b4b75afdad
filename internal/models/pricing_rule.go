package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingRule represents a row of the pricing_rules table.
type PricingRule struct {
	PricingRuleID   string          `db:"pricing_rule_id"`
	Name            string          `db:"name"`
	Version         int             `db:"version"`
	ClonedFromID    *string         `db:"cloned_from_id"`
	Status          string          `db:"status"`
	CurrencyCode    string          `db:"currency_code"`
	BaseFare        decimal.Decimal `db:"base_fare"`
	TaxRate         decimal.Decimal `db:"tax_rate"`
	CalculationMode string          `db:"calculation_mode"`
	Notes           string          `db:"notes"`
	ActivatedAt     *time.Time      `db:"activated_at"`
	AuditFields
}

// PricingTier represents a row of the pricing_tiers table.
type PricingTier struct {
	TierID        string           `db:"tier_id"`
	PricingRuleID string           `db:"pricing_rule_id"`
	MinKm         decimal.Decimal  `db:"min_km"`
	MaxKm         *decimal.Decimal `db:"max_km"` // NULL means unbounded
	FlatFee       *decimal.Decimal `db:"flat_fee"`
	PerKmRate     *decimal.Decimal `db:"per_km_rate"`
	SortOrder     int              `db:"sort_order"`
}
