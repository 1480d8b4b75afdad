package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// PricingRuleStatus is the lifecycle state of a pricing rule.
type PricingRuleStatus string

const (
	RuleDraft    PricingRuleStatus = "draft"
	RuleActive   PricingRuleStatus = "active"
	RuleArchived PricingRuleStatus = "archived"
)

// IsValid reports whether s is a known rule status.
func (s PricingRuleStatus) IsValid() bool {
	switch s {
	case RuleDraft, RuleActive, RuleArchived:
		return true
	}
	return false
}

// CalculationMode selects how distance tiers are applied.
type CalculationMode string

const (
	// ModeDiscrete applies exactly one tier, the one whose range contains the distance.
	ModeDiscrete CalculationMode = "discrete"
	// ModeCumulative accumulates fees across every tier the distance passes through.
	ModeCumulative CalculationMode = "cumulative"
)

// IsValid reports whether m is a known calculation mode.
func (m CalculationMode) IsValid() bool {
	switch m {
	case ModeDiscrete, ModeCumulative:
		return true
	}
	return false
}

// PricingTier is one distance band of a pricing rule. MaxKm nil means unbounded.
type PricingTier struct {
	TierID    string           `json:"tierID"`
	MinKm     decimal.Decimal  `json:"minKm"`
	MaxKm     *decimal.Decimal `json:"maxKm,omitempty"`
	FlatFee   *decimal.Decimal `json:"flatFee,omitempty"`
	PerKmRate *decimal.Decimal `json:"perKmRate,omitempty"`
	SortOrder int              `json:"sortOrder"`
}

// Contains reports whether distanceKm falls in [MinKm, MaxKm).
func (t PricingTier) Contains(distanceKm decimal.Decimal) bool {
	if distanceKm.LessThan(t.MinKm) {
		return false
	}
	return t.MaxKm == nil || distanceKm.LessThan(*t.MaxKm)
}

// PricingRule is a versioned set of tiers and fees for one currency.
type PricingRule struct {
	PricingRuleID   string            `json:"pricingRuleID"`
	Name            string            `json:"name"`
	Version         int               `json:"version"`
	ClonedFromID    *string           `json:"clonedFromID,omitempty"`
	Status          PricingRuleStatus `json:"status"`
	CurrencyCode    string            `json:"currencyCode"`
	BaseFare        decimal.Decimal   `json:"baseFare"`
	TaxRate         decimal.Decimal   `json:"taxRate"` // Fraction, 0 <= r <= 1
	CalculationMode CalculationMode   `json:"calculationMode"`
	Notes           string            `json:"notes"`
	Tiers           []PricingTier     `json:"tiers"`
	ActivatedAt     *time.Time        `json:"activatedAt,omitempty"`
	AuditFields
}

// SortedTiers returns a copy of the tiers ordered by MinKm, then SortOrder.
// Stored order is never trusted.
func (r PricingRule) SortedTiers() []PricingTier {
	tiers := make([]PricingTier, len(r.Tiers))
	copy(tiers, r.Tiers)
	sort.SliceStable(tiers, func(i, j int) bool {
		if c := tiers[i].MinKm.Cmp(tiers[j].MinKm); c != 0 {
			return c < 0
		}
		return tiers[i].SortOrder < tiers[j].SortOrder
	})
	return tiers
}

// Validate checks the field-level constraints of a rule and its tiers.
func (r PricingRule) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("pricing rule name is required")
	}
	if !r.CalculationMode.IsValid() {
		return fmt.Errorf("unknown calculation mode '%s'", r.CalculationMode)
	}
	if r.TaxRate.IsNegative() || r.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("tax rate must be between 0 and 1, got %s", r.TaxRate.String())
	}
	if !FitsStoredScale(r.BaseFare) || !FitsStoredScale(r.TaxRate) {
		return fmt.Errorf("base fare and tax rate allow at most %d decimal places", StoredScale)
	}
	for i, tier := range r.Tiers {
		if !tier.fitsStoredScale() {
			return fmt.Errorf("tier %d: values allow at most %d decimal places", i, StoredScale)
		}
		if tier.MinKm.IsNegative() {
			return fmt.Errorf("tier %d: minKm must not be negative", i)
		}
		if tier.MaxKm != nil && tier.MaxKm.LessThanOrEqual(tier.MinKm) {
			return fmt.Errorf("tier %d: maxKm must be greater than minKm", i)
		}
		if tier.FlatFee != nil && tier.FlatFee.IsNegative() {
			return fmt.Errorf("tier %d: flatFee must not be negative", i)
		}
		if tier.PerKmRate != nil && tier.PerKmRate.IsNegative() {
			return fmt.Errorf("tier %d: perKmRate must not be negative", i)
		}
	}
	return nil
}

func (t PricingTier) fitsStoredScale() bool {
	for _, v := range []*decimal.Decimal{t.MaxKm, t.FlatFee, t.PerKmRate} {
		if v != nil && !FitsStoredScale(*v) {
			return false
		}
	}
	return FitsStoredScale(t.MinKm)
}

// ValidateForActivation checks the extra preconditions of going live.
func (r PricingRule) ValidateForActivation() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if len(r.Tiers) == 0 {
		return fmt.Errorf("pricing rule must have at least one tier to be activated")
	}
	if r.BaseFare.IsNegative() {
		return fmt.Errorf("base fare must not be negative")
	}
	return nil
}

// TierGaps reports adjacent tiers (after sorting) whose bounds do not meet exactly.
// Gaps and overlaps are tolerated by the calculator but are a data-quality warning.
func (r PricingRule) TierGaps() []string {
	tiers := r.SortedTiers()
	var issues []string
	for i := 1; i < len(tiers); i++ {
		prev := tiers[i-1]
		if prev.MaxKm == nil {
			issues = append(issues, fmt.Sprintf("tier starting at %s follows an unbounded tier", tiers[i].MinKm.String()))
			continue
		}
		if !prev.MaxKm.Equal(tiers[i].MinKm) {
			issues = append(issues, fmt.Sprintf("tier ending at %s is followed by tier starting at %s", prev.MaxKm.String(), tiers[i].MinKm.String()))
		}
	}
	return issues
}
