package mapping

import (
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/models"
)

// ToModelPricingRule splits a domain rule into its rule row and tier rows.
func ToModelPricingRule(d domain.PricingRule) (models.PricingRule, []models.PricingTier) {
	rule := models.PricingRule{
		PricingRuleID:   d.PricingRuleID,
		Name:            d.Name,
		Version:         d.Version,
		ClonedFromID:    d.ClonedFromID,
		Status:          string(d.Status),
		CurrencyCode:    d.CurrencyCode,
		BaseFare:        d.BaseFare,
		TaxRate:         d.TaxRate,
		CalculationMode: string(d.CalculationMode),
		Notes:           d.Notes,
		ActivatedAt:     d.ActivatedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}

	tiers := make([]models.PricingTier, len(d.Tiers))
	for i, t := range d.Tiers {
		tiers[i] = models.PricingTier{
			TierID:        t.TierID,
			PricingRuleID: d.PricingRuleID,
			MinKm:         t.MinKm,
			MaxKm:         t.MaxKm,
			FlatFee:       t.FlatFee,
			PerKmRate:     t.PerKmRate,
			SortOrder:     t.SortOrder,
		}
	}
	return rule, tiers
}

// ToDomainPricingRule joins a rule row with its tier rows.
func ToDomainPricingRule(m models.PricingRule, tiers []models.PricingTier) domain.PricingRule {
	d := domain.PricingRule{
		PricingRuleID:   m.PricingRuleID,
		Name:            m.Name,
		Version:         m.Version,
		ClonedFromID:    m.ClonedFromID,
		Status:          domain.PricingRuleStatus(m.Status),
		CurrencyCode:    m.CurrencyCode,
		BaseFare:        m.BaseFare,
		TaxRate:         m.TaxRate,
		CalculationMode: domain.CalculationMode(m.CalculationMode),
		Notes:           m.Notes,
		ActivatedAt:     m.ActivatedAt,
		Tiers:           make([]domain.PricingTier, len(tiers)),
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	for i, t := range tiers {
		d.Tiers[i] = domain.PricingTier{
			TierID:    t.TierID,
			MinKm:     t.MinKm,
			MaxKm:     t.MaxKm,
			FlatFee:   t.FlatFee,
			PerKmRate: t.PerKmRate,
			SortOrder: t.SortOrder,
		}
	}
	return d
}
