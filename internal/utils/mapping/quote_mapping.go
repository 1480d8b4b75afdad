package mapping

import (
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/models"
)

// ToModelQuote converts a domain Quote to a model Quote
func ToModelQuote(d domain.Quote) models.Quote {
	return models.Quote{
		QuoteID:             d.QuoteID,
		OrderID:             d.OrderID,
		Version:             d.Version,
		Status:              string(d.Status),
		PaymentStatus:       string(d.PaymentStatus),
		IsFinal:             d.IsFinal,
		FinalizedAt:         d.FinalizedAt,
		CurrencyCode:        d.CurrencyCode,
		PricingRuleID:       d.PricingRuleID,
		PricingRuleVersion:  d.PricingRuleVersion,
		BaseFare:            d.BaseFare,
		DistanceKm:          d.DistanceKm,
		DurationMinutes:     d.DurationMinutes,
		DistanceFee:         d.DistanceFee,
		TimeFee:             d.TimeFee,
		Surcharge:           d.Surcharge,
		DiscountRate:        d.DiscountRate,
		Subtotal:            d.Subtotal,
		TaxRate:             d.TaxRate,
		TaxTotal:            d.TaxTotal,
		Total:               d.Total,
		PickupProposedFor:   d.PickupProposedFor,
		DeliveryProposedFor: d.DeliveryProposedFor,
		ValidUntil:          d.ValidUntil,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainQuote converts a model Quote to a domain Quote
func ToDomainQuote(m models.Quote) domain.Quote {
	return domain.Quote{
		QuoteID:             m.QuoteID,
		OrderID:             m.OrderID,
		Version:             m.Version,
		Status:              domain.QuoteStatus(m.Status),
		PaymentStatus:       domain.PaymentStatus(m.PaymentStatus),
		IsFinal:             m.IsFinal,
		FinalizedAt:         m.FinalizedAt,
		CurrencyCode:        m.CurrencyCode,
		PricingRuleID:       m.PricingRuleID,
		PricingRuleVersion:  m.PricingRuleVersion,
		BaseFare:            m.BaseFare,
		DistanceKm:          m.DistanceKm,
		DurationMinutes:     m.DurationMinutes,
		DistanceFee:         m.DistanceFee,
		TimeFee:             m.TimeFee,
		Surcharge:           m.Surcharge,
		DiscountRate:        m.DiscountRate,
		Subtotal:            m.Subtotal,
		TaxRate:             m.TaxRate,
		TaxTotal:            m.TaxTotal,
		Total:               m.Total,
		PickupProposedFor:   m.PickupProposedFor,
		DeliveryProposedFor: m.DeliveryProposedFor,
		ValidUntil:          m.ValidUntil,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainQuoteSlice converts a slice of model Quotes
func ToDomainQuoteSlice(ms []models.Quote) []domain.Quote {
	ds := make([]domain.Quote, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainQuote(m)
	}
	return ds
}
