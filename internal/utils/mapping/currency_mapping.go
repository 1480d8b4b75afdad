package mapping

import (
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/models"
)

// ToModelCurrency converts a domain Currency to a model Currency
func ToModelCurrency(d domain.Currency) models.Currency {
	m := models.Currency{
		CurrencyCode:      d.CurrencyCode,
		Symbol:            d.Symbol,
		Name:              d.Name,
		Precision:         d.Precision,
		IsBase:            d.IsBase,
		IsEnabled:         d.IsEnabled,
		RoundingMode:      string(d.RoundingMode),
		RoundingIncrement: d.RoundingIncrement,
		CurrentRate:       d.CurrentRate,
		RateDate:          d.RateDate,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
	if d.RateSource != "" {
		source := d.RateSource
		m.RateSource = &source
	}
	return m
}

// ToDomainCurrency converts a model Currency to a domain Currency
func ToDomainCurrency(m models.Currency) domain.Currency {
	d := domain.Currency{
		CurrencyCode:      m.CurrencyCode,
		Symbol:            m.Symbol,
		Name:              m.Name,
		Precision:         m.Precision,
		IsBase:            m.IsBase,
		IsEnabled:         m.IsEnabled,
		RoundingMode:      domain.RoundingMode(m.RoundingMode),
		RoundingIncrement: m.RoundingIncrement,
		CurrentRate:       m.CurrentRate,
		RateDate:          m.RateDate,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
	if m.RateSource != nil {
		d.RateSource = *m.RateSource
	}
	if d.IsBase {
		d.CurrentRate = nil
	}
	return d
}

// ToDomainCurrencySlice converts a slice of model Currencies to a slice of domain Currencies
func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	ds := make([]domain.Currency, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCurrency(m)
	}
	return ds
}
