// Package fare turns a pricing rule and a trip estimate into an itemized fee breakdown.
// Everything here is pure: no I/O, no rounding. Amounts stay at full precision
// and are rounded only when displayed or converted.
package fare

import (
	"fmt"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Input is the trip and adjustment data a fare is computed from.
type Input struct {
	DistanceKm      decimal.Decimal
	DurationMinutes *decimal.Decimal // Informational; TimeFee is what gets charged
	TimeFee         decimal.Decimal  // Computed by the caller, passed through as-is
	Surcharge       decimal.Decimal
	DiscountRate    decimal.Decimal // Percent, 0-100
}

// Breakdown is the itemized result, in the rule's currency.
type Breakdown struct {
	CurrencyCode string          `json:"currencyCode"`
	BaseFare     decimal.Decimal `json:"baseFare"`
	DistanceFee  decimal.Decimal `json:"distanceFee"`
	TimeFee      decimal.Decimal `json:"timeFee"`
	Surcharge    decimal.Decimal `json:"surcharge"`
	Discount     decimal.Decimal `json:"discount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	TaxRate      decimal.Decimal `json:"taxRate"`
	TaxTotal     decimal.Decimal `json:"taxTotal"`
	Total        decimal.Decimal `json:"total"`
}

// Calculate prices a trip against rule.
//
//	subtotal = baseFare + distanceFee + timeFee + surcharge - discount
//	discount = (baseFare + distanceFee + timeFee + surcharge) * discountRate / 100
//	taxTotal = subtotal * taxRate
//	total    = subtotal + taxTotal
func Calculate(rule domain.PricingRule, in Input) (Breakdown, error) {
	if in.DistanceKm.IsNegative() {
		return Breakdown{}, fmt.Errorf("%w: distance must not be negative", apperrors.ErrValidation)
	}
	if in.DiscountRate.IsNegative() || in.DiscountRate.GreaterThan(hundred) {
		return Breakdown{}, fmt.Errorf("%w: discount rate must be between 0 and 100", apperrors.ErrValidation)
	}

	distanceFee, err := DistanceFee(rule, in.DistanceKm)
	if err != nil {
		return Breakdown{}, err
	}

	beforeDiscount := rule.BaseFare.Add(distanceFee).Add(in.TimeFee).Add(in.Surcharge)
	discount := beforeDiscount.Mul(in.DiscountRate).Div(hundred)
	subtotal := beforeDiscount.Sub(discount)
	taxTotal := subtotal.Mul(rule.TaxRate)

	return Breakdown{
		CurrencyCode: rule.CurrencyCode,
		BaseFare:     rule.BaseFare,
		DistanceFee:  distanceFee,
		TimeFee:      in.TimeFee,
		Surcharge:    in.Surcharge,
		Discount:     discount,
		Subtotal:     subtotal,
		TaxRate:      rule.TaxRate,
		TaxTotal:     taxTotal,
		Total:        subtotal.Add(taxTotal),
	}, nil
}

// DistanceFee applies the rule's tiers to distanceKm according to its calculation mode.
func DistanceFee(rule domain.PricingRule, distanceKm decimal.Decimal) (decimal.Decimal, error) {
	tiers := rule.SortedTiers()
	switch rule.CalculationMode {
	case domain.ModeDiscrete:
		return discreteFee(tiers, distanceKm)
	case domain.ModeCumulative:
		return cumulativeFee(tiers, distanceKm), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown calculation mode '%s'", apperrors.ErrValidation, rule.CalculationMode)
}

// MatchTier returns the first sorted tier whose [minKm, maxKm) range contains distanceKm.
func MatchTier(tiers []domain.PricingTier, distanceKm decimal.Decimal) (domain.PricingTier, bool) {
	for _, tier := range tiers {
		if tier.Contains(distanceKm) {
			return tier, true
		}
	}
	return domain.PricingTier{}, false
}

func discreteFee(tiers []domain.PricingTier, distanceKm decimal.Decimal) (decimal.Decimal, error) {
	tier, ok := MatchTier(tiers, distanceKm)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no tier covers %s km", apperrors.ErrNoMatchingTier, distanceKm.String())
	}
	return valueOrZero(tier.FlatFee).Add(valueOrZero(tier.PerKmRate).Mul(distanceKm)), nil
}

// cumulativeFee walks tiers in order. A tier is entered when minKm <= distance and
// the distance is not yet fully consumed by earlier tiers (the first tier reached
// is always entered). Each entered tier charges its flat fee once plus perKmRate
// for the kilometres it covers that no earlier tier already charged. Kilometres
// in gaps between tiers are not charged.
func cumulativeFee(tiers []domain.PricingTier, distanceKm decimal.Decimal) decimal.Decimal {
	fee := decimal.Zero
	charged := decimal.Zero // Upper bound of the distance already charged
	entered := false
	for _, tier := range tiers {
		if tier.MinKm.GreaterThan(distanceKm) {
			break
		}
		if entered && charged.GreaterThanOrEqual(distanceKm) {
			break
		}
		entered = true
		fee = fee.Add(valueOrZero(tier.FlatFee))

		end := distanceKm
		if tier.MaxKm != nil && tier.MaxKm.LessThan(end) {
			end = *tier.MaxKm
		}
		start := decimal.Max(tier.MinKm, charged)
		if span := end.Sub(start); span.IsPositive() {
			fee = fee.Add(valueOrZero(tier.PerKmRate).Mul(span))
		}
		if end.GreaterThan(charged) {
			charged = end
		}
	}
	return fee
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
