package fare_test

import (
	"testing"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// Tiers are deliberately stored out of order.
func tieredRule(mode domain.CalculationMode) domain.PricingRule {
	return domain.PricingRule{
		PricingRuleID:   "rule_1",
		Name:            "Standard",
		Status:          domain.RuleActive,
		CurrencyCode:    "CRC",
		BaseFare:        d("1000"),
		TaxRate:         d("0.13"),
		CalculationMode: mode,
		Tiers: []domain.PricingTier{
			{TierID: "t3", MinKm: d("10"), PerKmRate: dp("150"), SortOrder: 3},
			{TierID: "t1", MinKm: d("0"), MaxKm: dp("5"), FlatFee: dp("500"), SortOrder: 1},
			{TierID: "t2", MinKm: d("5"), MaxKm: dp("10"), FlatFee: dp("200"), PerKmRate: dp("300"), SortOrder: 2},
		},
	}
}

func TestDistanceFee_Discrete(t *testing.T) {
	rule := tieredRule(domain.ModeDiscrete)

	tests := []struct {
		name     string
		distance string
		want     string
	}{
		{"zero distance uses first tier", "0", "500"},
		{"inside first tier", "4.5", "500"},
		{"lower bound belongs to the next tier", "5", "1700"},
		{"inside second tier", "7.25", "2375"},
		{"unbounded tier", "12", "1800"},
		{"far into unbounded tier", "100.5", "15075"},
		{"just below upper bound", "9.999", "3199.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fare.DistanceFee(rule, d(tt.distance))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDistanceFee_DiscreteNoMatchingTier(t *testing.T) {
	rule := tieredRule(domain.ModeDiscrete)
	rule.Tiers = rule.Tiers[1:] // Drop the unbounded tier

	_, err := fare.DistanceFee(rule, d("10"))
	assert.ErrorIs(t, err, apperrors.ErrNoMatchingTier)

	rule.Tiers = nil
	_, err = fare.DistanceFee(rule, d("1"))
	assert.ErrorIs(t, err, apperrors.ErrNoMatchingTier)
}

func TestDistanceFee_DiscreteSelectsOnlyContainingTier(t *testing.T) {
	rule := tieredRule(domain.ModeDiscrete)
	tiers := rule.SortedTiers()

	for _, km := range []string{"0", "0.1", "4.99", "5", "6", "9.99", "10", "55"} {
		distance := d(km)
		matched, ok := fare.MatchTier(tiers, distance)
		require.True(t, ok, km)

		containing := 0
		for _, tier := range tiers {
			if tier.Contains(distance) {
				containing++
				assert.Equal(t, tier.TierID, matched.TierID, km)
			}
		}
		assert.Equal(t, 1, containing, km)
	}
}

func TestDistanceFee_Cumulative(t *testing.T) {
	rule := tieredRule(domain.ModeCumulative)

	tests := []struct {
		name     string
		distance string
		want     string
	}{
		{"zero distance enters first tier", "0", "500"},
		{"inside first tier", "3", "500"},
		{"first tier fully consumed", "5", "500"},
		{"into second tier", "7", "1300"},
		{"second tier fully consumed", "10", "2200"},
		{"into unbounded tier", "12", "2500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fare.DistanceFee(rule, d(tt.distance))
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestDistanceFee_CumulativeGapsAndOverlaps(t *testing.T) {
	rule := domain.PricingRule{
		Name:            "Messy",
		CurrencyCode:    "CRC",
		CalculationMode: domain.ModeCumulative,
		Tiers: []domain.PricingTier{
			{MinKm: d("0"), MaxKm: dp("4"), PerKmRate: dp("10")},
			{MinKm: d("3"), MaxKm: dp("6"), PerKmRate: dp("20")}, // Overlaps 3-4
			{MinKm: d("8"), PerKmRate: dp("5")},                   // Gap 6-8
		},
	}

	got, err := fare.DistanceFee(rule, d("10"))
	require.NoError(t, err)
	// 0-4 at 10, 4-6 at 20 (3-4 not charged twice), 6-8 skipped, 8-10 at 5
	assert.True(t, d("90").Equal(got), "got %s", got)
}

func TestDistanceFee_CumulativeMonotonic(t *testing.T) {
	rules := []domain.PricingRule{
		tieredRule(domain.ModeCumulative),
		{
			Name:            "Overlapping",
			CalculationMode: domain.ModeCumulative,
			Tiers: []domain.PricingTier{
				{MinKm: d("0"), MaxKm: dp("3"), FlatFee: dp("7"), PerKmRate: dp("2")},
				{MinKm: d("1"), MaxKm: dp("10"), FlatFee: dp("4"), PerKmRate: dp("1")},
				{MinKm: d("2"), MaxKm: dp("4"), FlatFee: dp("9"), PerKmRate: dp("3")},
				{MinKm: d("12"), PerKmRate: dp("0.5")},
			},
		},
	}

	for _, rule := range rules {
		previous := decimal.Zero
		for step := 0; step <= 400; step++ {
			distance := decimal.NewFromInt(int64(step)).Div(decimal.NewFromInt(20)) // 0 .. 20 km in 50 m steps
			fee, err := fare.DistanceFee(rule, distance)
			require.NoError(t, err)
			assert.True(t, fee.GreaterThanOrEqual(previous), "%s: fee dropped at %s km (%s < %s)", rule.Name, distance, fee, previous)
			previous = fee
		}
	}
}

func TestCalculate_Breakdown(t *testing.T) {
	rule := tieredRule(domain.ModeDiscrete)

	got, err := fare.Calculate(rule, fare.Input{
		DistanceKm:   d("7.25"),
		TimeFee:      d("250"),
		Surcharge:    d("125"),
		DiscountRate: d("10"),
	})
	require.NoError(t, err)

	// before discount: 1000 + 2375 + 250 + 125 = 3750
	assert.Equal(t, "CRC", got.CurrencyCode)
	assert.True(t, d("1000").Equal(got.BaseFare))
	assert.True(t, d("2375").Equal(got.DistanceFee))
	assert.True(t, d("375").Equal(got.Discount), got.Discount.String())
	assert.True(t, d("3375").Equal(got.Subtotal), got.Subtotal.String())
	assert.True(t, d("438.75").Equal(got.TaxTotal), got.TaxTotal.String())
	assert.True(t, d("3813.75").Equal(got.Total), got.Total.String())
}

func TestCalculate_KeepsFullPrecision(t *testing.T) {
	rule := domain.PricingRule{
		Name:            "Precise",
		CurrencyCode:    "USD",
		BaseFare:        d("0.1"),
		TaxRate:         d("0.07"),
		CalculationMode: domain.ModeDiscrete,
		Tiers:           []domain.PricingTier{{MinKm: d("0"), PerKmRate: dp("0.333")}},
	}

	got, err := fare.Calculate(rule, fare.Input{DistanceKm: d("3.3")})
	require.NoError(t, err)
	// 0.1 + 1.0989 = 1.1989, tax 0.083923
	assert.Equal(t, "1.1989", got.Subtotal.String())
	assert.Equal(t, "0.083923", got.TaxTotal.String())
	assert.Equal(t, "1.282823", got.Total.String())
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	rule := tieredRule(domain.ModeDiscrete)

	_, err := fare.Calculate(rule, fare.Input{DistanceKm: d("-1")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = fare.Calculate(rule, fare.Input{DistanceKm: d("1"), DiscountRate: d("101")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	rule.CalculationMode = "stepped"
	_, err = fare.Calculate(rule, fare.Input{DistanceKm: d("1")})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
