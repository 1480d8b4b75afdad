package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote represents a row of the quotes table.
type Quote struct {
	QuoteID             string           `db:"quote_id"`
	OrderID             string           `db:"order_id"`
	Version             int              `db:"version"`
	Status              string           `db:"status"`
	PaymentStatus       string           `db:"payment_status"`
	IsFinal             bool             `db:"is_final"`
	FinalizedAt         *time.Time       `db:"finalized_at"`
	CurrencyCode        string           `db:"currency_code"`
	PricingRuleID       string           `db:"pricing_rule_id"`
	PricingRuleVersion  int              `db:"pricing_rule_version"`
	BaseFare            decimal.Decimal  `db:"base_fare"`
	DistanceKm          decimal.Decimal  `db:"distance_km"`
	DurationMinutes     *decimal.Decimal `db:"duration_minutes"`
	DistanceFee         decimal.Decimal  `db:"distance_fee"`
	TimeFee             decimal.Decimal  `db:"time_fee"`
	Surcharge           decimal.Decimal  `db:"surcharge"`
	DiscountRate        decimal.Decimal  `db:"discount_rate"`
	Subtotal            decimal.Decimal  `db:"subtotal"`
	TaxRate             decimal.Decimal  `db:"tax_rate"`
	TaxTotal            decimal.Decimal  `db:"tax_total"`
	Total               decimal.Decimal  `db:"total"`
	PickupProposedFor   *time.Time       `db:"pickup_proposed_for"`
	DeliveryProposedFor *time.Time       `db:"delivery_proposed_for"`
	ValidUntil          *time.Time       `db:"valid_until"`
	AuditFields
}
