package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus is the lifecycle state of a delivery quote.
type QuoteStatus string

const (
	QuoteDraft     QuoteStatus = "draft"
	QuoteSent      QuoteStatus = "sent"
	QuoteAccepted  QuoteStatus = "accepted"
	QuoteRejected  QuoteStatus = "rejected"
	QuoteExpired   QuoteStatus = "expired"
	QuoteFinalized QuoteStatus = "finalized"
)

// PaymentStatus of the order a quote belongs to.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// IsValid reports whether s is a known quote status.
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteDraft, QuoteSent, QuoteAccepted, QuoteRejected, QuoteExpired, QuoteFinalized:
		return true
	}
	return false
}

// CanTransitionTo reports whether a quote may move from s to next.
// Transitions are one-way; nothing ever returns to draft.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	switch s {
	case QuoteDraft:
		return next == QuoteSent
	case QuoteSent:
		return next == QuoteAccepted || next == QuoteRejected || next == QuoteExpired
	case QuoteAccepted:
		return next == QuoteFinalized
	case QuoteRejected, QuoteExpired, QuoteFinalized:
		return false
	}
	return false
}

// IsMutable reports whether pricing fields may still change. Only drafts are mutable.
func (s QuoteStatus) IsMutable() bool {
	return s == QuoteDraft
}

// Quote is a priced offer for one order. Amounts are in CurrencyCode, which is
// the base currency unless the quote was requested in another enabled currency,
// and are stored at full precision.
type Quote struct {
	QuoteID             string           `json:"quoteID"`
	OrderID             string           `json:"orderID"`
	Version             int              `json:"version"`
	Status              QuoteStatus      `json:"status"`
	PaymentStatus       PaymentStatus    `json:"paymentStatus"`
	IsFinal             bool             `json:"isFinal"`
	FinalizedAt         *time.Time       `json:"finalizedAt,omitempty"`
	CurrencyCode        string           `json:"currencyCode"`
	PricingRuleID       string           `json:"pricingRuleID"`
	PricingRuleVersion  int              `json:"pricingRuleVersion"`
	BaseFare            decimal.Decimal  `json:"baseFare"`
	DistanceKm          decimal.Decimal  `json:"distanceKm"`
	DurationMinutes     *decimal.Decimal `json:"durationMinutes,omitempty"`
	DistanceFee         decimal.Decimal  `json:"distanceFee"`
	TimeFee             decimal.Decimal  `json:"timeFee"`
	Surcharge           decimal.Decimal  `json:"surcharge"`
	DiscountRate        decimal.Decimal  `json:"discountRate"` // Percent, 0-100
	Subtotal            decimal.Decimal  `json:"subtotal"`
	TaxRate             decimal.Decimal  `json:"taxRate"`
	TaxTotal            decimal.Decimal  `json:"taxTotal"`
	Total               decimal.Decimal  `json:"total"`
	PickupProposedFor   *time.Time       `json:"pickupProposedFor,omitempty"`
	DeliveryProposedFor *time.Time       `json:"deliveryProposedFor,omitempty"`
	ValidUntil          *time.Time       `json:"validUntil,omitempty"`
	AuditFields
}

// GetPaymentStatus exposes the payment status for rate selection.
func (q Quote) GetPaymentStatus() string {
	return string(q.PaymentStatus)
}

// ValidatePricingInputs rejects inputs that storage would round, so a stored
// quote always reproduces its own totals.
func (q Quote) ValidatePricingInputs() error {
	inputs := map[string]decimal.Decimal{
		"distanceKm":   q.DistanceKm,
		"timeFee":      q.TimeFee,
		"surcharge":    q.Surcharge,
		"discountRate": q.DiscountRate,
	}
	if q.DurationMinutes != nil {
		inputs["durationMinutes"] = *q.DurationMinutes
	}
	for name, v := range inputs {
		if !FitsStoredScale(v) {
			return fmt.Errorf("%s allows at most %d decimal places, got %s", name, StoredScale, v.String())
		}
	}
	return nil
}

// QuoteEventType names a quote state-transition event.
type QuoteEventType string

const (
	QuoteEventSent      QuoteEventType = "Quote.sent"
	QuoteEventFinalized QuoteEventType = "Quote.finalized"
)

// QuoteEvent is published to downstream subscribers after a transition is persisted.
type QuoteEvent struct {
	Type         QuoteEventType  `json:"type"`
	QuoteID      string          `json:"quoteID"`
	OrderID      string          `json:"orderID"`
	Status       QuoteStatus     `json:"status"`
	CurrencyCode string          `json:"currencyCode"`
	Total        decimal.Decimal `json:"total"`
	OccurredAt   time.Time       `json:"occurredAt"`
	ActorID      string          `json:"actorID"`
}

// RouteEstimate is the driving distance and duration between two addresses.
type RouteEstimate struct {
	DistanceKm      decimal.Decimal `json:"distanceKm"`
	DurationMinutes decimal.Decimal `json:"durationMinutes"`
}

// QuoteAmounts are the monetary fields of a quote expressed in one currency.
type QuoteAmounts struct {
	BaseFare    decimal.Decimal `json:"baseFare"`
	DistanceFee decimal.Decimal `json:"distanceFee"`
	TimeFee     decimal.Decimal `json:"timeFee"`
	Surcharge   decimal.Decimal `json:"surcharge"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TaxTotal    decimal.Decimal `json:"taxTotal"`
	Total       decimal.Decimal `json:"total"`
}

// Amounts returns the quote's monetary fields in its own currency.
func (q Quote) Amounts() QuoteAmounts {
	return QuoteAmounts{
		BaseFare:    q.BaseFare,
		DistanceFee: q.DistanceFee,
		TimeFee:     q.TimeFee,
		Surcharge:   q.Surcharge,
		Subtotal:    q.Subtotal,
		TaxTotal:    q.TaxTotal,
		Total:       q.Total,
	}
}

// QuoteInCurrency is a quote re-expressed in a display currency.
// When RateAvailable is false, Amounts is nil and no price must be shown.
type QuoteInCurrency struct {
	QuoteID            string           `json:"quoteID"`
	SourceCurrencyCode string           `json:"sourceCurrencyCode"`
	CurrencyCode       string           `json:"currencyCode"`
	RateAvailable      bool             `json:"rateAvailable"`
	Rate               *decimal.Decimal `json:"rate,omitempty"`
	IsHistorical       bool             `json:"isHistorical"`
	RateDate           string           `json:"rateDate,omitempty"`
	RateDisplay        string           `json:"rateDisplay"`
	Amounts            *QuoteAmounts    `json:"amounts,omitempty"`
}
