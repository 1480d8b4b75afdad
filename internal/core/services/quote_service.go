package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/currency"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// ExpirySweeperUserID is the actor recorded on quotes expired by the sweeper.
	ExpirySweeperUserID = "system:expiry-sweeper"

	defaultQuoteValidity = 72 * time.Hour
	overdueBatchSize     = 100
)

type quoteService struct {
	BaseService
	quoteRepo      portsrepo.QuoteRepositoryFacade
	ruleRepo       portsrepo.PricingRuleReader
	currencyRepo   portsrepo.CurrencyRepositoryFacade
	rateRepo       portsrepo.ExchangeRateReader
	txManager      portsrepo.TransactionManager
	routeEstimator portssvc.RouteEstimator
	publisher      portssvc.QuoteEventPublisher
	validity       time.Duration
}

// QuoteServiceOption is a functional option for configuring the quote service
type QuoteServiceOption func(*quoteService)

// WithRouteEstimator lets quotes be created from addresses instead of a distance.
func WithRouteEstimator(estimator portssvc.RouteEstimator) QuoteServiceOption {
	return func(s *quoteService) {
		s.routeEstimator = estimator
	}
}

// WithQuoteEventPublisher sets where Quote.sent and Quote.finalized events go.
func WithQuoteEventPublisher(publisher portssvc.QuoteEventPublisher) QuoteServiceOption {
	return func(s *quoteService) {
		s.publisher = publisher
	}
}

// WithDefaultQuoteValidity sets how long a new quote stays valid when the request does not say.
func WithDefaultQuoteValidity(validity time.Duration) QuoteServiceOption {
	return func(s *quoteService) {
		if validity > 0 {
			s.validity = validity
		}
	}
}

// NewQuoteService creates the quote lifecycle service.
func NewQuoteService(
	quoteRepo portsrepo.QuoteRepositoryFacade,
	ruleRepo portsrepo.PricingRuleReader,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	rateRepo portsrepo.ExchangeRateReader,
	txManager portsrepo.TransactionManager,
	options ...QuoteServiceOption,
) portssvc.QuoteSvcFacade {
	svc := &quoteService{
		quoteRepo:    quoteRepo,
		ruleRepo:     ruleRepo,
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		txManager:    txManager,
		validity:     defaultQuoteValidity,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.QuoteSvcFacade = (*quoteService)(nil)

func (s *quoteService) CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.Quote, error) {
	distance, duration, err := s.resolveTrip(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	validUntil := now.Add(s.validity)
	if req.ValidUntil != nil {
		if !req.ValidUntil.After(now) {
			return nil, fmt.Errorf("%w: validUntil must be in the future", apperrors.ErrValidation)
		}
		validUntil = *req.ValidUntil
	}

	quote := domain.Quote{
		QuoteID:             uuid.NewString(),
		OrderID:             req.OrderID,
		Status:              domain.QuoteDraft,
		PaymentStatus:       domain.PaymentUnpaid,
		DistanceKm:          distance,
		DurationMinutes:     duration,
		TimeFee:             req.TimeFee,
		Surcharge:           req.Surcharge,
		DiscountRate:        req.DiscountRate,
		PickupProposedFor:   req.PickupProposedFor,
		DeliveryProposedFor: req.DeliveryProposedFor,
		ValidUntil:          &validUntil,
		AuditFields:         newAuditFields(userID, now),
	}

	err = s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		currencyCode := req.CurrencyCode
		if currencyCode == "" {
			base, err := s.currencyRepo.FindBaseCurrency(ctx)
			if err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return apperrors.NewNotFoundError("no base currency configured")
				}
				return err
			}
			currencyCode = base.CurrencyCode
		}
		quote.CurrencyCode = currencyCode

		if err := s.priceQuote(ctx, &quote); err != nil {
			return err
		}

		previous, err := s.quoteRepo.CountQuotesByOrder(ctx, quote.OrderID)
		if err != nil {
			return err
		}
		quote.Version = previous + 1

		return s.quoteRepo.SaveQuote(ctx, quote)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to create quote", slog.String("order_id", req.OrderID))
		return nil, err
	}

	s.LogInfo(ctx, "Quote created",
		slog.String("quote_id", quote.QuoteID),
		slog.String("order_id", quote.OrderID),
		slog.Int("version", quote.Version),
		slog.String("total", quote.Total.String()))
	return &quote, nil
}

// resolveTrip returns the distance (and duration when known) a quote is priced on.
func (s *quoteService) resolveTrip(ctx context.Context, req dto.CreateQuoteRequest) (decimal.Decimal, *decimal.Decimal, error) {
	if req.DistanceKm != nil {
		return *req.DistanceKm, copyDecimal(req.DurationMinutes), nil
	}
	if req.Origin == "" || req.Destination == "" {
		return decimal.Zero, nil, fmt.Errorf("%w: distanceKm or both origin and destination are required", apperrors.ErrValidation)
	}
	if s.routeEstimator == nil {
		return decimal.Zero, nil, fmt.Errorf("%w: route estimation is not configured, distanceKm is required", apperrors.ErrValidation)
	}

	estimate, err := s.routeEstimator.EstimateRoute(ctx, req.Origin, req.Destination)
	if err != nil {
		s.LogError(ctx, err, "Failed to estimate route")
		return decimal.Zero, nil, fmt.Errorf("failed to estimate route: %w", err)
	}
	duration := estimate.DurationMinutes
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}
	return estimate.DistanceKm, &duration, nil
}

// priceQuote computes every monetary field of q from the active rule of its
// currency. It must run inside a transaction: the shared lock on the currency
// row keeps a concurrent activation from swapping the rule mid-quote.
func (s *quoteService) priceQuote(ctx context.Context, q *domain.Quote) error {
	if err := q.ValidatePricingInputs(); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}
	if err := s.currencyRepo.LockCurrencyForShare(ctx, q.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, q.CurrencyCode)
		}
		return err
	}

	rules, err := s.ruleRepo.FindActivePricingRules(ctx, q.CurrencyCode)
	if err != nil {
		return err
	}
	rule, err := selectActiveRule(ctx, q.CurrencyCode, rules)
	if err != nil {
		return err
	}

	breakdown, err := fare.Calculate(*rule, fare.Input{
		DistanceKm:      q.DistanceKm,
		DurationMinutes: q.DurationMinutes,
		TimeFee:         q.TimeFee,
		Surcharge:       q.Surcharge,
		DiscountRate:    q.DiscountRate,
	})
	if err != nil {
		return err
	}

	q.PricingRuleID = rule.PricingRuleID
	q.PricingRuleVersion = rule.Version
	q.BaseFare = breakdown.BaseFare
	q.DistanceFee = breakdown.DistanceFee
	q.TimeFee = breakdown.TimeFee
	q.Surcharge = breakdown.Surcharge
	q.Subtotal = breakdown.Subtotal
	q.TaxRate = breakdown.TaxRate
	q.TaxTotal = breakdown.TaxTotal
	q.Total = breakdown.Total
	return nil
}

func (s *quoteService) GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	quote, err := s.quoteRepo.FindQuoteByID(ctx, quoteID)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find quote", slog.String("quote_id", quoteID))
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error) {
	quotes, err := s.quoteRepo.ListQuotesByOrder(ctx, orderID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list quotes", slog.String("order_id", orderID))
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	if quotes == nil {
		return []domain.Quote{}, nil
	}
	return quotes, nil
}

func (s *quoteService) UpdateQuote(ctx context.Context, quoteID string, req dto.UpdateQuoteRequest, userID string) (*domain.Quote, error) {
	var updated *domain.Quote
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.FindQuoteForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}
		if !quote.Status.IsMutable() {
			return apperrors.NewInvalidStateError(fmt.Sprintf("quote is %s; only draft quotes can be edited", quote.Status))
		}

		if req.DistanceKm != nil {
			quote.DistanceKm = *req.DistanceKm
		}
		if req.DurationMinutes != nil {
			quote.DurationMinutes = copyDecimal(req.DurationMinutes)
		}
		if req.TimeFee != nil {
			quote.TimeFee = *req.TimeFee
		}
		if req.Surcharge != nil {
			quote.Surcharge = *req.Surcharge
		}
		if req.DiscountRate != nil {
			quote.DiscountRate = *req.DiscountRate
		}
		if req.PickupProposedFor != nil {
			quote.PickupProposedFor = req.PickupProposedFor
		}
		if req.DeliveryProposedFor != nil {
			quote.DeliveryProposedFor = req.DeliveryProposedFor
		}
		if req.ValidUntil != nil {
			if !req.ValidUntil.After(time.Now()) {
				return fmt.Errorf("%w: validUntil must be in the future", apperrors.ErrValidation)
			}
			quote.ValidUntil = req.ValidUntil
		}

		if err := s.priceQuote(ctx, quote); err != nil {
			return err
		}
		quote.Touch(userID, time.Now())

		if err := s.quoteRepo.UpdateQuote(ctx, *quote); err != nil {
			return err
		}
		updated = quote
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to update quote", slog.String("quote_id", quoteID))
		return nil, err
	}

	s.LogInfo(ctx, "Quote updated", slog.String("quote_id", quoteID), slog.String("total", updated.Total.String()))
	return updated, nil
}

func (s *quoteService) DeleteQuote(ctx context.Context, quoteID string, userID string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.FindQuoteForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}
		if !quote.Status.IsMutable() {
			return apperrors.NewInvalidStateError(fmt.Sprintf("quote is %s; only draft quotes can be deleted", quote.Status))
		}
		return s.quoteRepo.DeleteQuote(ctx, quoteID)
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to delete quote", slog.String("quote_id", quoteID))
		return err
	}

	s.LogInfo(ctx, "Quote deleted", slog.String("quote_id", quoteID), slog.String("user_id", userID))
	return nil
}

// SendQuote offers a draft to the customer. A quote whose validity already ended cannot be sent.
func (s *quoteService) SendQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return s.transition(ctx, quoteID, domain.QuoteSent, userID, func(q *domain.Quote, now time.Time) error {
		if q.ValidUntil != nil && !q.ValidUntil.After(now) {
			return apperrors.NewInvalidStateError("quote validity has already ended; update validUntil before sending")
		}
		return nil
	})
}

// AcceptQuote records the customer's acceptance of a sent quote that is still valid.
func (s *quoteService) AcceptQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return s.transition(ctx, quoteID, domain.QuoteAccepted, userID, func(q *domain.Quote, now time.Time) error {
		if q.ValidUntil != nil && !q.ValidUntil.After(now) {
			return apperrors.NewInvalidStateError("quote validity has ended and it can no longer be accepted")
		}
		return nil
	})
}

func (s *quoteService) RejectQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return s.transition(ctx, quoteID, domain.QuoteRejected, userID, nil)
}

func (s *quoteService) ExpireQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return s.transition(ctx, quoteID, domain.QuoteExpired, userID, nil)
}

// FinalizeQuote closes an accepted quote as paid. From here on its display
// conversions are pinned to the rate of its creation day.
func (s *quoteService) FinalizeQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return s.transition(ctx, quoteID, domain.QuoteFinalized, userID, func(q *domain.Quote, now time.Time) error {
		q.IsFinal = true
		q.FinalizedAt = &now
		q.PaymentStatus = domain.PaymentPaid
		return nil
	})
}

// transition moves a quote to next under a row lock. apply may veto the move or
// set extra fields. Events are published only after the change is committed.
func (s *quoteService) transition(ctx context.Context, quoteID string, next domain.QuoteStatus, userID string, apply func(q *domain.Quote, now time.Time) error) (*domain.Quote, error) {
	var updated *domain.Quote
	var previous domain.QuoteStatus

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		quote, err := s.quoteRepo.FindQuoteForUpdate(ctx, quoteID)
		if err != nil {
			return err
		}
		if !quote.Status.CanTransitionTo(next) {
			return apperrors.NewInvalidStateError(fmt.Sprintf("quote cannot move from %s to %s", quote.Status, next))
		}

		now := time.Now()
		if apply != nil {
			if err := apply(quote, now); err != nil {
				return err
			}
		}
		previous = quote.Status
		quote.Status = next
		quote.Touch(userID, now)

		if err := s.quoteRepo.UpdateQuote(ctx, *quote); err != nil {
			return err
		}
		updated = quote
		return nil
	})
	if err != nil {
		s.logFailure(ctx, err, "Failed to change quote status",
			slog.String("quote_id", quoteID),
			slog.String("target_status", string(next)))
		return nil, err
	}

	s.LogInfo(ctx, "Quote status changed",
		slog.String("quote_id", quoteID),
		slog.String("from", string(previous)),
		slog.String("to", string(next)))

	switch next {
	case domain.QuoteSent:
		s.publish(ctx, domain.QuoteEventSent, updated, userID)
	case domain.QuoteFinalized:
		s.publish(ctx, domain.QuoteEventFinalized, updated, userID)
	}
	return updated, nil
}

// publish delivers a lifecycle event. Failures are logged; the transition already committed stands.
func (s *quoteService) publish(ctx context.Context, eventType domain.QuoteEventType, q *domain.Quote, actorID string) {
	event := domain.QuoteEvent{
		Type:         eventType,
		QuoteID:      q.QuoteID,
		OrderID:      q.OrderID,
		Status:       q.Status,
		CurrencyCode: q.CurrencyCode,
		Total:        q.Total,
		OccurredAt:   q.LastUpdatedAt,
		ActorID:      actorID,
	}
	if s.publisher == nil {
		s.LogInfo(ctx, "Quote event (no publisher configured)", slog.String("event", string(eventType)), slog.String("quote_id", q.QuoteID))
		return
	}
	if err := s.publisher.PublishQuoteEvent(ctx, event); err != nil {
		s.LogError(ctx, err, "Failed to publish quote event",
			slog.String("event", string(eventType)),
			slog.String("quote_id", q.QuoteID))
	}
}

// ExpireOverdueQuotes expires sent quotes whose validity ended before now.
func (s *quoteService) ExpireOverdueQuotes(ctx context.Context, now time.Time) (int, error) {
	expired := 0
	for {
		overdue, err := s.quoteRepo.FindOverdueQuotes(ctx, now, overdueBatchSize)
		if err != nil {
			s.LogError(ctx, err, "Failed to find overdue quotes")
			return expired, fmt.Errorf("failed to find overdue quotes: %w", err)
		}

		progressed := 0
		for _, q := range overdue {
			if _, err := s.ExpireQuote(ctx, q.QuoteID, ExpirySweeperUserID); err != nil {
				// Accepted or rejected in the meantime
				if errors.Is(err, apperrors.ErrInvalidState) || errors.Is(err, apperrors.ErrNotFound) {
					continue
				}
				return expired, err
			}
			progressed++
		}
		expired += progressed

		if len(overdue) < overdueBatchSize || progressed == 0 {
			break
		}
	}

	if expired > 0 {
		s.LogInfo(ctx, "Expired overdue quotes", slog.Int("count", expired))
	}
	return expired, nil
}

// GetQuoteInCurrency re-expresses the quote's amounts in currencyCode.
// Quotes whose order is paid use the rates of the quote's creation day when
// stored; everything else uses live rates. Quotes in a non-base currency are
// converted through the base currency. When no usable rate exists the result
// has RateAvailable false and no amounts.
func (s *quoteService) GetQuoteInCurrency(ctx context.Context, quoteID string, currencyCode string) (*domain.QuoteInCurrency, error) {
	quote, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	target, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		s.logFailure(ctx, err, "Failed to find display currency", slog.String("currency_code", currencyCode))
		return nil, err
	}

	result := &domain.QuoteInCurrency{
		QuoteID:            quote.QuoteID,
		SourceCurrencyCode: quote.CurrencyCode,
		CurrencyCode:       target.CurrencyCode,
		RateDisplay:        "-",
	}

	if target.CurrencyCode == quote.CurrencyCode {
		one := decimal.NewFromInt(1)
		amounts := convertAmounts(quote.Amounts(), func(v decimal.Decimal) decimal.Decimal {
			return currency.RoundForDisplay(v, *target)
		})
		result.RateAvailable = true
		result.Rate = &one
		result.RateDisplay = currency.FormatRateDisplay(one, target.CurrencyCode, quote.CurrencyCode)
		result.Amounts = &amounts
		return result, nil
	}

	pinned := currency.ShouldUseHistoricalRate(quote)
	createdAt := quote.CreatedAt

	source, err := s.currencyRepo.FindCurrencyByCode(ctx, quote.CurrencyCode)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	if source == nil {
		s.LogWarn(ctx, "Quote currency no longer exists", slog.String("quote_id", quoteID), slog.String("currency_code", quote.CurrencyCode))
		return result, nil
	}

	sourceInput, err := s.conversionInput(ctx, source, createdAt, pinned)
	if err != nil {
		return nil, err
	}
	sourceRate, ok := currency.GetConversionRate(sourceInput.Rates, sourceInput.LiveRate, sourceInput.CreatedAt, sourceInput.IsFinalized)
	if !ok {
		return result, nil
	}

	targetInput, err := s.conversionInput(ctx, target, createdAt, pinned)
	if err != nil {
		return nil, err
	}

	var conversionErr error
	var rateUsed currency.ConversionRate
	amounts := convertAmounts(quote.Amounts(), func(v decimal.Decimal) decimal.Decimal {
		in := targetInput
		in.BaseAmount = v
		if !source.IsBase {
			in.BaseAmount = v.DivRound(sourceRate.Rate, 16)
		}
		converted, err := currency.ConvertToCustomerCurrency(in, *target)
		if err != nil {
			conversionErr = err
			return decimal.Zero
		}
		rateUsed = converted.ConversionRate
		return converted.Amount
	})
	if conversionErr != nil {
		if errors.Is(conversionErr, apperrors.ErrRateUnavailable) {
			return result, nil
		}
		return nil, conversionErr
	}

	effective := rateUsed.Rate
	if !source.IsBase {
		effective = rateUsed.Rate.DivRound(sourceRate.Rate, 16)
	}
	result.RateAvailable = true
	result.Rate = &effective
	var legs []currency.ConversionRate
	if !source.IsBase {
		legs = append(legs, sourceRate)
	}
	if !target.IsBase {
		legs = append(legs, rateUsed)
	}
	result.IsHistorical, result.RateDate = rateProvenance(legs)
	result.RateDisplay = currency.FormatRateDisplay(effective, target.CurrencyCode, quote.CurrencyCode)
	result.Amounts = &amounts
	return result, nil
}

// rateProvenance reports a conversion as historical only when every non-base
// leg used a stored daily rate; the base leg is always 1 and carries no date.
func rateProvenance(legs []currency.ConversionRate) (bool, string) {
	if len(legs) == 0 {
		return false, ""
	}
	for _, leg := range legs {
		if !leg.IsHistorical {
			return false, ""
		}
	}
	return true, legs[0].RateDate
}

// conversionInput gathers the rate sources of one currency for a record created at createdAt.
func (s *quoteService) conversionInput(ctx context.Context, c *domain.Currency, createdAt time.Time, pinned bool) (currency.ConversionInput, error) {
	in := currency.ConversionInput{
		LiveRate:    c.LiveRate(),
		CreatedAt:   &createdAt,
		IsFinalized: pinned,
	}
	if c.IsBase || !pinned {
		return in, nil
	}

	day := domain.TruncateToDay(createdAt)
	rates, err := s.rateRepo.FindRatesBetween(ctx, c.CurrencyCode, day, day)
	if err != nil {
		s.LogError(ctx, err, "Failed to load historical rate", slog.String("currency_code", c.CurrencyCode))
		return in, fmt.Errorf("failed to load historical rate: %w", err)
	}
	in.Rates = make(domain.RatesByDate, len(rates))
	for _, r := range rates {
		in.Rates[currency.DateKey(r.RateDate)] = r.Rate
	}
	return in, nil
}

func convertAmounts(a domain.QuoteAmounts, conv func(decimal.Decimal) decimal.Decimal) domain.QuoteAmounts {
	return domain.QuoteAmounts{
		BaseFare:    conv(a.BaseFare),
		DistanceFee: conv(a.DistanceFee),
		TimeFee:     conv(a.TimeFee),
		Surcharge:   conv(a.Surcharge),
		Subtotal:    conv(a.Subtotal),
		TaxTotal:    conv(a.TaxTotal),
		Total:       conv(a.Total),
	}
}

// logFailure logs unexpected errors; expected client-facing outcomes are left to the handler.
func (s *quoteService) logFailure(ctx context.Context, err error, msg string, keyvals ...any) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidState),
		errors.Is(err, apperrors.ErrNoMatchingTier):
		return
	}
	s.LogError(ctx, err, msg, keyvals...)
}
