package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/currency"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const (
	manualRateSource     = "manual"
	defaultRatePageSize  = 30
	maxRatePageSize      = 366
	maxRatesMapRangeDays = 3660
)

type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	txManager    portsrepo.TransactionManager
	feed         portssvc.RateFeed
}

// ExchangeRateServiceOption is a functional option for configuring the exchange rate service
type ExchangeRateServiceOption func(*exchangeRateService)

// WithRateFeed enables SyncRates against an external provider.
func WithRateFeed(feed portssvc.RateFeed) ExchangeRateServiceOption {
	return func(s *exchangeRateService) {
		s.feed = feed
	}
}

// NewExchangeRateService creates the exchange rate history service.
func NewExchangeRateService(
	rateRepo portsrepo.ExchangeRateRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	txManager portsrepo.TransactionManager,
	options ...ExchangeRateServiceOption,
) portssvc.ExchangeRateSvcFacade {
	svc := &exchangeRateService{
		rateRepo:     rateRepo,
		currencyRepo: currencyRepo,
		txManager:    txManager,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

func (s *exchangeRateService) UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if req.RateDate.IsZero() {
		return nil, fmt.Errorf("%w: rate date is required", apperrors.ErrValidation)
	}
	source := req.Source
	if source == "" {
		source = manualRateSource
	}

	rate, err := s.storeRate(ctx, req.CurrencyCode, req.Rate, domain.TruncateToDay(req.RateDate), source, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to store exchange rate", slog.String("currency_code", req.CurrencyCode))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Exchange rate stored",
		slog.String("currency_code", rate.CurrencyCode),
		slog.String("rate_date", currency.DateKey(rate.RateDate)),
		slog.String("rate", rate.Rate.String()))
	return rate, nil
}

// storeRate upserts the (currency, day) rate and, when the day is not older
// than the currency's current rate date, refreshes the live rate in the same transaction.
func (s *exchangeRateService) storeRate(ctx context.Context, currencyCode string, value decimal.Decimal, day time.Time, source, userID string) (*domain.ExchangeRate, error) {
	now := time.Now()
	rate := domain.ExchangeRate{
		CurrencyCode: currencyCode,
		RateDate:     day,
		Rate:         value,
		Source:       source,
		AuditFields:  newAuditFields(userID, now),
	}

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		curr, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, currencyCode)
			}
			return err
		}
		if curr.IsBase {
			return fmt.Errorf("%w: '%s' is the base currency, its rate is always 1", apperrors.ErrValidation, currencyCode)
		}

		if err := s.rateRepo.UpsertExchangeRate(ctx, rate); err != nil {
			return err
		}

		if curr.RateDate == nil || !day.Before(domain.TruncateToDay(*curr.RateDate)) {
			return s.currencyRepo.UpdateLiveRate(ctx, currencyCode, value, day, source, userID, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (s *exchangeRateService) GetRatesMap(ctx context.Context, currencyCode string, from, to time.Time) (domain.RatesByDate, error) {
	from, to = domain.TruncateToDay(from), domain.TruncateToDay(to)
	if to.Before(from) {
		return nil, fmt.Errorf("%w: 'from' must not be after 'to'", apperrors.ErrValidation)
	}
	if to.Sub(from) > maxRatesMapRangeDays*24*time.Hour {
		return nil, fmt.Errorf("%w: date range is too large", apperrors.ErrValidation)
	}

	rates, err := s.rateRepo.FindRatesBetween(ctx, currencyCode, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load rates", slog.String("currency_code", currencyCode))
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}

	ratesMap := make(domain.RatesByDate, len(rates))
	for _, r := range rates {
		ratesMap[currency.DateKey(r.RateDate)] = r.Rate
	}
	return ratesMap, nil
}

func (s *exchangeRateService) ListExchangeRates(ctx context.Context, currencyCode string, limit int, nextToken *string) ([]domain.ExchangeRate, *string, error) {
	limit = pagination.ClampLimit(limit, defaultRatePageSize, maxRatePageSize)

	var before *time.Time
	if nextToken != nil && *nextToken != "" {
		day, err := pagination.DecodeDayToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		before = &day
	}

	// Fetch one extra row to know whether another page exists
	rates, err := s.rateRepo.ListExchangeRates(ctx, currencyCode, limit+1, before)
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates", slog.String("currency_code", currencyCode))
		return nil, nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}

	var next *string
	if len(rates) > limit {
		rates = rates[:limit]
		token := pagination.EncodeDayToken(rates[limit-1].RateDate)
		next = &token
	}
	if rates == nil {
		rates = []domain.ExchangeRate{}
	}
	return rates, next, nil
}

// SyncRates pulls the latest rates for every enabled non-base currency.
// A currency the feed does not quote is reported as missing and keeps its
// previous rate; one failing currency does not stop the others.
func (s *exchangeRateService) SyncRates(ctx context.Context, userID string) ([]domain.RateSyncResult, error) {
	if s.feed == nil {
		return nil, apperrors.NewAppError(http.StatusServiceUnavailable, "exchange rate feed is not configured", nil)
	}

	base, err := s.currencyRepo.FindBaseCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("no base currency configured")
		}
		return nil, err
	}

	currencies, err := s.currencyRepo.ListCurrencies(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list currencies for sync: %w", err)
	}
	var symbols []string
	for _, c := range currencies {
		if !c.IsBase {
			symbols = append(symbols, c.CurrencyCode)
		}
	}
	sort.Strings(symbols)
	if len(symbols) == 0 {
		s.LogInfo(ctx, "No quote currencies to sync")
		return []domain.RateSyncResult{}, nil
	}

	feedRates, err := s.feed.FetchRates(ctx, base.CurrencyCode, symbols)
	if err != nil {
		s.LogError(ctx, err, "Failed to fetch rates from feed", slog.String("base", base.CurrencyCode))
		return nil, fmt.Errorf("failed to fetch rates from feed: %w", err)
	}
	if feedRates.Base != base.CurrencyCode {
		return nil, fmt.Errorf("feed quoted rates against '%s' but the base currency is '%s'", feedRates.Base, base.CurrencyCode)
	}

	asOf := feedRates.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	day := domain.TruncateToDay(asOf)
	dayKey := currency.DateKey(day)
	source := feedRates.Source
	if source == "" {
		source = "feed"
	}

	results := make([]domain.RateSyncResult, 0, len(symbols))
	updated := 0
	for _, code := range symbols {
		result := domain.RateSyncResult{CurrencyCode: code, RateDate: dayKey}
		value, ok := feedRates.Rates[code]
		if !ok || !value.IsPositive() {
			result.Status = domain.RateSyncMissing
			s.LogWarn(ctx, "Feed has no usable rate for currency", slog.String("currency_code", code))
			results = append(results, result)
			continue
		}
		if _, err := s.storeRate(ctx, code, value, day, source, userID); err != nil {
			result.Status = domain.RateSyncFailed
			result.Error = err.Error()
			s.LogError(ctx, err, "Failed to store synced rate", slog.String("currency_code", code))
			results = append(results, result)
			continue
		}
		v := value
		result.Rate = &v
		result.Status = domain.RateSyncUpdated
		results = append(results, result)
		updated++
	}

	s.LogInfo(ctx, "Exchange rate sync finished",
		slog.String("rate_date", dayKey),
		slog.Int("currencies", len(symbols)),
		slog.Int("updated", updated))
	return results, nil
}
