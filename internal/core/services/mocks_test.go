package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// --- Fake TransactionManager ---

// fakeTxManager runs fn directly and records how many transactions were opened.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

var _ portsrepo.TransactionManager = (*fakeTxManager)(nil)

// --- Mock CurrencyRepository ---
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) LockCurrencyForUpdate(ctx context.Context, currencyCode string) error {
	args := m.Called(ctx, currencyCode)
	return args.Error(0)
}

func (m *MockCurrencyRepository) LockCurrencyForShare(ctx context.Context, currencyCode string) error {
	args := m.Called(ctx, currencyCode)
	return args.Error(0)
}

func (m *MockCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) SetBaseCurrency(ctx context.Context, currencyCode string, userID string, now time.Time) error {
	args := m.Called(ctx, currencyCode, userID, now)
	return args.Error(0)
}

func (m *MockCurrencyRepository) UpdateLiveRate(ctx context.Context, currencyCode string, rate decimal.Decimal, rateDate time.Time, source string, userID string, now time.Time) error {
	args := m.Called(ctx, currencyCode, rate, rateDate, source, userID, now)
	return args.Error(0)
}

var _ portsrepo.CurrencyRepositoryFacade = (*MockCurrencyRepository)(nil)

// --- Mock ExchangeRateRepository ---
type MockExchangeRateRepository struct {
	mock.Mock
}

func (m *MockExchangeRateRepository) FindRatesBetween(ctx context.Context, currencyCode string, from, to time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, currencyCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) ListExchangeRates(ctx context.Context, currencyCode string, limit int, before *time.Time) ([]domain.ExchangeRate, error) {
	args := m.Called(ctx, currencyCode, limit, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExchangeRate), args.Error(1)
}

func (m *MockExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*MockExchangeRateRepository)(nil)

// --- Mock PricingRuleRepository ---
type MockPricingRuleRepository struct {
	mock.Mock
}

func (m *MockPricingRuleRepository) FindPricingRuleByID(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error) {
	args := m.Called(ctx, pricingRuleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRule), args.Error(1)
}

func (m *MockPricingRuleRepository) ListPricingRules(ctx context.Context, filter portsrepo.PricingRuleFilter) ([]domain.PricingRule, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricingRule), args.Error(1)
}

func (m *MockPricingRuleRepository) FindActivePricingRules(ctx context.Context, currencyCode string) ([]domain.PricingRule, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricingRule), args.Error(1)
}

func (m *MockPricingRuleRepository) SavePricingRule(ctx context.Context, rule domain.PricingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockPricingRuleRepository) UpdatePricingRule(ctx context.Context, rule domain.PricingRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockPricingRuleRepository) ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string, activatedAt time.Time) error {
	args := m.Called(ctx, pricingRuleID, userID, activatedAt)
	return args.Error(0)
}

func (m *MockPricingRuleRepository) ArchiveActivePricingRules(ctx context.Context, currencyCode string, exceptID string, userID string, now time.Time) (int64, error) {
	args := m.Called(ctx, currencyCode, exceptID, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPricingRuleRepository) DeletePricingRule(ctx context.Context, pricingRuleID string) error {
	args := m.Called(ctx, pricingRuleID)
	return args.Error(0)
}

var _ portsrepo.PricingRuleRepositoryFacade = (*MockPricingRuleRepository)(nil)

// --- Mock QuoteRepository ---
type MockQuoteRepository struct {
	mock.Mock
}

func (m *MockQuoteRepository) FindQuoteByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) FindQuoteForUpdate(ctx context.Context, quoteID string) (*domain.Quote, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) CountQuotesByOrder(ctx context.Context, orderID string) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockQuoteRepository) FindOverdueQuotes(ctx context.Context, now time.Time, limit int) ([]domain.Quote, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}

func (m *MockQuoteRepository) SaveQuote(ctx context.Context, quote domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) UpdateQuote(ctx context.Context, quote domain.Quote) error {
	args := m.Called(ctx, quote)
	return args.Error(0)
}

func (m *MockQuoteRepository) DeleteQuote(ctx context.Context, quoteID string) error {
	args := m.Called(ctx, quoteID)
	return args.Error(0)
}

var _ portsrepo.QuoteRepositoryFacade = (*MockQuoteRepository)(nil)

// --- Mock gateways ---
type MockRateFeed struct {
	mock.Mock
}

func (m *MockRateFeed) FetchRates(ctx context.Context, base string, symbols []string) (*domain.FeedRates, error) {
	args := m.Called(ctx, base, symbols)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FeedRates), args.Error(1)
}

type MockRouteEstimator struct {
	mock.Mock
}

func (m *MockRouteEstimator) EstimateRoute(ctx context.Context, origin, destination string) (*domain.RouteEstimate, error) {
	args := m.Called(ctx, origin, destination)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RouteEstimate), args.Error(1)
}

type MockQuoteEventPublisher struct {
	mock.Mock
}

func (m *MockQuoteEventPublisher) PublishQuoteEvent(ctx context.Context, event domain.QuoteEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	_ portssvc.RateFeed            = (*MockRateFeed)(nil)
	_ portssvc.RouteEstimator      = (*MockRouteEstimator)(nil)
	_ portssvc.QuoteEventPublisher = (*MockQuoteEventPublisher)(nil)
)
