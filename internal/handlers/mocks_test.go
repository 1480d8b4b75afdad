package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
	"github.com/stretchr/testify/mock"
)

// --- Mock CurrencyService ---
type MockCurrencyService struct {
	mock.Mock
}

func (m *MockCurrencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) GetBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error) {
	args := m.Called(ctx, enabledOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) UpdateCurrency(ctx context.Context, currencyCode string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}
func (m *MockCurrencyService) SetBaseCurrency(ctx context.Context, currencyCode string, userID string) (*domain.Currency, error) {
	args := m.Called(ctx, currencyCode, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Currency), args.Error(1)
}

var _ portssvc.CurrencySvcFacade = (*MockCurrencyService)(nil)

// --- Mock ExchangeRateService ---
type MockExchangeRateService struct {
	mock.Mock
}

func (m *MockExchangeRateService) GetRatesMap(ctx context.Context, currencyCode string, from, to time.Time) (domain.RatesByDate, error) {
	args := m.Called(ctx, currencyCode, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.RatesByDate), args.Error(1)
}
func (m *MockExchangeRateService) ListExchangeRates(ctx context.Context, currencyCode string, limit int, nextToken *string) ([]domain.ExchangeRate, *string, error) {
	args := m.Called(ctx, currencyCode, limit, nextToken)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.ExchangeRate), next, args.Error(2)
}
func (m *MockExchangeRateService) UpsertExchangeRate(ctx context.Context, req dto.UpsertExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExchangeRate), args.Error(1)
}
func (m *MockExchangeRateService) SyncRates(ctx context.Context, userID string) ([]domain.RateSyncResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RateSyncResult), args.Error(1)
}

var _ portssvc.ExchangeRateSvcFacade = (*MockExchangeRateService)(nil)

// --- Mock PricingRuleService ---
type MockPricingRuleService struct {
	mock.Mock
}

func (m *MockPricingRuleService) rule(args mock.Arguments) (*domain.PricingRule, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PricingRule), args.Error(1)
}

func (m *MockPricingRuleService) GetPricingRule(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, pricingRuleID))
}
func (m *MockPricingRuleService) ListPricingRules(ctx context.Context, params dto.ListPricingRulesParams) ([]domain.PricingRule, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PricingRule), args.Error(1)
}
func (m *MockPricingRuleService) GetActivePricingRule(ctx context.Context, currencyCode string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, currencyCode))
}
func (m *MockPricingRuleService) PreviewFare(ctx context.Context, req dto.PreviewFareRequest) (*fare.Breakdown, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fare.Breakdown), args.Error(1)
}
func (m *MockPricingRuleService) CreatePricingRule(ctx context.Context, req dto.CreatePricingRuleRequest, userID string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, req, userID))
}
func (m *MockPricingRuleService) UpdatePricingRule(ctx context.Context, pricingRuleID string, req dto.UpdatePricingRuleRequest, userID string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, pricingRuleID, req, userID))
}
func (m *MockPricingRuleService) ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, pricingRuleID, userID))
}
func (m *MockPricingRuleService) ClonePricingRule(ctx context.Context, pricingRuleID string, newName *string, userID string) (*domain.PricingRule, error) {
	return m.rule(m.Called(ctx, pricingRuleID, newName, userID))
}
func (m *MockPricingRuleService) DeletePricingRule(ctx context.Context, pricingRuleID string, userID string) error {
	return m.Called(ctx, pricingRuleID, userID).Error(0)
}

var _ portssvc.PricingRuleSvcFacade = (*MockPricingRuleService)(nil)

// --- Mock QuoteService ---
type MockQuoteService struct {
	mock.Mock
}

func (m *MockQuoteService) quote(args mock.Arguments) (*domain.Quote, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quote), args.Error(1)
}

func (m *MockQuoteService) GetQuote(ctx context.Context, quoteID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID))
}
func (m *MockQuoteService) ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Quote), args.Error(1)
}
func (m *MockQuoteService) GetQuoteInCurrency(ctx context.Context, quoteID string, currencyCode string) (*domain.QuoteInCurrency, error) {
	args := m.Called(ctx, quoteID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuoteInCurrency), args.Error(1)
}
func (m *MockQuoteService) CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, req, userID))
}
func (m *MockQuoteService) UpdateQuote(ctx context.Context, quoteID string, req dto.UpdateQuoteRequest, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, req, userID))
}
func (m *MockQuoteService) DeleteQuote(ctx context.Context, quoteID string, userID string) error {
	return m.Called(ctx, quoteID, userID).Error(0)
}
func (m *MockQuoteService) SendQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) AcceptQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) RejectQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) ExpireQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) FinalizeQuote(ctx context.Context, quoteID string, userID string) (*domain.Quote, error) {
	return m.quote(m.Called(ctx, quoteID, userID))
}
func (m *MockQuoteService) ExpireOverdueQuotes(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

var _ portssvc.QuoteSvcFacade = (*MockQuoteService)(nil)
