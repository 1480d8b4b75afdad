package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/SscSPs/delivery_pricing_app/internal/handlers"
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/SscSPs/delivery_pricing_app/internal/platform/config"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

const (
	testJWTSecret = "test-secret-key-that-is-long-enough"
	testIssuer    = "delivery-pricing-test"
	testSyncKey   = "scheduler-sync-key"
)

// --- Test Suite ---
type HandlersTestSuite struct {
	suite.Suite
	router       *gin.Engine
	currencies   *MockCurrencyService
	rates        *MockExchangeRateService
	pricingRules *MockPricingRuleService
	quotes       *MockQuoteService
	syncKeyHash  string
	userID       string
}

func (suite *HandlersTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	hash, err := bcrypt.GenerateFromPassword([]byte(testSyncKey), bcrypt.MinCost)
	suite.Require().NoError(err)
	suite.syncKeyHash = string(hash)
}

func (suite *HandlersTestSuite) SetupTest() {
	suite.currencies = new(MockCurrencyService)
	suite.rates = new(MockExchangeRateService)
	suite.pricingRules = new(MockPricingRuleService)
	suite.quotes = new(MockQuoteService)
	suite.userID = uuid.NewString()

	cfg := &config.Config{
		IsProduction:   true,
		JWTSecret:      testJWTSecret,
		JWTIssuer:      testIssuer,
		SyncAPIKeyHash: suite.syncKeyHash,
		SyncRateLimit:  "100-M",
	}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Currency:     suite.currencies,
		ExchangeRate: suite.rates,
		PricingRule:  suite.pricingRules,
		Quote:        suite.quotes,
	})
}

// generateTestToken creates a dashboard JWT for testing.
func (suite *HandlersTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// do serves one request. A nil body sends no body; headers are applied after the JWT.
func (suite *HandlersTestSuite) do(method, path string, body any, authed bool, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(suite.userID))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) decode(w *httptest.ResponseRecorder, into any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}

func (suite *HandlersTestSuite) assertMocks() {
	suite.currencies.AssertExpectations(suite.T())
	suite.rates.AssertExpectations(suite.T())
	suite.pricingRules.AssertExpectations(suite.T())
	suite.quotes.AssertExpectations(suite.T())
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func sampleQuote(status domain.QuoteStatus) *domain.Quote {
	return &domain.Quote{
		QuoteID:            "quote_1",
		OrderID:            "order_1",
		Version:            1,
		Status:             status,
		PaymentStatus:      domain.PaymentUnpaid,
		CurrencyCode:       "CRC",
		PricingRuleID:      "rule_1",
		PricingRuleVersion: 1,
		BaseFare:           d("1000"),
		DistanceKm:         d("7.25"),
		DistanceFee:        d("2375"),
		Subtotal:           d("3375"),
		TaxRate:            d("0.13"),
		TaxTotal:           d("438.75"),
		Total:              d("3813.75"),
	}
}

// --- Test Cases ---

func (suite *HandlersTestSuite) TestHealth_NoAuth() {
	w := suite.do(http.MethodGet, "/health", nil, false)
	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("OK", w.Body.String())
}

func (suite *HandlersTestSuite) TestCreateCurrency_Success() {
	suite.currencies.On("CreateCurrency", mock.Anything,
		mock.MatchedBy(func(req dto.CreateCurrencyRequest) bool {
			return req.CurrencyCode == "USD" && req.Precision != nil && *req.Precision == 2
		}),
		suite.userID,
	).Return(&domain.Currency{
		CurrencyCode: "USD",
		Symbol:       "$",
		Name:         "US Dollar",
		Precision:    2,
		IsEnabled:    true,
		CurrentRate:  dp("0.00204"),
	}, nil).Once()
	suite.currencies.On("GetBaseCurrency", mock.Anything).Return(&domain.Currency{CurrencyCode: "CRC", IsBase: true}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies", map[string]any{
		"currencyCode": "USD",
		"symbol":       "$",
		"name":         "US Dollar",
		"precision":    2,
	}, true)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.CurrencyResponse
	suite.decode(w, &res)
	suite.Equal("USD", res.CurrencyCode)
	suite.Equal("1 USD = 490.20 CRC", res.RateDisplay)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestCreateCurrency_Duplicate() {
	suite.currencies.On("CreateCurrency", mock.Anything, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("%w: currency 'USD' already exists", apperrors.ErrDuplicate)).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies", map[string]any{
		"currencyCode": "USD", "symbol": "$", "name": "US Dollar",
	}, true)

	suite.Equal(http.StatusConflict, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestCreateCurrency_RejectsLowercaseCode() {
	w := suite.do(http.MethodPost, "/api/v1/currencies", map[string]any{
		"currencyCode": "usd", "symbol": "$", "name": "US Dollar",
	}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.currencies.AssertNotCalled(suite.T(), "CreateCurrency", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestCreateCurrency_RequiresToken() {
	w := suite.do(http.MethodPost, "/api/v1/currencies", map[string]any{
		"currencyCode": "USD", "symbol": "$", "name": "US Dollar",
	}, false)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.currencies.AssertNotCalled(suite.T(), "CreateCurrency", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestSetBaseCurrency_NotFound() {
	suite.currencies.On("SetBaseCurrency", mock.Anything, "EUR", suite.userID).
		Return(nil, apperrors.NewNotFoundError("currency 'EUR' not found")).Once()

	w := suite.do(http.MethodPost, "/api/v1/currencies/eur/base", nil, true)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestListExchangeRates_Pagination() {
	next := "next-page"
	suite.rates.On("ListExchangeRates", mock.Anything, "USD", 2, (*string)(nil)).
		Return([]domain.ExchangeRate{
			{CurrencyCode: "USD", RateDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), Rate: d("0.0021")},
			{CurrencyCode: "USD", RateDate: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), Rate: d("0.00204")},
		}, &next, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/exchange-rates/usd?limit=2", nil, true)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.ListExchangeRatesResponse
	suite.decode(w, &res)
	suite.Len(res.Rates, 2)
	suite.Equal("2024-03-15", res.Rates[0].RateDate)
	suite.Require().NotNil(res.NextToken)
	suite.Equal(next, *res.NextToken)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestListExchangeRates_BadLimit() {
	w := suite.do(http.MethodGet, "/api/v1/exchange-rates/USD?limit=-3", nil, true)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetRatesMap() {
	from := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	suite.rates.On("GetRatesMap", mock.Anything, "USD", from, to).
		Return(domain.RatesByDate{"2024-03-14": d("0.00204")}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/exchange-rates/USD/daily?from=2024-03-14&to=2024-03-15", nil, true)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.RatesMapResponse
	suite.decode(w, &res)
	suite.True(d("0.00204").Equal(res.Rates["2024-03-14"]))
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestSyncRates_WithAPIKey() {
	results := []domain.RateSyncResult{{CurrencyCode: "USD", Status: domain.RateSyncUpdated, Rate: dp("0.00204"), RateDate: "2024-03-14"}}
	suite.rates.On("SyncRates", mock.Anything, middleware.SyncSystemUserID).Return(results, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/sync", nil, false, "x-api-key", testSyncKey)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.SyncRatesResponse
	suite.decode(w, &res)
	suite.Require().Len(res.Results, 1)
	suite.Equal(domain.RateSyncUpdated, res.Results[0].Status)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestSyncRates_WithJWT() {
	suite.rates.On("SyncRates", mock.Anything, suite.userID).Return([]domain.RateSyncResult{}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/sync", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestSyncRates_WrongKeyWithoutToken() {
	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/sync", nil, false, "x-api-key", "not-the-key")

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.rates.AssertNotCalled(suite.T(), "SyncRates", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestSyncRates_FeedNotConfigured() {
	suite.rates.On("SyncRates", mock.Anything, suite.userID).
		Return(nil, apperrors.NewAppError(http.StatusServiceUnavailable, "exchange rate feed is not configured", nil)).Once()

	w := suite.do(http.MethodPost, "/api/v1/exchange-rates/sync", nil, true)

	suite.Equal(http.StatusServiceUnavailable, w.Code)
	var res map[string]string
	suite.decode(w, &res)
	suite.Equal("exchange rate feed is not configured", res["error"])
}

func (suite *HandlersTestSuite) TestPreviewFare() {
	suite.pricingRules.On("PreviewFare", mock.Anything,
		mock.MatchedBy(func(req dto.PreviewFareRequest) bool {
			return req.CurrencyCode == "CRC" && req.DistanceKm.Equal(d("7.25"))
		}),
	).Return(&fare.Breakdown{CurrencyCode: "CRC", Total: d("3813.75")}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/pricing-rules/preview", map[string]any{
		"currencyCode": "CRC",
		"distanceKm":   "7.25",
	}, true)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res fare.Breakdown
	suite.decode(w, &res)
	suite.True(d("3813.75").Equal(res.Total))
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestPreviewFare_NegativeDistance() {
	w := suite.do(http.MethodPost, "/api/v1/pricing-rules/preview", map[string]any{
		"currencyCode": "CRC",
		"distanceKm":   "-1",
	}, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.pricingRules.AssertNotCalled(suite.T(), "PreviewFare", mock.Anything, mock.Anything)
}

func (suite *HandlersTestSuite) TestActivatePricingRule() {
	suite.pricingRules.On("ActivatePricingRule", mock.Anything, "rule_2", suite.userID).
		Return(&domain.PricingRule{PricingRuleID: "rule_2", Name: "Standard", Version: 2, Status: domain.RuleActive, CurrencyCode: "CRC"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/pricing-rules/rule_2/activate", nil, true)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res dto.PricingRuleResponse
	suite.decode(w, &res)
	suite.Equal(string(domain.RuleActive), res.Status)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestActivatePricingRule_WithoutTiers() {
	suite.pricingRules.On("ActivatePricingRule", mock.Anything, "rule_3", suite.userID).
		Return(nil, fmt.Errorf("%w: a rule needs at least one tier", apperrors.ErrValidation)).Once()

	w := suite.do(http.MethodPost, "/api/v1/pricing-rules/rule_3/activate", nil, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestClonePricingRule_WithoutBody() {
	suite.pricingRules.On("ClonePricingRule", mock.Anything, "rule_1", (*string)(nil), suite.userID).
		Return(&domain.PricingRule{PricingRuleID: "rule_9", Name: "Standard", Version: 2, Status: domain.RuleDraft, CurrencyCode: "CRC"}, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/pricing-rules/rule_1/clone", nil, true)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestDeletePricingRule_Active() {
	suite.pricingRules.On("DeletePricingRule", mock.Anything, "rule_1", suite.userID).
		Return(apperrors.NewInvalidStateError("only draft rules can be deleted")).Once()

	w := suite.do(http.MethodDelete, "/api/v1/pricing-rules/rule_1", nil, true)

	suite.Equal(http.StatusConflict, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestCreateQuote_Success() {
	suite.quotes.On("CreateQuote", mock.Anything,
		mock.MatchedBy(func(req dto.CreateQuoteRequest) bool {
			return req.OrderID == "order_1" && req.DistanceKm != nil && req.DistanceKm.Equal(d("7.25"))
		}),
		suite.userID,
	).Return(sampleQuote(domain.QuoteDraft), nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes", map[string]any{
		"orderID":    "order_1",
		"distanceKm": "7.25",
	}, true)

	suite.Equal(http.StatusCreated, w.Code, w.Body.String())
	var res dto.QuoteResponse
	suite.decode(w, &res)
	suite.Equal("quote_1", res.QuoteID)
	suite.Equal(string(domain.QuoteDraft), res.Status)
	suite.True(d("3813.75").Equal(res.Amounts.Total))
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestCreateQuote_DistanceOutsideTiers() {
	suite.quotes.On("CreateQuote", mock.Anything, mock.Anything, suite.userID).
		Return(nil, fmt.Errorf("%w: 250 km", apperrors.ErrNoMatchingTier)).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes", map[string]any{
		"orderID":    "order_1",
		"distanceKm": "250",
	}, true)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestCreateQuote_MissingOrder() {
	w := suite.do(http.MethodPost, "/api/v1/quotes", map[string]any{"distanceKm": "3"}, true)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestListQuotes_RequiresOrderID() {
	w := suite.do(http.MethodGet, "/api/v1/quotes", nil, true)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestSendQuote() {
	sent := sampleQuote(domain.QuoteSent)
	suite.quotes.On("SendQuote", mock.Anything, "quote_1", suite.userID).Return(sent, nil).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote_1/send", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var res dto.QuoteResponse
	suite.decode(w, &res)
	suite.Equal(string(domain.QuoteSent), res.Status)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestAcceptQuote_IllegalTransition() {
	suite.quotes.On("AcceptQuote", mock.Anything, "quote_1", suite.userID).
		Return(nil, apperrors.NewInvalidStateError("cannot move quote from draft to accepted")).Once()

	w := suite.do(http.MethodPost, "/api/v1/quotes/quote_1/accept", nil, true)

	suite.Equal(http.StatusConflict, w.Code)
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestQuoteDisplay_RateUnavailable() {
	suite.quotes.On("GetQuoteInCurrency", mock.Anything, "quote_1", "USD").
		Return(&domain.QuoteInCurrency{
			QuoteID:            "quote_1",
			SourceCurrencyCode: "CRC",
			CurrencyCode:       "USD",
			RateAvailable:      false,
			RateDisplay:        "-",
		}, nil).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes/quote_1/display?currency=usd", nil, true)

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	var res map[string]any
	suite.decode(w, &res)
	suite.Equal(false, res["rateAvailable"])
	suite.NotContains(res, "amounts")
	suite.assertMocks()
}

func (suite *HandlersTestSuite) TestQuoteDisplay_BadCurrency() {
	w := suite.do(http.MethodGet, "/api/v1/quotes/quote_1/display?currency=dollars", nil, true)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestGetQuote_InternalErrorHidesDetail() {
	suite.quotes.On("GetQuote", mock.Anything, "quote_1").
		Return(nil, fmt.Errorf("connection reset by peer")).Once()

	w := suite.do(http.MethodGet, "/api/v1/quotes/quote_1", nil, true)

	suite.Equal(http.StatusInternalServerError, w.Code)
	var res map[string]string
	suite.decode(w, &res)
	suite.Equal("Failed to get quote", res["error"])
}

// --- Run Test Suite ---
func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}
