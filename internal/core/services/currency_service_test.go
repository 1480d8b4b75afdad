package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portssvc "github.com/SscSPs/delivery_pricing_app/internal/core/ports/services"
	"github.com/SscSPs/delivery_pricing_app/internal/core/services"
	"github.com/SscSPs/delivery_pricing_app/internal/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type CurrencyServiceTestSuite struct {
	suite.Suite
	mockRepo *MockCurrencyRepository
	tx       *fakeTxManager
	service  portssvc.CurrencySvcFacade
}

func (suite *CurrencyServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockCurrencyRepository)
	suite.tx = &fakeTxManager{}
	suite.service = services.NewCurrencyService(suite.mockRepo, suite.tx)
}

// --- Test Cases ---

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Defaults() {
	ctx := context.Background()
	creatorUserID := uuid.NewString()
	req := dto.CreateCurrencyRequest{
		CurrencyCode: "CRC",
		Symbol:       "₡",
		Name:         "Costa Rican Colón",
	}

	suite.mockRepo.On("SaveCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.CurrencyCode == "CRC" && c.CreatedBy == creatorUserID && c.LastUpdatedBy == creatorUserID && !c.IsBase
	})).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, creatorUserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(currency)
	suite.Equal(2, currency.Precision)
	suite.Equal(domain.RoundNearest, currency.RoundingMode)
	suite.True(currency.RoundingIncrement.IsZero())
	suite.True(currency.IsEnabled)
	suite.False(currency.IsBase)
	suite.Nil(currency.CurrentRate)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_WithRoundingPolicy() {
	ctx := context.Background()
	precision := 0
	disabled := false
	req := dto.CreateCurrencyRequest{
		CurrencyCode:      "CRC",
		Symbol:            "₡",
		Name:              "Costa Rican Colón",
		Precision:         &precision,
		RoundingMode:      domain.RoundUp,
		RoundingIncrement: dp("5"),
		IsEnabled:         &disabled,
	}

	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(nil).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(0, currency.Precision)
	suite.Equal(domain.RoundUp, currency.RoundingMode)
	suite.True(d("5").Equal(currency.RoundingIncrement))
	suite.False(currency.IsEnabled)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_InvalidRoundingMode() {
	req := dto.CreateCurrencyRequest{CurrencyCode: "CRC", Symbol: "₡", Name: "Colón", RoundingMode: "banker"}

	currency, err := suite.service.CreateCurrency(context.Background(), req, "user-1")

	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestCreateCurrency_Duplicate() {
	ctx := context.Background()
	req := dto.CreateCurrencyRequest{CurrencyCode: "USD", Symbol: "$", Name: "US Dollar"}

	suite.mockRepo.On("SaveCurrency", ctx, mock.AnythingOfType("domain.Currency")).Return(apperrors.ErrDuplicate).Once()

	currency, err := suite.service.CreateCurrency(ctx, req, "user-1")

	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CurrencyServiceTestSuite) TestGetCurrencyByCode_NotFound() {
	ctx := context.Background()
	suite.mockRepo.On("FindCurrencyByCode", ctx, "NTF").Return(nil, apperrors.ErrNotFound).Once()

	currency, err := suite.service.GetCurrencyByCode(ctx, "NTF")

	suite.Nil(currency)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestGetBaseCurrency_NoneConfigured() {
	ctx := context.Background()
	suite.mockRepo.On("FindBaseCurrency", ctx).Return(nil, apperrors.ErrNotFound).Once()

	base, err := suite.service.GetBaseCurrency(ctx)

	suite.Nil(base)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_EmptyIsNotNil() {
	ctx := context.Background()
	suite.mockRepo.On("ListCurrencies", ctx, true).Return(nil, nil).Once()

	currencies, err := suite.service.ListCurrencies(ctx, true)

	suite.Require().NoError(err)
	suite.NotNil(currencies)
	suite.Empty(currencies)
}

func (suite *CurrencyServiceTestSuite) TestListCurrencies_Error() {
	ctx := context.Background()
	suite.mockRepo.On("ListCurrencies", ctx, false).Return(nil, assert.AnError).Once()

	currencies, err := suite.service.ListCurrencies(ctx, false)

	suite.Nil(currencies)
	suite.ErrorIs(err, assert.AnError)
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_ChangesRounding() {
	ctx := context.Background()
	existing := &domain.Currency{CurrencyCode: "CRC", Precision: 2, IsEnabled: true, RoundingMode: domain.RoundNearest}
	mode := domain.RoundDown

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CRC").Return(existing, nil).Once()
	suite.mockRepo.On("UpdateCurrency", ctx, mock.MatchedBy(func(c domain.Currency) bool {
		return c.RoundingMode == domain.RoundDown && c.RoundingIncrement.Equal(d("5")) && c.LastUpdatedBy == "user-2"
	})).Return(nil).Once()

	updated, err := suite.service.UpdateCurrency(ctx, "CRC", dto.UpdateCurrencyRequest{RoundingMode: &mode, RoundingIncrement: dp("5")}, "user-2")

	suite.Require().NoError(err)
	suite.Equal(domain.RoundDown, updated.RoundingMode)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestUpdateCurrency_CannotDisableBase() {
	ctx := context.Background()
	disabled := false
	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(&domain.Currency{CurrencyCode: "USD", IsBase: true, IsEnabled: true, RoundingMode: domain.RoundNearest}, nil).Once()

	updated, err := suite.service.UpdateCurrency(ctx, "USD", dto.UpdateCurrencyRequest{IsEnabled: &disabled}, "user-1")

	suite.Nil(updated)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateCurrency", mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestSetBaseCurrency_Success() {
	ctx := context.Background()
	before := &domain.Currency{CurrencyCode: "CRC", IsEnabled: true, CurrentRate: dp("0.002")}
	after := &domain.Currency{CurrencyCode: "CRC", IsEnabled: true, IsBase: true}

	suite.mockRepo.On("FindCurrencyByCode", ctx, "CRC").Return(before, nil).Once()
	suite.mockRepo.On("SetBaseCurrency", ctx, "CRC", "admin", mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockRepo.On("FindCurrencyByCode", ctx, "CRC").Return(after, nil).Once()

	base, err := suite.service.SetBaseCurrency(ctx, "CRC", "admin")

	suite.Require().NoError(err)
	suite.True(base.IsBase)
	suite.Nil(base.CurrentRate)
	suite.Equal(1, suite.tx.calls)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *CurrencyServiceTestSuite) TestSetBaseCurrency_AlreadyBase() {
	ctx := context.Background()
	current := &domain.Currency{CurrencyCode: "USD", IsEnabled: true, IsBase: true}
	suite.mockRepo.On("FindCurrencyByCode", ctx, "USD").Return(current, nil).Once()

	base, err := suite.service.SetBaseCurrency(ctx, "USD", "admin")

	suite.Require().NoError(err)
	suite.Equal(current, base)
	suite.mockRepo.AssertNotCalled(suite.T(), "SetBaseCurrency", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CurrencyServiceTestSuite) TestSetBaseCurrency_DisabledTarget() {
	ctx := context.Background()
	suite.mockRepo.On("FindCurrencyByCode", ctx, "EUR").Return(&domain.Currency{CurrencyCode: "EUR"}, nil).Once()

	base, err := suite.service.SetBaseCurrency(ctx, "EUR", "admin")

	suite.Nil(base)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Test Suite ---
func TestCurrencyService(t *testing.T) {
	suite.Run(t, new(CurrencyServiceTestSuite))
}
