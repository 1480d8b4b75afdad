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
	"github.com/shopspring/decimal"
)

const defaultCurrencyPrecision = 2

type currencyService struct {
	BaseService
	currencyRepo portsrepo.CurrencyRepositoryFacade
	txManager    portsrepo.TransactionManager
}

// NewCurrencyService creates the currency registry service.
func NewCurrencyService(currencyRepo portsrepo.CurrencyRepositoryFacade, txManager portsrepo.TransactionManager) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: currencyRepo, txManager: txManager}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, creatorUserID string) (*domain.Currency, error) {
	now := time.Now()

	currency := domain.Currency{
		CurrencyCode:      req.CurrencyCode,
		Symbol:            req.Symbol,
		Name:              req.Name,
		Precision:         defaultCurrencyPrecision,
		IsBase:            false,
		IsEnabled:         true,
		RoundingMode:      domain.RoundNearest,
		RoundingIncrement: decimal.Zero,
		AuditFields:       newAuditFields(creatorUserID, now),
	}
	if req.Precision != nil {
		currency.Precision = *req.Precision
	}
	if req.RoundingMode != "" {
		currency.RoundingMode = req.RoundingMode
	}
	if req.RoundingIncrement != nil {
		currency.RoundingIncrement = *req.RoundingIncrement
	}
	if req.IsEnabled != nil {
		currency.IsEnabled = *req.IsEnabled
	}

	if err := validateCurrency(currency); err != nil {
		return nil, err
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			s.LogError(ctx, err, "Failed to save currency", slog.String("currency_code", currency.CurrencyCode))
		}
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	s.LogInfo(ctx, "Currency created", slog.String("currency_code", currency.CurrencyCode))
	return &currency, nil
}

func (s *currencyService) GetCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find currency", slog.String("currency_code", currencyCode))
		}
		return nil, err
	}
	return currency, nil
}

func (s *currencyService) GetBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	base, err := s.currencyRepo.FindBaseCurrency(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("no base currency configured")
		}
		s.LogError(ctx, err, "Failed to find base currency")
		return nil, err
	}
	return base, nil
}

func (s *currencyService) ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error) {
	currencies, err := s.currencyRepo.ListCurrencies(ctx, enabledOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list currencies")
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		return []domain.Currency{}, nil
	}
	return currencies, nil
}

func (s *currencyService) UpdateCurrency(ctx context.Context, currencyCode string, req dto.UpdateCurrencyRequest, userID string) (*domain.Currency, error) {
	currency, err := s.GetCurrencyByCode(ctx, currencyCode)
	if err != nil {
		return nil, err
	}

	if req.Symbol != nil {
		currency.Symbol = *req.Symbol
	}
	if req.Name != nil {
		currency.Name = *req.Name
	}
	if req.Precision != nil {
		currency.Precision = *req.Precision
	}
	if req.RoundingMode != nil {
		currency.RoundingMode = *req.RoundingMode
	}
	if req.RoundingIncrement != nil {
		currency.RoundingIncrement = *req.RoundingIncrement
	}
	if req.IsEnabled != nil {
		if currency.IsBase && !*req.IsEnabled {
			return nil, apperrors.NewValidationError("the base currency cannot be disabled")
		}
		currency.IsEnabled = *req.IsEnabled
	}
	if err := validateCurrency(*currency); err != nil {
		return nil, err
	}

	currency.Touch(userID, time.Now())

	if err := s.currencyRepo.UpdateCurrency(ctx, *currency); err != nil {
		s.LogError(ctx, err, "Failed to update currency", slog.String("currency_code", currencyCode))
		return nil, fmt.Errorf("failed to update currency: %w", err)
	}

	s.LogInfo(ctx, "Currency updated", slog.String("currency_code", currencyCode))
	return currency, nil
}

// SetBaseCurrency moves the base flag. Every stored live rate is relative to the
// old base, so all of them are cleared and display conversions report
// "rate unavailable" until rates are entered or synced against the new base.
func (s *currencyService) SetBaseCurrency(ctx context.Context, currencyCode string, userID string) (*domain.Currency, error) {
	var updated *domain.Currency
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		target, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
		if err != nil {
			return err
		}
		if target.IsBase {
			updated = target
			return nil
		}
		if !target.IsEnabled {
			return apperrors.NewValidationError(fmt.Sprintf("currency '%s' is disabled and cannot become the base currency", currencyCode))
		}
		if err := s.currencyRepo.SetBaseCurrency(ctx, currencyCode, userID, time.Now()); err != nil {
			return err
		}
		updated, err = s.currencyRepo.FindCurrencyByCode(ctx, currencyCode)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to set base currency", slog.String("currency_code", currencyCode))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Base currency set", slog.String("currency_code", currencyCode), slog.String("user_id", userID))
	return updated, nil
}

func validateCurrency(c domain.Currency) error {
	if c.Precision < 0 || c.Precision > 18 {
		return apperrors.NewValidationError("precision must be between 0 and 18")
	}
	if !c.RoundingMode.IsValid() {
		return apperrors.NewValidationError(fmt.Sprintf("unknown rounding mode '%s'", c.RoundingMode))
	}
	if c.RoundingIncrement.IsNegative() {
		return apperrors.NewValidationError("rounding increment must not be negative")
	}
	return nil
}
