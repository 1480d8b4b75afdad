package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CurrencyReader defines read operations for currency data
type CurrencyReader interface {
	// FindCurrencyByCode retrieves a specific currency by its code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)

	// FindBaseCurrency retrieves the single currency flagged as base.
	FindBaseCurrency(ctx context.Context) (*domain.Currency, error)

	// ListCurrencies retrieves all currencies, optionally only the enabled ones.
	ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error)
}

// CurrencyLocker takes row locks on a currency inside the caller's transaction.
// Pricing rule activation takes the exclusive lock and quote creation the shared
// one, so activations for one currency are serialized and never interleave with
// a quote reading that currency's active rule.
type CurrencyLocker interface {
	LockCurrencyForUpdate(ctx context.Context, currencyCode string) error
	LockCurrencyForShare(ctx context.Context, currencyCode string) error
}

// CurrencyWriter defines write operations for currency data
type CurrencyWriter interface {
	// SaveCurrency persists a new currency. Returns apperrors.ErrDuplicate if the code exists.
	SaveCurrency(ctx context.Context, currency domain.Currency) error

	// UpdateCurrency persists display and rounding settings of an existing currency.
	UpdateCurrency(ctx context.Context, currency domain.Currency) error

	// SetBaseCurrency moves the base flag to currencyCode and clears its stored live rate.
	SetBaseCurrency(ctx context.Context, currencyCode string, userID string, now time.Time) error

	// UpdateLiveRate stores the current rate of a non-base currency.
	UpdateLiveRate(ctx context.Context, currencyCode string, rate decimal.Decimal, rateDate time.Time, source string, userID string, now time.Time) error
}

// CurrencyRepositoryFacade combines all currency-related repository interfaces
// This is a facade for clients that need access to all operations
type CurrencyRepositoryFacade interface {
	CurrencyReader
	CurrencyLocker
	CurrencyWriter
}
