package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/apperrors"
	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	"github.com/SscSPs/delivery_pricing_app/internal/models"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const currencyColumns = `currency_code, symbol, name, precision, is_base, is_enabled, rounding_mode, rounding_increment,
		current_rate, rate_date, rate_source, created_at, created_by, last_updated_at, last_updated_by`

type PgxCurrencyRepository struct {
	BaseRepository
}

// newPgxCurrencyRepository creates a new repository for currency data.
func newPgxCurrencyRepository(pool *pgxpool.Pool) portsrepo.CurrencyRepositoryFacade {
	return &PgxCurrencyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.CurrencyRepositoryFacade = (*PgxCurrencyRepository)(nil)

func scanCurrency(row pgx.Row) (models.Currency, error) {
	var c models.Currency
	err := row.Scan(
		&c.CurrencyCode,
		&c.Symbol,
		&c.Name,
		&c.Precision,
		&c.IsBase,
		&c.IsEnabled,
		&c.RoundingMode,
		&c.RoundingIncrement,
		&c.CurrentRate,
		&c.RateDate,
		&c.RateSource,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
	)
	return c, err
}

// SaveCurrency inserts a new currency.
func (r *PgxCurrencyRepository) SaveCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)

	query := `
		INSERT INTO currencies (` + currencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.CurrencyCode,
		m.Symbol,
		m.Name,
		m.Precision,
		m.IsBase,
		m.IsEnabled,
		m.RoundingMode,
		m.RoundingIncrement,
		m.CurrentRate,
		m.RateDate,
		m.RateSource,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: currency '%s'", apperrors.ErrDuplicate, m.CurrencyCode)
		}
		return fmt.Errorf("failed to save currency %s: %w", m.CurrencyCode, err)
	}
	return nil
}

// UpdateCurrency updates the editable settings of a currency. Rate and base fields are not touched.
func (r *PgxCurrencyRepository) UpdateCurrency(ctx context.Context, currency domain.Currency) error {
	m := mapping.ToModelCurrency(currency)

	query := `
		UPDATE currencies
		SET symbol = $2, name = $3, precision = $4, is_enabled = $5, rounding_mode = $6,
			rounding_increment = $7, last_updated_at = $8, last_updated_by = $9
		WHERE currency_code = $1;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		m.CurrencyCode, m.Symbol, m.Name, m.Precision, m.IsEnabled, m.RoundingMode,
		m.RoundingIncrement, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update currency %s: %w", m.CurrencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindCurrencyByCode retrieves a currency by its 3-letter code.
func (r *PgxCurrencyRepository) FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE currency_code = $1;`

	m, err := scanCurrency(r.DB(ctx).QueryRow(ctx, query, currencyCode))
	if err != nil {
		return nil, notFoundOr(err, "failed to find currency by code %s", currencyCode)
	}

	d := mapping.ToDomainCurrency(m)
	return &d, nil
}

// FindBaseCurrency retrieves the currency flagged as base.
func (r *PgxCurrencyRepository) FindBaseCurrency(ctx context.Context) (*domain.Currency, error) {
	query := `SELECT ` + currencyColumns + ` FROM currencies WHERE is_base;`

	m, err := scanCurrency(r.DB(ctx).QueryRow(ctx, query))
	if err != nil {
		return nil, notFoundOr(err, "failed to find base currency")
	}

	d := mapping.ToDomainCurrency(m)
	return &d, nil
}

// ListCurrencies retrieves all currencies, or only enabled ones.
func (r *PgxCurrencyRepository) ListCurrencies(ctx context.Context, enabledOnly bool) ([]domain.Currency, error) {
	query := `
		SELECT ` + currencyColumns + `
		FROM currencies
		WHERE is_enabled OR NOT $1
		ORDER BY currency_code;
	`
	rows, err := r.DB(ctx).Query(ctx, query, enabledOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query currencies: %w", err)
	}
	defer rows.Close()

	modelCurrencies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Currency, error) {
		return scanCurrency(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan currencies: %w", err)
	}

	return mapping.ToDomainCurrencySlice(modelCurrencies), nil
}

func (r *PgxCurrencyRepository) lockCurrency(ctx context.Context, currencyCode, mode string) error {
	query := `SELECT currency_code FROM currencies WHERE currency_code = $1 FOR ` + mode + `;`
	var code string
	if err := r.DB(ctx).QueryRow(ctx, query, currencyCode).Scan(&code); err != nil {
		return notFoundOr(err, "failed to lock currency %s", currencyCode)
	}
	return nil
}

// LockCurrencyForUpdate takes an exclusive row lock; only meaningful inside WithinTx.
func (r *PgxCurrencyRepository) LockCurrencyForUpdate(ctx context.Context, currencyCode string) error {
	return r.lockCurrency(ctx, currencyCode, "UPDATE")
}

// LockCurrencyForShare takes a shared row lock; only meaningful inside WithinTx.
func (r *PgxCurrencyRepository) LockCurrencyForShare(ctx context.Context, currencyCode string) error {
	return r.lockCurrency(ctx, currencyCode, "SHARE")
}

// SetBaseCurrency moves the base flag to currencyCode and clears every live rate.
// Callers run it inside WithinTx so the two statements apply together.
func (r *PgxCurrencyRepository) SetBaseCurrency(ctx context.Context, currencyCode string, userID string, now time.Time) error {
	db := r.DB(ctx)

	_, err := db.Exec(ctx, `
		UPDATE currencies
		SET is_base = FALSE, current_rate = NULL, rate_date = NULL, rate_source = NULL,
			last_updated_at = $1, last_updated_by = $2;
	`, now, userID)
	if err != nil {
		return fmt.Errorf("failed to clear base currency: %w", err)
	}

	tag, err := db.Exec(ctx, `
		UPDATE currencies
		SET is_base = TRUE, is_enabled = TRUE, last_updated_at = $2, last_updated_by = $3
		WHERE currency_code = $1;
	`, currencyCode, now, userID)
	if err != nil {
		return fmt.Errorf("failed to set base currency %s: %w", currencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateLiveRate stores the rate used for non-finalized conversions.
func (r *PgxCurrencyRepository) UpdateLiveRate(ctx context.Context, currencyCode string, rate decimal.Decimal, rateDate time.Time, source string, userID string, now time.Time) error {
	query := `
		UPDATE currencies
		SET current_rate = $2, rate_date = $3, rate_source = $4, last_updated_at = $5, last_updated_by = $6
		WHERE currency_code = $1 AND NOT is_base;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, currencyCode, rate, domain.TruncateToDay(rateDate), source, now, userID)
	if err != nil {
		return fmt.Errorf("failed to update live rate for %s: %w", currencyCode, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
