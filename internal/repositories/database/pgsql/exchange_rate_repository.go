package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/delivery_pricing_app/internal/core/domain"
	portsrepo "github.com/SscSPs/delivery_pricing_app/internal/core/ports/repositories"
	"github.com/SscSPs/delivery_pricing_app/internal/models"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const exchangeRateColumns = `currency_code, rate_date, rate, source, created_at, created_by, last_updated_at, last_updated_by`

// PgxExchangeRateRepository stores one rate per currency per day.
type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new PgxExchangeRateRepository.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

func collectExchangeRates(rows pgx.Rows) ([]domain.ExchangeRate, error) {
	defer rows.Close()
	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		var m models.ExchangeRate
		err := row.Scan(
			&m.CurrencyCode, &m.RateDate, &m.Rate, &m.Source,
			&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
		)
		return m, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan exchange rates: %w", err)
	}
	return mapping.ToDomainExchangeRateSlice(modelRates), nil
}

// UpsertExchangeRate inserts the day's rate or replaces it if one exists.
func (r *PgxExchangeRateRepository) UpsertExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (currency_code, rate_date) DO UPDATE SET
			rate = EXCLUDED.rate,
			source = EXCLUDED.source,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.CurrencyCode, m.RateDate, m.Rate, m.Source,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert exchange rate for %s: %w", m.CurrencyCode, err)
	}
	return nil
}

// FindRatesBetween returns the stored rates of a currency for the days in [from, to].
func (r *PgxExchangeRateRepository) FindRatesBetween(ctx context.Context, currencyCode string, from, to time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1 AND rate_date BETWEEN $2 AND $3
		ORDER BY rate_date;
	`
	rows, err := r.DB(ctx).Query(ctx, query, currencyCode, domain.TruncateToDay(from), domain.TruncateToDay(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	return collectExchangeRates(rows)
}

// ListExchangeRates returns a currency's rate history, newest day first, strictly before 'before' when set.
func (r *PgxExchangeRateRepository) ListExchangeRates(ctx context.Context, currencyCode string, limit int, before *time.Time) ([]domain.ExchangeRate, error) {
	args := []any{currencyCode, limit}
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1`
	if before != nil {
		query += ` AND rate_date < $3`
		args = append(args, domain.TruncateToDay(*before))
	}
	query += `
		ORDER BY rate_date DESC
		LIMIT $2;`

	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	return collectExchangeRates(rows)
}
