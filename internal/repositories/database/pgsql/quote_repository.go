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
)

const quoteColumns = `quote_id, order_id, version, status, payment_status, is_final, finalized_at, currency_code,
		pricing_rule_id, pricing_rule_version, base_fare, distance_km, duration_minutes, distance_fee, time_fee,
		surcharge, discount_rate, subtotal, tax_rate, tax_total, total, pickup_proposed_for, delivery_proposed_for,
		valid_until, created_at, created_by, last_updated_at, last_updated_by`

type PgxQuoteRepository struct {
	BaseRepository
}

func newPgxQuoteRepository(pool *pgxpool.Pool) portsrepo.QuoteRepositoryFacade {
	return &PgxQuoteRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.QuoteRepositoryFacade = (*PgxQuoteRepository)(nil)

func scanQuote(row pgx.Row) (models.Quote, error) {
	var m models.Quote
	err := row.Scan(
		&m.QuoteID,
		&m.OrderID,
		&m.Version,
		&m.Status,
		&m.PaymentStatus,
		&m.IsFinal,
		&m.FinalizedAt,
		&m.CurrencyCode,
		&m.PricingRuleID,
		&m.PricingRuleVersion,
		&m.BaseFare,
		&m.DistanceKm,
		&m.DurationMinutes,
		&m.DistanceFee,
		&m.TimeFee,
		&m.Surcharge,
		&m.DiscountRate,
		&m.Subtotal,
		&m.TaxRate,
		&m.TaxTotal,
		&m.Total,
		&m.PickupProposedFor,
		&m.DeliveryProposedFor,
		&m.ValidUntil,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxQuoteRepository) findOne(ctx context.Context, query, quoteID string) (*domain.Quote, error) {
	m, err := scanQuote(r.DB(ctx).QueryRow(ctx, query, quoteID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find quote %s", quoteID)
	}
	d := mapping.ToDomainQuote(m)
	return &d, nil
}

func (r *PgxQuoteRepository) queryQuotes(ctx context.Context, query string, args ...any) ([]domain.Quote, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	modelQuotes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Quote, error) {
		return scanQuote(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quotes: %w", err)
	}
	return mapping.ToDomainQuoteSlice(modelQuotes), nil
}

// FindQuoteByID retrieves a quote by its ID.
func (r *PgxQuoteRepository) FindQuoteByID(ctx context.Context, quoteID string) (*domain.Quote, error) {
	return r.findOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE quote_id = $1;`, quoteID)
}

// FindQuoteForUpdate retrieves a quote and holds its row lock until the transaction ends.
func (r *PgxQuoteRepository) FindQuoteForUpdate(ctx context.Context, quoteID string) (*domain.Quote, error) {
	return r.findOne(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE quote_id = $1 FOR UPDATE;`, quoteID)
}

// ListQuotesByOrder returns an order's quotes, newest version first.
func (r *PgxQuoteRepository) ListQuotesByOrder(ctx context.Context, orderID string) ([]domain.Quote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE order_id = $1
		ORDER BY version DESC;
	`
	return r.queryQuotes(ctx, query, orderID)
}

// CountQuotesByOrder returns the number of quotes stored for an order.
func (r *PgxQuoteRepository) CountQuotesByOrder(ctx context.Context, orderID string) (int, error) {
	var count int
	err := r.DB(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM quotes WHERE order_id = $1;`, orderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count quotes of order %s: %w", orderID, err)
	}
	return count, nil
}

// FindOverdueQuotes returns sent quotes whose validity ended before now, oldest first.
func (r *PgxQuoteRepository) FindOverdueQuotes(ctx context.Context, now time.Time, limit int) ([]domain.Quote, error) {
	query := `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE status = $1 AND valid_until < $2
		ORDER BY valid_until
		LIMIT $3;
	`
	return r.queryQuotes(ctx, query, string(domain.QuoteSent), now, limit)
}

// SaveQuote inserts a new quote.
func (r *PgxQuoteRepository) SaveQuote(ctx context.Context, quote domain.Quote) error {
	m := mapping.ToModelQuote(quote)

	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28);
	`
	_, err := r.DB(ctx).Exec(ctx, query,
		m.QuoteID, m.OrderID, m.Version, m.Status, m.PaymentStatus, m.IsFinal, m.FinalizedAt, m.CurrencyCode,
		m.PricingRuleID, m.PricingRuleVersion, m.BaseFare, m.DistanceKm, m.DurationMinutes, m.DistanceFee, m.TimeFee,
		m.Surcharge, m.DiscountRate, m.Subtotal, m.TaxRate, m.TaxTotal, m.Total, m.PickupProposedFor, m.DeliveryProposedFor,
		m.ValidUntil, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: quote version %d of order '%s'", apperrors.ErrDuplicate, m.Version, m.OrderID)
		}
		return fmt.Errorf("failed to save quote %s: %w", m.QuoteID, err)
	}
	return nil
}

// UpdateQuote writes back every mutable column. Identity, order and version never change.
func (r *PgxQuoteRepository) UpdateQuote(ctx context.Context, quote domain.Quote) error {
	m := mapping.ToModelQuote(quote)

	query := `
		UPDATE quotes
		SET status = $2, payment_status = $3, is_final = $4, finalized_at = $5, currency_code = $6,
			pricing_rule_id = $7, pricing_rule_version = $8, base_fare = $9, distance_km = $10,
			duration_minutes = $11, distance_fee = $12, time_fee = $13, surcharge = $14, discount_rate = $15,
			subtotal = $16, tax_rate = $17, tax_total = $18, total = $19, pickup_proposed_for = $20,
			delivery_proposed_for = $21, valid_until = $22, last_updated_at = $23, last_updated_by = $24
		WHERE quote_id = $1;
	`
	tag, err := r.DB(ctx).Exec(ctx, query,
		m.QuoteID, m.Status, m.PaymentStatus, m.IsFinal, m.FinalizedAt, m.CurrencyCode,
		m.PricingRuleID, m.PricingRuleVersion, m.BaseFare, m.DistanceKm,
		m.DurationMinutes, m.DistanceFee, m.TimeFee, m.Surcharge, m.DiscountRate,
		m.Subtotal, m.TaxRate, m.TaxTotal, m.Total, m.PickupProposedFor,
		m.DeliveryProposedFor, m.ValidUntil, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote %s: %w", m.QuoteID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteQuote removes a quote.
func (r *PgxQuoteRepository) DeleteQuote(ctx context.Context, quoteID string) error {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM quotes WHERE quote_id = $1;`, quoteID)
	if err != nil {
		return fmt.Errorf("failed to delete quote %s: %w", quoteID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
