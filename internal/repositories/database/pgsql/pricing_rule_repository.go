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

const pricingRuleColumns = `pricing_rule_id, name, version, cloned_from_id, status, currency_code, base_fare, tax_rate,
		calculation_mode, notes, activated_at, created_at, created_by, last_updated_at, last_updated_by`

const insertTierQuery = `
	INSERT INTO pricing_tiers (tier_id, pricing_rule_id, min_km, max_km, flat_fee, per_km_rate, sort_order)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
`

// PgxPricingRuleRepository stores pricing rules and their distance tiers.
type PgxPricingRuleRepository struct {
	BaseRepository
	txManager *TxManager
}

func newPgxPricingRuleRepository(pool *pgxpool.Pool) portsrepo.PricingRuleRepositoryFacade {
	return &PgxPricingRuleRepository{
		BaseRepository: BaseRepository{Pool: pool},
		txManager:      NewTxManager(pool),
	}
}

var _ portsrepo.PricingRuleRepositoryFacade = (*PgxPricingRuleRepository)(nil)

func scanPricingRule(row pgx.Row) (models.PricingRule, error) {
	var m models.PricingRule
	err := row.Scan(
		&m.PricingRuleID,
		&m.Name,
		&m.Version,
		&m.ClonedFromID,
		&m.Status,
		&m.CurrencyCode,
		&m.BaseFare,
		&m.TaxRate,
		&m.CalculationMode,
		&m.Notes,
		&m.ActivatedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// findTiersByRuleIDs loads the tiers of several rules in one query, grouped by rule id.
func (r *PgxPricingRuleRepository) findTiersByRuleIDs(ctx context.Context, ruleIDs []string) (map[string][]models.PricingTier, error) {
	if len(ruleIDs) == 0 {
		return map[string][]models.PricingTier{}, nil
	}

	query := `
		SELECT tier_id, pricing_rule_id, min_km, max_km, flat_fee, per_km_rate, sort_order
		FROM pricing_tiers
		WHERE pricing_rule_id = ANY($1)
		ORDER BY pricing_rule_id, sort_order, min_km;
	`
	rows, err := r.DB(ctx).Query(ctx, query, ruleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing tiers: %w", err)
	}
	defer rows.Close()

	tiersByRule := make(map[string][]models.PricingTier, len(ruleIDs))
	for rows.Next() {
		var t models.PricingTier
		if err := rows.Scan(&t.TierID, &t.PricingRuleID, &t.MinKm, &t.MaxKm, &t.FlatFee, &t.PerKmRate, &t.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan pricing tier: %w", err)
		}
		tiersByRule[t.PricingRuleID] = append(tiersByRule[t.PricingRuleID], t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pricing tiers: %w", err)
	}
	return tiersByRule, nil
}

// queryRules runs a rule query and attaches the tiers of every returned rule.
func (r *PgxPricingRuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]domain.PricingRule, error) {
	rows, err := r.DB(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing rules: %w", err)
	}
	modelRules, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.PricingRule, error) {
		return scanPricingRule(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan pricing rules: %w", err)
	}

	ids := make([]string, len(modelRules))
	for i, m := range modelRules {
		ids[i] = m.PricingRuleID
	}
	tiersByRule, err := r.findTiersByRuleIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	rules := make([]domain.PricingRule, len(modelRules))
	for i, m := range modelRules {
		rules[i] = mapping.ToDomainPricingRule(m, tiersByRule[m.PricingRuleID])
	}
	return rules, nil
}

// FindPricingRuleByID retrieves a rule with its tiers.
func (r *PgxPricingRuleRepository) FindPricingRuleByID(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error) {
	query := `SELECT ` + pricingRuleColumns + ` FROM pricing_rules WHERE pricing_rule_id = $1;`

	m, err := scanPricingRule(r.DB(ctx).QueryRow(ctx, query, pricingRuleID))
	if err != nil {
		return nil, notFoundOr(err, "failed to find pricing rule %s", pricingRuleID)
	}

	tiersByRule, err := r.findTiersByRuleIDs(ctx, []string{pricingRuleID})
	if err != nil {
		return nil, err
	}

	rule := mapping.ToDomainPricingRule(m, tiersByRule[pricingRuleID])
	return &rule, nil
}

// ListPricingRules retrieves rules matching filter, newest first.
func (r *PgxPricingRuleRepository) ListPricingRules(ctx context.Context, filter portsrepo.PricingRuleFilter) ([]domain.PricingRule, error) {
	query := `
		SELECT ` + pricingRuleColumns + `
		FROM pricing_rules
		WHERE ($1 = '' OR currency_code = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, version DESC;
	`
	return r.queryRules(ctx, query, filter.CurrencyCode, string(filter.Status))
}

// FindActivePricingRules returns the active rules of a currency, most recently activated first.
func (r *PgxPricingRuleRepository) FindActivePricingRules(ctx context.Context, currencyCode string) ([]domain.PricingRule, error) {
	query := `
		SELECT ` + pricingRuleColumns + `
		FROM pricing_rules
		WHERE currency_code = $1 AND status = $2
		ORDER BY activated_at DESC NULLS LAST, version DESC;
	`
	return r.queryRules(ctx, query, currencyCode, string(domain.RuleActive))
}

func queueTiers(batch *pgx.Batch, tiers []models.PricingTier) {
	for _, t := range tiers {
		batch.Queue(insertTierQuery, t.TierID, t.PricingRuleID, t.MinKm, t.MaxKm, t.FlatFee, t.PerKmRate, t.SortOrder)
	}
}

// SavePricingRule inserts a rule and its tiers atomically.
func (r *PgxPricingRuleRepository) SavePricingRule(ctx context.Context, rule domain.PricingRule) error {
	m, tiers := mapping.ToModelPricingRule(rule)

	return r.txManager.WithinTx(ctx, func(ctx context.Context) error {
		batch := &pgx.Batch{}
		batch.Queue(`
			INSERT INTO pricing_rules (`+pricingRuleColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);`,
			m.PricingRuleID, m.Name, m.Version, m.ClonedFromID, m.Status, m.CurrencyCode, m.BaseFare, m.TaxRate,
			m.CalculationMode, m.Notes, m.ActivatedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		queueTiers(batch, tiers)

		if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: pricing rule '%s'", apperrors.ErrDuplicate, m.PricingRuleID)
			}
			return fmt.Errorf("failed to save pricing rule %s: %w", m.PricingRuleID, err)
		}
		return nil
	})
}

// UpdatePricingRule replaces the editable fields and all tiers of a draft rule.
// Status and activation time are never written here; a rule that is no longer
// a draft is left untouched and ErrInvalidState is returned.
func (r *PgxPricingRuleRepository) UpdatePricingRule(ctx context.Context, rule domain.PricingRule) error {
	m, tiers := mapping.ToModelPricingRule(rule)

	return r.txManager.WithinTx(ctx, func(ctx context.Context) error {
		tag, err := r.DB(ctx).Exec(ctx, `
			UPDATE pricing_rules
			SET name = $2, base_fare = $3, tax_rate = $4, calculation_mode = $5, notes = $6,
				last_updated_at = $7, last_updated_by = $8
			WHERE pricing_rule_id = $1 AND status = $9;`,
			m.PricingRuleID, m.Name, m.BaseFare, m.TaxRate, m.CalculationMode, m.Notes,
			m.LastUpdatedAt, m.LastUpdatedBy, string(domain.RuleDraft),
		)
		if err != nil {
			return fmt.Errorf("failed to update pricing rule %s: %w", m.PricingRuleID, err)
		}
		if tag.RowsAffected() == 0 {
			return r.notDraft(ctx, m.PricingRuleID)
		}

		batch := &pgx.Batch{}
		batch.Queue(`DELETE FROM pricing_tiers WHERE pricing_rule_id = $1;`, m.PricingRuleID)
		queueTiers(batch, tiers)
		if err := r.DB(ctx).SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to replace tiers of pricing rule %s: %w", m.PricingRuleID, err)
		}
		return nil
	})
}

// ActivatePricingRule marks the rule active.
func (r *PgxPricingRuleRepository) ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string, activatedAt time.Time) error {
	query := `
		UPDATE pricing_rules
		SET status = $2, activated_at = $3, last_updated_at = $3, last_updated_by = $4
		WHERE pricing_rule_id = $1;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, pricingRuleID, string(domain.RuleActive), activatedAt, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: another rule is already active for this currency", apperrors.ErrInvalidState)
		}
		return fmt.Errorf("failed to activate pricing rule %s: %w", pricingRuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ArchiveActivePricingRules archives the currency's active rules other than exceptID.
func (r *PgxPricingRuleRepository) ArchiveActivePricingRules(ctx context.Context, currencyCode string, exceptID string, userID string, now time.Time) (int64, error) {
	query := `
		UPDATE pricing_rules
		SET status = $3, last_updated_at = $4, last_updated_by = $5
		WHERE currency_code = $1 AND status = $2 AND pricing_rule_id <> $6;
	`
	tag, err := r.DB(ctx).Exec(ctx, query, currencyCode, string(domain.RuleActive), string(domain.RuleArchived), now, userID, exceptID)
	if err != nil {
		return 0, fmt.Errorf("failed to archive active pricing rules for %s: %w", currencyCode, err)
	}
	return tag.RowsAffected(), nil
}

// DeletePricingRule removes a draft rule; its tiers go with it through ON DELETE CASCADE.
func (r *PgxPricingRuleRepository) DeletePricingRule(ctx context.Context, pricingRuleID string) error {
	tag, err := r.DB(ctx).Exec(ctx, `DELETE FROM pricing_rules WHERE pricing_rule_id = $1 AND status = $2;`,
		pricingRuleID, string(domain.RuleDraft))
	if err != nil {
		return fmt.Errorf("failed to delete pricing rule %s: %w", pricingRuleID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.notDraft(ctx, pricingRuleID)
	}
	return nil
}

// notDraft explains why a draft-guarded write matched no row.
func (r *PgxPricingRuleRepository) notDraft(ctx context.Context, pricingRuleID string) error {
	var status string
	err := r.DB(ctx).QueryRow(ctx, `SELECT status FROM pricing_rules WHERE pricing_rule_id = $1;`, pricingRuleID).Scan(&status)
	if err != nil {
		return notFoundOr(err, "failed to find pricing rule %s", pricingRuleID)
	}
	return apperrors.NewInvalidStateError(fmt.Sprintf("pricing rule is %s; only draft rules can be changed", status))
}
