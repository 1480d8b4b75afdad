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
	"github.com/SscSPs/delivery_pricing_app/internal/middleware"
	"github.com/SscSPs/delivery_pricing_app/internal/utils/fare"
	"github.com/google/uuid"
)

type pricingRuleService struct {
	BaseService
	ruleRepo     portsrepo.PricingRuleRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
	txManager    portsrepo.TransactionManager
}

// NewPricingRuleService creates the pricing rule store service.
func NewPricingRuleService(
	ruleRepo portsrepo.PricingRuleRepositoryFacade,
	currencyRepo portsrepo.CurrencyRepositoryFacade,
	txManager portsrepo.TransactionManager,
) portssvc.PricingRuleSvcFacade {
	return &pricingRuleService{
		ruleRepo:     ruleRepo,
		currencyRepo: currencyRepo,
		txManager:    txManager,
	}
}

var _ portssvc.PricingRuleSvcFacade = (*pricingRuleService)(nil)

func (s *pricingRuleService) CreatePricingRule(ctx context.Context, req dto.CreatePricingRuleRequest, userID string) (*domain.PricingRule, error) {
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency '%s' not found", apperrors.ErrValidation, req.CurrencyCode)
		}
		return nil, err
	}

	now := time.Now()
	rule := domain.PricingRule{
		PricingRuleID:   uuid.NewString(),
		Name:            req.Name,
		Version:         1,
		Status:          domain.RuleDraft,
		CurrencyCode:    req.CurrencyCode,
		BaseFare:        req.BaseFare,
		TaxRate:         req.TaxRate,
		CalculationMode: req.CalculationMode,
		Notes:           req.Notes,
		Tiers:           toDomainTiers(req.Tiers),
		AuditFields:     newAuditFields(userID, now),
	}
	if err := rule.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	if err := s.ruleRepo.SavePricingRule(ctx, rule); err != nil {
		s.LogError(ctx, err, "Failed to save pricing rule", slog.String("currency_code", rule.CurrencyCode))
		return nil, fmt.Errorf("failed to create pricing rule: %w", err)
	}

	s.LogInfo(ctx, "Pricing rule created",
		slog.String("pricing_rule_id", rule.PricingRuleID),
		slog.String("currency_code", rule.CurrencyCode))
	return &rule, nil
}

func (s *pricingRuleService) GetPricingRule(ctx context.Context, pricingRuleID string) (*domain.PricingRule, error) {
	rule, err := s.ruleRepo.FindPricingRuleByID(ctx, pricingRuleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find pricing rule", slog.String("pricing_rule_id", pricingRuleID))
		}
		return nil, err
	}
	return rule, nil
}

func (s *pricingRuleService) ListPricingRules(ctx context.Context, params dto.ListPricingRulesParams) ([]domain.PricingRule, error) {
	filter := portsrepo.PricingRuleFilter{
		CurrencyCode: params.CurrencyCode,
		Status:       domain.PricingRuleStatus(params.Status),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status '%s'", apperrors.ErrValidation, params.Status)
	}

	rules, err := s.ruleRepo.ListPricingRules(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list pricing rules")
		return nil, fmt.Errorf("failed to list pricing rules: %w", err)
	}
	if rules == nil {
		return []domain.PricingRule{}, nil
	}
	return rules, nil
}

func (s *pricingRuleService) GetActivePricingRule(ctx context.Context, currencyCode string) (*domain.PricingRule, error) {
	rules, err := s.ruleRepo.FindActivePricingRules(ctx, currencyCode)
	if err != nil {
		s.LogError(ctx, err, "Failed to load active pricing rules", slog.String("currency_code", currencyCode))
		return nil, err
	}
	return selectActiveRule(ctx, currencyCode, rules)
}

// lockDraftRule loads a rule under the currency lock activation takes, so an
// edit or delete cannot interleave with an activation of the same rule.
// Must run inside WithinTx.
func (s *pricingRuleService) lockDraftRule(ctx context.Context, pricingRuleID string, action string) (*domain.PricingRule, error) {
	rule, err := s.ruleRepo.FindPricingRuleByID(ctx, pricingRuleID)
	if err != nil {
		return nil, err
	}
	if err := s.currencyRepo.LockCurrencyForUpdate(ctx, rule.CurrencyCode); err != nil {
		return nil, err
	}
	rule, err = s.ruleRepo.FindPricingRuleByID(ctx, pricingRuleID)
	if err != nil {
		return nil, err
	}
	if rule.Status != domain.RuleDraft {
		return nil, apperrors.NewInvalidStateError(fmt.Sprintf("pricing rule is %s; only draft rules can be %s", rule.Status, action))
	}
	return rule, nil
}

func (s *pricingRuleService) UpdatePricingRule(ctx context.Context, pricingRuleID string, req dto.UpdatePricingRuleRequest, userID string) (*domain.PricingRule, error) {
	var updated *domain.PricingRule

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		rule, err := s.lockDraftRule(ctx, pricingRuleID, "edited")
		if err != nil {
			return err
		}

		if req.Name != nil {
			rule.Name = *req.Name
		}
		if req.BaseFare != nil {
			rule.BaseFare = *req.BaseFare
		}
		if req.TaxRate != nil {
			rule.TaxRate = *req.TaxRate
		}
		if req.CalculationMode != nil {
			rule.CalculationMode = *req.CalculationMode
		}
		if req.Notes != nil {
			rule.Notes = *req.Notes
		}
		if req.Tiers != nil {
			rule.Tiers = toDomainTiers(*req.Tiers)
		}
		if err := rule.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}

		rule.Touch(userID, time.Now())

		if err := s.ruleRepo.UpdatePricingRule(ctx, *rule); err != nil {
			return err
		}
		updated = rule
		return nil
	})
	if err != nil {
		if !isExpectedRuleError(err) {
			s.LogError(ctx, err, "Failed to update pricing rule", slog.String("pricing_rule_id", pricingRuleID))
			return nil, fmt.Errorf("failed to update pricing rule: %w", err)
		}
		return nil, err
	}

	s.LogInfo(ctx, "Pricing rule updated", slog.String("pricing_rule_id", pricingRuleID))
	return updated, nil
}

// ActivatePricingRule makes the rule the one quotes in its currency are priced
// with and archives the previously active rule in the same transaction.
// Activations of one currency are serialized by locking the currency row.
func (s *pricingRuleService) ActivatePricingRule(ctx context.Context, pricingRuleID string, userID string) (*domain.PricingRule, error) {
	var activated *domain.PricingRule
	var archived int64

	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		rule, err := s.ruleRepo.FindPricingRuleByID(ctx, pricingRuleID)
		if err != nil {
			return err
		}
		if err := s.currencyRepo.LockCurrencyForUpdate(ctx, rule.CurrencyCode); err != nil {
			return err
		}
		// Reload under the lock; a concurrent activation may have changed it.
		rule, err = s.ruleRepo.FindPricingRuleByID(ctx, pricingRuleID)
		if err != nil {
			return err
		}

		if rule.Status == domain.RuleActive {
			activated = rule
			return nil
		}
		if err := rule.ValidateForActivation(); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}

		now := time.Now()
		archived, err = s.ruleRepo.ArchiveActivePricingRules(ctx, rule.CurrencyCode, rule.PricingRuleID, userID, now)
		if err != nil {
			return err
		}
		if err := s.ruleRepo.ActivatePricingRule(ctx, rule.PricingRuleID, userID, now); err != nil {
			return err
		}

		rule.Status = domain.RuleActive
		rule.ActivatedAt = &now
		rule.Touch(userID, now)
		activated = rule
		return nil
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to activate pricing rule", slog.String("pricing_rule_id", pricingRuleID))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Pricing rule activated",
		slog.String("pricing_rule_id", pricingRuleID),
		slog.String("currency_code", activated.CurrencyCode),
		slog.Int64("archived_rules", archived))
	return activated, nil
}

// ClonePricingRule copies any rule into a new draft one version above it.
func (s *pricingRuleService) ClonePricingRule(ctx context.Context, pricingRuleID string, newName *string, userID string) (*domain.PricingRule, error) {
	source, err := s.GetPricingRule(ctx, pricingRuleID)
	if err != nil {
		return nil, err
	}

	name := source.Name
	if newName != nil && *newName != "" {
		name = *newName
	}
	sourceID := source.PricingRuleID

	tiers := make([]domain.PricingTier, len(source.Tiers))
	for i, t := range source.Tiers {
		tiers[i] = domain.PricingTier{
			TierID:    uuid.NewString(),
			MinKm:     t.MinKm,
			MaxKm:     copyDecimal(t.MaxKm),
			FlatFee:   copyDecimal(t.FlatFee),
			PerKmRate: copyDecimal(t.PerKmRate),
			SortOrder: t.SortOrder,
		}
	}

	clone := domain.PricingRule{
		PricingRuleID:   uuid.NewString(),
		Name:            name,
		Version:         source.Version + 1,
		ClonedFromID:    &sourceID,
		Status:          domain.RuleDraft,
		CurrencyCode:    source.CurrencyCode,
		BaseFare:        source.BaseFare,
		TaxRate:         source.TaxRate,
		CalculationMode: source.CalculationMode,
		Notes:           source.Notes,
		Tiers:           tiers,
		AuditFields:     newAuditFields(userID, time.Now()),
	}

	if err := s.ruleRepo.SavePricingRule(ctx, clone); err != nil {
		s.LogError(ctx, err, "Failed to save cloned pricing rule", slog.String("source_rule_id", sourceID))
		return nil, fmt.Errorf("failed to clone pricing rule: %w", err)
	}

	s.LogInfo(ctx, "Pricing rule cloned",
		slog.String("source_rule_id", sourceID),
		slog.String("pricing_rule_id", clone.PricingRuleID),
		slog.Int("version", clone.Version))
	return &clone, nil
}

func (s *pricingRuleService) DeletePricingRule(ctx context.Context, pricingRuleID string, userID string) error {
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.lockDraftRule(ctx, pricingRuleID, "deleted"); err != nil {
			return err
		}
		return s.ruleRepo.DeletePricingRule(ctx, pricingRuleID)
	})
	if err != nil {
		if !isExpectedRuleError(err) {
			s.LogError(ctx, err, "Failed to delete pricing rule", slog.String("pricing_rule_id", pricingRuleID))
			return fmt.Errorf("failed to delete pricing rule: %w", err)
		}
		return err
	}

	s.LogInfo(ctx, "Pricing rule deleted", slog.String("pricing_rule_id", pricingRuleID), slog.String("user_id", userID))
	return nil
}

func isExpectedRuleError(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrValidation) ||
		errors.Is(err, apperrors.ErrInvalidState)
}

func (s *pricingRuleService) PreviewFare(ctx context.Context, req dto.PreviewFareRequest) (*fare.Breakdown, error) {
	var rule *domain.PricingRule
	var err error

	switch {
	case req.PricingRuleID != "":
		rule, err = s.GetPricingRule(ctx, req.PricingRuleID)
	case req.CurrencyCode != "":
		rule, err = s.GetActivePricingRule(ctx, req.CurrencyCode)
	default:
		var base *domain.Currency
		base, err = s.currencyRepo.FindBaseCurrency(ctx)
		if err == nil {
			rule, err = s.GetActivePricingRule(ctx, base.CurrencyCode)
		}
	}
	if err != nil {
		return nil, err
	}

	breakdown, err := fare.Calculate(*rule, fare.Input{
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		TimeFee:         req.TimeFee,
		Surcharge:       req.Surcharge,
		DiscountRate:    req.DiscountRate,
	})
	if err != nil {
		return nil, err
	}
	return &breakdown, nil
}

// selectActiveRule picks the rule to price with from the active rules of a
// currency, which the store returns most recently activated first. More than
// one active rule should never happen; the newest wins and the condition is logged.
func selectActiveRule(ctx context.Context, currencyCode string, rules []domain.PricingRule) (*domain.PricingRule, error) {
	if len(rules) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no active pricing rule for currency '%s'", currencyCode))
	}

	chosen := rules[0]
	for _, r := range rules[1:] {
		if activatedAfter(r, chosen) {
			chosen = r
		}
	}

	if len(rules) > 1 {
		ids := make([]string, len(rules))
		for i, r := range rules {
			ids[i] = r.PricingRuleID
		}
		middleware.GetLoggerFromCtx(ctx).Warn("Multiple active pricing rules for currency",
			slog.String("error", apperrors.ErrInvariantViolation.Error()),
			slog.String("currency_code", currencyCode),
			slog.Any("pricing_rule_ids", ids),
			slog.String("selected_rule_id", chosen.PricingRuleID))
	}
	return &chosen, nil
}

func activatedAfter(a, b domain.PricingRule) bool {
	if a.ActivatedAt == nil {
		return false
	}
	if b.ActivatedAt == nil {
		return true
	}
	return a.ActivatedAt.After(*b.ActivatedAt)
}

func toDomainTiers(reqs []dto.PricingTierRequest) []domain.PricingTier {
	tiers := make([]domain.PricingTier, len(reqs))
	for i, t := range reqs {
		sortOrder := t.SortOrder
		if sortOrder == 0 {
			sortOrder = i + 1
		}
		tiers[i] = domain.PricingTier{
			TierID:    uuid.NewString(),
			MinKm:     t.MinKm,
			MaxKm:     t.MaxKm,
			FlatFee:   t.FlatFee,
			PerKmRate: t.PerKmRate,
			SortOrder: sortOrder,
		}
	}
	return tiers
}
