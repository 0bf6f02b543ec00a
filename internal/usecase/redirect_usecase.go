package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/internal/repository"
)

// redirectUsecase implements RedirectUsecase
type redirectUsecase struct {
	rulesetRepo repository.RulesetRepository
	logger      *logrus.Entry
}

// NewRedirectUsecase creates a new redirect ruleset composer
func NewRedirectUsecase(rulesetRepo repository.RulesetRepository, logger *logrus.Logger) RedirectUsecase {
	return &redirectUsecase{
		rulesetRepo: rulesetRepo,
		logger:      logger.WithField("component", "redirect-composer"),
	}
}

// AppendRule runs the read-modify-write protocol against the zone's
// dynamic-redirect ruleset: find or create the ruleset, fetch its current
// rules, append the one new rule last (earlier rules win at the provider),
// and write the merged list back in a single replace.
//
// The read and the write are not atomic against concurrent external
// modification of the same ruleset: a rule added by another actor between
// them is lost. The provider offers no precondition on the replace, so
// this stays best-effort.
func (u *redirectUsecase) AppendRule(ctx context.Context, zoneID string, tpl domain.RedirectTemplate) (*domain.Ruleset, error) {
	if strings.TrimSpace(tpl.SourcePattern) == "" {
		return nil, fmt.Errorf("%w: redirect source pattern", domain.ErrEmptyTemplate)
	}

	var rules []domain.RedirectRule
	var rulesetID string

	existing, err := u.rulesetRepo.FindRedirectRuleset(ctx, zoneID)
	switch {
	case err == nil:
		full, err := u.rulesetRepo.GetRuleset(ctx, zoneID, existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch current rules: %w", err)
		}
		rulesetID = full.ID
		rules = full.Rules
	case errors.Is(err, domain.ErrRulesetNotFound):
		created, err := u.rulesetRepo.CreateRedirectRuleset(ctx, zoneID)
		if err != nil {
			return nil, fmt.Errorf("failed to create redirect ruleset: %w", err)
		}
		u.logger.WithField("zone_id", zoneID).Info("created redirect ruleset")
		rulesetID = created.ID
	default:
		return nil, fmt.Errorf("failed to locate redirect ruleset: %w", err)
	}

	merged := append(rules, domain.NewRedirectRule(tpl))

	updated, err := u.rulesetRepo.ReplaceRules(ctx, zoneID, rulesetID, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to write merged rules: %w", err)
	}

	u.logger.WithFields(logrus.Fields{
		"zone_id": zoneID,
		"rules":   len(updated.Rules),
	}).Debug("redirect rule appended")
	return updated, nil
}
