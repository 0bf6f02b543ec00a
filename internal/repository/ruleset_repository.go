package repository

import (
	"context"

	"github.com/sirupsen/logrus"

	"cf-bulk-manager/external_resource/cloudflare"
	"cf-bulk-manager/internal/domain"
)

// redirectRulesetName is the name given to a ruleset this tool creates
const redirectRulesetName = "Default Redirect Ruleset"

// rulesetRepository implements RulesetRepository using the Cloudflare client
type rulesetRepository struct {
	client cloudflare.Client
	logger *logrus.Entry
}

// NewRulesetRepository creates a new ruleset repository
func NewRulesetRepository(client cloudflare.Client, logger *logrus.Logger) RulesetRepository {
	return &rulesetRepository{
		client: client,
		logger: logger.WithField("component", "ruleset-repository"),
	}
}

// FindRedirectRuleset locates the zone's dynamic-redirect phase ruleset
func (r *rulesetRepository) FindRedirectRuleset(ctx context.Context, zoneID string) (*domain.Ruleset, error) {
	rulesets, err := r.client.ListRulesets(ctx, zoneID)
	if err != nil {
		return nil, mapClientError(err)
	}

	for _, rs := range rulesets {
		if rs.Phase == domain.RedirectPhase {
			result := mapToDomainRuleset(rs)
			return &result, nil
		}
	}

	return nil, domain.ErrRulesetNotFound
}

// GetRuleset returns a ruleset with its full rule list
func (r *rulesetRepository) GetRuleset(ctx context.Context, zoneID, rulesetID string) (*domain.Ruleset, error) {
	rs, err := r.client.GetRuleset(ctx, zoneID, rulesetID)
	if err != nil {
		return nil, mapClientError(err)
	}

	result := mapToDomainRuleset(*rs)
	return &result, nil
}

// CreateRedirectRuleset creates an empty dynamic-redirect ruleset
func (r *rulesetRepository) CreateRedirectRuleset(ctx context.Context, zoneID string) (*domain.Ruleset, error) {
	rs, err := r.client.CreateRuleset(ctx, zoneID, cloudflare.CreateRulesetInput{
		Name:  redirectRulesetName,
		Kind:  "zone",
		Phase: domain.RedirectPhase,
	})
	if err != nil {
		r.logger.WithField("zone_id", zoneID).WithError(err).Warn("failed to create redirect ruleset")
		return nil, mapClientError(err)
	}

	result := mapToDomainRuleset(*rs)
	return &result, nil
}

// ReplaceRules replaces the whole rule list in a single write
func (r *rulesetRepository) ReplaceRules(ctx context.Context, zoneID, rulesetID string, rules []domain.RedirectRule) (*domain.Ruleset, error) {
	clientRules := make([]cloudflare.RulesetRule, len(rules))
	for i, rule := range rules {
		clientRules[i] = cloudflare.RulesetRule{
			Action:              "redirect",
			Expression:          rule.Expression,
			Description:         rule.Description,
			StatusCode:          rule.StatusCode,
			TargetValue:         rule.TargetValue,
			TargetExpression:    rule.TargetExpression,
			PreserveQueryString: rule.PreserveQueryString,
		}
	}

	rs, err := r.client.ReplaceRulesetRules(ctx, zoneID, rulesetID, clientRules)
	if err != nil {
		return nil, mapClientError(err)
	}

	result := mapToDomainRuleset(*rs)
	return &result, nil
}

// mapToDomainRuleset maps external resource ruleset to domain ruleset
func mapToDomainRuleset(rs cloudflare.Ruleset) domain.Ruleset {
	rules := make([]domain.RedirectRule, len(rs.Rules))
	for i, r := range rs.Rules {
		rules[i] = domain.RedirectRule{
			ID:                  r.ID,
			Expression:          r.Expression,
			Description:         r.Description,
			StatusCode:          r.StatusCode,
			TargetValue:         r.TargetValue,
			TargetExpression:    r.TargetExpression,
			PreserveQueryString: r.PreserveQueryString,
		}
	}
	return domain.Ruleset{
		ID:    rs.ID,
		Name:  rs.Name,
		Phase: rs.Phase,
		Rules: rules,
	}
}
