package cloudflare

import (
	"context"
	"fmt"

	"github.com/cloudflare/cloudflare-go"
)

// cloudflareClient implements the Client interface using cloudflare-go SDK
type cloudflareClient struct {
	api *cloudflare.API
}

// NewClient creates a new Cloudflare client using API token
func NewClient(apiToken string) (Client, error) {
	api, err := cloudflare.NewWithAPIToken(apiToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
	}

	return &cloudflareClient{
		api: api,
	}, nil
}

// NewClientWithKey creates a new Cloudflare client using API key and email
func NewClientWithKey(apiKey, email string) (Client, error) {
	api, err := cloudflare.New(apiKey, email)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudflare client: %w", err)
	}

	return &cloudflareClient{
		api: api,
	}, nil
}

// ListZonesPage returns one page of the zone listing along with the
// pagination envelope so the caller can walk all pages.
func (c *cloudflareClient) ListZonesPage(ctx context.Context, page, perPage int) (*ZonePage, error) {
	resp, err := c.api.ListZonesContext(ctx, cloudflare.WithPagination(cloudflare.PaginationOptions{
		Page:    page,
		PerPage: perPage,
	}))
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("list zones page %d", page), err)
	}

	zones := make([]Zone, len(resp.Result))
	for i, z := range resp.Result {
		zones[i] = mapZone(z)
	}

	return &ZonePage{
		Zones:      zones,
		Page:       resp.ResultInfo.Page,
		TotalPages: resp.ResultInfo.TotalPages,
		TotalCount: resp.ResultInfo.Total,
	}, nil
}

// GetZone returns a zone by its ID
func (c *cloudflareClient) GetZone(ctx context.Context, zoneID string) (*Zone, error) {
	zone, err := c.api.ZoneDetails(ctx, zoneID)
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("get zone %s", zoneID), err)
	}

	z := mapZone(zone)
	return &z, nil
}

// GetZoneByName returns a zone by its name
func (c *cloudflareClient) GetZoneByName(ctx context.Context, name string) (*Zone, error) {
	zoneID, err := c.api.ZoneIDByName(name)
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("get zone by name %s", name), err)
	}

	return c.GetZone(ctx, zoneID)
}

// CreateZone onboards a new domain to the account. jump_start lets
// Cloudflare scan for existing records, matching the original importer.
func (c *cloudflareClient) CreateZone(ctx context.Context, name string) (*Zone, error) {
	zone, err := c.api.CreateZone(ctx, name, true, cloudflare.Account{}, "full")
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("create zone %s", name), err)
	}

	z := mapZone(zone)
	return &z, nil
}

// ListDNSRecords returns all DNS records for a zone
func (c *cloudflareClient) ListDNSRecords(ctx context.Context, zoneID string, filter DNSRecordFilter) ([]DNSRecord, error) {
	listParams := cloudflare.ListDNSRecordsParams{}
	if filter.Name != "" {
		listParams.Name = filter.Name
	}
	if filter.Type != "" {
		listParams.Type = filter.Type
	}

	records, _, err := c.api.ListDNSRecords(ctx, cloudflare.ZoneIdentifier(zoneID), listParams)
	if err != nil {
		return nil, classifyErr("list dns records", err)
	}

	result := make([]DNSRecord, len(records))
	for i, r := range records {
		result[i] = mapDNSRecord(r)
	}

	return result, nil
}

// CreateDNSRecord creates a new DNS record
func (c *cloudflareClient) CreateDNSRecord(ctx context.Context, zoneID string, input CreateDNSRecordInput) (*DNSRecord, error) {
	createParams := cloudflare.CreateDNSRecordParams{
		Name:    input.Name,
		Type:    input.Type,
		Content: input.Content,
		TTL:     input.TTL,
	}
	if input.Proxied {
		createParams.Proxied = &input.Proxied
	}
	if input.Priority != nil {
		createParams.Priority = input.Priority
	}

	record, err := c.api.CreateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), createParams)
	if err != nil {
		return nil, classifyErr("create dns record", err)
	}

	result := mapDNSRecord(record)
	return &result, nil
}

// UpdateDNSRecord updates an existing DNS record
func (c *cloudflareClient) UpdateDNSRecord(ctx context.Context, zoneID, recordID string, input CreateDNSRecordInput) (*DNSRecord, error) {
	updateParams := cloudflare.UpdateDNSRecordParams{
		ID:      recordID,
		Name:    input.Name,
		Type:    input.Type,
		Content: input.Content,
		TTL:     input.TTL,
	}
	if input.Proxied {
		updateParams.Proxied = &input.Proxied
	}
	if input.Priority != nil {
		updateParams.Priority = input.Priority
	}

	record, err := c.api.UpdateDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), updateParams)
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("update dns record %s", recordID), err)
	}

	result := mapDNSRecord(record)
	return &result, nil
}

// DeleteDNSRecord deletes a DNS record
func (c *cloudflareClient) DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error {
	err := c.api.DeleteDNSRecord(ctx, cloudflare.ZoneIdentifier(zoneID), recordID)
	if err != nil {
		return classifyErr(fmt.Sprintf("delete dns record %s", recordID), err)
	}

	return nil
}

// ListRulesets returns the zone's rulesets. Rules are not populated in the
// listing; fetch the ruleset by ID for its full rule list.
func (c *cloudflareClient) ListRulesets(ctx context.Context, zoneID string) ([]Ruleset, error) {
	rulesets, err := c.api.ListRulesets(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.ListRulesetsParams{})
	if err != nil {
		return nil, classifyErr("list rulesets", err)
	}

	result := make([]Ruleset, len(rulesets))
	for i, rs := range rulesets {
		result[i] = mapRuleset(rs)
	}

	return result, nil
}

// GetRuleset returns a ruleset with its full rule list
func (c *cloudflareClient) GetRuleset(ctx context.Context, zoneID, rulesetID string) (*Ruleset, error) {
	ruleset, err := c.api.GetRuleset(ctx, cloudflare.ZoneIdentifier(zoneID), rulesetID)
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("get ruleset %s", rulesetID), err)
	}

	result := mapRuleset(ruleset)
	return &result, nil
}

// CreateRuleset creates a new ruleset on the zone
func (c *cloudflareClient) CreateRuleset(ctx context.Context, zoneID string, input CreateRulesetInput) (*Ruleset, error) {
	ruleset, err := c.api.CreateRuleset(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.CreateRulesetParams{
		Name:  input.Name,
		Kind:  input.Kind,
		Phase: input.Phase,
		Rules: mapToCloudflareRules(input.Rules),
	})
	if err != nil {
		return nil, classifyErr("create ruleset", err)
	}

	result := mapRuleset(ruleset)
	return &result, nil
}

// ReplaceRulesetRules replaces the ruleset's entire rule list in one write
func (c *cloudflareClient) ReplaceRulesetRules(ctx context.Context, zoneID, rulesetID string, rules []RulesetRule) (*Ruleset, error) {
	ruleset, err := c.api.UpdateRuleset(ctx, cloudflare.ZoneIdentifier(zoneID), cloudflare.UpdateRulesetParams{
		ID:    rulesetID,
		Rules: mapToCloudflareRules(rules),
	})
	if err != nil {
		return nil, classifyErr(fmt.Sprintf("update ruleset %s", rulesetID), err)
	}

	result := mapRuleset(ruleset)
	return &result, nil
}

// mapZone maps cloudflare-go Zone to our Zone
func mapZone(z cloudflare.Zone) Zone {
	return Zone{
		ID:          z.ID,
		Name:        z.Name,
		Status:      z.Status,
		Plan:        z.Plan.Name,
		NameServers: z.NameServers,
	}
}

// mapDNSRecord maps cloudflare-go DNSRecord to our DNSRecord
func mapDNSRecord(r cloudflare.DNSRecord) DNSRecord {
	proxied := false
	if r.Proxied != nil {
		proxied = *r.Proxied
	}
	return DNSRecord{
		ID:       r.ID,
		ZoneID:   r.ZoneID,
		ZoneName: r.ZoneName,
		Name:     r.Name,
		Type:     r.Type,
		Content:  r.Content,
		TTL:      r.TTL,
		Proxied:  proxied,
		Priority: r.Priority,
	}
}

// mapRuleset maps cloudflare-go Ruleset to our Ruleset
func mapRuleset(rs cloudflare.Ruleset) Ruleset {
	rules := make([]RulesetRule, len(rs.Rules))
	for i, r := range rs.Rules {
		rules[i] = mapRulesetRule(r)
	}
	return Ruleset{
		ID:    rs.ID,
		Name:  rs.Name,
		Kind:  rs.Kind,
		Phase: rs.Phase,
		Rules: rules,
	}
}

// mapRulesetRule maps a dynamic-redirect rule out of the SDK shape
func mapRulesetRule(r cloudflare.RulesetRule) RulesetRule {
	rule := RulesetRule{
		ID:          r.ID,
		Action:      r.Action,
		Expression:  r.Expression,
		Description: r.Description,
	}
	if r.ActionParameters != nil && r.ActionParameters.FromValue != nil {
		fv := r.ActionParameters.FromValue
		rule.StatusCode = fv.StatusCode
		rule.TargetValue = fv.TargetURL.Value
		rule.TargetExpression = fv.TargetURL.Expression
		if fv.PreserveQueryString != nil {
			rule.PreserveQueryString = *fv.PreserveQueryString
		}
	}
	return rule
}

// mapToCloudflareRules maps our rules back into the SDK shape for a write
func mapToCloudflareRules(rules []RulesetRule) []cloudflare.RulesetRule {
	out := make([]cloudflare.RulesetRule, len(rules))
	for i, r := range rules {
		preserve := r.PreserveQueryString
		out[i] = cloudflare.RulesetRule{
			Action:      r.Action,
			Expression:  r.Expression,
			Description: r.Description,
			ActionParameters: &cloudflare.RulesetRuleActionParameters{
				FromValue: &cloudflare.RulesetRuleActionParametersFromValue{
					StatusCode: r.StatusCode,
					TargetURL: cloudflare.RulesetRuleActionParametersTargetURL{
						Value:      r.TargetValue,
						Expression: r.TargetExpression,
					},
					PreserveQueryString: &preserve,
				},
			},
		}
	}
	return out
}
