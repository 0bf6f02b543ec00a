package cloudflare

import "context"

// Client defines the interface for Cloudflare API operations
type Client interface {
	// Zone operations
	ListZonesPage(ctx context.Context, page, perPage int) (*ZonePage, error)
	GetZone(ctx context.Context, zoneID string) (*Zone, error)
	GetZoneByName(ctx context.Context, name string) (*Zone, error)
	CreateZone(ctx context.Context, name string) (*Zone, error)

	// DNS Record operations
	ListDNSRecords(ctx context.Context, zoneID string, filter DNSRecordFilter) ([]DNSRecord, error)
	CreateDNSRecord(ctx context.Context, zoneID string, input CreateDNSRecordInput) (*DNSRecord, error)
	UpdateDNSRecord(ctx context.Context, zoneID, recordID string, input CreateDNSRecordInput) (*DNSRecord, error)
	DeleteDNSRecord(ctx context.Context, zoneID, recordID string) error

	// Ruleset operations
	ListRulesets(ctx context.Context, zoneID string) ([]Ruleset, error)
	GetRuleset(ctx context.Context, zoneID, rulesetID string) (*Ruleset, error)
	CreateRuleset(ctx context.Context, zoneID string, input CreateRulesetInput) (*Ruleset, error)
	ReplaceRulesetRules(ctx context.Context, zoneID, rulesetID string, rules []RulesetRule) (*Ruleset, error)
}

// Zone represents a Cloudflare zone (domain)
type Zone struct {
	ID          string
	Name        string
	Status      string
	Plan        string
	NameServers []string
}

// ZonePage is one page of the zone listing plus the pagination envelope
type ZonePage struct {
	Zones      []Zone
	Page       int
	TotalPages int
	TotalCount int
}

// DNSRecord represents a DNS record from Cloudflare
type DNSRecord struct {
	ID       string
	ZoneID   string
	ZoneName string
	Name     string
	Type     string
	Content  string
	TTL      int
	Proxied  bool
	Priority *uint16
}

// DNSRecordFilter represents filters for listing DNS records
type DNSRecordFilter struct {
	Name string
	Type string
}

// CreateDNSRecordInput represents input for creating or updating a DNS record
type CreateDNSRecordInput struct {
	Name     string
	Type     string
	Content  string
	TTL      int
	Proxied  bool
	Priority *uint16
}

// Ruleset represents a Cloudflare ruleset
type Ruleset struct {
	ID    string
	Name  string
	Kind  string
	Phase string
	Rules []RulesetRule
}

// RulesetRule represents one redirect rule within a ruleset
type RulesetRule struct {
	ID                  string
	Action              string
	Expression          string
	Description         string
	StatusCode          uint16
	TargetValue         string
	TargetExpression    string
	PreserveQueryString bool
}

// CreateRulesetInput represents input for creating a ruleset
type CreateRulesetInput struct {
	Name  string
	Kind  string
	Phase string
	Rules []RulesetRule
}
