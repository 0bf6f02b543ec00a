package repository

import (
	"context"

	"cf-bulk-manager/internal/domain"
)

// ZoneRepository defines the interface for zone operations
type ZoneRepository interface {
	// ListZonesPage returns one page of the account's zone list together
	// with the provider's pagination envelope
	ListZonesPage(ctx context.Context, page, perPage int) (*domain.ZonePage, error)

	// GetZone returns a zone by its ID
	GetZone(ctx context.Context, zoneID string) (*domain.Zone, error)

	// GetZoneByName returns a zone by its name
	GetZoneByName(ctx context.Context, name string) (*domain.Zone, error)

	// CreateZone onboards a new domain to the account
	CreateZone(ctx context.Context, name string) (*domain.Zone, error)
}

// DNSRepository defines the interface for DNS record operations
type DNSRepository interface {
	// ListRecords returns all DNS records for a zone with optional filters
	ListRecords(ctx context.Context, zoneID string, filter domain.RecordFilter) ([]domain.DNSRecord, error)

	// CreateRecord creates a new DNS record
	CreateRecord(ctx context.Context, zoneID string, record *domain.DNSRecord) (*domain.DNSRecord, error)

	// UpdateRecord updates an existing DNS record
	UpdateRecord(ctx context.Context, zoneID, recordID string, record *domain.DNSRecord) (*domain.DNSRecord, error)

	// DeleteRecord deletes a DNS record
	DeleteRecord(ctx context.Context, zoneID, recordID string) error

	// FindByName finds a DNS record by name within a zone
	FindByName(ctx context.Context, zoneID, name string) (*domain.DNSRecord, error)
}

// RulesetRepository defines the interface for redirect ruleset operations
type RulesetRepository interface {
	// FindRedirectRuleset locates the zone's dynamic-redirect phase
	// ruleset; returns domain.ErrRulesetNotFound when the zone has none
	FindRedirectRuleset(ctx context.Context, zoneID string) (*domain.Ruleset, error)

	// GetRuleset returns a ruleset with its full rule list
	GetRuleset(ctx context.Context, zoneID, rulesetID string) (*domain.Ruleset, error)

	// CreateRedirectRuleset creates an empty dynamic-redirect ruleset
	CreateRedirectRuleset(ctx context.Context, zoneID string) (*domain.Ruleset, error)

	// ReplaceRules replaces the ruleset's whole rule list in a single write
	ReplaceRules(ctx context.Context, zoneID, rulesetID string, rules []domain.RedirectRule) (*domain.Ruleset, error)
}
