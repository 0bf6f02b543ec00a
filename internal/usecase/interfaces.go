package usecase

import (
	"context"

	"cf-bulk-manager/internal/domain"
)

// ZoneUsecase manages the synchronized zone list and zone onboarding
type ZoneUsecase interface {
	// CachedZones returns the current cache snapshot, nil when empty
	CachedZones() *domain.ZoneCacheEntry

	// IsStale reports whether the cache is missing or older than the TTL
	IsStale() bool

	// SyncZones fetches the complete zone list across all provider pages
	// and replaces the cache; the cache is untouched on any failure
	SyncZones(ctx context.Context) ([]domain.Zone, error)

	// EnsureFresh returns the cached snapshot, syncing first if stale
	EnsureFresh(ctx context.Context) (*domain.ZoneCacheEntry, error)

	// CreateZones onboards each domain in order, one provider call per
	// domain, collecting per-domain outcomes
	CreateZones(ctx context.Context, domains []string) ([]domain.ZoneCreateResult, error)

	// ResolveZone returns the zone for an ID, preferring the cache
	ResolveZone(ctx context.Context, zoneID string) (*domain.Zone, error)
}

// DNSUsecase covers single-record pass-through operations
type DNSUsecase interface {
	ListRecords(ctx context.Context, zoneID string) ([]domain.DNSRecord, error)
	CreateRecord(ctx context.Context, zoneID string, input RecordInput) (*domain.DNSRecord, error)
	UpdateRecord(ctx context.Context, zoneID, recordID string, input RecordInput) (*domain.DNSRecord, error)
	DeleteRecord(ctx context.Context, zoneID, recordID string) error
}

// RecordInput represents input for creating or updating a DNS record
type RecordInput struct {
	Name     string
	Type     string
	Content  string
	TTL      int
	Proxied  bool
	Priority *uint16
}

// RedirectUsecase appends forwarding rules to a zone's redirect ruleset
type RedirectUsecase interface {
	// AppendRule ensures the dynamic-redirect ruleset exists and appends
	// exactly one rule built from the (already rendered) template
	AppendRule(ctx context.Context, zoneID string, tpl domain.RedirectTemplate) (*domain.Ruleset, error)
}

// ProgressFunc observes the report snapshot after each processed target
type ProgressFunc func(domain.ExecutionReport)

// ExecutionState is the lifecycle of a bulk run
type ExecutionState int

const (
	StateIdle ExecutionState = iota
	StateRunning
	StateComplete
)

func (s ExecutionState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateComplete:
		return "complete"
	default:
		return "idle"
	}
}

// BulkUsecase executes one bulk job at a time across its target zones
type BulkUsecase interface {
	// Run processes every target strictly in order, never stopping early;
	// it returns the terminal report, or an error only for invalid input
	// or when a run is already in progress
	Run(ctx context.Context, job domain.BulkJob, progress ProgressFunc) (*domain.ExecutionReport, error)

	// State returns the current lifecycle state
	State() ExecutionState

	// Report returns the last run's report, nil when idle
	Report() *domain.ExecutionReport

	// Dismiss discards the held report and returns to idle
	Dismiss()
}
