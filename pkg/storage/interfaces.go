package storage

// Settings represents operator preferences persisted between runs
type Settings struct {
	DefaultTTL       int    `json:"default_ttl"`
	DMARCReportEmail string `json:"dmarc_report_email"`
}

// CachedZone is the persisted form of one synchronized zone
type CachedZone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Plan        string   `json:"plan"`
	NameServers []string `json:"name_servers,omitempty"`
}

// ZoneSnapshot is the persisted zone cache: the full zone list plus the
// moment it was fetched, in epoch milliseconds.
type ZoneSnapshot struct {
	Zones     []CachedZone `json:"zones"`
	FetchedAt int64        `json:"fetched_at"`
}

// SettingsStorage defines the interface for settings persistence
type SettingsStorage interface {
	LoadSettings() (*Settings, error)
	SaveSettings(s *Settings) error
}

// ZoneCacheStorage defines the interface for zone cache persistence.
// Load returns nil without error when no snapshot has been saved yet.
type ZoneCacheStorage interface {
	LoadZoneCache() (*ZoneSnapshot, error)
	SaveZoneCache(snap *ZoneSnapshot) error
}

// CombinedStorage bundles all persistence concerns of the application
type CombinedStorage interface {
	SettingsStorage
	ZoneCacheStorage
}
