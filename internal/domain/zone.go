package domain

import "time"

// ZoneStatus represents the lifecycle status of a zone at the provider
type ZoneStatus string

const (
	ZoneStatusActive  ZoneStatus = "active"
	ZoneStatusPending ZoneStatus = "pending"
	ZoneStatusOther   ZoneStatus = "other"
)

// ParseZoneStatus maps the provider's status string to a ZoneStatus
func ParseZoneStatus(s string) ZoneStatus {
	switch s {
	case "active":
		return ZoneStatusActive
	case "pending":
		return ZoneStatusPending
	default:
		return ZoneStatusOther
	}
}

// Zone represents a managed domain under the provider account
type Zone struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      ZoneStatus `json:"status"`
	Plan        string     `json:"plan"`
	NameServers []string   `json:"name_servers,omitempty"`
}

// ZoneCacheEntry is a full snapshot of the synchronized zone list.
// The zone slice is always replaced wholesale, never patched, so a reader
// can never observe a truncated result set.
type ZoneCacheEntry struct {
	Zones     []Zone    `json:"zones"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ZonePage is one page of the provider's zone listing
type ZonePage struct {
	Zones      []Zone
	Page       int
	TotalPages int
	TotalCount int
}

// ZoneCreateResult is the per-domain outcome of a bulk zone creation
type ZoneCreateResult struct {
	Name        string   `json:"name"`
	Created     bool     `json:"created"`
	NameServers []string `json:"name_servers,omitempty"`
	Error       string   `json:"error,omitempty"`
}
