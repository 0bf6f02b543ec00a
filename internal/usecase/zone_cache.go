package usecase

import (
	"fmt"
	"time"

	"cf-bulk-manager/internal/domain"
	"cf-bulk-manager/pkg/storage"
)

// ZoneCache holds the last fully synchronized zone list in memory and
// mirrors it to a persistence port. The entry is swapped wholesale by a
// single writer (the zone synchronizer); readers only ever see a complete
// snapshot or none at all.
type ZoneCache struct {
	store storage.ZoneCacheStorage
	entry *domain.ZoneCacheEntry
	now   func() time.Time
}

// NewZoneCache creates a zone cache over the given persistence port
func NewZoneCache(store storage.ZoneCacheStorage) *ZoneCache {
	return &ZoneCache{
		store: store,
		now:   time.Now,
	}
}

// Load hydrates the cache from persisted state. A missing snapshot leaves
// the cache empty without error.
func (c *ZoneCache) Load() error {
	snap, err := c.store.LoadZoneCache()
	if err != nil {
		return fmt.Errorf("failed to load zone cache: %w", err)
	}
	if snap == nil {
		return nil
	}

	zones := make([]domain.Zone, len(snap.Zones))
	for i, z := range snap.Zones {
		zones[i] = domain.Zone{
			ID:          z.ID,
			Name:        z.Name,
			Status:      domain.ZoneStatus(z.Status),
			Plan:        z.Plan,
			NameServers: z.NameServers,
		}
	}

	c.entry = &domain.ZoneCacheEntry{
		Zones:     zones,
		FetchedAt: time.UnixMilli(snap.FetchedAt),
	}
	return nil
}

// Read returns the current snapshot, nil when the cache is empty
func (c *ZoneCache) Read() *domain.ZoneCacheEntry {
	return c.entry
}

// IsStale reports whether no entry exists or the entry is at least ttl old
func (c *ZoneCache) IsStale(ttl time.Duration) bool {
	if c.entry == nil {
		return true
	}
	return c.now().Sub(c.entry.FetchedAt) >= ttl
}

// Replace atomically swaps in a new complete zone list and persists it.
// Only a fully successful sync may call this; the in-memory entry is
// updated even when persisting fails, and the persist error is returned.
func (c *ZoneCache) Replace(zones []domain.Zone) error {
	c.entry = &domain.ZoneCacheEntry{
		Zones:     zones,
		FetchedAt: c.now(),
	}

	cached := make([]storage.CachedZone, len(zones))
	for i, z := range zones {
		cached[i] = storage.CachedZone{
			ID:          z.ID,
			Name:        z.Name,
			Status:      string(z.Status),
			Plan:        z.Plan,
			NameServers: z.NameServers,
		}
	}

	if err := c.store.SaveZoneCache(&storage.ZoneSnapshot{
		Zones:     cached,
		FetchedAt: c.entry.FetchedAt.UnixMilli(),
	}); err != nil {
		return fmt.Errorf("failed to persist zone cache: %w", err)
	}
	return nil
}
