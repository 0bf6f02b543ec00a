package storage

import "sync"

// memoryZoneCache implements ZoneCacheStorage in process memory. Service
// bundles built for a caller-supplied credential use it so one
// credential's sync never reaches the snapshot file another reads.
type memoryZoneCache struct {
	mu   sync.RWMutex
	snap *ZoneSnapshot
}

// NewMemoryZoneCache creates an empty in-memory zone cache store
func NewMemoryZoneCache() ZoneCacheStorage {
	return &memoryZoneCache{}
}

// LoadZoneCache returns the held snapshot, nil when nothing was saved yet
func (m *memoryZoneCache) LoadZoneCache() (*ZoneSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap, nil
}

// SaveZoneCache replaces the held snapshot
func (m *memoryZoneCache) SaveZoneCache(snap *ZoneSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap
	return nil
}

// scopedStorage pairs shared settings persistence with a private zone cache
type scopedStorage struct {
	SettingsStorage
	ZoneCacheStorage
}

// Scoped combines the shared settings store with a zone cache private to
// one credential
func Scoped(settings SettingsStorage, cache ZoneCacheStorage) CombinedStorage {
	return &scopedStorage{SettingsStorage: settings, ZoneCacheStorage: cache}
}
