package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cf-bulk-manager/pkg/storage"
)

func TestSettingsDefaultsBeforeFirstSave(t *testing.T) {
	store := storage.NewJSONStorage(t.TempDir())

	settings, err := store.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 1, settings.DefaultTTL)
	assert.Equal(t, "reports@{{DOMAIN}}", settings.DMARCReportEmail)
}

func TestSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewJSONStorage(dir)

	require.NoError(t, store.SaveSettings(&storage.Settings{
		DefaultTTL:       300,
		DMARCReportEmail: "dmarc@ops.example",
	}))

	// a fresh instance reads the same file
	settings, err := storage.NewJSONStorage(dir).LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 300, settings.DefaultTTL)
	assert.Equal(t, "dmarc@ops.example", settings.DMARCReportEmail)
}

func TestZoneCacheMissingFile(t *testing.T) {
	store := storage.NewJSONStorage(t.TempDir())

	snap, err := store.LoadZoneCache()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestZoneCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewJSONStorage(dir)

	require.NoError(t, store.SaveZoneCache(&storage.ZoneSnapshot{
		Zones: []storage.CachedZone{
			{ID: "z1", Name: "a.com", Status: "active", Plan: "Free", NameServers: []string{"ns1.example.org"}},
		},
		FetchedAt: 1748779200000,
	}))

	snap, err := storage.NewJSONStorage(dir).LoadZoneCache()
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snap.Zones, 1)
	assert.Equal(t, "a.com", snap.Zones[0].Name)
	assert.Equal(t, int64(1748779200000), snap.FetchedAt)
}

func TestZoneCacheCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zones_cache.json"), []byte("{not json"), 0644))

	_, err := storage.NewJSONStorage(dir).LoadZoneCache()
	assert.Error(t, err)
}

func TestSaveCreatesDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	store := storage.NewJSONStorage(dir)

	require.NoError(t, store.SaveSettings(&storage.Settings{DefaultTTL: 1}))
	_, err := os.Stat(filepath.Join(dir, "settings.json"))
	assert.NoError(t, err)
}

func TestMemoryZoneCacheEmpty(t *testing.T) {
	snap, err := storage.NewMemoryZoneCache().LoadZoneCache()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestScopedStorageIsolatesZoneCache(t *testing.T) {
	dir := t.TempDir()
	shared := storage.NewJSONStorage(dir)
	scoped := storage.Scoped(shared, storage.NewMemoryZoneCache())

	require.NoError(t, scoped.SaveZoneCache(&storage.ZoneSnapshot{
		Zones:     []storage.CachedZone{{ID: "z1", Name: "a.com", Status: "active"}},
		FetchedAt: 1748779200000,
	}))

	// the scoped cache saw the save, the shared file did not
	snap, err := scoped.LoadZoneCache()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "a.com", snap.Zones[0].Name)

	snap, err = shared.LoadZoneCache()
	require.NoError(t, err)
	assert.Nil(t, snap)

	// settings still go through the shared store
	require.NoError(t, scoped.SaveSettings(&storage.Settings{DefaultTTL: 300}))
	settings, err := shared.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, 300, settings.DefaultTTL)
}
