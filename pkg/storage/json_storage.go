package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonStorage implements CombinedStorage using JSON files in a data dir
type jsonStorage struct {
	settingsPath string
	cachePath    string
	mu           sync.RWMutex
}

// NewJSONStorage creates a new JSON storage rooted at dataDir
func NewJSONStorage(dataDir string) CombinedStorage {
	return &jsonStorage{
		settingsPath: filepath.Join(dataDir, "settings.json"),
		cachePath:    filepath.Join(dataDir, "zones_cache.json"),
	}
}

// LoadSettings loads settings from the JSON file
func (s *jsonStorage) LoadSettings() (*Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.settingsPath); os.IsNotExist(err) {
		return s.defaultSettings(), nil
	}

	data, err := os.ReadFile(s.settingsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}

	return &settings, nil
}

// SaveSettings saves settings to the JSON file
func (s *jsonStorage) SaveSettings(settings *Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeFile(s.settingsPath, settings)
}

// LoadZoneCache loads the persisted zone snapshot, nil when none exists
func (s *jsonStorage) LoadZoneCache() (*ZoneSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := os.Stat(s.cachePath); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(s.cachePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read zone cache file: %w", err)
	}

	var snap ZoneSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse zone cache file: %w", err)
	}

	return &snap, nil
}

// SaveZoneCache persists the zone snapshot wholesale
func (s *jsonStorage) SaveZoneCache(snap *ZoneSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.writeFile(s.cachePath, snap)
}

// writeFile marshals v and writes it, creating the data dir if needed
func (s *jsonStorage) writeFile(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	return nil
}

// defaultSettings returns the settings used before any save
func (s *jsonStorage) defaultSettings() *Settings {
	return &Settings{
		DefaultTTL:       1,
		DMARCReportEmail: "reports@{{DOMAIN}}",
	}
}
