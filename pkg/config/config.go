package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Cloudflare
	CloudflareAPIToken string
	CloudflareAPIKey   string
	CloudflareEmail    string

	// Telegram
	TelegramBotToken string
	AllowedUsers     []int64

	// REST API
	APIHost string
	APIPort string

	// Storage
	DataDir string

	// Zone cache staleness threshold
	ZoneCacheTTL time.Duration
}

// Load loads configuration from environment variables. Credential
// validation is left to the caller: the REST API can run without a
// server-side credential, the other binaries cannot.
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		CloudflareAPIToken: getEnv("CLOUDFLARE_API_TOKEN", ""),
		CloudflareAPIKey:   getEnv("CLOUDFLARE_API_KEY", ""),
		CloudflareEmail:    getEnv("CLOUDFLARE_EMAIL", ""),
		TelegramBotToken:   getEnv("TELEGRAM_BOT_TOKEN", ""),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		APIPort:            getEnv("API_PORT", "3001"),
		DataDir:            getEnv("DATA_DIR", "./data"),
		ZoneCacheTTL:       time.Hour,
	}

	if ttlStr := getEnv("ZONE_CACHE_TTL", ""); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("invalid ZONE_CACHE_TTL: %s", ttlStr)
		}
		cfg.ZoneCacheTTL = ttl
	}

	// Parse allowed users
	if usersStr := getEnv("TELEGRAM_ALLOWED_USERS", ""); usersStr != "" {
		userIDs := strings.Split(usersStr, ",")
		for _, idStr := range userIDs {
			idStr = strings.TrimSpace(idStr)
			if idStr == "" {
				continue
			}
			id, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID in TELEGRAM_ALLOWED_USERS: %s", idStr)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, id)
		}
	}

	return cfg, nil
}

// Validate validates the Cloudflare credentials every binary needs
func (c *Config) Validate() error {
	if c.CloudflareAPIToken == "" {
		if c.CloudflareAPIKey == "" || c.CloudflareEmail == "" {
			return fmt.Errorf("either CLOUDFLARE_API_TOKEN or both CLOUDFLARE_API_KEY and CLOUDFLARE_EMAIL are required")
		}
	}
	return nil
}

// ValidateTelegram validates the extra settings the bot binary needs
func (c *Config) ValidateTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	return nil
}

// UseAPIToken returns true if API token should be used
func (c *Config) UseAPIToken() bool {
	return c.CloudflareAPIToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
