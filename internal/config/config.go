// Package config loads application settings from environment
// variables. main loads a .env file first via godotenv.
package config

import (
	"os"
	"strconv"

	"autoficate/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Media    MediaConfig
	Security SecurityConfig
	Cache    CacheConfig
	Session  SessionConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// MediaConfig holds blob storage and font lookup paths
type MediaConfig struct {
	Root       string
	PublicBase string
	FontsDir   string
}

// SecurityConfig holds the cookie sealing key
type SecurityConfig struct {
	// SecretKey must be at least 32 bytes; the first 32 seal the
	// identity cookie.
	SecretKey string
}

// SessionConfig holds session lifecycle settings
type SessionConfig struct {
	// TTLDays is how long an idle session row survives before the
	// expiry sweep removes it.
	TTLDays int
}

// CacheConfig holds inspector window settings
type CacheConfig struct {
	// WindowLimit is how many values per heading stay cached before
	// the inspector requires an explicit load-all.
	WindowLimit int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Media: MediaConfig{
			Root:       getEnvOrDefault("MEDIA_ROOT", "media"),
			PublicBase: getEnvOrDefault("MEDIA_PUBLIC_BASE", "/media"),
			FontsDir:   getEnvOrDefault("FONTS_DIR", "static/fonts"),
		},
		Security: SecurityConfig{
			SecretKey: os.Getenv("SECRET_KEY"),
		},
		Cache: CacheConfig{
			WindowLimit: getEnvIntOrDefault("CACHE_WINDOW_LIMIT", 10),
		},
		Session: SessionConfig{
			TTLDays: getEnvIntOrDefault("SESSION_TTL_DAYS", 14),
		},
	}

	if err := validate(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if len(c.Security.SecretKey) < 32 {
		return errors.ConfigInvalid("SECRET_KEY must be at least 32 bytes")
	}
	if c.Cache.WindowLimit < 1 {
		return errors.ConfigInvalid("CACHE_WINDOW_LIMIT must be positive")
	}
	if c.Session.TTLDays < 1 {
		return errors.ConfigInvalid("SESSION_TTL_DAYS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvIntOrDefault(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
