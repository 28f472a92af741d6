// ABOUTME: Runtime configuration loaded from .env and environment variables
// ABOUTME: Supplies XDG default paths for the record store and image store
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// AppName names the XDG data directory.
const AppName = "leadbook"

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Client   ClientConfig
	Google   GoogleConfig
	LogLevel string

	// Warnings collects problems that fell back to defaults, for the caller to log.
	Warnings []string
}

type ServerConfig struct {
	Port string
	// PublicURL is the base URL stored images are served from.
	PublicURL string
	// WebhookToken is the shared secret expected in the X-TOKEN header.
	WebhookToken string
}

type StorageConfig struct {
	DBPath   string
	BlobPath string
}

type ClientConfig struct {
	// APIURL points the TUI at a remote server instead of the local database.
	APIURL  string
	Timeout time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
}

// Load reads .env (if present) and the environment, applying defaults.
func Load() (*Config, error) {
	var warnings []string
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warnings = append(warnings, fmt.Sprintf("could not read .env: %v", err))
	}

	dataDir := filepath.Join(xdg.DataHome, AppName)
	port := getEnv("PORT", "8080")

	cfg := &Config{
		Server: ServerConfig{
			Port:         port,
			PublicURL:    strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
			WebhookToken: os.Getenv("AUTH_X_TOKEN"),
		},
		Storage: StorageConfig{
			DBPath:   getEnv("LEADBOOK_DB_PATH", filepath.Join(dataDir, "leadbook.db")),
			BlobPath: getEnv("LEADBOOK_BLOB_PATH", filepath.Join(dataDir, "blobs")),
		},
		Client: ClientConfig{
			APIURL:  strings.TrimRight(os.Getenv("LEADBOOK_API_URL"), "/"),
			Timeout: time.Duration(getEnvAsInt("HTTP_TIMEOUT", 30, &warnings)) * time.Second,
		},
		Google: GoogleConfig{
			ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
			ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
			TokenFile:    getEnv("GOOGLE_TOKEN_FILE", filepath.Join(dataDir, "google-token.json")),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Warnings: warnings,
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("PORT must be numeric, got %q", c.Server.Port)
	}
	if c.Storage.DBPath == "" {
		return fmt.Errorf("LEADBOOK_DB_PATH is required")
	}
	if c.Server.PublicURL == "" {
		return fmt.Errorf("PUBLIC_URL is required")
	}
	if c.Client.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int, warnings *[]string) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("invalid integer for %s, using default: %d", key, defaultValue))
		return defaultValue
	}

	return value
}
