package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PUBLIC_URL", "")
	t.Setenv("AUTH_X_TOKEN", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("LEADBOOK_DB_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Server.PublicURL)
	assert.Empty(t, cfg.Server.WebhookToken)
	assert.Contains(t, cfg.Storage.DBPath, "leadbook.db")
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PUBLIC_URL", "https://crm.example.com/")
	t.Setenv("AUTH_X_TOKEN", "s3cret")
	t.Setenv("HTTP_TIMEOUT", "5")
	t.Setenv("LEADBOOK_API_URL", "http://remote:8080/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://crm.example.com", cfg.Server.PublicURL)
	assert.Equal(t, "s3cret", cfg.Server.WebhookToken)
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, "http://remote:8080", cfg.Client.APIURL)
}

func TestInvalidIntegerFallsBack(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	var warnings []string
	assert.Equal(t, 30, getEnvAsInt("HTTP_TIMEOUT", 30, &warnings))
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "HTTP_TIMEOUT")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Contains(t, cfg.Warnings, "invalid integer for HTTP_TIMEOUT, using default: 30")
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Port: "http", PublicURL: "http://x"},
		Storage: StorageConfig{DBPath: "x.db"},
		Client:  ClientConfig{Timeout: time.Second},
	}
	assert.Error(t, cfg.Validate())

	cfg.Server.Port = "8080"
	assert.NoError(t, cfg.Validate())
}
