package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("HELMWISE_DB_PATH", "test.db")
	os.Setenv("HELMWISE_DATA_DIR", "testdata-dir")
	os.Setenv("PAAPI_ACCESS_KEY", "test-access")
	defer func() {
		os.Unsetenv("HELMWISE_DB_PATH")
		os.Unsetenv("HELMWISE_DATA_DIR")
		os.Unsetenv("PAAPI_ACCESS_KEY")
	}()

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "testdata-dir", cfg.Storage.DataDir)
	assert.Equal(t, "test-access", cfg.PAAPI.AccessKey)
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	os.Unsetenv("HELMWISE_DB_PATH")
	os.Unsetenv("PAAPI_HOST")

	cfg := LoadFromEnv()
	assert.NotNil(t, cfg)
	assert.Equal(t, "helmwise.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "webservices.amazon.com", cfg.PAAPI.Host)
	assert.Equal(t, "us-east-1", cfg.PAAPI.Region)
	assert.Equal(t, float64(1), cfg.PAAPI.RequestsPerSecond)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
}

func TestLoadOrEnv_FallbackToEnv(t *testing.T) {
	os.Setenv("HELMWISE_DB_PATH", "fallback.db")
	defer os.Unsetenv("HELMWISE_DB_PATH")

	// Try to load from non-existent file
	cfg := LoadOrEnvWithPath("nonexistent.yaml")
	assert.NotNil(t, cfg)
	assert.Equal(t, "fallback.db", cfg.Storage.DatabasePath)
}

func TestEnvVarExpansion(t *testing.T) {
	// Create temp config file with env vars
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
storage:
  database_path: "${TEST_DB_PATH}"
paapi:
  secret_key: "${TEST_PAAPI_SECRET}"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("TEST_DB_PATH", "expanded.db")
	os.Setenv("TEST_PAAPI_SECRET", "expanded-secret")
	defer func() {
		os.Unsetenv("TEST_DB_PATH")
		os.Unsetenv("TEST_PAAPI_SECRET")
	}()

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "expanded-secret", cfg.PAAPI.SecretKey)
}

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
scraper:
  min_delay_ms: 500
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Scraper.MinDelayMs)
	// max delay never below min
	assert.Equal(t, 500, cfg.Scraper.MaxDelayMs)
	assert.Equal(t, "https://www.amazon.com", cfg.Scraper.BaseURL)
	assert.NotEmpty(t, cfg.Server.AllowedOrigins)
}
