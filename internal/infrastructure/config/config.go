// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dataDir := cfg.Storage.DataDir
//	accessKey := cfg.PAAPI.AccessKey
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	PAAPI         PAAPIConfig         `yaml:"paapi"`
	Scraper       ScraperConfig       `yaml:"scraper"`
	Server        ServerConfig        `yaml:"server"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds store and database paths
type StorageConfig struct {
	// DataDir holds the per-store JSON blobs (comparison, alerts, history, ...)
	DataDir string `yaml:"data_dir"`
	// DatabasePath is the SQLite run/audit database used by the CLI tools
	DatabasePath string `yaml:"database_path"`
}

// PAAPIConfig holds Amazon Product Advertising API credentials and budget
type PAAPIConfig struct {
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	PartnerTag string `yaml:"partner_tag"`
	Host       string `yaml:"host"`
	Region     string `yaml:"region"`
	// RequestsPerSecond is the self-imposed rate limit (PA-API default tier is 1/s)
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	// DailyBudget caps total calls per process run (0 = unlimited)
	DailyBudget int `yaml:"daily_budget"`
}

// ScraperConfig holds search-page scraping settings
type ScraperConfig struct {
	BaseURL    string `yaml:"base_url"`
	UserAgent  string `yaml:"user_agent"`
	MinDelayMs int    `yaml:"min_delay_ms"`
	MaxDelayMs int    `yaml:"max_delay_ms"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// ServerConfig holds HTTP API server settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${PAAPI_SECRET_KEY})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	cfg := &Config{
		Storage: StorageConfig{
			DataDir:      getEnv("HELMWISE_DATA_DIR", "data"),
			DatabasePath: getEnv("HELMWISE_DB_PATH", "helmwise.db"),
		},
		PAAPI: PAAPIConfig{
			AccessKey:         os.Getenv("PAAPI_ACCESS_KEY"),
			SecretKey:         os.Getenv("PAAPI_SECRET_KEY"),
			PartnerTag:        os.Getenv("PAAPI_PARTNER_TAG"),
			Host:              getEnv("PAAPI_HOST", "webservices.amazon.com"),
			Region:            getEnv("PAAPI_REGION", "us-east-1"),
			RequestsPerSecond: 1,
			DailyBudget:       getEnvInt("PAAPI_DAILY_BUDGET", 8640),
		},
		Scraper: ScraperConfig{
			BaseURL:    getEnv("SCRAPER_BASE_URL", "https://www.amazon.com"),
			MinDelayMs: getEnvInt("SCRAPER_MIN_DELAY_MS", 800),
			MaxDelayMs: getEnvInt("SCRAPER_MAX_DELAY_MS", 2500),
			TimeoutSec: getEnvInt("SCRAPER_TIMEOUT_SEC", 30),
		},
		Server: ServerConfig{
			Port: getEnvInt("HELMWISE_API_PORT", 8080),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// applyDefaults fills zero values that would otherwise break callers
func (c *Config) applyDefaults() {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = "helmwise.db"
	}
	if c.PAAPI.Host == "" {
		c.PAAPI.Host = "webservices.amazon.com"
	}
	if c.PAAPI.Region == "" {
		c.PAAPI.Region = "us-east-1"
	}
	if c.PAAPI.RequestsPerSecond <= 0 {
		c.PAAPI.RequestsPerSecond = 1
	}
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://www.amazon.com"
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.Scraper.MinDelayMs <= 0 {
		c.Scraper.MinDelayMs = 800
	}
	if c.Scraper.MaxDelayMs < c.Scraper.MinDelayMs {
		c.Scraper.MaxDelayMs = c.Scraper.MinDelayMs
	}
	if c.Scraper.TimeoutSec <= 0 {
		c.Scraper.TimeoutSec = 30
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = "info"
	}
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}
