package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	DatabaseURL    string
	MigrationsPath string

	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string

	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	AmazonAffiliateTag string
	SiteURL            string

	StorageEndpoint  string
	StorageBucket    string
	StorageRegion    string
	StoragePublicURL string
	StorageAccessKey string
	StorageSecretKey string

	TelegramToken string

	SESFromEmail string
	AWSRegion    string

	// ScrapeRPS is the per-client request rate allowed on scrape routes.
	ScrapeRPS   float64
	ScrapeBurst int
}

// Load loads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:      getEnvOrDefault("LOG_FORMAT", "text"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),

		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),

		LLMAPIKey:  os.Getenv("LLM_API_KEY"),
		LLMBaseURL: getEnvOrDefault("LLM_BASE_URL", "https://api.anthropic.com/v1"),
		LLMModel:   getEnvOrDefault("LLM_MODEL", "claude-3-5-sonnet-latest"),

		AmazonAffiliateTag: os.Getenv("AMAZON_AFFILIATE_TAG"),
		SiteURL:            getEnvOrDefault("SITE_URL", "http://localhost:8080"),

		StorageEndpoint:  os.Getenv("STORAGE_ENDPOINT"),
		StorageBucket:    getEnvOrDefault("STORAGE_BUCKET", "uploads"),
		StorageRegion:    getEnvOrDefault("STORAGE_REGION", "us-east-1"),
		StoragePublicURL: os.Getenv("STORAGE_PUBLIC_URL"),
		StorageAccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
		StorageSecretKey: os.Getenv("STORAGE_SECRET_KEY"),

		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),

		SESFromEmail: os.Getenv("SES_FROM_EMAIL"),
		AWSRegion:    getEnvOrDefault("AWS_REGION", "us-east-1"),
	}

	var err error
	if cfg.ScrapeRPS, err = strconv.ParseFloat(getEnvOrDefault("SCRAPE_RPS", "2"), 64); err != nil {
		return nil, fmt.Errorf("SCRAPE_RPS must be a number: %w", err)
	}
	if cfg.ScrapeBurst, err = strconv.Atoi(getEnvOrDefault("SCRAPE_BURST", "5")); err != nil {
		return nil, fmt.Errorf("SCRAPE_BURST must be an integer: %w", err)
	}

	if _, err := strconv.Atoi(cfg.Port); err != nil {
		return nil, fmt.Errorf("PORT must be numeric, got %q", cfg.Port)
	}

	return cfg, nil
}

// HasDatabase reports whether a backing store is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// HasStorage reports whether bucket uploads are configured.
func (c *Config) HasStorage() bool {
	return c.StorageEndpoint != "" && c.StorageAccessKey != "" && c.StorageSecretKey != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
