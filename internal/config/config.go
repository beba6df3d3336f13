package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	App      AppConfig
	Ledger   LedgerConfig
	Tax      TaxConfig
	Cron     CronConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StorageConfig selects the repository backend: "postgres" or "memory"
type StorageConfig struct {
	Type string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// LedgerConfig points at the external cash ledger
type LedgerConfig struct {
	BaseURL            string
	APIToken           string
	Timeout            time.Duration
	MaxRetries         int
	DefaultCashAccount string
}

// TaxConfig holds the tax schedule file; empty uses the embedded table
type TaxConfig struct {
	SchedulePath string
}

type CronConfig struct {
	PostingRetryInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, reading configuration from environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Storage = StorageConfig{
		Type: getEnv("STORAGE_TYPE", "postgres"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Ledger configuration
	ledgerTimeout, err := time.ParseDuration(getEnv("LEDGER_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_TIMEOUT: %w", err)
	}
	ledgerRetries, err := strconv.Atoi(getEnv("LEDGER_MAX_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEDGER_MAX_RETRIES: %w", err)
	}

	config.Ledger = LedgerConfig{
		BaseURL:            getEnv("LEDGER_BASE_URL", ""),
		APIToken:           getEnv("LEDGER_API_TOKEN", ""),
		Timeout:            ledgerTimeout,
		MaxRetries:         ledgerRetries,
		DefaultCashAccount: getEnv("LEDGER_DEFAULT_CASH_ACCOUNT", ""),
	}

	config.Tax = TaxConfig{
		SchedulePath: getEnv("TAX_SCHEDULE_PATH", ""),
	}

	retryInterval, err := time.ParseDuration(getEnv("CRON_POSTING_RETRY_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_POSTING_RETRY_INTERVAL: %w", err)
	}
	config.Cron = CronConfig{
		PostingRetryInterval: retryInterval,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "memory":
	default:
		return fmt.Errorf("STORAGE_TYPE must be postgres or memory, got %q", c.Storage.Type)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("LEDGER_BASE_URL is required")
	}
	if c.Ledger.MaxRetries < 0 {
		return fmt.Errorf("LEDGER_MAX_RETRIES must not be negative")
	}
	if c.Cron.PostingRetryInterval <= 0 {
		return fmt.Errorf("CRON_POSTING_RETRY_INTERVAL must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
