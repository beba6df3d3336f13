package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("LEDGER_BASE_URL", "http://ledger.local")
	t.Setenv("STORAGE_TYPE", "memory")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, 10*time.Second, cfg.Ledger.Timeout)
	assert.Equal(t, 3, cfg.Ledger.MaxRetries)
	assert.Equal(t, 15*time.Minute, cfg.Cron.PostingRetryInterval)
	assert.Equal(t, "", cfg.Tax.SchedulePath)
}

func TestLoad_PostgresNeedsPassword(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DB_PASSWORD")
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("LEDGER_TIMEOUT", "ten")

	_, err := Load()
	assert.ErrorContains(t, err, "LEDGER_TIMEOUT")
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{Type: "memory"},
		JWT:     JWTConfig{Secret: "s"},
		Ledger:  LedgerConfig{BaseURL: "http://ledger"},
		Cron:    CronConfig{PostingRetryInterval: time.Minute},
	}
	require.NoError(t, cfg.Validate())

	cfg.Storage.Type = "sqlite"
	assert.Error(t, cfg.Validate())

	cfg.Storage.Type = "memory"
	cfg.Ledger.BaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "LEDGER_BASE_URL")
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", cfg.DatabaseURL())
}
