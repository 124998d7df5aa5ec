package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":8050", cfg.Server.Address)
	assert.Equal(t, DefaultDatasetURL, cfg.Dataset.URL)
	assert.Equal(t, "classic", cfg.Dashboard.Variant)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "evadash.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  address: "127.0.0.1:9000"
  shutdown_timeout: 3s
dataset:
  refresh_interval: 1h
  retries: 5
dashboard:
  variant: compact
log_level: debug
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Address)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout.Duration)
	assert.Equal(t, time.Hour, cfg.Dataset.RefreshInterval.Duration)
	assert.Equal(t, 5, cfg.Dataset.Retries)
	assert.Equal(t, "compact", cfg.Dashboard.Variant)
	assert.Equal(t, "debug", cfg.LogLevel)
	// untouched keys keep their defaults
	assert.Equal(t, DefaultStoreURL, cfg.Store.URL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	scenarios := map[string]string{
		"unknown variant": "dashboard:\n  variant: fancy\n",
		"bad store":       "store:\n  url: mongodb://db/evas\n",
		"bad color":       "dashboard:\n  colors:\n    USA: blue\n",
		"no retries":      "dataset:\n  retries: 0\n",
		"bad duration":    "server:\n  idle_timeout: soon\n",
	}

	for name, body := range scenarios {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "evadash.yml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"EVADASH_SERVER_ADDRESS":           ":9999",
		"EVADASH_DATASET_REFRESH_INTERVAL": "15m",
		"EVADASH_DATASET_RETRIES":          "7",
		"EVADASH_STORE_URL":                "postgres://u:p@db/evas",
		"EVADASH_LOG_LEVEL":                "warn",
	}

	cfg := Default()
	err := applyEnv(cfg, EnvPrefix, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, 15*time.Minute, cfg.Dataset.RefreshInterval.Duration)
	assert.Equal(t, 7, cfg.Dataset.Retries)
	assert.Equal(t, "postgres://u:p@db/evas", cfg.Store.URL)
	assert.Equal(t, "warn", cfg.LogLevel)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvInvalidNumber(t *testing.T) {
	t.Parallel()

	err := applyEnv(Default(), EnvPrefix, func(key string) (string, bool) {
		if key == "EVADASH_DATASET_RETRIES" {
			return "many", true
		}
		return "", false
	})
	require.ErrorContains(t, err, "EVADASH_DATASET_RETRIES")
}
