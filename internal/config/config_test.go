package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT",
	"CATALOG_URL", "CATALOG_ACCESS_KEY", "CATALOG_TIMEOUT",
	"CATALOG_BREAKER_FAILURES", "CATALOG_BREAKER_OPEN_TIMEOUT",
	"REDIS_ADDR", "REDIS_PASSWORD", "RELAY_TTL", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, defaultCatalogURL, cfg.Catalog.URL)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, uint32(3), cfg.Catalog.BreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.Catalog.BreakerOpenDelay)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 15*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("CATALOG_URL", "http://catalog.local/b/1")
	t.Setenv("CATALOG_ACCESS_KEY", "secret")
	t.Setenv("CATALOG_TIMEOUT", "2s")
	t.Setenv("CATALOG_BREAKER_FAILURES", "5")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("RELAY_TTL", "1m")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "http://catalog.local/b/1", cfg.Catalog.URL)
	assert.Equal(t, "secret", cfg.Catalog.AccessKey)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, uint32(5), cfg.Catalog.BreakerFailures)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, time.Minute, cfg.Redis.TTL)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_InvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_TIMEOUT", "soon")
	t.Setenv("CATALOG_BREAKER_FAILURES", "-1")
	t.Setenv("RELAY_TTL", "0s")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "CATALOG_TIMEOUT")
	assert.ErrorContains(t, err, "CATALOG_BREAKER_FAILURES")
	assert.ErrorContains(t, err, "RELAY_TTL")
}

func TestLoad_ZeroBreakerFailures(t *testing.T) {
	clearEnv(t)
	t.Setenv("CATALOG_BREAKER_FAILURES", "0")

	_, err := Load("")
	assert.ErrorContains(t, err, "must be positive")
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)
	// godotenv does not override variables that are already set
	require.NoError(t, os.Unsetenv("HTTP_PORT"))
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("HTTP_PORT=7070\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_MissingEnvFileIsIgnored(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
