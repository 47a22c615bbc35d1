package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const defaultCatalogURL = "https://api.jsonbin.io/v3/b/6932198043b1c97be9d86c43"

type Config struct {
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	Catalog CatalogConfig
	Redis   RedisConfig

	LogLevel  string
	LogFormat string
}

type CatalogConfig struct {
	URL              string
	AccessKey        string
	Timeout          time.Duration
	BreakerFailures  uint32
	BreakerOpenDelay time.Duration
}

// RedisConfig configures the change relay. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// Load reads envFile (if it exists) into the environment, then builds Config
// from environment variables with defaults.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var errs []error
	cfg := &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		Catalog: CatalogConfig{
			URL:              getEnv("CATALOG_URL", defaultCatalogURL),
			AccessKey:        getEnv("CATALOG_ACCESS_KEY", ""),
			Timeout:          getDuration("CATALOG_TIMEOUT", 10*time.Second, &errs),
			BreakerFailures:  getUint32("CATALOG_BREAKER_FAILURES", 3, &errs),
			BreakerOpenDelay: getDuration("CATALOG_BREAKER_OPEN_TIMEOUT", 30*time.Second, &errs),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			TTL:      getDuration("RELAY_TTL", 15*time.Minute, &errs),
		},
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.Catalog.BreakerFailures == 0 {
		errs = append(errs, errors.New("CATALOG_BREAKER_FAILURES must be positive"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errs = append(*errs, fmt.Errorf("%s: %q is not a positive duration", key, raw))
		return defaultValue
	}
	return d
}

func getUint32(key string, defaultValue uint32, errs *[]error) uint32 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %q is not an unsigned integer", key, raw))
		return defaultValue
	}
	return uint32(n)
}
