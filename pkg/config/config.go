package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelpgrid/driftwatch/pkg/observability"
	"github.com/kelpgrid/driftwatch/pkg/storage"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	Storage       storage.Config
	Cache         CacheConfig
	Auth          AuthConfig
	Seed          SeedConfig
	Subscription  SubscriptionConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// CacheConfig holds in-process cache tuning.
type CacheConfig struct {
	DefaultTTL    time.Duration
	SweepInterval time.Duration
}

// AuthConfig holds the env-provisioned owner account. The owner exists as
// long as these variables are set and cannot be deleted through the API.
type AuthConfig struct {
	OwnerUsername string
	OwnerPassword string
}

// SeedConfig points at the optional local seed config file loaded at
// startup.
type SeedConfig struct {
	Path  string
	Watch bool
}

// SubscriptionConfig holds the remote config subscription settings.
type SubscriptionConfig struct {
	URL          string
	AutoUpdate   bool
	FetchTimeout time.Duration

	// RefreshSchedule is a cron expression for automatic refreshes.
	RefreshSchedule string
}

// ObservabilityConfig holds logging and metrics settings.
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Cache:         loadCacheConfig(),
		Auth:          loadAuthConfig(),
		Seed:          loadSeedConfig(),
		Subscription:  loadSubscriptionConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("DRIFTWATCH_HOST", "0.0.0.0"),
		Port:            getEnv("DRIFTWATCH_PORT", "8080"),
		ReadTimeout:     getEnvDuration("DRIFTWATCH_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("DRIFTWATCH_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("DRIFTWATCH_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("DRIFTWATCH_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("DRIFTWATCH_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() storage.Config {
	cfg := storage.DefaultConfig()

	if storageType := getEnv("DRIFTWATCH_STORAGE_TYPE", ""); storageType != "" {
		cfg.Type = storageType
	}
	if dataDir := getEnv("DRIFTWATCH_DATA_DIR", ""); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if redisURL := getEnv("DRIFTWATCH_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("DRIFTWATCH_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("DRIFTWATCH_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}
	if redisMaxRetries := getEnvInt("DRIFTWATCH_REDIS_MAX_RETRIES", 0); redisMaxRetries > 0 {
		cfg.RedisMaxRetries = redisMaxRetries
	}
	if redisPoolSize := getEnvInt("DRIFTWATCH_REDIS_POOL_SIZE", 0); redisPoolSize > 0 {
		cfg.RedisPoolSize = redisPoolSize
	}
	if timeout := getEnvDuration("DRIFTWATCH_REDIS_TIMEOUT", 0); timeout > 0 {
		cfg.RedisTimeout = timeout
	}

	return cfg
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		DefaultTTL:    getEnvDuration("DRIFTWATCH_CACHE_TTL", 5*time.Minute),
		SweepInterval: getEnvDuration("DRIFTWATCH_CACHE_SWEEP_INTERVAL", time.Minute),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		OwnerUsername: getEnv("DRIFTWATCH_USERNAME", ""),
		OwnerPassword: getEnv("DRIFTWATCH_PASSWORD", ""),
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		Path:  getEnv("DRIFTWATCH_SEED_CONFIG_PATH", ""),
		Watch: getEnvBool("DRIFTWATCH_SEED_CONFIG_WATCH", false),
	}
}

func loadSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		URL:             getEnv("DRIFTWATCH_SUBSCRIPTION_URL", ""),
		AutoUpdate:      getEnvBool("DRIFTWATCH_SUBSCRIPTION_AUTO_UPDATE", false),
		FetchTimeout:    getEnvDuration("DRIFTWATCH_SUBSCRIPTION_TIMEOUT", 15*time.Second),
		RefreshSchedule: getEnv("DRIFTWATCH_SUBSCRIPTION_SCHEDULE", "0 */6 * * *"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       observability.ParseLogLevel(getEnv("DRIFTWATCH_LOG_LEVEL", "info")),
		MetricsEnabled: getEnvBool("DRIFTWATCH_METRICS_ENABLED", true),
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Cache.SweepInterval <= 0 {
		return fmt.Errorf("cache sweep interval must be positive")
	}

	// The owner account is all-or-nothing: a username without a password
	// would create an account nobody can sign into.
	if (c.Auth.OwnerUsername == "") != (c.Auth.OwnerPassword == "") {
		return fmt.Errorf("owner username and password must be set together")
	}

	if c.Subscription.AutoUpdate && c.Subscription.URL == "" {
		return fmt.Errorf("subscription URL is required when auto-update is enabled")
	}

	return nil
}

// getEnv returns an environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
