package storage

import (
	"fmt"
	"time"
)

// Backend types selectable through configuration.
const (
	TypeFile  = "file"
	TypeRedis = "redis"
	TypeNoop  = "noop"
)

// Config selects and parameterizes the durable backend.
type Config struct {
	Type string // "file", "redis" or "noop"

	// File backend config
	DataDir string

	// Redis backend config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int
	RedisTimeout    time.Duration
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Type:            TypeFile,
		DataDir:         "/var/lib/driftwatch",
		RedisDB:         0,
		RedisMaxRetries: 3,
		RedisPoolSize:   10,
		RedisTimeout:    5 * time.Second,
	}
}

// Validate checks that the configuration can produce a backend.
func (c Config) Validate() error {
	switch c.Type {
	case TypeFile:
		if c.DataDir == "" {
			return fmt.Errorf("data dir is required for file storage")
		}
	case TypeRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis storage")
		}
	case TypeNoop:
	default:
		return fmt.Errorf("invalid storage type: %s (must be file, redis, or noop)", c.Type)
	}
	return nil
}
