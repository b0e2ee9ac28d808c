// Package config loads runtime settings from the environment and dialogue data from YAML.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/assetbot/internal/logging"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name below.
const EnvPrefix = "ASSETBOT_"

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds the environment driven configuration.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Session persistence
	Store         string        `env:"STORE" envDefault:"memory"` // memory or redis
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string        `env:"REDIS_PREFIX" envDefault:"assetbot:session:"`
	RedisTTL      time.Duration `env:"REDIS_TTL" envDefault:"24h"`
	RedisLock     bool          `env:"REDIS_LOCK" envDefault:"true"`
	LockTTL       time.Duration `env:"LOCK_TTL" envDefault:"30s"`

	// At-rest protection for stored sessions. Keys are base64 AES-256 keys.
	EncryptionKey          string   `env:"ENCRYPTION_KEY"`
	EncryptionFallbackKeys []string `env:"ENCRYPTION_FALLBACK_KEYS" envSeparator:","`
	MaskPII                bool     `env:"MASK_PII" envDefault:"false"`

	// Completed-request ledger; empty disables recording.
	SQLitePath string `env:"SQLITE_PATH"`

	// Inventory service; empty uses the built-in static stock.
	InventoryURL     string        `env:"INVENTORY_URL"`
	InventoryAPIKey  string        `env:"INVENTORY_API_KEY"`
	InventoryTimeout time.Duration `env:"INVENTORY_TIMEOUT" envDefault:"5s"`

	DialogueFile string `env:"DIALOGUE_FILE"`
	MaxInputSize int    `env:"MAX_INPUT_SIZE" envDefault:"4096"`
	MetricsAddr  string `env:"METRICS_ADDR"`
}

// Load parses the process environment into Config.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	cfg.InventoryURL = strings.TrimSpace(cfg.InventoryURL)
	cfg.DialogueFile = strings.TrimSpace(cfg.DialogueFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the parser cannot.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreMemory, StoreRedis)
	}
	if c.MaxInputSize <= 0 {
		return fmt.Errorf("max input size must be positive, got %d", c.MaxInputSize)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}
