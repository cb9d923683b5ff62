package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is read from gopdm.yaml, GOPDM_* environment variables and flags.
type Config struct {
	Classes []string     `mapstructure:"classes"`
	Verbose bool         `mapstructure:"verbose"`
	NoColor bool         `mapstructure:"no_color"`
	Server  ServerConfig `mapstructure:"server"`
	Store   StoreConfig  `mapstructure:"store"`
	Limits  LimitsConfig `mapstructure:"limits"`
}

// ServerConfig configures `gopdm serve`.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// StoreConfig selects the persistence backend of save, load and list.
type StoreConfig struct {
	Kind   string      `mapstructure:"kind"` // "sql" or "redis"
	Driver string      `mapstructure:"driver"`
	DSN    string      `mapstructure:"dsn"`
	Table  string      `mapstructure:"table"`
	Redis  RedisConfig `mapstructure:"redis"`
}

// RedisConfig mirrors store.RedisConfig.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LimitsConfig bounds the documents read by every command.
type LimitsConfig struct {
	MaxDepth int   `mapstructure:"max_depth"`
	MaxBytes int64 `mapstructure:"max_bytes"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "localhost:8420")
	v.SetDefault("server.session_ttl", 30*time.Minute)
	v.SetDefault("store.kind", "sql")
	v.SetDefault("store.driver", "sqlite3")
	v.SetDefault("store.dsn", "gopdm.db")
	v.SetDefault("store.table", "gopdm_objects")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.prefix", "gopdm:object:")
	v.SetDefault("limits.max_depth", 0)
	v.SetDefault("limits.max_bytes", 0)
}

// loadConfig reads the configuration file when present. An explicit path
// must exist.
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("gopdm")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("GOPDM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Store.Kind {
	case "sql", "redis":
	default:
		return fmt.Errorf("store.kind must be sql or redis, got %q", cfg.Store.Kind)
	}
	if cfg.Limits.MaxDepth < 0 || cfg.Limits.MaxBytes < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	return nil
}
