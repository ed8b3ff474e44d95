// Package config loads sinau settings from an optional sinau.yaml and
// SINAU_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	// DSN is a file path (or ":memory:") for sqlite, a connection URL for
	// postgres.
	DSN string `mapstructure:"dsn"`
}

// RedisConfig enables the standings cache when Addr is set.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	StandingsTTL time.Duration `mapstructure:"standings_ttl"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LedgerConfig tunes the retry of aborted award transactions.
type LedgerConfig struct {
	MaxAttempts          uint          `mapstructure:"max_attempts"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// Enabled reports whether a redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// Load reads configuration. When path is non-empty that file must exist;
// otherwise sinau.yaml is looked up in the working directory and in
// ~/.sinau, and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SINAU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sinau")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".sinau"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", defaultDBPath())
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.standings_ttl", "5m")
	v.SetDefault("redis.timeout", "2s")
	v.SetDefault("ledger.max_attempts", 5)
	v.SetDefault("ledger.retry_initial_interval", "20ms")
	v.SetDefault("log.mode", "quiet")
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "sinau.db"
	}
	return filepath.Join(home, ".sinau", "sinau.db")
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3", "postgres", "postgresql", "pgx":
	default:
		return fmt.Errorf("database.driver: unsupported value %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Ledger.MaxAttempts == 0 {
		return fmt.Errorf("ledger.max_attempts must be at least 1")
	}
	if c.Redis.Enabled() && c.Redis.StandingsTTL <= 0 {
		return fmt.Errorf("redis.standings_ttl must be positive")
	}
	return nil
}
