package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"5000"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	// Store
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"game_stats.db"`
	DatabaseURL string `env:"DATABASE_URL"`

	// Rate limiting (redis is optional, in-memory limiter otherwise)
	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	PlayRateLimit   int           `env:"PLAY_RATE_LIMIT" envDefault:"120"`
	PlayRateWindow  time.Duration `env:"PLAY_RATE_WINDOW" envDefault:"1m"`
	CORSAllowOrigin []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	HistoryDefaultLimit int `env:"HISTORY_DEFAULT_LIMIT" envDefault:"50"`
	HistoryMaxLimit     int `env:"HISTORY_MAX_LIMIT" envDefault:"500"`
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH is not set")
		}
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return errors.New("DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.PlayRateLimit <= 0 {
		return errors.New("PLAY_RATE_LIMIT must be positive")
	}
	if c.PlayRateWindow <= 0 {
		return errors.New("PLAY_RATE_WINDOW must be positive")
	}
	if c.HistoryDefaultLimit <= 0 || c.HistoryMaxLimit <= 0 {
		return errors.New("history limits must be positive")
	}
	if c.HistoryDefaultLimit > c.HistoryMaxLimit {
		c.HistoryDefaultLimit = c.HistoryMaxLimit
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
