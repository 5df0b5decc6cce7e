// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/diewo77/go-estimates/internal/render"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds runtime settings. Precedence: explicit env var > .env file (loaded by main) > default.
type Config struct {
	Port         string        `envconfig:"PORT" default:"8080"`
	Env          string        `envconfig:"APP_ENV" default:"development"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`

	DatabaseDSN string `envconfig:"DATABASE_DSN" default:"file:estimates.db"`
	DBDebug     bool   `envconfig:"DB_DEBUG"`
	DBSeed      bool   `envconfig:"DB_SEED"`
	Migrations  bool   `envconfig:"MIGRATIONS"`

	BillsDir    string `envconfig:"BILLS_DIR" default:"bills"`
	CompanyFile string `envconfig:"COMPANY_FILE"`

	RedisAddr string        `envconfig:"REDIS_ADDR"`
	DraftTTL  time.Duration `envconfig:"DRAFT_TTL" default:"12h"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}

// Company returns the letterhead: the defaults overlaid with COMPANY_FILE when set.
func (c *Config) Company() (render.Company, error) {
	company := render.DefaultCompany()
	if c.CompanyFile == "" {
		return company, nil
	}
	raw, err := os.ReadFile(c.CompanyFile)
	if err != nil {
		return company, fmt.Errorf("config: read company file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &company); err != nil {
		return company, fmt.Errorf("config: parse company file: %w", err)
	}
	return company, nil
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
