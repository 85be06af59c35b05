package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	BackboneBaseURL string        `envconfig:"BACKBONE_BASE_URL" required:"true"`
	BackboneTimeout time.Duration `envconfig:"BACKBONE_TIMEOUT" default:"15s"`

	// EvalTimeZone is the reference zone the "today" of each reconciliation
	// run is truncated in.
	EvalTimeZone string `envconfig:"EVAL_TIME_ZONE" default:"Europe/Berlin"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`

	SweepCron     string        `envconfig:"SWEEP_CRON" default:"30 4 * * *"`
	SweepPageSize int           `envconfig:"SWEEP_PAGE_SIZE" default:"100"`
	SweepTTL      time.Duration `envconfig:"SWEEP_TTL" default:"168h"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.BackboneBaseURL == "" {
		return nil, errors.New("backbone base url must be provided")
	}
	if cfg.SweepPageSize <= 0 {
		return nil, errors.New("sweep page size must be positive")
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
