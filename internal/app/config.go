package app

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the service.
type Config struct {
	Env          string        `envconfig:"ENV" default:"development"`
	Addr         string        `envconfig:"ADDR" default:":8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	PGDSN string `envconfig:"PG_DSN"`

	AuthSecret string        `envconfig:"AUTH_SECRET" required:"true"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`

	RateBurst    int   `envconfig:"RATE_BURST" default:"20"`
	RatePerSec   int   `envconfig:"RATE_PER_SEC" default:"10"`
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"1048576"`
}

// LoadConfig reads configuration from PARTNERAPI_* environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("partnerapi", &cfg); err != nil {
		return nil, err
	}
	if cfg.AuthSecret == "" {
		return nil, errors.New("auth secret must be provided")
	}
	return &cfg, nil
}

// IsProduction reports whether the service runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == "production"
}
