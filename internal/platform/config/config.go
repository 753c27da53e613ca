package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/lueurxax/chat-insight/internal/daterange"
)

// Config is the full environment configuration of the dashboard.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// APIBaseURL points at the chat-analysis backend, e.g. http://localhost:5000.
	APIBaseURL string `env:"API_BASE_URL,required"`

	// APITimeout bounds each backend call. Zero disables the client timeout,
	// which matches long-running analysis requests.
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"0"`

	HTTPPort   int `env:"HTTP_PORT" envDefault:"8090"`
	HealthPort int `env:"HEALTH_PORT" envDefault:"8081"`

	// DatePreset is the initial chat list window in hours ("24", "48",
	// "168", "720").
	DatePreset string `env:"DATE_PRESET" envDefault:"24"`

	// RefreshInterval reloads the chat list periodically in serve mode.
	// Zero disables the background refresh.
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"0"`

	// DownloadDir receives analytics reports saved from the CLI.
	DownloadDir string `env:"DOWNLOAD_DIR" envDefault:"."`
}

// Load reads configuration from the environment, with an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("%w: API_BASE_URL %q", ErrInvalidBaseURL, c.APIBaseURL)
	}

	known := false

	for _, p := range daterange.Presets() {
		if string(p) == c.DatePreset {
			known = true

			break
		}
	}

	if !known {
		return fmt.Errorf("%w: DATE_PRESET %q", ErrUnknownPreset, c.DatePreset)
	}

	return nil
}

// Preset returns the configured initial date preset.
func (c *Config) Preset() daterange.Preset {
	return daterange.Preset(c.DatePreset)
}
