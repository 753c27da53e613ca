package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lueurxax/chat-insight/internal/daterange"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "local", cfg.AppEnv)
	require.Equal(t, time.Duration(0), cfg.APITimeout)
	require.Equal(t, 8090, cfg.HTTPPort)
	require.Equal(t, 8081, cfg.HealthPort)
	require.Equal(t, daterange.PresetDay, cfg.Preset())
	require.Equal(t, time.Duration(0), cfg.RefreshInterval)
	require.Equal(t, ".", cfg.DownloadDir)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://insight.example.com")
	t.Setenv("API_TIMEOUT", "90s")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DATE_PRESET", "168")
	t.Setenv("REFRESH_INTERVAL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "https://insight.example.com", cfg.APIBaseURL)
	require.Equal(t, 90*time.Second, cfg.APITimeout)
	require.Equal(t, 9000, cfg.HTTPPort)
	require.Equal(t, daterange.PresetWeek, cfg.Preset())
	require.Equal(t, 5*time.Minute, cfg.RefreshInterval)
}

func TestLoadEmptyBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadInvalidBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "localhost:5000")

	_, err := Load()
	require.ErrorIs(t, err, ErrInvalidBaseURL)
}

func TestLoadUnknownPreset(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("DATE_PRESET", "12")

	_, err := Load()
	require.ErrorIs(t, err, ErrUnknownPreset)
}
