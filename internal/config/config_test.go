package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 12000.0, cfg.Forecast.PriceFloor)
	assert.Equal(t, 30, cfg.Forecast.WindowSize)
	assert.Equal(t, []int{7, 14, 30}, cfg.Forecast.Horizons)
	assert.Equal(t, []float64{0.2, 0.5, 0.8}, cfg.Forecast.Alphas)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Upload.SessionTTL)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoadFilePrecedence(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  read_timeout: 5s
forecast:
  window_size: 20
  horizons: [7, 14]
  default_horizon: 14
logging:
  level: debug
`)

	t.Setenv("RICECAST_SERVER_PORT", "9191")
	t.Setenv("RICECAST_FORECAST_ALPHAS", "0.3,0.5")
	t.Setenv("RICECAST_UPLOAD_SESSION_TTL", "5m")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port, "env beats file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout, "file beats default")
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout, "default kept")
	assert.Equal(t, 20, cfg.Forecast.WindowSize)
	assert.Equal(t, []int{7, 14}, cfg.Forecast.Horizons)
	assert.Equal(t, 14, cfg.Forecast.DefaultHorizon)
	assert.Equal(t, []float64{0.3, 0.5}, cfg.Forecast.Alphas)
	assert.Equal(t, 5*time.Minute, cfg.Upload.SessionTTL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfigFile(t, "server: [not, a, map]"))
	assert.Error(t, err)

	t.Setenv("RICECAST_SERVER_PORT", "not-a-number")
	_, err = LoadFile("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = 0 }, wantErr: "read timeout"},
		{name: "origins", mutate: func(c *Config) { c.Security.AllowedOrigins = nil }, wantErr: "allowed origin"},
		{name: "rate limit", mutate: func(c *Config) { c.Security.RateLimit.RPS = 0 }, wantErr: "rate limit"},
		{name: "log output", mutate: func(c *Config) { c.Logging.Output = "syslog" }, wantErr: "logging output"},
		{name: "dual log output", mutate: func(c *Config) { c.Logging.Output = "both" }, wantErr: "logging output"},
		{name: "upload size", mutate: func(c *Config) { c.Upload.MaxBytes = 0 }, wantErr: "upload max bytes"},
		{name: "window", mutate: func(c *Config) { c.Forecast.WindowSize = 0 }, wantErr: "window size"},
		{name: "horizons", mutate: func(c *Config) { c.Forecast.Horizons = []int{7, -1} }, wantErr: "horizons"},
		{name: "alphas", mutate: func(c *Config) { c.Forecast.Alphas = []float64{0.5, 1.5} }, wantErr: "alphas"},
		{name: "default horizon", mutate: func(c *Config) { c.Forecast.DefaultHorizon = 10 }, wantErr: "default horizon"},
		{name: "default alpha", mutate: func(c *Config) { c.Forecast.DefaultAlpha = 0.4 }, wantErr: "default alpha"},
		{name: "sample ratio", mutate: func(c *Config) { c.Telemetry.SampleRatio = 2 }, wantErr: "sample ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetConfigFilePathFromEnv(t *testing.T) {
	t.Setenv("RICECAST_CONFIG", "/etc/ricecast/config.yaml")
	assert.Equal(t, "/etc/ricecast/config.yaml", getConfigFilePath())
}
