package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsValidForMockMode(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "mock"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresChainForLiveModes(t *testing.T) {
	cfg := Defaults()
	cfg.Mode = "monitor"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dex_address")
	assert.Contains(t, err.Error(), "multicall_address")
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown mode", func(c *Config) { c.Mode = "turbo" }, "unknown mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log_level"},
		{"inverted tick range", func(c *Config) { c.Chain.ScanMinTick = 500; c.Chain.ScanMaxTick = -500 }, "scan_min_tick"},
		{"empty pair", func(c *Config) { c.Monitor.Pair = "" }, "pair must not be empty"},
		{"zero interval", func(c *Config) { c.Monitor.Interval = duration{0} }, "interval must be > 0"},
		{"inverted psi thresholds", func(c *Config) { c.Thresholds.PSIWarning = 80 }, "thresholds"},
		{"bad redis pool", func(c *Config) { c.Redis.PoolSize = 0 }, "pool_size"},
		{"bad server port", func(c *Config) { c.Server.Port = 70000 }, "port must be 1-65535"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Mode = "mock"
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
mode = "mock"
log_level = "debug"

[monitor]
pair = "BlueUSD-PathUSD"
interval = "5s"

[thresholds]
psi_warning = 25.0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "BlueUSD-PathUSD", cfg.Monitor.Pair)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval.Duration)
	assert.Equal(t, 25.0, cfg.Thresholds.PSIWarning)

	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 60.0, cfg.Thresholds.PSICritical)
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := writeConfig(t, `mode = "mock"`)

	t.Setenv("SENTINEL_MONITOR_PAIR", "GammaUSD-PathUSD")
	t.Setenv("SENTINEL_MONITOR_INTERVAL", "10s")
	t.Setenv("SENTINEL_SERVER_PORT", "9100")
	t.Setenv("SENTINEL_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SENTINEL_THRESHOLDS_PSI_CRITICAL", "75")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "GammaUSD-PathUSD", cfg.Monitor.Pair)
	assert.Equal(t, 10*time.Second, cfg.Monitor.Interval.Duration)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 75.0, cfg.Thresholds.PSICritical)
}
