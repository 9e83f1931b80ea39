package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":9300", cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.Probes.Timeout.Std())
	assert.Equal(t, uint64(8<<30), cfg.System.TotalMemoryBytes)
	assert.Equal(t, 30*time.Second, cfg.Alerting.CheckInterval.Std())

	// Storage gets looser latency thresholds than the datastore
	assert.Greater(t, cfg.Probes.Storage.Warn, cfg.Probes.Database.Warn)
	assert.Greater(t, cfg.Probes.Storage.Critical, cfg.Probes.Database.Critical)

	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().ListenAddr, cfg.ListenAddr)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vitals.yaml")
	data := []byte(`
listen_addr: ":8088"
probes:
  timeout: 2s
  database:
    warn: 50ms
    critical: 250ms
alerting:
  check_interval: 10s
  cleanup_interval: 30m
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8088", cfg.ListenAddr)
	assert.Equal(t, 2*time.Second, cfg.Probes.Timeout.Std())
	assert.Equal(t, 50*time.Millisecond, cfg.Probes.Database.Warn.Std())
	assert.Equal(t, 10*time.Second, cfg.Alerting.CheckInterval.Std())

	// Untouched values keep their defaults
	assert.Equal(t, uint64(8<<30), cfg.System.TotalMemoryBytes)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen addr", func(c *Config) { c.ListenAddr = "" }},
		{"zero probe timeout", func(c *Config) { c.Probes.Timeout = 0 }},
		{"zero total memory", func(c *Config) { c.System.TotalMemoryBytes = 0 }},
		{"zero check interval", func(c *Config) { c.Alerting.CheckInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
