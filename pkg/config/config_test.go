package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "issueDefinitions.json", cfg.Catalog)
	assert.Equal(t, "exact", cfg.Strategy)
	assert.Equal(t, "include_components", cfg.FilterPolicy)
	assert.Equal(t, 0.4, cfg.FuzzyThreshold)
	assert.Equal(t, []string{"wifi", "bluetooth"}, cfg.NetworkDevices)
	assert.Equal(t, "network", cfg.NetworkLabel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.NoError(t, cfg.Validate())
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "devdiag.yaml")
	configContent := `catalog: https://example.com/catalog.json
strategy: fuzzy
fuzzy_threshold: 0.25
network_devices: [wifi]
log_level: debug
server:
  addr: ":9090"
  read_timeout: 30s
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/catalog.json", cfg.Catalog)
	assert.Equal(t, "fuzzy", cfg.Strategy)
	assert.Equal(t, 0.25, cfg.FuzzyThreshold)
	assert.Equal(t, []string{"wifi"}, cfg.NetworkDevices)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)

	// untouched fields keep their defaults
	assert.Equal(t, "include_components", cfg.FilterPolicy)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "devdiag.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("strategy: [unclosed"), 0o644))

	_, err := LoadConfig(configPath)
	assert.ErrorContains(t, err, "parse")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DEVDIAG_CATALOG", "configmap://support/devdiag/catalog.json")
	t.Setenv("DEVDIAG_STRATEGY", "fuzzy")
	t.Setenv("DEVDIAG_ADDR", ":7070")
	t.Setenv("DEVDIAG_LOG_LEVEL", "")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	assert.Equal(t, "configmap://support/devdiag/catalog.json", cfg.Catalog)
	assert.Equal(t, "fuzzy", cfg.Strategy)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.LogLevel, "empty variables are ignored")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{name: "empty catalog", mutate: func(c *Config) { c.Catalog = " " }, field: "catalog"},
		{name: "unknown strategy", mutate: func(c *Config) { c.Strategy = "semantic" }, field: "strategy"},
		{name: "unknown filter policy", mutate: func(c *Config) { c.FilterPolicy = "all" }, field: "filter_policy"},
		{name: "negative threshold", mutate: func(c *Config) { c.FuzzyThreshold = -0.1 }, field: "fuzzy_threshold"},
		{name: "threshold above one", mutate: func(c *Config) { c.FuzzyThreshold = 1.5 }, field: "fuzzy_threshold"},
		{name: "empty network label", mutate: func(c *Config) { c.NetworkLabel = "" }, field: "network_label"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "trace" }, field: "log_level"},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, field: "log_format"},
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = "" }, field: "server.addr"},
		{name: "negative timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -time.Second }, field: "server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAnalyzerOptions(t *testing.T) {
	cfg := DefaultConfig()
	assert.Len(t, cfg.AnalyzerOptions(), 3)
}
