package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/helmcode/devdiag/pkg/analyzer"
)

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// KubeConfig locates the cluster used for configmap:// sources.
type KubeConfig struct {
	Kubeconfig string `yaml:"kubeconfig"`
	Context    string `yaml:"context"`
}

// Config represents devdiag configuration options
type Config struct {
	// Catalog is a file path, http(s) URL or configmap://namespace/name/key
	Catalog string `yaml:"catalog"`

	// IssueTypes optionally points at a keyword -> issue type mapping,
	// fetched on first use
	IssueTypes string `yaml:"issue_types"`

	// Strategy is the default matching strategy (exact, fuzzy)
	Strategy string `yaml:"strategy"`

	// FilterPolicy decides whether component issues stay candidates when
	// only a device is detected (include_components, device_only)
	FilterPolicy string `yaml:"filter_policy"`

	// FuzzyThreshold is the maximum accepted similarity score (0.0-1.0)
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"`

	NetworkDevices []string `yaml:"network_devices"`
	NetworkLabel   string   `yaml:"network_label"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat is console or json
	LogFormat string `yaml:"log_format"`

	Server ServerConfig `yaml:"server"`
	Kube   KubeConfig   `yaml:"kube"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Catalog:        "issueDefinitions.json",
		Strategy:       string(analyzer.StrategyExact),
		FilterPolicy:   string(analyzer.FilterIncludeComponents),
		FuzzyThreshold: 0.4,
		NetworkDevices: []string{"wifi", "bluetooth"},
		NetworkLabel:   analyzer.DefaultNetworkLabel,
		LogLevel:       "info",
		LogFormat:      "console",
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Kube: KubeConfig{
			Kubeconfig: "~/.kube/config",
		},
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing file
// is not an error: the defaults are returned.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from DEVDIAG_* environment variables.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&c.Catalog, "DEVDIAG_CATALOG")
	setString(&c.IssueTypes, "DEVDIAG_ISSUE_TYPES")
	setString(&c.Strategy, "DEVDIAG_STRATEGY")
	setString(&c.FilterPolicy, "DEVDIAG_FILTER_POLICY")
	setString(&c.LogLevel, "DEVDIAG_LOG_LEVEL")
	setString(&c.LogFormat, "DEVDIAG_LOG_FORMAT")
	setString(&c.Server.Addr, "DEVDIAG_ADDR")
	setString(&c.Kube.Kubeconfig, "KUBECONFIG")
}

// Validate checks field values. It returns a *ValidationError naming the
// first offending field.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return &ValidationError{Field: "catalog", Message: "is required", Value: c.Catalog}
	}
	if _, err := analyzer.ParseStrategy(c.Strategy); err != nil {
		return &ValidationError{Field: "strategy", Message: "must be exact or fuzzy", Value: c.Strategy}
	}
	if _, err := analyzer.ParseFilterPolicy(c.FilterPolicy); err != nil {
		return &ValidationError{Field: "filter_policy", Message: "must be include_components or device_only", Value: c.FilterPolicy}
	}
	if c.FuzzyThreshold < 0 || c.FuzzyThreshold > 1 {
		return &ValidationError{Field: "fuzzy_threshold", Message: "must be between 0 and 1", Value: c.FuzzyThreshold}
	}
	if strings.TrimSpace(c.NetworkLabel) == "" {
		return &ValidationError{Field: "network_label", Message: "must not be empty", Value: c.NetworkLabel}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Field: "log_level", Message: "must be debug, info, warn or error", Value: c.LogLevel}
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return &ValidationError{Field: "log_format", Message: "must be console or json", Value: c.LogFormat}
	}
	if c.Server.Addr == "" {
		return &ValidationError{Field: "server.addr", Message: "is required", Value: c.Server.Addr}
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return &ValidationError{Field: "server", Message: "timeouts must be >= 0", Value: c.Server}
	}
	return nil
}

// AnalyzerOptions translates the matching settings into analyzer options.
// Call Validate first.
func (c *Config) AnalyzerOptions() []analyzer.Option {
	policy, _ := analyzer.ParseFilterPolicy(c.FilterPolicy)
	return []analyzer.Option{
		analyzer.WithFilterPolicy(policy),
		analyzer.WithFuzzyThreshold(c.FuzzyThreshold),
		analyzer.WithNetworkDevices(c.NetworkLabel, c.NetworkDevices...),
	}
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got %v)", e.Field, e.Message, e.Value)
}
