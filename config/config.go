// Package config provides configuration parsing for sysinsight.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the sysinsight configuration.
type Config struct {
	// Sampler holds metric polling settings.
	Sampler SamplerConfig `yaml:"sampler"`

	// Insight holds AI explanation settings.
	Insight InsightConfig `yaml:"insight"`

	// Display holds TUI rendering settings.
	Display DisplayConfig `yaml:"display"`

	// Logging holds log output settings.
	Logging LoggingConfig `yaml:"logging"`
}

// SamplerConfig holds metric polling settings.
type SamplerConfig struct {
	// Interval is a duration string (e.g. "2s") between samples.
	Interval string `yaml:"interval"`
	// TopN is how many processes each snapshot keeps.
	TopN int `yaml:"top_n"`
	// DiskMount is the mount point reported as the primary disk.
	// Empty selects "C:" on Windows and "/" elsewhere.
	DiskMount string `yaml:"disk_mount"`
}

// InsightConfig holds AI explanation settings.
type InsightConfig struct {
	// Endpoint is the Gemini models base URL.
	Endpoint string `yaml:"endpoint"`
	// Model is the model name, e.g. "gemini-1.5-flash".
	Model string `yaml:"model"`
	// APIKeyEnv is the environment variable holding the API key. If it is
	// unset, APIKeyEnv + "_FILE" may name a file containing the key.
	APIKeyEnv string `yaml:"api_key_env"`
	// Timeout is a duration string bounding one explain request.
	Timeout string `yaml:"timeout"`
}

// DisplayConfig holds TUI rendering settings.
type DisplayConfig struct {
	// Theme selects the display theme: "minimal", "full", or "monitoring".
	Theme string `yaml:"theme"`
	// LogFile receives log output while the TUI owns the terminal.
	// Empty discards logs in TUI mode.
	LogFile string `yaml:"log_file"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Sampler: SamplerConfig{
			Interval:  "2s",
			TopN:      10,
			DiskMount: "",
		},
		Insight: InsightConfig{
			Endpoint:  "https://generativelanguage.googleapis.com/v1beta/models",
			Model:     "gemini-1.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
			Timeout:   "60s",
		},
		Display: DisplayConfig{
			Theme:   "monitoring",
			LogFile: filepath.Join(xdgStateHome(home), "sysinsight", "sysinsight.log"),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/sysinsight/config.yaml
//  2. ~/.config/sysinsight/config.yaml
//
// If no file exists, returns DefaultConfig().
func Load() (*Config, error) {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	return DefaultConfig(), nil
}

// LoadFromFile loads configuration from a YAML file, merging with defaults.
// A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return config, nil
}

// Validate checks the configuration for required fields and logical consistency.
func (c *Config) Validate() error {
	// Sampler validation
	interval, err := parseDuration("sampler.interval", c.Sampler.Interval)
	if err != nil {
		return err
	}
	if interval < 100*time.Millisecond {
		return fmt.Errorf("sampler.interval must be at least 100ms, got %s", interval)
	}
	if c.Sampler.TopN < 1 {
		return fmt.Errorf("sampler.top_n must be positive, got %d", c.Sampler.TopN)
	}

	// Insight validation
	if c.Insight.Endpoint == "" {
		return errors.New("insight.endpoint is required")
	}
	if !strings.HasPrefix(c.Insight.Endpoint, "https://") && !strings.HasPrefix(c.Insight.Endpoint, "http://") {
		return fmt.Errorf("insight.endpoint must be an http(s) URL, got %q", c.Insight.Endpoint)
	}
	if c.Insight.Model == "" {
		return errors.New("insight.model is required")
	}
	if c.Insight.APIKeyEnv == "" {
		return errors.New("insight.api_key_env is required")
	}
	if _, err := parseDuration("insight.timeout", c.Insight.Timeout); err != nil {
		return err
	}

	// Display validation
	validThemes := map[string]bool{"minimal": true, "full": true, "monitoring": true}
	if !validThemes[c.Display.Theme] {
		return fmt.Errorf("display.theme must be 'minimal', 'full', or 'monitoring', got %q", c.Display.Theme)
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level)
	}

	return nil
}

// SampleInterval returns the parsed sampler interval, or 2s if it does not parse.
func (c *Config) SampleInterval() time.Duration {
	d, err := time.ParseDuration(c.Sampler.Interval)
	if err != nil || d <= 0 {
		return 2 * time.Second
	}
	return d
}

// InsightTimeout returns the parsed insight timeout, or 60s if it does not parse.
func (c *Config) InsightTimeout() time.Duration {
	d, err := time.ParseDuration(c.Insight.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// APIKey resolves the insight API key from the environment. The variable
// named by APIKeyEnv takes precedence over the file named by APIKeyEnv_FILE.
// Returns "" if neither is set.
func (c *Config) APIKey() string {
	if c.Insight.APIKeyEnv == "" {
		return ""
	}
	if v := strings.TrimSpace(os.Getenv(c.Insight.APIKeyEnv)); v != "" {
		return v
	}
	return readEnvFile(c.Insight.APIKeyEnv + "_FILE")
}

// SaveConfig saves configuration to a YAML file.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultPath returns the first config search path, where SaveConfig writes
// by default.
func DefaultPath() string {
	return configSearchPaths()[0]
}

func parseDuration(field, value string) (time.Duration, error) {
	if value == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", field, value)
	}
	return d, nil
}

// readEnvFile reads the file named by envVar, trimming trailing newlines
// (common in secret files). Returns "" if the variable or file is missing.
func readEnvFile(envVar string) string {
	path := os.Getenv(envVar)
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(data), "\r\n")
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var paths []string

	xdg := xdgConfigHome(home)
	paths = append(paths, filepath.Join(xdg, "sysinsight", "config.yaml"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		paths = append(paths, filepath.Join(defaultXDG, "sysinsight", "config.yaml"))
	}

	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgStateHome returns XDG_STATE_HOME or ~/.local/state as fallback.
func xdgStateHome(home string) string {
	if v := os.Getenv("XDG_STATE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".local", "state")
}
