// Package config provides centralized configuration management using Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Group ordering modes for grouped recipient views.
const (
	GroupOrderFirstSeen = "first_seen"
	GroupOrderParent    = "parent"
)

// Config holds all configuration values for alertr.
type Config struct {
	DataDir         string `mapstructure:"data_dir" yaml:"data_dir"`
	Catalog         string `mapstructure:"catalog" yaml:"catalog"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	LogFile         string `mapstructure:"log_file" yaml:"log_file"`
	GroupOrder      string `mapstructure:"group_order" yaml:"group_order"`
	PruneHidden     bool   `mapstructure:"prune_hidden" yaml:"prune_hidden"`
	PreviewTemplate string `mapstructure:"preview_template" yaml:"preview_template"`
	RetentionDays   int    `mapstructure:"retention_days" yaml:"retention_days"`
	SubmitTimeout   string `mapstructure:"submit_timeout" yaml:"submit_timeout"`
}

// envKeys lists every key that gets an explicit ALERTR_ binding.
var envKeys = []string{
	"data_dir",
	"catalog",
	"log_level",
	"log_file",
	"group_order",
	"prune_hidden",
	"preview_template",
	"retention_days",
	"submit_timeout",
}

// Option customizes Load.
type Option func(*viper.Viper) error

// WithFlags binds command-line flags so that explicitly set flags win over every
// other source. Flag names use dashes (data-dir) and map onto underscore keys.
func WithFlags(fs *pflag.FlagSet) Option {
	return func(v *viper.Viper) error {
		if fs == nil {
			return nil
		}
		for _, key := range envKeys {
			flag := fs.Lookup(strings.ReplaceAll(key, "_", "-"))
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return fmt.Errorf("binding %s flag: %w", key, err)
			}
		}
		return nil
	}
}

// Load loads configuration with full precedence:
// CLI flags > ENV vars > project config > XDG global config > defaults
func Load(opts ...Option) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("alertr")

	v.SetDefault("data_dir", ".alertr")
	v.SetDefault("catalog", "catalog.yml")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("group_order", GroupOrderFirstSeen)
	v.SetDefault("prune_hidden", false)
	v.SetDefault("preview_template", "")
	v.SetDefault("retention_days", 30)
	v.SetDefault("submit_timeout", "10s")

	v.SetEnvPrefix("ALERTR")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit ENV bindings for better bool/int parsing
	for _, key := range envKeys {
		if err := v.BindEnv(key, "ALERTR_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	globalPath := GlobalPath()
	if fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	projectPath := ProjectPath()
	if fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that cannot be expressed as viper defaults.
func (c *Config) Validate() error {
	switch c.GroupOrder {
	case GroupOrderFirstSeen, GroupOrderParent:
	default:
		return fmt.Errorf("invalid group_order %q (must be %s or %s)", c.GroupOrder, GroupOrderFirstSeen, GroupOrderParent)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be >= 1, got %d", c.RetentionDays)
	}
	if _, err := c.SubmitTimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// SubmitTimeoutDuration parses SubmitTimeout. An empty value means no timeout.
func (c *Config) SubmitTimeoutDuration() (time.Duration, error) {
	if c.SubmitTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.SubmitTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid submit_timeout %q: %w", c.SubmitTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("submit_timeout must not be negative")
	}
	return d, nil
}

// Retention returns the alert history retention window.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/alertr/alertr.yml or $XDG_CONFIG_HOME/alertr/alertr.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "alertr", "alertr.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "alertr", "alertr.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "alertr.yml"
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// fileExists checks if a file exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
