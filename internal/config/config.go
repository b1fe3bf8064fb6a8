// Package config provides configuration management for specwatch.
//
// Configuration is loaded from four sources with the following precedence
// (highest to lowest):
//  1. CLI flags
//  2. Environment variables (SPECWATCH_ prefix)
//  3. Config file (.specwatch.yaml)
//  4. Built-in defaults
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Supported log levels.
const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Supported snapshot formats.
const (
	SnapshotFormatJSON = "json"
	SnapshotFormatYAML = "yaml"
)

// Watcher defaults.
const (
	DefaultURL          = "http://localhost:8000/openapi.json"
	DefaultCommand      = "npm run orval"
	DefaultInterval     = time.Second
	DefaultFetchTimeout = 10 * time.Second
	DefaultDebounce     = 250 * time.Millisecond
)

// Config represents the global configuration for specwatch.
type Config struct {
	// LogLevel controls the verbosity of log output.
	// Valid values: debug, info, warn, error.
	LogLevel string `mapstructure:"log-level" json:"logLevel"`

	// LogFormat controls the format of log output.
	// Valid values: text, json.
	LogFormat string `mapstructure:"log-format" json:"logFormat"`

	// NoColor disables colored output.
	NoColor bool `mapstructure:"no-color" json:"noColor"`

	// Quiet suppresses all log output below error level.
	Quiet bool `mapstructure:"quiet" json:"quiet"`

	// URL is the location of the spec document: an http(s) URL, a file://
	// URL or a local path.
	URL string `mapstructure:"url" json:"url"`

	// Interval is the time between two checks.
	Interval time.Duration `mapstructure:"interval" json:"interval"`

	// Command is the shell command line that regenerates the client.
	Command string `mapstructure:"command" json:"command"`

	// Dir is the working directory of Command.
	Dir string `mapstructure:"dir" json:"dir"`

	// FetchTimeout bounds each fetch. Zero disables the timeout.
	FetchTimeout time.Duration `mapstructure:"fetch-timeout" json:"fetchTimeout"`

	// GenerateTimeout bounds each regeneration. Zero disables the timeout.
	GenerateTimeout time.Duration `mapstructure:"generate-timeout" json:"generateTimeout"`

	// GenerateOnStart regenerates once after the first successful fetch.
	GenerateOnStart bool `mapstructure:"generate-on-start" json:"generateOnStart"`

	// Snapshot is a path that receives a copy of every recorded spec.
	Snapshot string `mapstructure:"snapshot" json:"snapshot"`

	// SnapshotFormat is the snapshot encoding: json or yaml.
	SnapshotFormat string `mapstructure:"snapshot-format" json:"snapshotFormat"`

	// ShowDiff prints a unified diff for every detected change.
	ShowDiff bool `mapstructure:"show-diff" json:"showDiff"`

	// Debounce is the quiet period for file-system events on local specs.
	Debounce time.Duration `mapstructure:"debounce" json:"debounce"`

	// NoNotify disables file-system notifications for local specs.
	NoNotify bool `mapstructure:"no-notify" json:"noNotify"`

	// ConfigFile is the resolved path to the config file used.
	// Set after Load(), not read from config itself.
	ConfigFile string `mapstructure:"-" json:"-"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		LogLevel:       LogLevelInfo,
		LogFormat:      LogFormatText,
		URL:            DefaultURL,
		Interval:       DefaultInterval,
		Command:        DefaultCommand,
		FetchTimeout:   DefaultFetchTimeout,
		SnapshotFormat: SnapshotFormatJSON,
		Debounce:       DefaultDebounce,
	}
}

// Validate checks that all config values are valid.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		// valid
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
		// valid
	default:
		return fmt.Errorf("invalid log format %q: must be one of text, json", c.LogFormat)
	}

	switch c.SnapshotFormat {
	case SnapshotFormatJSON, SnapshotFormatYAML:
		// valid
	default:
		return fmt.Errorf("invalid snapshot format %q: must be one of json, yaml", c.SnapshotFormat)
	}

	if strings.TrimSpace(c.URL) == "" {
		return errors.New("url must not be empty")
	}

	if strings.TrimSpace(c.Command) == "" {
		return errors.New("command must not be empty")
	}

	if c.Interval <= 0 {
		return fmt.Errorf("invalid interval %s: must be positive", c.Interval)
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("invalid fetch timeout %s: must not be negative", c.FetchTimeout)
	}

	if c.GenerateTimeout < 0 {
		return fmt.Errorf("invalid generate timeout %s: must not be negative", c.GenerateTimeout)
	}

	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}

	return nil
}

// EffectiveLogLevel returns the log level to use. When Quiet is true the log
// level is overridden to "error" regardless of the configured LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Quiet {
		return LogLevelError
	}

	return c.LogLevel
}

// Load initialises configuration from flags, environment variables, and an
// optional config file. A fresh viper instance is used on every call so that
// Load is safe for concurrent tests.
func Load(cmd *cobra.Command, configFile string) (*Config, error) {
	v := viper.New()

	setDefaults(v)
	configureEnv(v)

	if err := configureFile(v, configFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, cmd); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults registers default values in viper. Every key needs a default so
// that AutomaticEnv picks it up during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-color", d.NoColor)
	v.SetDefault("quiet", d.Quiet)
	v.SetDefault("url", d.URL)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("command", d.Command)
	v.SetDefault("dir", d.Dir)
	v.SetDefault("fetch-timeout", d.FetchTimeout)
	v.SetDefault("generate-timeout", d.GenerateTimeout)
	v.SetDefault("generate-on-start", d.GenerateOnStart)
	v.SetDefault("snapshot", d.Snapshot)
	v.SetDefault("snapshot-format", d.SnapshotFormat)
	v.SetDefault("show-diff", d.ShowDiff)
	v.SetDefault("debounce", d.Debounce)
	v.SetDefault("no-notify", d.NoNotify)
}

// configureEnv sets up environment variable support.
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("SPECWATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// configureFile sets up the config file source.
func configureFile(v *viper.Viper, configFile string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %q: %w", configFile, err)
		}

		return nil
	}

	v.SetConfigName(".specwatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "specwatch"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// bindFlags walks from cmd up to the root and binds all PersistentFlags.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	if cmd == nil {
		return nil
	}

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	for c := cmd; c != nil; c = c.Parent() {
		if err := v.BindPFlags(c.PersistentFlags()); err != nil {
			return fmt.Errorf("binding persistent flags: %w", err)
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKey struct{}

// NewContext returns a child context carrying cfg.
func NewContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext extracts a Config from ctx, falling back to Default().
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return cfg
	}

	return Default()
}
