package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestRootCmd creates a root and a watch command with the same flags as
// the real command tree so that Load can bind them during tests.
func newTestRootCmd() (*cobra.Command, *cobra.Command) {
	root := &cobra.Command{Use: "specwatch"}
	pf := root.PersistentFlags()
	pf.String("config", "", "")
	pf.String("log-level", "info", "")
	pf.String("log-format", "text", "")
	pf.Bool("no-color", false, "")
	pf.BoolP("quiet", "q", false, "")

	watch := &cobra.Command{Use: "watch"}
	f := watch.Flags()
	f.Duration("interval", DefaultInterval, "")
	f.String("command", DefaultCommand, "")
	f.Duration("fetch-timeout", DefaultFetchTimeout, "")
	f.Bool("generate-on-start", false, "")

	root.AddCommand(watch)

	return root, watch
}

// writeTempConfig writes a YAML string to a temporary file and returns the path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

// ---------------------------------------------------------------------------
// Default
// ---------------------------------------------------------------------------

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, LogLevelInfo, cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.False(t, cfg.NoColor)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, "http://localhost:8000/openapi.json", cfg.URL)
	assert.Equal(t, "npm run orval", cfg.Command)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.Zero(t, cfg.GenerateTimeout)
	assert.Equal(t, SnapshotFormatJSON, cfg.SnapshotFormat)
	assert.NoError(t, cfg.Validate())
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestValidate_ValidValues(t *testing.T) {
	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		cfg := Default()
		cfg.LogLevel = lvl
		assert.NoError(t, cfg.Validate(), "level=%s", lvl)
	}

	for _, format := range []string{"text", "json"} {
		cfg := Default()
		cfg.LogFormat = format
		assert.NoError(t, cfg.Validate(), "format=%s", format)
	}

	cfg := Default()
	cfg.FetchTimeout = 0
	cfg.SnapshotFormat = SnapshotFormatYAML
	assert.NoError(t, cfg.Validate())
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"log level", func(c *Config) { c.LogLevel = "verbose" }, "invalid log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "invalid log format"},
		{"snapshot format", func(c *Config) { c.SnapshotFormat = "toml" }, "invalid snapshot format"},
		{"empty url", func(c *Config) { c.URL = " " }, "url must not be empty"},
		{"empty command", func(c *Config) { c.Command = "" }, "command must not be empty"},
		{"zero interval", func(c *Config) { c.Interval = 0 }, "invalid interval"},
		{"negative fetch timeout", func(c *Config) { c.FetchTimeout = -time.Second }, "invalid fetch timeout"},
		{"negative generate timeout", func(c *Config) { c.GenerateTimeout = -time.Second }, "invalid generate timeout"},
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }, "invalid debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// EffectiveLogLevel
// ---------------------------------------------------------------------------

func TestEffectiveLogLevel_Normal(t *testing.T) {
	cfg := &Config{LogLevel: "debug"}
	assert.Equal(t, "debug", cfg.EffectiveLogLevel())
}

func TestEffectiveLogLevel_QuietOverride(t *testing.T) {
	cfg := &Config{LogLevel: "debug", Quiet: true}
	assert.Equal(t, "error", cfg.EffectiveLogLevel())
}

// ---------------------------------------------------------------------------
// Load: defaults and environment
// ---------------------------------------------------------------------------

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)

	want := Default()
	want.ConfigFile = cfg.ConfigFile
	assert.Equal(t, want, cfg)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	t.Setenv("SPECWATCH_LOG_LEVEL", "debug")
	t.Setenv("SPECWATCH_URL", "http://api.local/openapi.json")
	t.Setenv("SPECWATCH_FETCH_TIMEOUT", "3s")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://api.local/openapi.json", cfg.URL)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
}

func TestLoad_EnvBooleans(t *testing.T) {
	t.Setenv("SPECWATCH_NO_COLOR", "true")
	t.Setenv("SPECWATCH_QUIET", "true")
	t.Setenv("SPECWATCH_GENERATE_ON_START", "true")

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.True(t, cfg.NoColor)
	assert.True(t, cfg.Quiet)
	assert.True(t, cfg.GenerateOnStart)
}

// ---------------------------------------------------------------------------
// Load: config file
// ---------------------------------------------------------------------------

func TestLoad_ConfigFile(t *testing.T) {
	p := writeTempConfig(t, `log-level: warn
log-format: json
url: ./openapi.yaml
command: make client
interval: 2s
generate-timeout: 1m
snapshot: .cache/openapi.json
show-diff: true
`)

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "./openapi.yaml", cfg.URL)
	assert.Equal(t, "make client", cfg.Command)
	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, time.Minute, cfg.GenerateTimeout)
	assert.Equal(t, ".cache/openapi.json", cfg.Snapshot)
	assert.True(t, cfg.ShowDiff)
	assert.Equal(t, p, cfg.ConfigFile)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_MalformedFile(t *testing.T) {
	p := writeTempConfig(t, ": invalid yaml :")

	_, err := Load(nil, p)
	require.Error(t, err)
}

func TestLoad_AutoDiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".specwatch.yaml"), []byte("command: pnpm gen\n"), 0o600))
	t.Chdir(dir)

	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, "pnpm gen", cfg.Command)
	assert.NotEmpty(t, cfg.ConfigFile)
}

// ---------------------------------------------------------------------------
// Load: flag precedence
// ---------------------------------------------------------------------------

func TestLoad_FlagOverridesDefault(t *testing.T) {
	root, _ := newTestRootCmd()
	require.NoError(t, root.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_SubcommandFlagsAndParentPersistentFlags(t *testing.T) {
	root, watch := newTestRootCmd()
	require.NoError(t, root.PersistentFlags().Set("log-format", "json"))
	require.NoError(t, watch.Flags().Set("interval", "500ms"))
	require.NoError(t, watch.Flags().Set("generate-on-start", "true"))

	cfg, err := Load(watch, "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.True(t, cfg.GenerateOnStart)
}

func TestLoad_UnsetFlagDoesNotMaskFile(t *testing.T) {
	p := writeTempConfig(t, "command: make client\n")
	_, watch := newTestRootCmd()

	cfg, err := Load(watch, p)
	require.NoError(t, err)
	assert.Equal(t, "make client", cfg.Command)
}

func TestLoad_FlagOverridesEnv(t *testing.T) {
	t.Setenv("SPECWATCH_LOG_LEVEL", "debug")

	root, _ := newTestRootCmd()
	require.NoError(t, root.PersistentFlags().Set("log-level", "error"))

	cfg, err := Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SPECWATCH_LOG_LEVEL", "debug")
	p := writeTempConfig(t, "log-level: warn\n")

	cfg, err := Load(nil, p)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagOverridesAll(t *testing.T) {
	t.Setenv("SPECWATCH_COMMAND", "yarn gen")
	p := writeTempConfig(t, "command: make client\n")

	_, watch := newTestRootCmd()
	require.NoError(t, watch.Flags().Set("command", "npm run orval -- --watch"))

	cfg, err := Load(watch, p)
	require.NoError(t, err)
	assert.Equal(t, "npm run orval -- --watch", cfg.Command)
}

// ---------------------------------------------------------------------------
// Load: validation on loaded values
// ---------------------------------------------------------------------------

func TestLoad_InvalidLogLevelFromEnv(t *testing.T) {
	t.Setenv("SPECWATCH_LOG_LEVEL", "verbose")

	_, err := Load(nil, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestLoad_InvalidIntervalFromFile(t *testing.T) {
	p := writeTempConfig(t, "interval: 0s\n")

	_, err := Load(nil, p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid interval")
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

func TestContext_RoundTrip(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	ctx := NewContext(context.Background(), cfg)
	got := FromContext(ctx)
	assert.Equal(t, cfg, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, Default(), got)
}
