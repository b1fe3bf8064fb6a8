package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/variantexplain/specwatch/internal/config"
)

func TestSetup_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "debug", LogFormat: "text"}

	logger := SetupWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}

func TestSetup_TextFormatShortTime(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "text"}

	SetupWithWriter(cfg, &buf).Info("tick")

	assert.Regexp(t, regexp.MustCompile(`^time=\d{2}:\d{2}:\d{2}\.\d{3} `), buf.String())
}

func TestSetup_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "json"}

	logger := SetupWithWriter(cfg, &buf)
	require.NotNil(t, logger)

	logger.Info("test-msg")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test-msg", record["msg"])
	assert.Contains(t, record, "time")
}

func TestSetup_SetsDefault(t *testing.T) {
	cfg := &config.Config{LogLevel: "info", LogFormat: "text"}
	logger := Setup(cfg)
	assert.Equal(t, logger.Handler(), slog.Default().Handler())
}

func TestSetup_QuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "info", LogFormat: "text", Quiet: true}

	logger := SetupWithWriter(cfg, &buf)
	logger.Info("should-not-appear")
	logger.Error("should-appear")

	assert.NotContains(t, buf.String(), "should-not-appear")
	assert.Contains(t, buf.String(), "should-appear")
}

func TestSetup_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := SetupWithWriter(&config.Config{LogLevel: "debug", LogFormat: "text"}, &buf)
	logger.Debug("debug-msg")
	assert.Contains(t, buf.String(), "debug-msg")

	buf.Reset()

	logger = SetupWithWriter(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf)
	logger.Debug("debug-hidden")
	assert.NotContains(t, buf.String(), "debug-hidden")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo}, // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&config.Config{LogLevel: "info", LogFormat: "text"}, &buf))

	Component(logger, "watcher").Info("spec changed")

	assert.Contains(t, buf.String(), "component=watcher")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestContext_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := NewContext(context.Background(), logger)
	got := FromContext(ctx)
	assert.Equal(t, logger, got)
}

func TestFromContext_FallbackToDefault(t *testing.T) {
	got := FromContext(context.Background())
	assert.Equal(t, slog.Default(), got)
}
