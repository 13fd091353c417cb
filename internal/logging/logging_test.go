package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	start := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	got := LogFilePath("/var/log/terrain3d", "terrain3d-server", start)
	assert.Equal(t, filepath.Join("/var/log/terrain3d", "terrain3d-server.20260314_150926.log"), got)
}

func TestSetup_WritesToFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("logLevel", "debug")
	viper.Set("graylog.enabled", false)

	var buf bytes.Buffer
	logger := Setup("terrain3d-server", &buf)
	logger.Info().Str("key", "value").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "terrain3d-server", entry["service"])
}

func TestSetup_LevelFiltering(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("logLevel", "warn")
	viper.Set("graylog.enabled", false)

	var buf bytes.Buffer
	logger := Setup("terrain3d-server", &buf)
	logger.Info().Msg("dropped")
	logger.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestSetup_InvalidLevelFallsBackToInfo(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("logLevel", "verybad")
	viper.Set("graylog.enabled", false)

	var buf bytes.Buffer
	logger := Setup("terrain3d-server", &buf)
	logger.Debug().Msg("dropped")
	logger.Info().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
