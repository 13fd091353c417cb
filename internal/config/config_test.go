package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"server": { "port": "9000" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terrain3d.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "9000", viper.GetString("server.port"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terrain3d.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./logs", viper.GetString("logsDir"))
	assert.Equal(t, "0.0.0.0", viper.GetString("server.host"))
	assert.Equal(t, "8000", viper.GetString("server.port"))
	assert.Equal(t, "*", viper.GetString("server.corsOrigins"))
	assert.Equal(t, "https://api.open-elevation.com/api/v1/lookup", viper.GetString("provider.url"))
	assert.Equal(t, 500, viper.GetInt("provider.batchSize"))
	assert.Equal(t, 200, viper.GetInt("provider.batchDelayMs"))
	assert.Equal(t, 100, viper.GetInt("cache.capacity"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "5432", viper.GetString("db.port"))
	assert.Equal(t, "postgres", viper.GetString("db.username"))
	assert.Equal(t, "postgres", viper.GetString("db.password"))
	assert.Equal(t, "terrain3d", viper.GetString("db.database"))
	assert.Equal(t, true, viper.GetBool("influx.enabled"))
	assert.Equal(t, "terrain3d-metrics", viper.GetString("influx.org"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetProviderConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terrain3d.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	cfg := GetProviderConfig()
	assert.Equal(t, "https://api.open-elevation.com/api/v1/lookup", cfg.URL)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 200*time.Millisecond, cfg.BatchDelay)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestGetProviderConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"provider": {
			"url": "http://localhost:9999/lookup",
			"batchSize": 100,
			"batchDelayMs": 5,
			"timeoutSec": 2
		}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terrain3d.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	pc := GetProviderConfig()
	assert.Equal(t, "http://localhost:9999/lookup", pc.URL)
	assert.Equal(t, 100, pc.BatchSize)
	assert.Equal(t, 5*time.Millisecond, pc.BatchDelay)
	assert.Equal(t, 2*time.Second, pc.Timeout)
}
