package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig holds elevation provider settings.
type ProviderConfig struct {
	URL        string        `json:"url" mapstructure:"url"`
	BatchSize  int           `json:"batchSize" mapstructure:"batchSize"`
	BatchDelay time.Duration `json:"batchDelay" mapstructure:"batchDelay"`
	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.corsOrigins", "*")

	viper.SetDefault("provider.url", "https://api.open-elevation.com/api/v1/lookup")
	viper.SetDefault("provider.batchSize", 500)
	viper.SetDefault("provider.batchDelayMs", 200)
	viper.SetDefault("provider.timeoutSec", 30)

	viper.SetDefault("cache.capacity", 100)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "terrain3d")

	viper.SetDefault("influx.enabled", true)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "terrain3d-metrics")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.intervalSec", 60)

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("terrain3d.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetProviderConfig returns elevation provider settings with
// durations resolved.
func GetProviderConfig() ProviderConfig {
	return ProviderConfig{
		URL:        viper.GetString("provider.url"),
		BatchSize:  viper.GetInt("provider.batchSize"),
		BatchDelay: time.Duration(viper.GetInt("provider.batchDelayMs")) * time.Millisecond,
		Timeout:    time.Duration(viper.GetInt("provider.timeoutSec")) * time.Second,
	}
}
