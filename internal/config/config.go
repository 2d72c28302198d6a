package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from a JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./adaslogs")

	viper.SetDefault("api.baseUrl", "https://adas-api.aiotlab.edu.vn")
	viper.SetDefault("api.requestTimeout", "300s")
	viper.SetDefault("api.resourceTimeout", "600s")
	viper.SetDefault("api.pollInterval", "1s")
	viper.SetDefault("api.maxPollAttempts", 180)

	viper.SetDefault("sim.tickInterval", "500ms")
	viper.SetDefault("sim.logInterval", "2s")
	viper.SetDefault("sim.maxObjects", 5)
	viper.SetDefault("sim.maxAlerts", 20)
	viper.SetDefault("sim.maxLogs", 50)
	viper.SetDefault("sim.fpsMin", 28)
	viper.SetDefault("sim.fpsMax", 32)
	viper.SetDefault("sim.speedJitterKmh", 3.0)
	viper.SetDefault("sim.addObjectThreshold", 0.7)
	viper.SetDefault("sim.removeObjectThreshold", 0.8)
	viper.SetDefault("sim.collisionAlertThreshold", 0.8)
	viper.SetDefault("sim.laneWarningThreshold", 0.9)
	viper.SetDefault("sim.dangerTTCSec", 2.0)
	viper.SetDefault("sim.cautionTTCSec", 4.0)

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "adas-metrics")
	viper.SetDefault("influx.bucket", "vehicle_telemetry")

	viper.SetDefault("prefs.path", "./adas_prefs.db")

	viper.SetConfigName("adas_engine.cfg.json")
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

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
