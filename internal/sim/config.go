package sim

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the simulation tuning constants. The probability thresholds
// and TTC bands are tuning values, not invariants; they are exposed through
// configuration rather than hard-coded.
type Config struct {
	// TickInterval drives detection/collision updates.
	TickInterval time.Duration
	// LogInterval drives the periodic diagnostic log line.
	LogInterval time.Duration

	MaxObjects int
	MaxAlerts  int
	MaxLogs    int

	FPSMin         int
	FPSMax         int
	SpeedJitterKmh float64

	// A detection is added when a uniform draw exceeds AddObjectThreshold,
	// the oldest removed when a separate draw exceeds RemoveObjectThreshold.
	AddObjectThreshold    float64
	RemoveObjectThreshold float64
	// A CRITICAL collision alert fires on a DANGER tick only when a draw
	// exceeds CollisionAlertThreshold, so the alert does not repeat every tick.
	CollisionAlertThreshold float64
	LaneWarningThreshold    float64

	DangerTTCSec  float64
	CautionTTCSec float64
}

// DefaultConfig returns the reference tuning constants.
func DefaultConfig() Config {
	return Config{
		TickInterval:            500 * time.Millisecond,
		LogInterval:             2 * time.Second,
		MaxObjects:              5,
		MaxAlerts:               20,
		MaxLogs:                 50,
		FPSMin:                  28,
		FPSMax:                  32,
		SpeedJitterKmh:          3.0,
		AddObjectThreshold:      0.7,
		RemoveObjectThreshold:   0.8,
		CollisionAlertThreshold: 0.8,
		LaneWarningThreshold:    0.9,
		DangerTTCSec:            2.0,
		CautionTTCSec:           4.0,
	}
}

// ConfigFromViper builds a Config from the loaded configuration.
func ConfigFromViper() Config {
	return Config{
		TickInterval:            viper.GetDuration("sim.tickInterval"),
		LogInterval:             viper.GetDuration("sim.logInterval"),
		MaxObjects:              viper.GetInt("sim.maxObjects"),
		MaxAlerts:               viper.GetInt("sim.maxAlerts"),
		MaxLogs:                 viper.GetInt("sim.maxLogs"),
		FPSMin:                  viper.GetInt("sim.fpsMin"),
		FPSMax:                  viper.GetInt("sim.fpsMax"),
		SpeedJitterKmh:          viper.GetFloat64("sim.speedJitterKmh"),
		AddObjectThreshold:      viper.GetFloat64("sim.addObjectThreshold"),
		RemoveObjectThreshold:   viper.GetFloat64("sim.removeObjectThreshold"),
		CollisionAlertThreshold: viper.GetFloat64("sim.collisionAlertThreshold"),
		LaneWarningThreshold:    viper.GetFloat64("sim.laneWarningThreshold"),
		DangerTTCSec:            viper.GetFloat64("sim.dangerTTCSec"),
		CautionTTCSec:           viper.GetFloat64("sim.cautionTTCSec"),
	}
}
