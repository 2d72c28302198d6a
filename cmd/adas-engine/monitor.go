package main

import (
	"context"
	"math/rand"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiotlab/adas-engine/internal/prefs"
	"github.com/aiotlab/adas-engine/internal/sim"
	"github.com/aiotlab/adas-engine/internal/telemetry"
)

func newMonitorCmd() *cobra.Command {
	var (
		flagSeed     int64
		flagDuration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the telemetry simulation until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMonitor(flagSeed, flagDuration)
		},
	}

	cmd.Flags().Int64Var(&flagSeed, "seed", 0,
		"random seed for the simulation (0 = time-based)")
	cmd.Flags().DurationVar(&flagDuration, "duration", 0,
		"stop after this long (0 = run until interrupted)")

	return cmd
}

func runMonitor(seed int64, duration time.Duration) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	store, err := prefs.Open(viper.GetString("prefs.path"))
	if err != nil {
		logger.Warn().Err(err).Msg("Preference store unavailable")
	} else {
		defer store.Close()
		darkMode, _ := store.GetBool(prefs.KeyDarkMode, false)
		logger.Debug().Bool("darkMode", darkMode).Msg("Preferences loaded")
	}

	simulator, err := sim.New(
		sim.ConfigFromViper(),
		logger,
		rand.New(rand.NewSource(seed)),
	)
	if err != nil {
		return err
	}

	if viper.GetBool("influx.enabled") {
		influx := telemetry.NewManager(
			logger,
			filepath.Join(viper.GetString("logsDir"), "telemetry_backup.gz"),
		)
		if err := influx.Connect(); err != nil {
			logger.Warn().Err(err).Msg("InfluxDB sink disabled")
		} else {
			defer influx.Close()
			simulator.AddListener(func(snap sim.Snapshot) {
				if err := influx.WriteStatus(snap.Time, snap.Vehicle, len(snap.Alerts)); err != nil {
					logger.Debug().Err(err).Msg("Dropped telemetry point")
				}
			})
		}
	}

	// Throttled status line; the full tick rate is debug-only noise.
	var lastPrint time.Time
	simulator.AddListener(func(snap sim.Snapshot) {
		if time.Since(lastPrint) < 2*time.Second {
			return
		}
		lastPrint = time.Now()
		evt := logger.Info().
			Float64("speedKmh", snap.Vehicle.SpeedKmh).
			Int("fps", snap.Vehicle.FPS).
			Int("objects", len(snap.Vehicle.DetectedObjects)).
			Str("collision", string(snap.Vehicle.CollisionStatus))
		if snap.Vehicle.TTCSeconds != nil {
			evt = evt.Float64("ttcSec", *snap.Vehicle.TTCSeconds)
		}
		evt.Msg("Vehicle status")
	})

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}

	simulator.Start()
	<-ctx.Done()
	simulator.Stop()

	final := simulator.Snapshot()
	logger.Info().
		Int("alerts", len(final.Alerts)).
		Int("logs", len(final.Logs)).
		Msg("Simulation finished")
	return nil
}
