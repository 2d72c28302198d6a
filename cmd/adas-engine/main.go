package main

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiotlab/adas-engine/internal/config"
	"github.com/aiotlab/adas-engine/internal/logging"
)

var (
	flagConfigDir string

	logger       zerolog.Logger
	sessionStart = time.Now()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adas-engine",
		Short: "ADAS telemetry simulator and video-analysis client",
		Long: `adas-engine drives the ADAS companion core without the mobile UI:
it runs the local telemetry/collision simulation and talks to the remote
video-analysis service.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", ".",
		"directory containing adas_engine.cfg.json")

	rootCmd.AddCommand(newMonitorCmd())
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	err := config.Load(flagConfigDir)

	logsDir := viper.GetString("logsDir")
	if _, statErr := os.Stat(logsDir); os.IsNotExist(statErr) {
		os.Mkdir(logsDir, 0755)
	}

	var fileWriter io.Writer
	logFile, fileErr := os.OpenFile(
		logging.LogFilePath(logsDir, "adas_engine", sessionStart),
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666,
	)
	if fileErr == nil {
		fileWriter = logFile
	}

	logger = logging.Setup(fileWriter, viper.GetString("logLevel"))

	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load config, using defaults")
	} else {
		logger.Info().Str("configDir", flagConfigDir).Msg("Loaded config")
	}
	if fileErr != nil {
		logger.Warn().Err(fileErr).Msg("Failed to open session log file")
	}
	return nil
}
