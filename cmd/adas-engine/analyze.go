package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aiotlab/adas-engine/internal/videojob"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		flagVideoType string
		flagDevice    string
		flagOutDir    string
	)

	cmd := &cobra.Command{
		Use:   "analyze <video-file>",
		Short: "Upload a dashcam video for remote analysis and fetch the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(args[0], flagVideoType, flagDevice, flagOutDir)
		},
	}

	cmd.Flags().StringVar(&flagVideoType, "video-type", "dashcam",
		"video type tag sent with the upload")
	cmd.Flags().StringVar(&flagDevice, "device", "cuda",
		"processing device hint sent with the upload")
	cmd.Flags().StringVar(&flagOutDir, "out", ".",
		"directory for the downloaded result video")

	return cmd
}

func runAnalyze(videoPath, videoType, device, outDir string) error {
	client, err := videojob.New(
		viper.GetString("api.baseUrl"),
		logger,
		videojob.WithRequestTimeout(viper.GetDuration("api.requestTimeout")),
		videojob.WithResourceTimeout(viper.GetDuration("api.resourceTimeout")),
		videojob.WithPollInterval(viper.GetDuration("api.pollInterval")),
		videojob.WithMaxPollAttempts(viper.GetInt("api.maxPollAttempts")),
	)
	if err != nil {
		return err
	}

	video, err := os.Open(videoPath)
	if err != nil {
		return err
	}
	defer video.Close()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := client.Upload(ctx, video, filepath.Base(videoPath), videoType, device)
	if err != nil {
		return err
	}

	lastPercent := -1
	done, err := client.AwaitCompletion(ctx, job.JobID, func(percent int) {
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		logger.Info().Int("percent", percent).Msg("Processing")
	})
	if err != nil {
		return err
	}

	filename := "result.mp4"
	if done.ResultPath != nil && *done.ResultPath != "" {
		filename = filepath.Base(*done.ResultPath)
	}

	local, err := client.DownloadResult(ctx, job.JobID, filename, outDir)
	if err != nil {
		return err
	}

	logger.Info().Str("path", local).Msg("Analysis complete")
	return nil
}
