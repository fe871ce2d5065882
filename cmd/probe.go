package cmd

import (
	"fmt"
	"os"

	appdetection "poke-battle-logger/application/detection"
	appvideo "poke-battle-logger/application/video"
	"poke-battle-logger/infrastructure/ffmpeg"
	"poke-battle-logger/infrastructure/filesystem"

	"github.com/spf13/cobra"
)

var (
	probeSourcePath string
	probeFrames     []int
	probeDump       bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Print detector scores for chosen frames",
	Long: `Score every detector against the given frames of a local video. Use it to
check thresholds and crop windows against a new recording setup.

With --dump the frames are also written as PNG into paths.frames_directory
using ffmpeg.

Example:
  poke-battle-logger probe --source session.mp4 --frames 900,1800 --dump`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
	probeCmd.Flags().StringVar(&probeSourcePath, "source", "", "Local video file (required)")
	probeCmd.Flags().IntSliceVar(&probeFrames, "frames", nil, "Frame indices to score (required)")
	probeCmd.Flags().BoolVar(&probeDump, "dump", false, "Also write the frames as PNG")

	probeCmd.MarkFlagRequired("source")
	probeCmd.MarkFlagRequired("frames")
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := openEngine(ctx, cfg, db, filesystem.NewLocalSink(cfg.Paths.UnknownDirectory))
	if err != nil {
		return fmt.Errorf("failed to load detection engine: %w", err)
	}
	defer engine.Close()

	var dumper appdetection.FrameDumper
	if probeDump {
		grabber := ffmpeg.NewGrabber(ffmpeg.WithFFmpegPath(cfg.Tools.FFmpeg))
		if err := verifyInstalled(ctx, grabber, "ffmpeg"); err != nil {
			return err
		}
		dumper = appvideo.NewFrameService(grabber, filesystem.NewChecker(), cfg.Paths.FramesDirectory)
	}

	src, err := openVideo(probeSourcePath)
	if err != nil {
		return err
	}
	defer src.Close()

	service := appdetection.NewService(engine, dumper, os.Stdout)
	_, err = service.Probe(ctx, src, appdetection.ProbeInput{
		SourcePath: probeSourcePath,
		Frames:     probeFrames,
		Dump:       probeDump,
	})
	return err
}
