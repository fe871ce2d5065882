package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	appvideo "poke-battle-logger/application/video"
	"poke-battle-logger/domain/battle"
	"poke-battle-logger/infrastructure/ffmpeg"
	"poke-battle-logger/infrastructure/filesystem"
	"poke-battle-logger/infrastructure/storage"
	"poke-battle-logger/infrastructure/ytdlp"

	"github.com/spf13/cobra"
)

var (
	clipVideoID    string
	clipSourcePath string
	clipOutputDir  string
)

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Export one clip per stored battle of a video",
	Long: `Cut the recording of a processed video into one mp4 per battle, named after
the battle ID. Battles are read back from the database.

Example:
  poke-battle-logger clip --video dQw4w9WgXcQ --source data/videos/dQw4w9WgXcQ.mp4`,
	RunE: runClip,
}

func init() {
	rootCmd.AddCommand(clipCmd)
	clipCmd.Flags().StringVar(&clipVideoID, "video", "", "YouTube video ID (required)")
	clipCmd.Flags().StringVar(&clipSourcePath, "source", "", "Local video file (defaults to the downloaded copy)")
	clipCmd.Flags().StringVar(&clipOutputDir, "output", "", "Output directory (defaults to paths.clips_directory)")

	clipCmd.MarkFlagRequired("video")
}

func runClip(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	source := clipSourcePath
	if source == "" {
		source = ytdlp.ExpectedPath(cfg.Paths.DownloadDirectory, clipVideoID)
	}
	outputDir := clipOutputDir
	if outputDir == "" {
		outputDir = cfg.Paths.ClipsDirectory
	}
	if outputDir == "" {
		return fmt.Errorf("no output directory: pass --output or set paths.clips_directory")
	}

	clipper := ffmpeg.NewClipper(ffmpeg.WithFFmpegPath(cfg.Tools.FFmpeg))
	if err := verifyInstalled(ctx, clipper, "ffmpeg"); err != nil {
		return err
	}

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return RunClipWithDependencies(ctx, storage.NewBattleRepository(db),
		appvideo.NewClipService(clipper, filesystem.NewChecker(), outputDir),
		clipVideoID, source, os.Stdout)
}

// BattleLister reads back the stored battles of a video
type BattleLister interface {
	VideoBattles(ctx context.Context, videoID string) ([]storage.StoredBattle, error)
}

// RunClipWithDependencies runs the clip command with injected dependencies (for testing)
func RunClipWithDependencies(
	ctx context.Context,
	battles BattleLister,
	clipper *appvideo.ClipService,
	videoID string,
	sourcePath string,
	output io.Writer,
) error {
	stored, err := battles.VideoBattles(ctx, videoID)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return fmt.Errorf("no battles stored for video %s; run 'poke-battle-logger process' first", videoID)
	}

	records := make([]battle.Record, len(stored))
	for i, sb := range stored {
		records[i] = battle.Record{
			BattleID:   sb.BattleID,
			VideoID:    videoID,
			StartFrame: sb.StartFrame,
			EndFrame:   sb.EndFrame,
		}
	}

	fmt.Fprintf(output, "Clipping %d battle(s) from %s...\n", len(records), sourcePath)
	result, err := clipper.Clip(ctx, appvideo.ClipInput{SourcePath: sourcePath, Battles: records})
	if err != nil {
		return err
	}

	for _, p := range result.Paths {
		fmt.Fprintf(output, "  Wrote %s\n", p)
	}
	if len(result.Failed) > 0 {
		ids := make([]string, 0, len(result.Failed))
		for id := range result.Failed {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			fmt.Fprintf(output, "  Failed %s: %v\n", id, result.Failed[id])
		}
		return fmt.Errorf("%d of %d clips failed", len(result.Failed), len(records))
	}
	return nil
}
