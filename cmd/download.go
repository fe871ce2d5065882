package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"poke-battle-logger/domain/video"
	"poke-battle-logger/infrastructure/ytdlp"

	"github.com/spf13/cobra"
)

var downloadVideoID string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download a battle video with yt-dlp",
	Long: `Download a YouTube video into paths.download_directory as <video-id>.mp4.
An existing file is reused.

Example:
  poke-battle-logger download --video dQw4w9WgXcQ`,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&downloadVideoID, "video", "", "YouTube video ID (required)")
	downloadCmd.MarkFlagRequired("video")
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	downloader := ytdlp.NewDownloader(ytdlp.WithPath(cfg.Tools.YtDlp))
	if err := verifyInstalled(cmd.Context(), downloader, "yt-dlp"); err != nil {
		return err
	}

	return RunDownloadWithDependencies(cmd.Context(), downloader, downloadVideoID, cfg.Paths.DownloadDirectory, os.Stdout)
}

// RunDownloadWithDependencies runs the download command with injected dependencies (for testing)
func RunDownloadWithDependencies(ctx context.Context, downloader video.Downloader, videoID, dir string, output io.Writer) error {
	fmt.Fprintf(output, "Downloading %s...\n", videoID)
	path, err := downloader.Download(ctx, videoID, dir)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	fmt.Fprintf(output, "Saved to %s\n", path)
	return nil
}
