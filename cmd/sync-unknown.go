package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	appdist "poke-battle-logger/application/distribution"
	"poke-battle-logger/domain/distribution"

	"github.com/spf13/cobra"
)

var syncUnknownDir string

var syncUnknownCmd = &cobra.Command{
	Use:   "sync-unknown",
	Short: "Upload unrecognized pokemon crops to Google Drive for labeling",
	Long: `Mirror the unknown-sample directory into the configured Google Drive folder.

Crops already present in the folder (by name) are skipped, so the command can
be re-run safely after every processed video.

Example:
  poke-battle-logger sync-unknown
  poke-battle-logger sync-unknown --dir data/unknown`,
	RunE: runSyncUnknown,
}

func init() {
	rootCmd.AddCommand(syncUnknownCmd)
	syncUnknownCmd.Flags().StringVar(&syncUnknownDir, "dir", "", "Directory to sync (defaults to paths.unknown_directory)")
}

func runSyncUnknown(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	if cfg.Google.UnknownFolderID == "" {
		return fmt.Errorf("google.unknown_folder_id is not configured")
	}

	dir := syncUnknownDir
	if dir == "" {
		dir = cfg.Paths.UnknownDirectory
	}

	ctx := cmd.Context()
	httpClient, err := googleHTTPClient(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	client, err := newDriveClient(ctx, httpClient)
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return RunSyncUnknownWithDependencies(ctx, client, cfg.Google.UnknownFolderID, dir, os.Stdout)
}

// RunSyncUnknownWithDependencies runs the sync-unknown command with injected dependencies (for testing)
func RunSyncUnknownWithDependencies(
	ctx context.Context,
	driveClient distribution.DriveClient,
	folderID string,
	dir string,
	output io.Writer,
) error {
	service := appdist.NewSyncService(driveClient, folderID, dir, output)

	fmt.Fprintf(output, "Syncing %s...\n", dir)
	result, err := service.Sync(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Fprintf(output, "Sync complete!\n")
	fmt.Fprintf(output, "  Uploaded: %d\n", len(result.Uploaded))
	fmt.Fprintf(output, "  Already present: %d\n", len(result.Skipped))
	fmt.Fprintf(output, "  Folder: %s\n", service.FolderURL())
	return nil
}
