package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	appdist "poke-battle-logger/application/distribution"
	appnotif "poke-battle-logger/application/notification"
	appprocess "poke-battle-logger/application/process"
	appvideo "poke-battle-logger/application/video"
	"poke-battle-logger/domain/notification"
	"poke-battle-logger/domain/progress"
	"poke-battle-logger/domain/video"
	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/drive"
	"poke-battle-logger/infrastructure/ffmpeg"
	"poke-battle-logger/infrastructure/filesystem"
	"poke-battle-logger/infrastructure/gmail"
	infraprogress "poke-battle-logger/infrastructure/progress"
	"poke-battle-logger/infrastructure/storage"
	"poke-battle-logger/infrastructure/ytdlp"

	"github.com/spf13/cobra"
)

var (
	processVideoID     string
	processTrainerKey  string
	processSourcePath  string
	processPublishedAt string
	processClips       bool
	processNoEmail     bool
	processServe       bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a battle video through the complete workflow",
	Long: `Process a ranked-battle video through the complete automated workflow:
1. Download the video with yt-dlp (skipped with --source)
2. Classify frames, read signals, segment and reconcile battles
3. Save battles, turns, messages and fainted events
4. Export one clip per battle (with --clips)
5. Mail the trainer a summary

When a pokemon cannot be identified the run stops before anything is saved:
the unknown crops are uploaded to the configured Drive folder and the trainer
is asked to label them.

Example:
  poke-battle-logger process --video dQw4w9WgXcQ --trainer ash

  poke-battle-logger process \
    --video dQw4w9WgXcQ \
    --trainer ash \
    --source data/videos/dQw4w9WgXcQ.mp4 \
    --published-at 2024-01-02T12:00:00Z \
    --clips`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&processVideoID, "video", "", "YouTube video ID (required)")
	processCmd.Flags().StringVar(&processTrainerKey, "trainer", "", "Trainer config key, ID or in-game name (required)")
	processCmd.Flags().StringVar(&processSourcePath, "source", "", "Local video file (downloads the video when empty)")
	processCmd.Flags().StringVar(&processPublishedAt, "published-at", "", "Recording start time (RFC 3339) instead of a YouTube lookup")
	processCmd.Flags().BoolVar(&processClips, "clips", false, "Export one clip per battle into paths.clips_directory")
	processCmd.Flags().BoolVar(&processNoEmail, "no-email", false, "Do not mail the trainer")
	processCmd.Flags().BoolVar(&processServe, "serve", false, "Stream progress on server.addr while processing")

	processCmd.MarkFlagRequired("video")
	processCmd.MarkFlagRequired("trainer")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	output := os.Stdout

	db, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	lookup, err := metadataLookup(ctx, cfg, processPublishedAt, output)
	if err != nil {
		return err
	}

	sink := filesystem.NewLocalSink(cfg.Paths.UnknownDirectory)
	engine, err := openEngine(ctx, cfg, db, sink)
	if err != nil {
		return fmt.Errorf("failed to load detection engine: %w", err)
	}
	defer engine.Close()

	trainer, err := config.NewConfigManager(cfg, cfgFile).FindTrainer(processTrainerKey)
	if err != nil {
		return &appprocess.ValidationError{
			Message:    err.Error(),
			Suggestion: config.SuggestAddTrainerCommand(processTrainerKey),
		}
	}
	if err := storage.NewTrainerRepository(db).Upsert(ctx, trainer.ID, trainer.Name, trainer.Email); err != nil {
		return err
	}

	statusRepo := storage.NewStatusRepository(db)
	reporters := []progress.Reporter{
		infraprogress.NewWriterReporter(output),
		storage.NewStatusReporter(statusRepo, trainer.ID),
	}
	if processServe {
		hub := infraprogress.NewHub(infraprogress.WithLogger(slog.Default()))
		stop := startStatusServer(cfg.Server.Addr, hub, statusRepo)
		defer stop()
		reporters = append(reporters, hub)
		fmt.Fprintf(output, "Streaming progress on %s (/ws?video_id=%s)\n\n", cfg.Server.Addr, processVideoID)
	}
	status := progress.NewMulti(nil, reporters...)
	extractor, err := newExtractService(cfg, engine, lookup, status, output)
	if err != nil {
		return err
	}

	opts := []appprocess.Option{
		appprocess.WithReporter(status),
		appprocess.WithDownloader(ytdlp.NewDownloader(ytdlp.WithPath(cfg.Tools.YtDlp))),
	}
	if processClips && cfg.Paths.ClipsDirectory != "" {
		clipper := ffmpeg.NewClipper(ffmpeg.WithFFmpegPath(cfg.Tools.FFmpeg))
		if err := verifyInstalled(ctx, clipper, "ffmpeg"); err != nil {
			return err
		}
		opts = append(opts, appprocess.WithClipper(appvideo.NewClipService(clipper, filesystem.NewChecker(), cfg.Paths.ClipsDirectory)))
	}
	if cfg.Google.UnknownFolderID != "" || (cfg.Email.Enabled && !processNoEmail) {
		httpClient, err := googleHTTPClient(ctx, cfg, output)
		if err != nil {
			return err
		}
		if cfg.Google.UnknownFolderID != "" {
			driveClient, err := newDriveClient(ctx, httpClient)
			if err != nil {
				return err
			}
			opts = append(opts, appprocess.WithSyncer(appdist.NewSyncService(driveClient, cfg.Google.UnknownFolderID, cfg.Paths.UnknownDirectory, output)))
		}
		if cfg.Email.Enabled {
			gmailService, err := gmail.NewGoogleGmailService(ctx, httpClient)
			if err != nil {
				return err
			}
			opts = append(opts, appprocess.WithNotifier(newNotifier(cfg, gmail.NewClient(fromRecipient(cfg), gmail.WithGmailService(gmailService)))))
		}
	}

	return RunProcessWithDependencies(ctx, cfg, extractor, appprocess.OpenerFunc(openVideo), filesystem.NewChecker(),
		storage.NewBattleRepository(db), ProcessInput{
			VideoID:    processVideoID,
			TrainerKey: processTrainerKey,
			SourcePath: processSourcePath,
			Clips:      processClips,
			SkipEmail:  processNoEmail,
		}, output, opts...)
}

// ProcessInput contains the input parameters for process command
type ProcessInput struct {
	VideoID    string
	TrainerKey string
	SourcePath string
	Clips      bool
	SkipEmail  bool
}

// RunProcessWithDependencies runs the process command with injected dependencies (for testing)
func RunProcessWithDependencies(
	ctx context.Context,
	cfg *config.Config,
	extractor appprocess.Extractor,
	opener appprocess.SourceOpener,
	fileChecker video.FileChecker,
	store appprocess.BattleStore,
	input ProcessInput,
	output io.Writer,
	opts ...appprocess.Option,
) error {
	service := appprocess.NewService(extractor, opener, fileChecker, store, cfg, output, opts...)

	_, err := service.Process(ctx, appprocess.Input{
		VideoID:    input.VideoID,
		TrainerKey: input.TrainerKey,
		SourcePath: input.SourcePath,
		Clips:      input.Clips,
		SkipEmail:  input.SkipEmail,
	})
	return err
}

func fromRecipient(cfg *config.Config) notification.Recipient {
	return notification.Recipient{
		Name:    cfg.Email.FromName,
		Address: cfg.Email.FromAddress,
	}
}

func appnotifTrainer(t config.Trainer) appnotif.Trainer {
	return appnotif.Trainer{Name: t.Name, Email: t.Email}
}

func newNotifier(cfg *config.Config, sender notification.EmailSender) *appnotif.Service {
	cc := make([]notification.Recipient, 0, len(cfg.Email.DefaultCC))
	for _, r := range cfg.Email.DefaultCC {
		cc = append(cc, notification.Recipient{Name: r.Name, Address: r.Address})
	}
	return appnotif.NewService(sender, cfg.Email.SenderName, cc)
}

func newDriveClient(ctx context.Context, httpClient *http.Client) (*drive.Client, error) {
	svc, err := drive.NewGoogleDriveService(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return drive.NewClient(ctx, "", drive.WithDriveService(svc))
}

// verifyInstalled checks an external tool when the adapter supports it
func verifyInstalled(ctx context.Context, tool any, name string) error {
	verifiable, ok := tool.(interface{ VerifyInstalled(context.Context) error })
	if !ok {
		return nil
	}
	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := verifiable.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("%s verification failed: %w", name, err)
	}
	return nil
}
