package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"poke-battle-logger/application/extract"
	appnotif "poke-battle-logger/application/notification"
	appvideo "poke-battle-logger/application/video"
	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/distribution"
	"poke-battle-logger/domain/progress"
	"poke-battle-logger/domain/video"
	"poke-battle-logger/infrastructure/config"
)

// Extractor runs the frame pipeline over an opened video
type Extractor interface {
	Extract(ctx context.Context, in extract.Input) (*extract.Result, error)
}

// SourceOpener opens a local video file for decoding
type SourceOpener interface {
	Open(path string) (video.Source, error)
}

// OpenerFunc adapts a function to SourceOpener
type OpenerFunc func(path string) (video.Source, error)

// Open implements SourceOpener
func (f OpenerFunc) Open(path string) (video.Source, error) {
	return f(path)
}

// BattleStore persists a finished build
type BattleStore interface {
	SaveBuild(ctx context.Context, build *battle.Build) error
}

// Notifier sends the end-of-run mails
type Notifier interface {
	Completed(ctx context.Context, to appnotif.Trainer, videoID string, battles, wins, losses int) error
	LabelingRequired(ctx context.Context, to appnotif.Trainer, videoID string, unknown int, folderURL string) error
}

// UnknownSyncer uploads saved unknown crops for remote labeling
type UnknownSyncer interface {
	Sync(ctx context.Context) (*distribution.SyncResult, error)
	FolderURL() string
}

// Clipper exports one clip per battle
type Clipper interface {
	Clip(ctx context.Context, input appvideo.ClipInput) (*appvideo.ClipResult, error)
}

// Service orchestrates the complete processing workflow
type Service struct {
	extractor   Extractor
	opener      SourceOpener
	fileChecker video.FileChecker
	store       BattleStore
	cfg         *config.Config
	output      io.Writer

	downloader video.Downloader
	notifier   Notifier
	syncer     UnknownSyncer
	clipper    Clipper
	reporter   progress.Reporter
	logger     *slog.Logger
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithDownloader fetches videos that are not on disk yet
func WithDownloader(d video.Downloader) Option {
	return func(s *Service) {
		s.downloader = d
	}
}

// WithNotifier enables the end-of-run mails
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithSyncer enables the Drive upload of unknown crops
func WithSyncer(u UnknownSyncer) Option {
	return func(s *Service) {
		s.syncer = u
	}
}

// WithClipper enables the per-battle clip export
func WithClipper(c Clipper) Option {
	return func(s *Service) {
		s.clipper = c
	}
}

// WithReporter sets where run status is published
func WithReporter(r progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = r
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new process service
func NewService(
	extractor Extractor,
	opener SourceOpener,
	fileChecker video.FileChecker,
	store BattleStore,
	cfg *config.Config,
	output io.Writer,
	opts ...Option,
) *Service {
	s := &Service{
		extractor:   extractor,
		opener:      opener,
		fileChecker: fileChecker,
		store:       store,
		cfg:         cfg,
		output:      output,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Input contains all input parameters for the process command
type Input struct {
	VideoID    string // YouTube video ID
	TrainerKey string // Trainer config key, ID or in-game name
	SourcePath string // Local video file (optional, downloaded when empty)
	Clips      bool   // Export one clip per battle
	SkipEmail  bool   // Do not send the end-of-run mail
}

// Result contains the results of a successful process run
type Result struct {
	SourcePath string
	Battles    int
	Wins       int
	Losses     int
	Skipped    int
	Clips      []string
}

// ValidationError contains details about a validation failure with suggestions
type ValidationError struct {
	Message    string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s\n\nTo fix this, run:\n  %s", e.Message, e.Suggestion)
	}
	return e.Message
}

// Process runs the complete end-to-end workflow
func (s *Service) Process(ctx context.Context, input Input) (*Result, error) {
	startTime := time.Now()

	// Step 0: Validate all inputs before starting
	trainer, err := s.validateInputs(input)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(s.output, "Video: %s\n", input.VideoID)
	fmt.Fprintf(s.output, "Trainer: %s (%d)\n\n", trainer.Name, trainer.ID)

	// Step 1: Locate or download the video
	fmt.Fprintf(s.output, "[1/5] Fetching video...\n")
	s.report(ctx, input.VideoID, progress.StageDownloading, 0, "")
	sourcePath, err := s.fetch(ctx, input)
	if err != nil {
		s.fail(ctx, input.VideoID, err)
		s.showRecoveryCommands(1, input, "")
		return nil, fmt.Errorf("download failed: %w", err)
	}
	fmt.Fprintf(s.output, "      Using: %s\n\n", sourcePath)

	// Step 2: Run the frame pipeline
	fmt.Fprintf(s.output, "[2/5] Extracting battles...\n")
	res, err := s.extract(ctx, input.VideoID, trainer.ID, sourcePath)
	if errors.Is(err, battle.ErrUnknownPokemon) {
		s.fail(ctx, input.VideoID, err)
		s.handleUnknown(ctx, input, trainer, res)
		s.showRecoveryCommands(2, input, sourcePath)
		return nil, fmt.Errorf("extraction stopped: %w", err)
	}
	if err != nil {
		s.fail(ctx, input.VideoID, err)
		s.showRecoveryCommands(2, input, sourcePath)
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	fmt.Fprintf(s.output, "      %d battles (%d wins, %d losses)\n", res.Total, res.Wins, res.Losses)
	for _, sk := range res.Skipped {
		fmt.Fprintf(s.output, "      Skipped battle %d: %s\n", sk.IntervalID, sk.Reason)
	}
	fmt.Fprintln(s.output)

	// Step 3: Persist
	fmt.Fprintf(s.output, "[3/5] Saving battles...\n")
	if err := s.store.SaveBuild(ctx, res.Build); err != nil {
		s.fail(ctx, input.VideoID, err)
		s.showRecoveryCommands(3, input, sourcePath)
		return nil, fmt.Errorf("save failed: %w", err)
	}
	fmt.Fprintf(s.output, "      Saved %d battles, %d turns, %d messages\n\n",
		len(res.Build.Records), len(res.Build.Turns), len(res.Build.Messages))
	s.report(ctx, input.VideoID, progress.StageDone, 100, "")

	result := &Result{
		SourcePath: sourcePath,
		Battles:    res.Total,
		Wins:       res.Wins,
		Losses:     res.Losses,
		Skipped:    len(res.Skipped),
	}

	// Step 4: Clips
	fmt.Fprintf(s.output, "[4/5] Exporting clips...\n")
	switch {
	case !input.Clips:
		fmt.Fprintf(s.output, "      Skipped\n\n")
	case s.clipper == nil:
		fmt.Fprintf(s.output, "      Skipped (no clips directory configured)\n\n")
	default:
		clips, err := s.clipper.Clip(ctx, appvideo.ClipInput{SourcePath: sourcePath, Battles: res.Build.Records})
		if err != nil {
			s.showRecoveryCommands(4, input, sourcePath)
			return result, fmt.Errorf("clip export failed: %w", err)
		}
		for id, cerr := range clips.Failed {
			s.logger.Warn("clip not written", "battle_id", id, "error", cerr)
		}
		result.Clips = clips.Paths
		fmt.Fprintf(s.output, "      Created %d clips\n\n", len(clips.Paths))
	}

	// Step 5: Email
	fmt.Fprintf(s.output, "[5/5] Sending email...\n")
	if input.SkipEmail || s.notifier == nil || trainer.Email == "" {
		fmt.Fprintf(s.output, "      Skipped\n\n")
	} else {
		to := appnotif.Trainer{Name: trainer.Name, Email: trainer.Email}
		if err := s.notifier.Completed(ctx, to, input.VideoID, res.Total, res.Wins, res.Losses); err != nil {
			s.showRecoveryCommands(5, input, sourcePath)
			return result, fmt.Errorf("email failed: %w", err)
		}
		fmt.Fprintf(s.output, "      Sent to: %s <%s>\n\n", trainer.Name, trainer.Email)
	}

	elapsed := time.Since(startTime)
	fmt.Fprintf(s.output, "Done! Completed in %s\n", formatDuration(elapsed))

	return result, nil
}

func (s *Service) validateInputs(input Input) (config.Trainer, error) {
	if input.VideoID == "" {
		return config.Trainer{}, &ValidationError{Message: "a video ID is required"}
	}
	if input.SourcePath == "" && s.downloader == nil {
		return config.Trainer{}, &ValidationError{
			Message:    "no local source given and downloading is not configured",
			Suggestion: fmt.Sprintf("poke-battle-logger process --video %s --source <file.mp4>", input.VideoID),
		}
	}
	if input.SourcePath != "" && !s.fileChecker.Exists(input.SourcePath) {
		return config.Trainer{}, fmt.Errorf("source file does not exist: %s", input.SourcePath)
	}

	trainer, err := config.NewConfigManager(s.cfg, "").FindTrainer(input.TrainerKey)
	if errors.Is(err, config.ErrTrainerNotFound) {
		return config.Trainer{}, &ValidationError{
			Message:    fmt.Sprintf("trainer '%s' not found in config", input.TrainerKey),
			Suggestion: config.SuggestAddTrainerCommand(input.TrainerKey),
		}
	}
	if err != nil {
		return config.Trainer{}, err
	}
	return trainer, nil
}

func (s *Service) fetch(ctx context.Context, input Input) (string, error) {
	if input.SourcePath != "" {
		return input.SourcePath, nil
	}
	return s.downloader.Download(ctx, input.VideoID, s.cfg.Paths.DownloadDirectory)
}

func (s *Service) extract(ctx context.Context, videoID string, trainerID int64, path string) (*extract.Result, error) {
	src, err := s.opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return s.extractor.Extract(ctx, extract.Input{VideoID: videoID, TrainerID: trainerID, Source: src})
}

// handleUnknown publishes the saved crops and asks the trainer to label them.
// Failures here are logged; the run has already failed.
func (s *Service) handleUnknown(ctx context.Context, input Input, trainer config.Trainer, res *extract.Result) {
	unknown := 0
	if res != nil {
		unknown = len(res.Unknown)
	}
	fmt.Fprintf(s.output, "      %d pokemon need a label\n", unknown)

	if s.syncer == nil {
		fmt.Fprintf(s.output, "      Crops kept in %s\n\n", s.cfg.Paths.UnknownDirectory)
		return
	}
	synced, err := s.syncer.Sync(ctx)
	if err != nil {
		s.logger.Warn("unknown crop sync failed", "video_id", input.VideoID, "error", err)
		fmt.Fprintln(s.output)
		return
	}
	fmt.Fprintf(s.output, "      Uploaded %d crops to %s\n", len(synced.Uploaded), s.syncer.FolderURL())

	if input.SkipEmail || s.notifier == nil || trainer.Email == "" {
		fmt.Fprintln(s.output)
		return
	}
	to := appnotif.Trainer{Name: trainer.Name, Email: trainer.Email}
	if err := s.notifier.LabelingRequired(ctx, to, input.VideoID, unknown, s.syncer.FolderURL()); err != nil {
		s.logger.Warn("labeling mail failed", "video_id", input.VideoID, "error", err)
	} else {
		fmt.Fprintf(s.output, "      Sent labeling request to: %s <%s>\n", trainer.Name, trainer.Email)
	}
	fmt.Fprintln(s.output)
}

func (s *Service) report(ctx context.Context, videoID string, stage progress.Stage, pct int, msg string) {
	if s.reporter == nil {
		return
	}
	if err := s.reporter.Report(ctx, progress.Update{VideoID: videoID, Stage: stage, Percent: pct, Message: msg}); err != nil {
		s.logger.Warn("status update failed", "video_id", videoID, "stage", stage, "error", err)
	}
}

func (s *Service) fail(ctx context.Context, videoID string, err error) {
	msg := err.Error()
	if errors.Is(err, battle.ErrUnknownPokemon) {
		msg = "failed: unknown pokemon"
	}
	s.report(ctx, videoID, progress.StageFailed, 0, msg)
}

func (s *Service) showRecoveryCommands(failedStep int, input Input, sourcePath string) {
	fmt.Fprintln(s.output)
	fmt.Fprintln(s.output, "To complete manually:")

	if sourcePath == "" {
		sourcePath = filepath.Join(s.cfg.Paths.DownloadDirectory, input.VideoID+".mp4")
	}

	step := 1
	if failedStep <= 1 {
		fmt.Fprintf(s.output, "  %d. Download:   poke-battle-logger download --video %s\n", step, input.VideoID)
		step++
	}
	if failedStep == 2 {
		fmt.Fprintf(s.output, "  %d. Inspect:    poke-battle-logger probe --source %q --frame <N>\n", step, sourcePath)
		step++
		fmt.Fprintf(s.output, "  %d. Label:      poke-battle-logger sync-unknown\n", step)
		step++
	}
	if failedStep <= 3 {
		fmt.Fprintf(s.output, "  %d. Process:    poke-battle-logger process --video %s --trainer %s --source %q\n", step, input.VideoID, input.TrainerKey, sourcePath)
		step++
	}
	if failedStep == 4 {
		fmt.Fprintf(s.output, "  %d. Clips:      poke-battle-logger clip --video %s --source %q\n", step, input.VideoID, sourcePath)
		step++
	}
	if failedStep == 5 {
		fmt.Fprintf(s.output, "  %d. Stats:      poke-battle-logger stats --video %s\n", step, input.VideoID)
	}
	fmt.Fprintln(s.output)
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

// StepInfo provides information about a workflow step
type StepInfo struct {
	Number      int
	Description string
}

// GetSteps returns the list of workflow steps
func GetSteps() []StepInfo {
	return []StepInfo{
		{1, "Fetching video"},
		{2, "Extracting battles"},
		{3, "Saving battles"},
		{4, "Exporting clips"},
		{5, "Sending email"},
	}
}
