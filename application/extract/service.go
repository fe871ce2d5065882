package extract

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/progress"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"
)

// Reader extracts typed signals from representative frames
type Reader interface {
	Rank(ctx context.Context, frame video.Frame, first bool) (int, error)
	Outcome(ctx context.Context, frame video.Frame) (battle.Outcome, error)
	Selection(ctx context.Context, frame video.Frame) ([]int, error)
	Lineup(ctx context.Context, frame video.Frame) (you, opponent []recognition.Identity, err error)
	ActivePokemon(ctx context.Context, frame video.Frame) (you, opponent recognition.Identity, err error)
	Message(ctx context.Context, frame video.Frame) (string, bool)
}

// Settings tune run compression and frame sampling
type Settings struct {
	GapThreshold        int
	MessageGapThreshold int
	// RepresentativeDepth picks the n-th frame from the end of level-50 and
	// select-done runs, away from the fade into the next screen
	RepresentativeDepth int
	// OutcomeSamples is how many frames of a win/lose run are voted on
	OutcomeSamples int
	// MinOutcomeRun skips win/lose runs of this many frames or fewer
	MinOutcomeRun int
}

// DefaultSettings returns the tuned defaults
func DefaultSettings() Settings {
	return Settings{
		GapThreshold:        detection.DefaultGapThreshold,
		MessageGapThreshold: detection.DefaultMessageThreshold,
		RepresentativeDepth: 5,
		OutcomeSamples:      10,
		MinOutcomeRun:       3,
	}
}

// Service runs the frame pipeline of one video: classify every frame,
// compress hits into runs, read signals, segment battles and reconcile them
type Service struct {
	classifier detection.Classifier
	reader     Reader
	lookup     video.MetadataLookup
	reporter   progress.Reporter
	logger     *slog.Logger
	output     io.Writer
	settings   Settings
	reconciler []battle.ReconcilerOption
}

// Option is a functional option for configuring Service
type Option func(*Service)

// WithReporter sets the progress reporter
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

// WithSettings replaces the default settings; zero fields keep their default
func WithSettings(settings Settings) Option {
	return func(s *Service) {
		d := DefaultSettings()
		if settings.GapThreshold > 0 {
			d.GapThreshold = settings.GapThreshold
		}
		if settings.MessageGapThreshold > 0 {
			d.MessageGapThreshold = settings.MessageGapThreshold
		}
		if settings.RepresentativeDepth > 0 {
			d.RepresentativeDepth = settings.RepresentativeDepth
		}
		if settings.OutcomeSamples > 0 {
			d.OutcomeSamples = settings.OutcomeSamples
		}
		if settings.MinOutcomeRun > 0 {
			d.MinOutcomeRun = settings.MinOutcomeRun
		}
		s.settings = d
	}
}

// WithReconcilerOptions passes options to every reconciler the service builds
func WithReconcilerOptions(opts ...battle.ReconcilerOption) Option {
	return func(s *Service) {
		s.reconciler = append(s.reconciler, opts...)
	}
}

// NewService creates an extraction service
func NewService(classifier detection.Classifier, reader Reader, lookup video.MetadataLookup, output io.Writer, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		reader:     reader,
		lookup:     lookup,
		output:     output,
		logger:     slog.Default(),
		settings:   DefaultSettings(),
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.output == nil {
		s.output = io.Discard
	}

	return s
}

// Input identifies the video to process
type Input struct {
	VideoID   string
	TrainerID int64
	Source    video.Source
}

// Result is everything one run produced
type Result struct {
	Build   *battle.Build
	Skipped []battle.Skipped
	Signals battle.Signals
	Frames  int
	Hits    int
	Unknown []recognition.Identity
	Total   int
	Wins    int
	Losses  int
}

// Extract runs the pipeline. On battle.ErrUnknownPokemon the result is still
// returned so the caller can see which crops need a label; nothing in it is
// meant to be persisted.
func (s *Service) Extract(ctx context.Context, in Input) (*Result, error) {
	reporter := progress.NewThrottle(progress.NewMulti(s.logger, s.reporters()...))
	report := func(stage progress.Stage, pct int, msg string) {
		reporter.Report(ctx, progress.Update{VideoID: in.VideoID, Stage: stage, Percent: pct, Message: msg})
	}

	fmt.Fprintf(s.output, "[1/4] Classifying frames...\n")
	hits, frames, err := s.classify(ctx, in.Source, func(done, total int) {
		report(progress.StageProcessing, progress.Percent(done, total)*8/10, "classifying frames")
	})
	if err != nil {
		report(progress.StageFailed, 0, err.Error())
		return nil, err
	}
	fmt.Fprintf(s.output, "      Classified %d frames (%d hits)\n\n", frames, len(hits))

	fmt.Fprintf(s.output, "[2/4] Reading signals...\n")
	report(progress.StageProcessing, 80, "reading signals")
	runs := s.compress(hits)
	signals, unknown, err := s.readSignals(ctx, in.Source, runs)
	if err != nil {
		report(progress.StageFailed, 80, err.Error())
		return nil, err
	}
	fmt.Fprintf(s.output, "      %d ranks, %d lineups, %d selections, %d turns, %d messages, %d outcomes\n\n",
		len(signals.Ranks), len(signals.Lineups), len(signals.Selections),
		len(signals.Turns), len(signals.Messages), len(signals.Outcomes))

	fmt.Fprintf(s.output, "[3/4] Segmenting battles...\n")
	report(progress.StageProcessing, 90, "segmenting battles")
	signals.Intervals = battle.Segment(runs[detection.StandingBy], signals.Ranks)
	fmt.Fprintf(s.output, "      Found %d battles\n\n", len(signals.Intervals))

	result := &Result{Signals: signals, Frames: frames, Hits: len(hits), Unknown: unknown}

	fmt.Fprintf(s.output, "[4/4] Reconciling timeline...\n")
	report(progress.StageProcessing, 95, "reconciling timeline")
	reconciler := battle.NewReconciler(in.VideoID, in.TrainerID, s.lookup, s.reconciler...)
	build, skipped, err := reconciler.Build(ctx, signals)
	if err != nil {
		if errors.Is(err, battle.ErrUnknownPokemon) {
			fmt.Fprintf(s.output, "      %d pokemon could not be identified\n\n", len(unknown))
			report(progress.StageFailed, 100, "failed: unknown pokemon")
			return result, err
		}
		report(progress.StageFailed, 100, err.Error())
		return nil, err
	}
	for _, sk := range skipped {
		s.logger.Warn("battle skipped", "video_id", in.VideoID, "battle", sk.IntervalID, "reason", sk.Reason)
	}

	result.Build = build
	result.Skipped = skipped
	result.Total, result.Wins, result.Losses = build.Summary()
	if result.Total == 0 {
		report(progress.StageFailed, 100, battle.ErrNoBattles.Error())
		return result, battle.ErrNoBattles
	}

	fmt.Fprintf(s.output, "      %d battles (%d wins, %d losses), %d skipped\n\n", result.Total, result.Wins, result.Losses, len(skipped))
	return result, nil
}

func (s *Service) reporters() []progress.Reporter {
	if s.reporter == nil {
		return nil
	}
	return []progress.Reporter{s.reporter}
}

// classify makes the single sequential pass over the video
func (s *Service) classify(ctx context.Context, src video.Source, tick func(done, total int)) ([]detection.Hit, int, error) {
	total := src.FrameCount()
	var hits []detection.Hit
	n := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, n, err
		}
		frame, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, n, fmt.Errorf("failed to read frame %d: %w", n, err)
		}

		idx := frame.Index()
		fired, err := s.classifier.Classify(frame)
		frame.Close()
		if err != nil {
			return nil, n, fmt.Errorf("failed to classify frame %d: %w", idx, err)
		}
		for _, d := range fired {
			hits = append(hits, detection.Hit{Frame: idx, Detector: d})
		}

		n++
		tick(n, total)
	}
	return hits, n, nil
}

func (s *Service) compress(hits []detection.Hit) map[detection.Detector][]detection.Run {
	grouped := detection.Group(hits)
	runs := make(map[detection.Detector][]detection.Run, len(detection.All))
	for _, d := range detection.All {
		switch d {
		case detection.Message:
			runs[d] = detection.CompressMessages(grouped[d], s.settings.MessageGapThreshold)
		case detection.StandingBy:
			runs[d] = detection.Compress(grouped[d], s.settings.GapThreshold, true)
		default:
			runs[d] = detection.Compress(grouped[d], s.settings.GapThreshold, false)
		}
	}
	return runs
}

// at reads one frame, hands it to fn and closes it
func at(ctx context.Context, src video.Source, index int, fn func(video.Frame) error) error {
	frame, err := src.ReadAt(ctx, index)
	if err != nil {
		return fmt.Errorf("failed to read frame %d: %w", index, err)
	}
	defer frame.Close()
	return fn(frame)
}

func (s *Service) readSignals(ctx context.Context, src video.Source, runs map[detection.Detector][]detection.Run) (battle.Signals, []recognition.Identity, error) {
	var sig battle.Signals
	var unknown []recognition.Identity
	depth := s.settings.RepresentativeDepth

	ranks, err := s.readRanks(ctx, src, runs)
	if err != nil {
		return sig, nil, err
	}
	sig.Ranks = ranks

	for _, run := range runs[detection.StandingBy] {
		frame := run.Last()
		err := at(ctx, src, frame, func(f video.Frame) error {
			you, opp, err := s.reader.Lineup(ctx, f)
			if err != nil {
				return err
			}
			unknown = append(unknown, unknowns(you)...)
			unknown = append(unknown, unknowns(opp)...)
			sig.Lineups = append(sig.Lineups, battle.Lineup{Frame: frame, You: names(you), Opponent: names(opp)})
			return nil
		})
		if err != nil {
			return sig, nil, fmt.Errorf("lineup at frame %d: %w", frame, err)
		}
	}

	for _, run := range runs[detection.SelectDone] {
		frame := run.NthFromLast(depth)
		err := at(ctx, src, frame, func(f video.Frame) error {
			slots, err := s.reader.Selection(ctx, f)
			if err != nil {
				return err
			}
			sig.Selections = append(sig.Selections, battle.SelectionOrder{Frame: frame, Slots: slots})
			return nil
		})
		if errors.Is(err, recognition.ErrSelectionIncomplete) {
			s.logger.Warn("selection order unreadable", "frame", frame, "error", err)
			continue
		}
		if err != nil {
			return sig, nil, fmt.Errorf("selection at frame %d: %w", frame, err)
		}
	}

	for _, run := range runs[detection.Level50] {
		frame := run.NthFromLast(depth)
		err := at(ctx, src, frame, func(f video.Frame) error {
			you, opp, err := s.reader.ActivePokemon(ctx, f)
			if err != nil {
				return err
			}
			unknown = append(unknown, unknowns([]recognition.Identity{you, opp})...)
			sig.Turns = append(sig.Turns, battle.Turn{Frame: frame, You: name(you), Opponent: name(opp)})
			return nil
		})
		if err != nil {
			return sig, nil, fmt.Errorf("active pokemon at frame %d: %w", frame, err)
		}
	}

	for _, run := range runs[detection.Message] {
		frame := run.Last()
		err := at(ctx, src, frame, func(f video.Frame) error {
			if text, ok := s.reader.Message(ctx, f); ok {
				sig.Messages = append(sig.Messages, battle.Message{Frame: frame, Text: text})
			}
			return nil
		})
		if err != nil {
			return sig, nil, fmt.Errorf("message at frame %d: %w", frame, err)
		}
	}

	outcomes, err := s.readOutcomes(ctx, src, runs[detection.WinOrLost])
	if err != nil {
		return sig, nil, err
	}
	sig.Outcomes = outcomes

	return sig, unknown, nil
}

// readRanks OCRs the representative frame of every ranking run. Unreadable
// ranks are logged and skipped.
func (s *Service) readRanks(ctx context.Context, src video.Source, runs map[detection.Detector][]detection.Run) (battle.RankObservations, error) {
	var obs battle.RankObservations
	for _, d := range []detection.Detector{detection.FirstRanking, detection.Ranking} {
		first := d == detection.FirstRanking
		for _, run := range runs[d] {
			frame := run.Last()
			err := at(ctx, src, frame, func(f video.Frame) error {
				rank, err := s.reader.Rank(ctx, f, first)
				if err != nil {
					return err
				}
				obs = append(obs, battle.RankObservation{Frame: frame, Rank: rank})
				return nil
			})
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err != nil {
				s.logger.Warn("rank unreadable", "frame", frame, "first", first, "error", err)
			}
		}
	}
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Frame < obs[j].Frame })
	return obs.Dedup(), nil
}

// readOutcomes votes over the last frames of every long enough win/lose run
func (s *Service) readOutcomes(ctx context.Context, src video.Source, runs []detection.Run) ([]battle.OutcomeObservation, error) {
	var obs []battle.OutcomeObservation
	for _, run := range runs {
		if len(run) <= s.settings.MinOutcomeRun {
			continue
		}
		start := len(run) - s.settings.OutcomeSamples
		if start < 0 {
			start = 0
		}

		var samples []battle.Outcome
		for _, frame := range run[start:] {
			err := at(ctx, src, frame, func(f video.Frame) error {
				o, err := s.reader.Outcome(ctx, f)
				if err != nil {
					return err
				}
				samples = append(samples, o)
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("outcome at frame %d: %w", frame, err)
			}
		}
		obs = append(obs, battle.OutcomeObservation{Frame: run.Last(), Outcome: recognition.VoteOutcome(samples)})
	}
	return obs, nil
}

func name(id recognition.Identity) string {
	if id.Unknown || id.Name == "" {
		return battle.UnknownPokemon
	}
	return id.Name
}

func names(ids []recognition.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = name(id)
	}
	return out
}

func unknowns(ids []recognition.Identity) []recognition.Identity {
	var out []recognition.Identity
	for _, id := range ids {
		if id.Unknown {
			out = append(out, id)
		}
	}
	return out
}
