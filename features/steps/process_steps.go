//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appdist "poke-battle-logger/application/distribution"
	"poke-battle-logger/application/extract"
	appnotif "poke-battle-logger/application/notification"
	appprocess "poke-battle-logger/application/process"
	"poke-battle-logger/cmd"
	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"
	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/filesystem"
	"poke-battle-logger/infrastructure/storage"

	"github.com/cucumber/godog"
)

// emptySource stands in for a decoded video; the canned extractor never reads it
type emptySource struct{}

func (emptySource) FrameCount() int { return 0 }

func (emptySource) Next(ctx context.Context) (video.Frame, error) {
	return nil, errors.New("no frames")
}

func (emptySource) ReadAt(ctx context.Context, index int) (video.Frame, error) {
	return nil, errors.New("no frames")
}

func (emptySource) Close() error { return nil }

// cannedExtractor reconciles fixed signals instead of decoding a video
type cannedExtractor struct {
	signals   battle.Signals
	published time.Time
	unknown   []recognition.Identity
}

func (e *cannedExtractor) Extract(ctx context.Context, in extract.Input) (*extract.Result, error) {
	r := battle.NewReconciler(in.VideoID, in.TrainerID, video.StaticLookup{PublishedAt: e.published})
	build, skipped, err := r.Build(ctx, e.signals)
	res := &extract.Result{Signals: e.signals, Unknown: e.unknown}
	if err != nil {
		if errors.Is(err, battle.ErrUnknownPokemon) {
			return res, err
		}
		return nil, err
	}
	res.Build = build
	res.Skipped = skipped
	res.Total, res.Wins, res.Losses = build.Summary()
	if res.Total == 0 {
		return res, battle.ErrNoBattles
	}
	return res, nil
}

type sentMail struct {
	kind string
	to   string
	n    int
}

type captureNotifier struct {
	sent []sentMail
}

func (n *captureNotifier) Completed(ctx context.Context, to appnotif.Trainer, videoID string, battles, wins, losses int) error {
	n.sent = append(n.sent, sentMail{kind: "completion", to: to.Email, n: battles})
	return nil
}

func (n *captureNotifier) LabelingRequired(ctx context.Context, to appnotif.Trainer, videoID string, unknown int, folderURL string) error {
	n.sent = append(n.sent, sentMail{kind: "labeling", to: to.Email, n: unknown})
	return nil
}

type processContext struct {
	tempDir    string
	sourcePath string
	config     *config.Config
	db         *storage.DB
	repo       *storage.BattleRepository
	extractor  *cannedExtractor
	notifier   *captureNotifier
	drive      *memoryDrive
	result     *commandResult
}

var SharedProcessContext = &processContext{}

func InitializeProcessScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedProcessContext
	testCtx.result = SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "process-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.sourcePath = ""
		testCtx.extractor = &cannedExtractor{}
		testCtx.notifier = &captureNotifier{}
		testCtx.drive = newMemoryDrive()

		testCtx.config = &config.Config{Trainers: map[string]config.TrainerConfig{}}
		testCtx.config.Paths.UnknownDirectory = filepath.Join(tempDir, "unknown")
		testCtx.config.ApplyDefaults()
		if err := os.MkdirAll(testCtx.config.Paths.UnknownDirectory, 0755); err != nil {
			return c, err
		}

		db, err := storage.NewDB(storage.Config{Type: "sqlite", SQLitePath: filepath.Join(tempDir, "battles.db")})
		if err != nil {
			return c, err
		}
		testCtx.db = db
		testCtx.repo = storage.NewBattleRepository(db)
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.db != nil {
			testCtx.db.Close()
			testCtx.db = nil
		}
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configured trainer "([^"]*)" with id (\d+) and email "([^"]*)"$`, testCtx.aConfiguredTrainer)
	ctx.Step(`^a local recording "([^"]*)"$`, testCtx.aLocalRecording)
	ctx.Step(`^the recording holds a win and a loss that started at "([^"]*)"$`, testCtx.theRecordingHoldsAWinAndALoss)
	ctx.Step(`^the recording shows a pokemon nobody labeled$`, testCtx.theRecordingShowsAnUnknownPokemon)
	ctx.Step(`^I process video "([^"]*)" for trainer "([^"]*)"$`, testCtx.iProcessVideo)
	ctx.Step(`^I process video "([^"]*)" for trainer "([^"]*)" without email$`, testCtx.iProcessVideoWithoutEmail)
	ctx.Step(`^I show stats for video "([^"]*)"$`, testCtx.iShowStatsForVideo)
	ctx.Step(`^(\d+) battles? should be stored for video "([^"]*)"$`, testCtx.battlesShouldBeStored)
	ctx.Step(`^(\d+) fainted rows? should be stored$`, testCtx.faintedRowsShouldBeStored)
	ctx.Step(`^a (completion|labeling) mail should be sent to "([^"]*)"$`, testCtx.aMailShouldBeSentTo)
	ctx.Step(`^no mail should be sent$`, testCtx.noMailShouldBeSent)
	ctx.Step(`^the unknown crops should be in the Drive folder$`, testCtx.theUnknownCropsShouldBeInTheDriveFolder)
}

func (c *processContext) aConfiguredTrainer(key string, id int64, email string) error {
	c.config.Trainers[key] = config.TrainerConfig{ID: id, Name: key, Email: email}
	return nil
}

func (c *processContext) aLocalRecording(name string) error {
	c.sourcePath = filepath.Join(c.tempDir, name)
	return os.WriteFile(c.sourcePath, []byte("ftyp"), 0644)
}

func (c *processContext) theRecordingHoldsAWinAndALoss(ts string) error {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return err
	}
	c.extractor.published = t
	c.extractor.signals = battle.Signals{
		Intervals: []battle.Interval{
			{ID: 1, Start: 300, End: 3000},
			{ID: 2, Start: 3100, End: 6000},
		},
		Ranks: battle.RankObservations{
			{Frame: 10, Rank: 2000},
			{Frame: 3000, Rank: 1900},
			{Frame: 6000, Rank: 1950},
		},
		Lineups: []battle.Lineup{
			{Frame: 300, You: []string{"Garchomp", "Rotom-Wash", "Kingambit", "Amoonguss", "Dragonite", "Gholdengo"},
				Opponent: []string{"Flutter Mane", "Chien-Pao", "Rotom-Heat", "Landorus", "Iron Hands", "Urshifu"}},
			{Frame: 3100, You: []string{"Garchomp", "Rotom-Wash", "Kingambit", "Amoonguss", "Dragonite", "Gholdengo"},
				Opponent: []string{"Incineroar", "Rillaboom", "Urshifu", "Tornadus", "Ogerpon", "Farigiraf"}},
		},
		Selections: []battle.SelectionOrder{
			{Frame: 320, Slots: []int{2, 0, 3}},
			{Frame: 3200, Slots: []int{1, 4, 5}},
		},
		Turns: []battle.Turn{
			{Frame: 600, You: "Kingambit", Opponent: "Rotom"},
			{Frame: 3500, You: "Rotom", Opponent: "Incineroar"},
		},
		Messages: []battle.Message{
			{Frame: 900, Text: "The opposing Rotom-Heat fainted!"},
		},
	}
	return nil
}

func (c *processContext) theRecordingShowsAnUnknownPokemon() error {
	crop := filepath.Join(c.config.Paths.UnknownDirectory, "20240102120000_0.png")
	if err := os.WriteFile(crop, []byte("png"), 0644); err != nil {
		return err
	}
	c.extractor.signals = battle.Signals{
		Intervals: []battle.Interval{{ID: 1, Start: 300, End: 3000}},
		Ranks:     battle.RankObservations{{Frame: 10, Rank: 2000}, {Frame: 3000, Rank: 1900}},
		Lineups: []battle.Lineup{{
			Frame:    300,
			You:      []string{"A", "B", "C", "D", "E", battle.UnknownPokemon},
			Opponent: []string{"G", "H", "I", "J", "K", "L"},
		}},
		Selections: []battle.SelectionOrder{{Frame: 320, Slots: []int{0, 1, 2}}},
	}
	c.extractor.unknown = []recognition.Identity{{Name: battle.UnknownPokemon, Unknown: true, Source: crop}}
	return nil
}

func (c *processContext) run(videoID, trainerKey string, skipEmail bool) error {
	opts := []appprocess.Option{
		appprocess.WithNotifier(c.notifier),
		appprocess.WithSyncer(appdist.NewSyncService(c.drive, "unknown-folder", c.config.Paths.UnknownDirectory, nil)),
	}
	opener := appprocess.OpenerFunc(func(path string) (video.Source, error) {
		return emptySource{}, nil
	})

	c.result.run(func() error {
		return cmd.RunProcessWithDependencies(context.Background(), c.config, c.extractor, opener,
			filesystem.NewChecker(), c.repo, cmd.ProcessInput{
				VideoID:    videoID,
				TrainerKey: trainerKey,
				SourcePath: c.sourcePath,
				SkipEmail:  skipEmail,
			}, c.result.output, opts...)
	})
	return nil
}

func (c *processContext) iProcessVideo(videoID, trainerKey string) error {
	return c.run(videoID, trainerKey, false)
}

func (c *processContext) iProcessVideoWithoutEmail(videoID, trainerKey string) error {
	return c.run(videoID, trainerKey, true)
}

func (c *processContext) iShowStatsForVideo(videoID string) error {
	c.result.run(func() error {
		return cmd.RunStatsWithDependencies(context.Background(), c.config, c.repo, videoID, "", c.result.output)
	})
	return nil
}

func (c *processContext) battlesShouldBeStored(n int, videoID string) error {
	sum, err := c.repo.VideoSummary(context.Background(), videoID)
	if err != nil {
		return err
	}
	if sum.Battles != n {
		return fmt.Errorf("expected %d stored battles for %s, got %d", n, videoID, sum.Battles)
	}
	return nil
}

func (c *processContext) faintedRowsShouldBeStored(n int) error {
	got, err := c.repo.CountRows(context.Background(), "fainted_log")
	if err != nil {
		return err
	}
	if got != n {
		return fmt.Errorf("expected %d fainted rows, got %d", n, got)
	}
	return nil
}

func (c *processContext) aMailShouldBeSentTo(kind, email string) error {
	for _, m := range c.notifier.sent {
		if m.kind == kind && m.to == email {
			return nil
		}
	}
	return fmt.Errorf("expected a %s mail to %s, sent: %+v", kind, email, c.notifier.sent)
}

func (c *processContext) noMailShouldBeSent() error {
	if len(c.notifier.sent) > 0 {
		return fmt.Errorf("expected no mail, sent: %+v", c.notifier.sent)
	}
	return nil
}

func (c *processContext) theUnknownCropsShouldBeInTheDriveFolder() error {
	if len(c.drive.files["unknown-folder"]) == 0 {
		return fmt.Errorf("expected crops in the Drive folder, found none")
	}
	return nil
}
