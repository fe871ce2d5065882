//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/video"

	"github.com/cucumber/godog"
)

type pipelineContext struct {
	hits []int
	runs []detection.Run

	standingBy []detection.Run
	ranks      battle.RankObservations
	intervals  []battle.Interval

	signals   battle.Signals
	published time.Time
	build     *battle.Build
	skipped   []battle.Skipped
	buildErr  error
}

var SharedPipelineContext = &pipelineContext{}

func InitializePipelineScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedPipelineContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		*testCtx = pipelineContext{}
		return c, nil
	})

	// Compressor
	ctx.Step(`^detector hits at frames "([^"]*)"$`, testCtx.detectorHitsAtFrames)
	ctx.Step(`^I compress them with gap threshold (\d+)$`, testCtx.iCompressThem)
	ctx.Step(`^I compress them with gap threshold (\d+) ignoring single frames$`, testCtx.iCompressThemIgnoringSingleFrames)
	ctx.Step(`^I compress them as messages with gap threshold (\d+)$`, testCtx.iCompressThemAsMessages)
	ctx.Step(`^there should be (\d+) runs?$`, testCtx.thereShouldBeRuns)
	ctx.Step(`^run (\d+) should span frames (\d+) to (\d+)$`, testCtx.runShouldSpanFrames)

	// Segmenter
	ctx.Step(`^standing-by screens ending at frames "([^"]*)"$`, testCtx.standingByScreensEndingAt)
	ctx.Step(`^the ladder shows rank (\d+) at frame (\d+)$`, testCtx.theLadderShowsRank)
	ctx.Step(`^I segment the session$`, testCtx.iSegmentTheSession)
	ctx.Step(`^there should be (\d+) battles?$`, testCtx.thereShouldBeBattles)
	ctx.Step(`^battle (\d+) should span frames (\d+) to (\d+)$`, testCtx.battleShouldSpanFrames)

	// Reconciler
	ctx.Step(`^a recording that started at "([^"]*)"$`, testCtx.aRecordingThatStartedAt)
	ctx.Step(`^a battle between frames (\d+) and (\d+) with my team "([^"]*)" against "([^"]*)"$`, testCtx.aBattleBetweenFrames)
	ctx.Step(`^I picked slots "([^"]*)" at frame (\d+)$`, testCtx.iPickedSlotsAtFrame)
	ctx.Step(`^the result screen reads "(win|lose)" at frame (\d+)$`, testCtx.theResultScreenReads)
	ctx.Step(`^at frame (\d+) "([^"]*)" faces "([^"]*)"$`, testCtx.atFrameFaces)
	ctx.Step(`^at frame (\d+) the message "([^"]*)" appears$`, testCtx.atFrameTheMessageAppears)
	ctx.Step(`^I reconcile the timeline$`, testCtx.iReconcileTheTimeline)
	ctx.Step(`^reconciliation should fail with "([^"]*)"$`, testCtx.reconciliationShouldFailWith)
	ctx.Step(`^battle (\d+) should be a "([^"]*)"$`, testCtx.battleShouldBeA)
	ctx.Step(`^battle (\d+) should have next rank (\d+)$`, testCtx.battleShouldHaveNextRank)
	ctx.Step(`^battle (\d+) should have started at "([^"]*)"$`, testCtx.battleShouldHaveStartedAt)
	ctx.Step(`^battle (\d+) should link to "([^"]*)"$`, testCtx.battleShouldLinkTo)
	ctx.Step(`^battle (\d+) should record my selection "([^"]*)"$`, testCtx.battleShouldRecordMySelection)
	ctx.Step(`^battle (\d+) should record the opponent selection "([^"]*)"$`, testCtx.battleShouldRecordOpponentSelection)
	ctx.Step(`^(\d+) fainted events? should be recorded$`, testCtx.faintedEventsShouldBeRecorded)
	ctx.Step(`^(\d+) battles? should be skipped$`, testCtx.battlesShouldBeSkipped)
}

func parseInts(list string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(list, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func splitNames(list string) []string {
	var out []string
	for _, n := range strings.Split(list, ",") {
		out = append(out, strings.TrimSpace(n))
	}
	return out
}

// --- Compressor ---

func (c *pipelineContext) detectorHitsAtFrames(list string) error {
	hits, err := parseInts(list)
	c.hits = hits
	return err
}

func (c *pipelineContext) iCompressThem(threshold int) error {
	c.runs = detection.Compress(c.hits, threshold, false)
	return nil
}

func (c *pipelineContext) iCompressThemIgnoringSingleFrames(threshold int) error {
	c.runs = detection.Compress(c.hits, threshold, true)
	return nil
}

func (c *pipelineContext) iCompressThemAsMessages(threshold int) error {
	c.runs = detection.CompressMessages(c.hits, threshold)
	return nil
}

func (c *pipelineContext) thereShouldBeRuns(n int) error {
	if len(c.runs) != n {
		return fmt.Errorf("expected %d runs, got %d: %v", n, len(c.runs), c.runs)
	}
	return nil
}

func (c *pipelineContext) runShouldSpanFrames(i, first, last int) error {
	if i < 1 || i > len(c.runs) {
		return fmt.Errorf("no run %d in %v", i, c.runs)
	}
	r := c.runs[i-1]
	if r[0] != first || r.Last() != last {
		return fmt.Errorf("expected run %d to span %d-%d, got %d-%d", i, first, last, r[0], r.Last())
	}
	return nil
}

// --- Segmenter ---

func (c *pipelineContext) standingByScreensEndingAt(list string) error {
	ends, err := parseInts(list)
	if err != nil {
		return err
	}
	for _, e := range ends {
		c.standingBy = append(c.standingBy, detection.Run{e - 2, e - 1, e})
	}
	return nil
}

func (c *pipelineContext) theLadderShowsRank(rank, frame int) error {
	c.ranks = append(c.ranks, battle.RankObservation{Frame: frame, Rank: rank})
	c.signals.Ranks = c.ranks
	return nil
}

func (c *pipelineContext) iSegmentTheSession() error {
	c.intervals = battle.Segment(c.standingBy, c.ranks)
	return nil
}

func (c *pipelineContext) thereShouldBeBattles(n int) error {
	if len(c.intervals) != n {
		return fmt.Errorf("expected %d battles, got %d: %v", n, len(c.intervals), c.intervals)
	}
	return nil
}

func (c *pipelineContext) battleShouldSpanFrames(id, start, end int) error {
	for _, iv := range c.intervals {
		if iv.ID == id {
			if iv.Start != start || iv.End != end {
				return fmt.Errorf("expected battle %d to span %d-%d, got %d-%d", id, start, end, iv.Start, iv.End)
			}
			return nil
		}
	}
	return fmt.Errorf("no battle %d in %v", id, c.intervals)
}

// --- Reconciler ---

func (c *pipelineContext) aRecordingThatStartedAt(ts string) error {
	t, err := time.Parse(time.RFC3339, ts)
	c.published = t
	return err
}

func (c *pipelineContext) aBattleBetweenFrames(start, end int, mine, theirs string) error {
	c.signals.Intervals = append(c.signals.Intervals, battle.Interval{
		ID:    len(c.signals.Intervals) + 1,
		Start: start,
		End:   end,
	})
	c.signals.Lineups = append(c.signals.Lineups, battle.Lineup{
		Frame:    start,
		You:      splitNames(mine),
		Opponent: splitNames(theirs),
	})
	return nil
}

func (c *pipelineContext) iPickedSlotsAtFrame(list string, frame int) error {
	slots, err := parseInts(list)
	if err != nil {
		return err
	}
	c.signals.Selections = append(c.signals.Selections, battle.SelectionOrder{Frame: frame, Slots: slots})
	return nil
}

func (c *pipelineContext) theResultScreenReads(outcome string, frame int) error {
	c.signals.Outcomes = append(c.signals.Outcomes, battle.OutcomeObservation{Frame: frame, Outcome: battle.Outcome(outcome)})
	return nil
}

func (c *pipelineContext) atFrameFaces(frame int, you, opponent string) error {
	c.signals.Turns = append(c.signals.Turns, battle.Turn{Frame: frame, You: you, Opponent: opponent})
	return nil
}

func (c *pipelineContext) atFrameTheMessageAppears(frame int, text string) error {
	c.signals.Messages = append(c.signals.Messages, battle.Message{Frame: frame, Text: text})
	return nil
}

func (c *pipelineContext) iReconcileTheTimeline() error {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return err
	}
	r := battle.NewReconciler("vid123", 1, video.StaticLookup{PublishedAt: c.published}, battle.WithLocation(loc))
	c.build, c.skipped, c.buildErr = r.Build(context.Background(), c.signals)
	return nil
}

func (c *pipelineContext) reconciliationShouldFailWith(expected string) error {
	if c.buildErr == nil {
		return fmt.Errorf("expected reconciliation to fail with %q", expected)
	}
	if !strings.Contains(c.buildErr.Error(), expected) {
		return fmt.Errorf("expected error to contain %q, got %q", expected, c.buildErr.Error())
	}
	if c.build != nil {
		return fmt.Errorf("expected no partial build on failure")
	}
	return nil
}

func (c *pipelineContext) record(i int) (battle.Record, error) {
	if c.buildErr != nil {
		return battle.Record{}, fmt.Errorf("reconciliation failed: %w", c.buildErr)
	}
	if i < 1 || i > len(c.build.Records) {
		return battle.Record{}, fmt.Errorf("no battle %d (%d built)", i, len(c.build.Records))
	}
	return c.build.Records[i-1], nil
}

func (c *pipelineContext) battleShouldBeA(i int, outcome string) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if string(r.Outcome) != outcome {
		return fmt.Errorf("expected battle %d to be a %q, got %q", i, outcome, r.Outcome)
	}
	return nil
}

func (c *pipelineContext) battleShouldHaveNextRank(i, rank int) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if r.NextRank != rank {
		return fmt.Errorf("expected battle %d next rank %d, got %d", i, rank, r.NextRank)
	}
	return nil
}

func (c *pipelineContext) battleShouldHaveStartedAt(i int, expected string) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if got := r.CreatedAt.Format("2006-01-02 15:04:05 MST"); got != expected {
		return fmt.Errorf("expected battle %d to start at %q, got %q", i, expected, got)
	}
	return nil
}

func (c *pipelineContext) battleShouldLinkTo(i int, url string) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if r.VideoURL != url {
		return fmt.Errorf("expected battle %d URL %q, got %q", i, url, r.VideoURL)
	}
	return nil
}

func (c *pipelineContext) battleShouldRecordMySelection(i int, names string) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if got := strings.Join(r.YourSelection, ","); got != names {
		return fmt.Errorf("expected battle %d selection %q, got %q", i, names, got)
	}
	return nil
}

func (c *pipelineContext) battleShouldRecordOpponentSelection(i int, names string) error {
	r, err := c.record(i)
	if err != nil {
		return err
	}
	if got := strings.Join(r.OpponentSelection, ","); got != names {
		return fmt.Errorf("expected battle %d opponent selection %q, got %q", i, names, got)
	}
	return nil
}

func (c *pipelineContext) faintedEventsShouldBeRecorded(n int) error {
	if c.buildErr != nil {
		return c.buildErr
	}
	if len(c.build.Fainted) != n {
		return fmt.Errorf("expected %d fainted events, got %d: %+v", n, len(c.build.Fainted), c.build.Fainted)
	}
	return nil
}

func (c *pipelineContext) battlesShouldBeSkipped(n int) error {
	if c.buildErr != nil && !errors.Is(c.buildErr, battle.ErrNoBattles) {
		return c.buildErr
	}
	if len(c.skipped) != n {
		return fmt.Errorf("expected %d skipped battles, got %d: %+v", n, len(c.skipped), c.skipped)
	}
	return nil
}
