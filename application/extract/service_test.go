package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"poke-battle-logger/domain/battle"
	"poke-battle-logger/domain/detection"
	"poke-battle-logger/domain/progress"
	"poke-battle-logger/domain/recognition"
	"poke-battle-logger/domain/video"
)

// mockFrame implements video.Frame for testing
type mockFrame struct {
	index  int
	closed *int
}

func (f mockFrame) Index() int { return f.index }

func (f mockFrame) Close() error {
	*f.closed++
	return nil
}

// mockSource implements video.Source for testing
type mockSource struct {
	count   int
	next    int
	readAt  []int
	closed  int
	readErr error
}

func (m *mockSource) FrameCount() int { return m.count }

func (m *mockSource) Next(ctx context.Context) (video.Frame, error) {
	if m.next >= m.count {
		return nil, io.EOF
	}
	f := mockFrame{index: m.next, closed: &m.closed}
	m.next++
	return f, nil
}

func (m *mockSource) ReadAt(ctx context.Context, index int) (video.Frame, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.readAt = append(m.readAt, index)
	return mockFrame{index: index, closed: &m.closed}, nil
}

func (m *mockSource) Close() error { return nil }

// mockClassifier implements detection.Classifier for testing
type mockClassifier struct {
	fired map[int][]detection.Detector
	err   error
}

func (m *mockClassifier) Classify(frame video.Frame) ([]detection.Detector, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.fired[frame.Index()], nil
}

func (m *mockClassifier) mark(d detection.Detector, from, to int) {
	for f := from; f <= to; f++ {
		m.fired[f] = append(m.fired[f], d)
	}
}

// mockReader implements Reader for testing
type mockReader struct {
	ranks     map[int]int
	rankErr   map[int]error
	outcomes  map[int]battle.Outcome
	lineupYou []recognition.Identity
	lineupOpp []recognition.Identity
	slots     []int
	active    map[int][2]recognition.Identity
	messages  map[int]string

	rankCalls    []int
	outcomeCalls []int
}

func (m *mockReader) Rank(ctx context.Context, frame video.Frame, first bool) (int, error) {
	m.rankCalls = append(m.rankCalls, frame.Index())
	if err := m.rankErr[frame.Index()]; err != nil {
		return 0, err
	}
	return m.ranks[frame.Index()], nil
}

func (m *mockReader) Outcome(ctx context.Context, frame video.Frame) (battle.Outcome, error) {
	m.outcomeCalls = append(m.outcomeCalls, frame.Index())
	if o, ok := m.outcomes[frame.Index()]; ok {
		return o, nil
	}
	return battle.Unknown, nil
}

func (m *mockReader) Selection(ctx context.Context, frame video.Frame) ([]int, error) {
	if m.slots == nil {
		return nil, recognition.ErrSelectionIncomplete
	}
	return m.slots, nil
}

func (m *mockReader) Lineup(ctx context.Context, frame video.Frame) ([]recognition.Identity, []recognition.Identity, error) {
	return m.lineupYou, m.lineupOpp, nil
}

func (m *mockReader) ActivePokemon(ctx context.Context, frame video.Frame) (recognition.Identity, recognition.Identity, error) {
	pair, ok := m.active[frame.Index()]
	if !ok {
		return recognition.Identity{Unknown: true}, recognition.Identity{Unknown: true}, nil
	}
	return pair[0], pair[1], nil
}

func (m *mockReader) Message(ctx context.Context, frame video.Frame) (string, bool) {
	text, ok := m.messages[frame.Index()]
	return text, ok
}

// recorder implements progress.Reporter for testing
type recorder struct {
	updates []progress.Update
}

func (r *recorder) Report(ctx context.Context, u progress.Update) error {
	r.updates = append(r.updates, u)
	return nil
}

func known(names ...string) []recognition.Identity {
	ids := make([]recognition.Identity, len(names))
	for i, n := range names {
		ids[i] = recognition.Identity{Name: n, Source: "template"}
	}
	return ids
}

// oneBattle lays out a single ranked battle across 300 frames
func oneBattle() (*mockSource, *mockClassifier, *mockReader) {
	src := &mockSource{count: 300}
	cls := &mockClassifier{fired: make(map[int][]detection.Detector)}
	cls.mark(detection.FirstRanking, 10, 12)
	cls.mark(detection.StandingBy, 50, 55)
	cls.mark(detection.SelectDone, 60, 66)
	cls.mark(detection.Level50, 100, 110)
	cls.mark(detection.Message, 120, 121)
	cls.mark(detection.WinOrLost, 200, 209)
	cls.mark(detection.Ranking, 250, 252)

	outcomes := make(map[int]battle.Outcome)
	for f := 200; f <= 209; f++ {
		outcomes[f] = battle.Win
	}
	outcomes[201] = battle.Lose

	reader := &mockReader{
		ranks:     map[int]int{12: 1500, 252: 1400},
		outcomes:  outcomes,
		lineupYou: known("Garchomp", "Amoonguss", "Gholdengo", "Dragonite", "Kingambit", "Arcanine"),
		lineupOpp: known("Rotom-Wash", "Gengar", "Dondozo", "Tatsugiri", "Annihilape", "Incineroar"),
		slots:     []int{4, 0, 1},
		active: map[int][2]recognition.Identity{
			106: {known("Kingambit")[0], known("Rotom")[0]},
		},
		messages: map[int]string{121: "The opposing Rotom fainted!"},
	}
	return src, cls, reader
}

func newTestService(cls *mockClassifier, reader *mockReader, out io.Writer, opts ...Option) *Service {
	lookup := video.StaticLookup{PublishedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	opts = append([]Option{WithSettings(Settings{GapThreshold: 5})}, opts...)
	return NewService(cls, reader, lookup, out, opts...)
}

func TestService_Extract(t *testing.T) {
	src, cls, reader := oneBattle()
	var out bytes.Buffer
	rec := &recorder{}
	svc := newTestService(cls, reader, &out, WithReporter(rec))

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", TrainerID: 1, Source: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Frames != 300 {
		t.Errorf("Frames = %d, want 300", result.Frames)
	}
	if result.Total != 1 || result.Wins != 1 || result.Losses != 0 {
		t.Errorf("summary = %d/%d/%d, want 1/1/0", result.Total, result.Wins, result.Losses)
	}

	if len(result.Signals.Intervals) != 1 {
		t.Fatalf("expected 1 interval, got %+v", result.Signals.Intervals)
	}
	iv := result.Signals.Intervals[0]
	if iv.Start != 55 || iv.End != 252 {
		t.Errorf("interval = %d-%d, want 55-252", iv.Start, iv.End)
	}

	r := result.Build.Records[0]
	if r.NextRank != 1400 {
		t.Errorf("NextRank = %d, want 1400", r.NextRank)
	}
	if got := strings.Join(r.YourSelection, ","); got != "Kingambit,Garchomp,Amoonguss" {
		t.Errorf("YourSelection = %s", got)
	}
	if len(result.Build.Turns) != 1 || result.Build.Turns[0].Frame != 106 {
		t.Errorf("Turns = %+v, want one turn at frame 106", result.Build.Turns)
	}
	if result.Build.Turns[0].Opponent != "Rotom-Wash" {
		t.Errorf("turn opponent = %s, want form resolved to Rotom-Wash", result.Build.Turns[0].Opponent)
	}
	if len(result.Build.Fainted) != 1 || result.Build.Fainted[0].Side != battle.Opponent {
		t.Errorf("Fainted = %+v", result.Build.Fainted)
	}

	if len(reader.outcomeCalls) != 10 {
		t.Errorf("outcome samples = %d, want 10", len(reader.outcomeCalls))
	}
	if src.closed != src.count+len(src.readAt) {
		t.Errorf("closed %d frames, want %d", src.closed, src.count+len(src.readAt))
	}

	for _, step := range []string{"[1/4]", "[2/4]", "[3/4]", "[4/4]"} {
		if !strings.Contains(out.String(), step) {
			t.Errorf("output missing step %s", step)
		}
	}
	if len(rec.updates) == 0 {
		t.Fatal("expected progress updates")
	}
	for i := 1; i < len(rec.updates); i++ {
		if rec.updates[i].Percent < rec.updates[i-1].Percent {
			t.Errorf("progress went backwards: %d after %d", rec.updates[i].Percent, rec.updates[i-1].Percent)
		}
	}
}

func TestService_Extract_RepresentativeFrames(t *testing.T) {
	src, cls, reader := oneBattle()
	svc := newTestService(cls, reader, nil)

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", Source: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	sig := result.Signals
	if sig.Lineups[0].Frame != 55 {
		t.Errorf("lineup frame = %d, want last standing-by frame 55", sig.Lineups[0].Frame)
	}
	if sig.Selections[0].Frame != 62 {
		t.Errorf("selection frame = %d, want 5th from last 62", sig.Selections[0].Frame)
	}
	if sig.Messages[0].Frame != 121 {
		t.Errorf("message frame = %d, want 121", sig.Messages[0].Frame)
	}
	if sig.Outcomes[0].Frame != 209 || sig.Outcomes[0].Outcome != battle.Win {
		t.Errorf("outcome = %+v, want win at 209", sig.Outcomes[0])
	}
	if want := []int{12, 252}; len(reader.rankCalls) != 2 || reader.rankCalls[0] != want[0] || reader.rankCalls[1] != want[1] {
		t.Errorf("rank reads = %v, want %v", reader.rankCalls, want)
	}
}

func TestService_Extract_UnknownPokemon(t *testing.T) {
	src, cls, reader := oneBattle()
	reader.lineupOpp[2] = recognition.Identity{Unknown: true, Source: "/unknown/pokemon/x.png"}
	svc := newTestService(cls, reader, nil)

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", Source: src})
	if !errors.Is(err, battle.ErrUnknownPokemon) {
		t.Fatalf("expected ErrUnknownPokemon, got %v", err)
	}
	if result == nil {
		t.Fatal("expected a result alongside ErrUnknownPokemon")
	}
	if result.Build != nil {
		t.Error("expected no build when a pokemon is unknown")
	}
	if len(result.Unknown) != 1 || result.Unknown[0].Source != "/unknown/pokemon/x.png" {
		t.Errorf("Unknown = %+v", result.Unknown)
	}
	if result.Signals.Lineups[0].Opponent[2] != battle.UnknownPokemon {
		t.Errorf("lineup slot = %s, want %s", result.Signals.Lineups[0].Opponent[2], battle.UnknownPokemon)
	}
}

func TestService_Extract_UnreadableRankDropsBattle(t *testing.T) {
	src, cls, reader := oneBattle()
	reader.rankErr = map[int]error{252: recognition.ErrNoRankDigits}
	svc := newTestService(cls, reader, nil)

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", Source: src})
	if !errors.Is(err, battle.ErrNoBattles) {
		t.Fatalf("expected ErrNoBattles, got %v", err)
	}
	if len(result.Signals.Ranks) != 1 {
		t.Errorf("Ranks = %+v, want the readable one only", result.Signals.Ranks)
	}
}

func TestService_Extract_ShortOutcomeRunIgnored(t *testing.T) {
	src, cls, reader := oneBattle()
	for f := 203; f <= 209; f++ {
		delete(cls.fired, f)
	}
	svc := newTestService(cls, reader, nil)

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", Source: src})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(result.Signals.Outcomes) != 0 {
		t.Errorf("Outcomes = %+v, want none for a 3-frame run", result.Signals.Outcomes)
	}
	if result.Build.Records[0].Outcome != battle.Win {
		t.Errorf("Outcome = %s, want win implied by rank drop", result.Build.Records[0].Outcome)
	}
}

func TestService_Extract_IncompleteSelectionSkipsBattle(t *testing.T) {
	src, cls, reader := oneBattle()
	reader.slots = nil
	svc := newTestService(cls, reader, nil)

	result, err := svc.Extract(context.Background(), Input{VideoID: "vid", Source: src})
	if !errors.Is(err, battle.ErrNoBattles) {
		t.Fatalf("expected ErrNoBattles, got %v", err)
	}
	if len(result.Skipped) != 1 {
		t.Errorf("Skipped = %+v, want the battle reported", result.Skipped)
	}
}

func TestService_Extract_Errors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*mockSource, *mockClassifier)
		ctx     func() context.Context
		wantErr error
	}{
		{
			name:    "classifier failure",
			setup:   func(s *mockSource, c *mockClassifier) { c.err = errors.New("bad frame") },
			ctx:     context.Background,
			wantErr: nil,
		},
		{
			name:  "cancelled",
			setup: func(s *mockSource, c *mockClassifier) {},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
		{
			name:    "re-read failure",
			setup:   func(s *mockSource, c *mockClassifier) { s.readErr = errors.New("seek failed") },
			ctx:     context.Background,
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, cls, reader := oneBattle()
			tt.setup(src, cls)
			svc := newTestService(cls, reader, nil)

			result, err := svc.Extract(tt.ctx(), Input{VideoID: "vid", Source: src})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if result != nil {
				t.Errorf("expected nil result, got %+v", result)
			}
		})
	}
}

func TestWithSettings_KeepsDefaults(t *testing.T) {
	svc := NewService(nil, nil, nil, nil, WithSettings(Settings{OutcomeSamples: 4}))
	want := DefaultSettings()
	want.OutcomeSamples = 4
	if svc.settings != want {
		t.Errorf("settings = %+v, want %+v", svc.settings, want)
	}
}
