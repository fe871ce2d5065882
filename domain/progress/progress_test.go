package progress

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type recorder struct {
	updates []Update
	err     error
}

func (r *recorder) Report(ctx context.Context, u Update) error {
	r.updates = append(r.updates, u)
	return r.err
}

func TestMulti_Report(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	ok := &recorder{}
	failing := &recorder{err: errors.New("socket closed")}
	m := NewMulti(logger, failing, ok)

	if err := m.Report(context.Background(), Update{VideoID: "abc", Stage: StageProcessing, Percent: 10}); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	if len(ok.updates) != 1 || len(failing.updates) != 1 {
		t.Fatalf("every reporter should receive the update: ok=%d failing=%d", len(ok.updates), len(failing.updates))
	}
	if ok.updates[0].At.IsZero() {
		t.Error("Report() should stamp the update time")
	}
	if !strings.Contains(logs.String(), "progress report failed") {
		t.Errorf("failure not logged: %q", logs.String())
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{5, 10, 50},
		{10, 10, 100},
		{11, 10, 100},
		{-1, 10, 0},
		{1, 3, 33},
	}
	for _, tt := range tests {
		if got := Percent(tt.done, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestThrottle(t *testing.T) {
	rec := &recorder{}
	th := NewThrottle(rec)
	ctx := context.Background()

	for _, u := range []Update{
		{Stage: StageProcessing, Percent: 0},
		{Stage: StageProcessing, Percent: 0},
		{Stage: StageProcessing, Percent: 1},
		{Stage: StageProcessing, Percent: 1},
		{Stage: StageDone, Percent: 1},
	} {
		th.Report(ctx, u)
	}

	if len(rec.updates) != 3 {
		t.Errorf("forwarded %d updates, want 3", len(rec.updates))
	}
}
