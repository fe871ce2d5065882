package progress

import (
	"context"
	"log/slog"
	"time"
)

// Stage names a phase of a run as shown to the user
type Stage string

const (
	StageDownloading Stage = "Downloading"
	StageProcessing  Stage = "Processing"
	StageDone        Stage = "Processing Done"
	StageFailed      Stage = "Failed"
)

// Update is one progress event of a video run
type Update struct {
	VideoID string    `json:"video_id"`
	Stage   Stage     `json:"stage"`
	Message string    `json:"message,omitempty"`
	Percent int       `json:"percent"`
	At      time.Time `json:"at"`
}

// Reporter receives progress updates. Implementations must not block the
// frame loop; a failed report never fails the run.
type Reporter interface {
	Report(ctx context.Context, u Update) error
}

// Multi fans an update out to several reporters and logs their failures
type Multi struct {
	reporters []Reporter
	logger    *slog.Logger
}

// NewMulti creates a fan-out reporter
func NewMulti(logger *slog.Logger, reporters ...Reporter) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{reporters: reporters, logger: logger}
}

// Report implements Reporter. It always returns nil.
func (m *Multi) Report(ctx context.Context, u Update) error {
	if u.At.IsZero() {
		u.At = time.Now()
	}
	for _, r := range m.reporters {
		if err := r.Report(ctx, u); err != nil {
			m.logger.Warn("progress report failed", "video_id", u.VideoID, "stage", u.Stage, "error", err)
		}
	}
	return nil
}

// Percent converts a position to a clamped 0-100 value
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	p := done * 100 / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// Throttle forwards an update only when its percentage or stage changed, so a
// per-frame loop emits about a hundred events per pass
type Throttle struct {
	next      Reporter
	lastStage Stage
	lastPct   int
	started   bool
}

// NewThrottle wraps a reporter
func NewThrottle(next Reporter) *Throttle {
	return &Throttle{next: next}
}

// Report implements Reporter
func (t *Throttle) Report(ctx context.Context, u Update) error {
	if t.started && u.Stage == t.lastStage && u.Percent == t.lastPct {
		return nil
	}
	t.started, t.lastStage, t.lastPct = true, u.Stage, u.Percent
	return t.next.Report(ctx, u)
}

// Ensure the wrappers implement Reporter
var (
	_ Reporter = (*Multi)(nil)
	_ Reporter = (*Throttle)(nil)
)
