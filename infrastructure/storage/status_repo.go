package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"poke-battle-logger/domain/progress"
)

// ErrStatusNotFound is returned when a video has no recorded status
var ErrStatusNotFound = errors.New("video status not found")

// Status is the last recorded processing state of a video
type Status struct {
	VideoID   string
	TrainerID int64
	Stage     progress.Stage
	Percent   int
	Message   string
	UpdatedAt time.Time
}

// StatusRepository tracks per-video processing state
type StatusRepository struct {
	db *DB
}

// NewStatusRepository creates a status repository
func NewStatusRepository(db *DB) *StatusRepository {
	return &StatusRepository{db: db}
}

var statusColumns = []string{"video_id", "trainer_id", "status", "percent", "message", "updated_at"}

// Upsert records the status of a video, replacing any earlier one
func (r *StatusRepository) Upsert(ctx context.Context, s Status) error {
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	_, err := r.db.conn.ExecContext(ctx, r.db.upsert("video_process_status", statusColumns, []string{"video_id"}),
		s.VideoID, s.TrainerID, string(s.Stage), s.Percent, s.Message, s.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert status of %s: %w", s.VideoID, err)
	}
	return nil
}

// Get returns the recorded status of a video
func (r *StatusRepository) Get(ctx context.Context, videoID string) (*Status, error) {
	var s Status
	var stage string
	var message sql.NullString
	err := r.db.conn.QueryRowContext(ctx, r.db.rebind(
		`SELECT video_id, trainer_id, status, percent, message, updated_at FROM video_process_status WHERE video_id = ?`),
		videoID,
	).Scan(&s.VideoID, &s.TrainerID, &stage, &s.Percent, &message, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrStatusNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get status of %s: %w", videoID, err)
	}
	s.Stage = progress.Stage(stage)
	s.Message = message.String
	return &s, nil
}

// StatusReporter persists progress updates of one trainer's runs
type StatusReporter struct {
	repo      *StatusRepository
	trainerID int64
}

// NewStatusReporter creates a reporter writing to the status table
func NewStatusReporter(repo *StatusRepository, trainerID int64) *StatusReporter {
	return &StatusReporter{repo: repo, trainerID: trainerID}
}

// Report implements progress.Reporter
func (s *StatusReporter) Report(ctx context.Context, u progress.Update) error {
	return s.repo.Upsert(ctx, Status{
		VideoID:   u.VideoID,
		TrainerID: s.trainerID,
		Stage:     u.Stage,
		Percent:   u.Percent,
		Message:   u.Message,
		UpdatedAt: u.At,
	})
}

// Ensure StatusReporter implements progress.Reporter
var _ progress.Reporter = (*StatusReporter)(nil)
