package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// TrainerRepository mirrors configured trainers into the database
type TrainerRepository struct {
	db *DB
}

// NewTrainerRepository creates a trainer repository
func NewTrainerRepository(db *DB) *TrainerRepository {
	return &TrainerRepository{db: db}
}

// Upsert records a trainer
func (r *TrainerRepository) Upsert(ctx context.Context, id int64, name, email string) error {
	_, err := r.db.conn.ExecContext(ctx, r.db.upsert("trainer", []string{"id", "name", "email"}, []string{"id"}), id, name, email)
	if err != nil {
		return fmt.Errorf("failed to upsert trainer %d: %w", id, err)
	}
	return nil
}

// Name returns a trainer's stored name
func (r *TrainerRepository) Name(ctx context.Context, id int64) (string, bool, error) {
	var name string
	err := r.db.conn.QueryRowContext(ctx, r.db.rebind(`SELECT name FROM trainer WHERE id = ?`), id).Scan(&name)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get trainer %d: %w", id, err)
	}
	return name, true, nil
}
