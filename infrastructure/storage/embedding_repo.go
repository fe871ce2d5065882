package storage

import (
	"context"
	"fmt"

	"poke-battle-logger/infrastructure/vectorindex"
)

// EmbeddingRepository stores labeled pokemon image embeddings
type EmbeddingRepository struct {
	db *DB
}

// NewEmbeddingRepository creates an embedding repository
func NewEmbeddingRepository(db *DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// Add stores one labeled embedding
func (r *EmbeddingRepository) Add(ctx context.Context, label string, vec []float32) error {
	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(`INSERT INTO embeddings (label, vector) VALUES (?, ?)`),
		label, vectorindex.Encode(vec))
	if err != nil {
		return fmt.Errorf("failed to add embedding for %s: %w", label, err)
	}
	return nil
}

// Embeddings implements vectorindex.RowSource
func (r *EmbeddingRepository) Embeddings(ctx context.Context) ([]vectorindex.Row, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT label, vector FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("failed to query embeddings: %w", err)
	}
	defer rows.Close()

	var result []vectorindex.Row
	for rows.Next() {
		var row vectorindex.Row
		if err := rows.Scan(&row.Label, &row.Vector); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// Ensure EmbeddingRepository implements vectorindex.RowSource
var _ vectorindex.RowSource = (*EmbeddingRepository)(nil)
