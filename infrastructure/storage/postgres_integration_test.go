//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newPostgresDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("battles"),
		postgres.WithUsername("trainer"),
		postgres.WithPassword("trainer"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	db, err := NewDB(Config{
		Type:     "postgres",
		Host:     host,
		Port:     port.Int(),
		User:     "trainer",
		Password: "trainer",
		Name:     "battles",
	})
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgres_SaveBuildAndSummary(t *testing.T) {
	ctx := context.Background()
	db := newPostgresDB(t)
	repo := NewBattleRepository(db)

	for i := 0; i < 2; i++ {
		if err := repo.SaveBuild(ctx, sampleBuild()); err != nil {
			t.Fatalf("SaveBuild() pass %d error = %v", i, err)
		}
	}

	s, err := repo.VideoSummary(ctx, "vid")
	if err != nil {
		t.Fatalf("VideoSummary() error = %v", err)
	}
	if s != (Summary{Battles: 2, Wins: 1, Losses: 1}) {
		t.Errorf("VideoSummary() = %+v", s)
	}

	if err := NewTrainerRepository(db).Upsert(ctx, 1, "Red", ""); err != nil {
		t.Fatalf("trainer Upsert() error = %v", err)
	}
	if err := NewEmbeddingRepository(db).Add(ctx, "Pikachu", []float32{1, 2, 3}); err != nil {
		t.Fatalf("embedding Add() error = %v", err)
	}
}
