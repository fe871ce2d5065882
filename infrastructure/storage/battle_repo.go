package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"poke-battle-logger/domain/battle"
)

// BattleRepository persists reconciled battles
type BattleRepository struct {
	db *DB
}

// NewBattleRepository creates a battle repository
func NewBattleRepository(db *DB) *BattleRepository {
	return &BattleRepository{db: db}
}

var (
	battleColumns  = []string{"battle_id", "trainer_id", "video_id", "created_at", "start_frame", "end_frame"}
	summaryColumns = []string{
		"battle_id", "created_at", "win_or_lose", "next_rank", "your_team", "opponent_team",
		"your_pokemon_1", "your_pokemon_2", "your_pokemon_3",
		"opponent_pokemon_1", "opponent_pokemon_2", "opponent_pokemon_3", "video",
	}
	childTables = []string{"team", "in_battle_log", "message_log", "fainted_log"}
)

// SaveBuild writes every row of a build in one transaction. Battles go in
// before the rows that reference them; re-running a video replaces its rows.
func (r *BattleRepository) SaveBuild(ctx context.Context, b *battle.Build) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	battleStmt := r.db.upsert("battles", battleColumns, []string{"battle_id"})
	summaryStmt := r.db.upsert("battle_summary", summaryColumns, []string{"battle_id"})

	for _, rec := range b.Records {
		for _, table := range childTables {
			if _, err := tx.ExecContext(ctx, r.db.rebind("DELETE FROM "+table+" WHERE battle_id = ?"), rec.BattleID); err != nil {
				return fmt.Errorf("failed to clear %s for %s: %w", table, rec.BattleID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, battleStmt,
			rec.BattleID, rec.TrainerID, rec.VideoID, rec.CreatedAt.UTC(), rec.StartFrame, rec.EndFrame,
		); err != nil {
			return fmt.Errorf("failed to insert battle %s: %w", rec.BattleID, err)
		}

		you := pad3(rec.YourSelection)
		opp := pad3(rec.OpponentSelection)
		if _, err := tx.ExecContext(ctx, summaryStmt,
			rec.BattleID, rec.CreatedAt.UTC(), string(rec.Outcome), rec.NextRank,
			strings.Join(rec.YourTeam, ","), strings.Join(rec.OpponentTeam, ","),
			you[0], you[1], you[2], opp[0], opp[1], opp[2], rec.VideoURL,
		); err != nil {
			return fmt.Errorf("failed to insert summary %s: %w", rec.BattleID, err)
		}
	}

	if err := r.insertTeams(ctx, tx, b.Teams); err != nil {
		return err
	}
	for _, t := range b.Turns {
		if _, err := tx.ExecContext(ctx, r.db.rebind(
			`INSERT INTO in_battle_log (battle_id, turn, frame_number, your_pokemon_name, opponent_pokemon_name) VALUES (?, ?, ?, ?, ?)`),
			t.BattleID, t.Turn, t.Frame, t.You, t.Opponent,
		); err != nil {
			return fmt.Errorf("failed to insert turn %d of %s: %w", t.Turn, t.BattleID, err)
		}
	}
	for _, m := range b.Messages {
		if _, err := tx.ExecContext(ctx, r.db.rebind(
			`INSERT INTO message_log (battle_id, frame_number, message) VALUES (?, ?, ?)`),
			m.BattleID, m.Frame, m.Text,
		); err != nil {
			return fmt.Errorf("failed to insert message at %d of %s: %w", m.Frame, m.BattleID, err)
		}
	}
	for _, f := range b.Fainted {
		if _, err := tx.ExecContext(ctx, r.db.rebind(
			`INSERT INTO fainted_log (battle_id, turn, your_pokemon_name, opponent_pokemon_name, fainted_side) VALUES (?, ?, ?, ?, ?)`),
			f.BattleID, f.Turn, f.You, f.Opponent, string(f.Side),
		); err != nil {
			return fmt.Errorf("failed to insert fainted event of %s: %w", f.BattleID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit build: %w", err)
	}
	return nil
}

func (r *BattleRepository) insertTeams(ctx context.Context, tx *sql.Tx, teams []battle.TeamMember) error {
	positions := make(map[string]int)
	for _, m := range teams {
		key := m.BattleID + "/" + string(m.Side)
		positions[key]++
		if _, err := tx.ExecContext(ctx, r.db.rebind(
			`INSERT INTO team (battle_id, side, position, pokemon_name) VALUES (?, ?, ?, ?)`),
			m.BattleID, string(m.Side), positions[key], m.Name,
		); err != nil {
			return fmt.Errorf("failed to insert team member of %s: %w", m.BattleID, err)
		}
	}
	return nil
}

func pad3(names []string) [3]string {
	out := [3]string{battle.Unseen, battle.Unseen, battle.Unseen}
	copy(out[:], names)
	return out
}

// Summary is the win/loss tally of a trainer or a video
type Summary struct {
	Battles int
	Wins    int
	Losses  int
}

// VideoSummary tallies the battles stored for one video
func (r *BattleRepository) VideoSummary(ctx context.Context, videoID string) (Summary, error) {
	query := r.db.rebind(`
		SELECT s.win_or_lose, COUNT(*)
		FROM battle_summary s JOIN battles b ON b.battle_id = s.battle_id
		WHERE b.video_id = ?
		GROUP BY s.win_or_lose`)
	return r.summary(ctx, query, videoID)
}

// TrainerSummary tallies every stored battle of a trainer
func (r *BattleRepository) TrainerSummary(ctx context.Context, trainerID int64) (Summary, error) {
	query := r.db.rebind(`
		SELECT s.win_or_lose, COUNT(*)
		FROM battle_summary s JOIN battles b ON b.battle_id = s.battle_id
		WHERE b.trainer_id = ?
		GROUP BY s.win_or_lose`)
	return r.summary(ctx, query, trainerID)
}

func (r *BattleRepository) summary(ctx context.Context, query string, arg any) (Summary, error) {
	rows, err := r.db.conn.QueryContext(ctx, query, arg)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query summary: %w", err)
	}
	defer rows.Close()

	var s Summary
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return Summary{}, fmt.Errorf("failed to scan summary: %w", err)
		}
		s.Battles += n
		switch battle.Outcome(outcome) {
		case battle.Win:
			s.Wins += n
		case battle.Lose:
			s.Losses += n
		}
	}
	return s, rows.Err()
}

// StoredBattle is a battle row as read back from the database
type StoredBattle struct {
	BattleID   string
	CreatedAt  time.Time
	Outcome    battle.Outcome
	NextRank   int
	VideoURL   string
	StartFrame int
	EndFrame   int
}

// VideoBattles lists the battles stored for a video in start order
func (r *BattleRepository) VideoBattles(ctx context.Context, videoID string) ([]StoredBattle, error) {
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(`
		SELECT b.battle_id, s.created_at, s.win_or_lose, s.next_rank, s.video, b.start_frame, b.end_frame
		FROM battles b JOIN battle_summary s ON s.battle_id = b.battle_id
		WHERE b.video_id = ?
		ORDER BY b.start_frame`), videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to query battles: %w", err)
	}
	defer rows.Close()

	var result []StoredBattle
	for rows.Next() {
		var sb StoredBattle
		var outcome string
		if err := rows.Scan(&sb.BattleID, &sb.CreatedAt, &outcome, &sb.NextRank, &sb.VideoURL, &sb.StartFrame, &sb.EndFrame); err != nil {
			return nil, fmt.Errorf("failed to scan battle: %w", err)
		}
		sb.Outcome = battle.Outcome(outcome)
		result = append(result, sb)
	}
	return result, rows.Err()
}

// CountRows returns the row count of one of the battle tables
func (r *BattleRepository) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "battles", "battle_summary", "team", "in_battle_log", "message_log", "fainted_log":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := r.db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}
