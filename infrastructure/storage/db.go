package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the battle database connection
type DB struct {
	conn   *sql.DB
	dbType string
}

// Config selects and addresses the database
type Config struct {
	Type       string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SQLitePath string
}

// NewDB opens the database and makes sure the schema exists
func NewDB(config Config) (*DB, error) {
	var conn *sql.DB
	var err error

	switch config.Type {
	case "sqlite":
		conn, err = sql.Open("sqlite3", config.SQLitePath+"?_foreign_keys=on&_busy_timeout=5000")
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			config.Host, config.Port, config.User, config.Password, config.Name)
		conn, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if config.Type == "sqlite" {
		// one writer; sqlite serializes anyway
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn, dbType: config.Type}
	if err := db.createTables(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *DB) createTables(ctx context.Context) error {
	blob := "BLOB"
	if db.dbType == "postgres" {
		blob = "BYTEA"
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS trainer (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS battles (
			battle_id TEXT PRIMARY KEY,
			trainer_id BIGINT NOT NULL,
			video_id TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			start_frame INTEGER NOT NULL,
			end_frame INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS battle_summary (
			battle_id TEXT PRIMARY KEY REFERENCES battles(battle_id) ON DELETE CASCADE,
			created_at TIMESTAMP NOT NULL,
			win_or_lose TEXT NOT NULL,
			next_rank INTEGER NOT NULL,
			your_team TEXT NOT NULL,
			opponent_team TEXT NOT NULL,
			your_pokemon_1 TEXT NOT NULL,
			your_pokemon_2 TEXT NOT NULL,
			your_pokemon_3 TEXT NOT NULL,
			opponent_pokemon_1 TEXT NOT NULL,
			opponent_pokemon_2 TEXT NOT NULL,
			opponent_pokemon_3 TEXT NOT NULL,
			video TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS team (
			battle_id TEXT NOT NULL REFERENCES battles(battle_id) ON DELETE CASCADE,
			side TEXT NOT NULL,
			position INTEGER NOT NULL,
			pokemon_name TEXT NOT NULL,
			PRIMARY KEY (battle_id, side, position)
		)`,
		`CREATE TABLE IF NOT EXISTS in_battle_log (
			battle_id TEXT NOT NULL REFERENCES battles(battle_id) ON DELETE CASCADE,
			turn INTEGER NOT NULL,
			frame_number INTEGER NOT NULL,
			your_pokemon_name TEXT NOT NULL,
			opponent_pokemon_name TEXT NOT NULL,
			PRIMARY KEY (battle_id, turn)
		)`,
		`CREATE TABLE IF NOT EXISTS message_log (
			battle_id TEXT NOT NULL REFERENCES battles(battle_id) ON DELETE CASCADE,
			frame_number INTEGER NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (battle_id, frame_number)
		)`,
		`CREATE TABLE IF NOT EXISTS fainted_log (
			battle_id TEXT NOT NULL REFERENCES battles(battle_id) ON DELETE CASCADE,
			turn INTEGER NOT NULL,
			your_pokemon_name TEXT NOT NULL,
			opponent_pokemon_name TEXT NOT NULL,
			fainted_side TEXT NOT NULL,
			PRIMARY KEY (battle_id, turn, fainted_side)
		)`,
		`CREATE TABLE IF NOT EXISTS video_process_status (
			video_id TEXT PRIMARY KEY,
			trainer_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			percent INTEGER NOT NULL,
			message TEXT,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS embeddings (
			label TEXT NOT NULL,
			vector ` + blob + ` NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn exposes the raw connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// rebind rewrites ? placeholders to $n for postgres
func (db *DB) rebind(query string) string {
	if db.dbType != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert that replaces the row on a key conflict
func (db *DB) upsert(table string, columns []string, keys []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	if db.dbType != "postgres" {
		return fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), placeholders)
	}

	isKey := make(map[string]bool, len(keys))
	for _, k := range keys {
		isKey[k] = true
	}
	var sets []string
	for _, c := range columns {
		if !isKey[c] {
			sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
		}
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		table, strings.Join(columns, ", "), placeholders, strings.Join(keys, ", "), strings.Join(sets, ", "))
	return db.rebind(query)
}
