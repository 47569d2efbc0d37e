// Package store keeps finished sessions and analytics events in SQLite.
// World state itself is never persisted.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// SessionRow is one finished play session
type SessionRow struct {
	PlayerID    string  `csv:"player_id" json:"player_id"`
	Name        string  `csv:"name" json:"name"`
	Score       int     `csv:"score" json:"score"`
	JoinedAt    string  `csv:"joined_at" json:"joined_at"` // RFC3339
	LeftAt      string  `csv:"left_at" json:"left_at"`
	DurationSec float64 `csv:"duration_sec" json:"duration_sec"`
}

// NewSessionRow builds a row for a session that ends now
func NewSessionRow(playerID, name string, score int, joinedAt, leftAt time.Time) SessionRow {
	return SessionRow{
		PlayerID:    playerID,
		Name:        name,
		Score:       score,
		JoinedAt:    joinedAt.UTC().Format(time.RFC3339),
		LeftAt:      leftAt.UTC().Format(time.RFC3339),
		DurationSec: leftAt.Sub(joinedAt).Seconds(),
	}
}

// Open opens (or creates) the SQLite database at path
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// WAL lets the admin API read while the analytics writer commits
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		player_id TEXT NOT NULL,
		name TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		joined_at TEXT NOT NULL,
		left_at TEXT NOT NULL,
		duration_sec REAL NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		player_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_score ON sessions(score DESC);
	CREATE INDEX IF NOT EXISTS idx_analytics_created ON analytics_events(created_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordSession stores one finished session
func (db *DB) RecordSession(s SessionRow) error {
	_, err := db.conn.Exec(
		`INSERT INTO sessions (player_id, name, score, joined_at, left_at, duration_sec)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.PlayerID, s.Name, s.Score, s.JoinedAt, s.LeftAt, s.DurationSec,
	)
	return err
}

// TopSessions returns the highest-scoring sessions, earliest first on ties
func (db *DB) TopSessions(limit int) ([]SessionRow, error) {
	rows, err := db.conn.Query(`
		SELECT player_id, name, score, joined_at, left_at, duration_sec
		FROM sessions
		ORDER BY score DESC, id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var s SessionRow
		if err := rows.Scan(&s.PlayerID, &s.Name, &s.Score, &s.JoinedAt, &s.LeftAt, &s.DurationSec); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionCount returns the number of recorded sessions
func (db *DB) SessionCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}
