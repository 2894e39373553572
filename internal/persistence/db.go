// Package persistence provides SQLite storage for finished matches and their
// event logs.
package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/hexfront/internal/engine"
	"github.com/talgya/hexfront/internal/game"
)

// DB wraps a SQLite connection for match records.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		winner TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL,
		turns INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		match_id TEXT NOT NULL REFERENCES matches(id),
		turn INTEGER NOT NULL,
		category TEXT NOT NULL,
		player_id TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_match ON events(match_id);
	CREATE INDEX IF NOT EXISTS idx_matches_finished ON matches(finished_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// Match is a stored match summary.
type Match struct {
	ID         string    `json:"id"`
	Seed       int64     `json:"seed"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Winner     string    `json:"winner,omitempty"`
	Reason     string    `json:"reason"`
	Turns      int       `json:"turns"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// matchRow mirrors the matches table; times are unix milliseconds.
type matchRow struct {
	ID         string `db:"id"`
	Seed       int64  `db:"seed"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
	Winner     string `db:"winner"`
	Reason     string `db:"reason"`
	Turns      int    `db:"turns"`
	StartedAt  int64  `db:"started_at"`
	FinishedAt int64  `db:"finished_at"`
}

func (r matchRow) match() Match {
	return Match{
		ID:         r.ID,
		Seed:       r.Seed,
		Width:      r.Width,
		Height:     r.Height,
		Winner:     r.Winner,
		Reason:     r.Reason,
		Turns:      r.Turns,
		StartedAt:  time.UnixMilli(r.StartedAt),
		FinishedAt: time.UnixMilli(r.FinishedAt),
	}
}

// RecordMatch stores a finished match together with its event log.
func (db *DB) RecordMatch(out engine.Outcome) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExec(`INSERT INTO matches
		(id, seed, width, height, winner, reason, turns, started_at, finished_at)
		VALUES (:id, :seed, :width, :height, :winner, :reason, :turns, :started_at, :finished_at)`,
		matchRow{
			ID:         out.MatchID,
			Seed:       out.Seed,
			Width:      out.Width,
			Height:     out.Height,
			Winner:     out.Winner,
			Reason:     out.Reason,
			Turns:      out.Turns,
			StartedAt:  out.StartedAt.UnixMilli(),
			FinishedAt: out.FinishedAt.UnixMilli(),
		})
	if err != nil {
		return fmt.Errorf("insert match %s: %w", out.MatchID, err)
	}

	if err := saveEvents(tx, out.MatchID, out.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("match recorded", "match", out.MatchID, "winner", out.Winner, "events", len(out.Events))
	return nil
}

func saveEvents(tx *sqlx.Tx, matchID string, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := tx.Preparex(`INSERT INTO events
		(match_id, turn, category, player_id, description)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(matchID, e.Turn, e.Category, e.PlayerID, e.Description); err != nil {
			return err
		}
	}
	return nil
}

// RecentMatches returns the most recently finished matches, newest first.
func (db *DB) RecentMatches(limit int) ([]Match, error) {
	var rows []matchRow
	err := db.conn.Select(&rows,
		"SELECT * FROM matches ORDER BY finished_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	matches := make([]Match, 0, len(rows))
	for _, r := range rows {
		matches = append(matches, r.match())
	}
	return matches, nil
}

// GetMatch returns one match by id.
func (db *DB) GetMatch(id string) (Match, error) {
	var r matchRow
	if err := db.conn.Get(&r, "SELECT * FROM matches WHERE id = ?", id); err != nil {
		return Match{}, err
	}
	return r.match(), nil
}

// MatchEvents returns a match's event log in the order it happened.
func (db *DB) MatchEvents(matchID string) ([]game.Event, error) {
	var events []game.Event
	err := db.conn.Select(&events,
		"SELECT turn, category, player_id, description FROM events WHERE match_id = ? ORDER BY id",
		matchID,
	)
	return events, err
}

// WinCounts returns how many recorded matches each player id has won.
func (db *DB) WinCounts() (map[string]int, error) {
	var rows []struct {
		Winner string `db:"winner"`
		Wins   int    `db:"wins"`
	}
	err := db.conn.Select(&rows,
		"SELECT winner, COUNT(*) AS wins FROM matches WHERE winner != '' GROUP BY winner",
	)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Winner] = r.Wins
	}
	return counts, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
