// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an audit log of phase transitions in a local
// SQLite database. Recording is best-effort: the log exists to answer
// "who moved this project to strict and when", not to gate transitions.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gate-engine/pkg/types"
)

const (
	historyDir = ".quality"
	dbFile     = "history.db"
)

// Entry is one recorded transition event.
type Entry struct {
	ID        int64
	FromPhase int
	ToPhase   int
	Command   string
	Outcome   string
	Note      string
	At        time.Time
}

// Store manages the transition log database.
type Store struct {
	db *sql.DB
}

// Open opens or creates .quality/history.db under root and ensures the
// schema exists.
func Open(root string) (*Store, error) {
	dir := filepath.Join(root, historyDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS transitions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_phase INTEGER NOT NULL,
		to_phase INTEGER NOT NULL,
		command TEXT NOT NULL,
		outcome TEXT NOT NULL,
		note TEXT,
		at TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements phase.Recorder. Failures are swallowed by design;
// an unwritable audit log must never block a phase transition.
func (s *Store) Record(from, to types.Phase, command, outcome, note string) {
	_, err := s.db.Exec(
		`INSERT INTO transitions (from_phase, to_phase, command, outcome, note, at) VALUES (?, ?, ?, ?, ?, ?)`,
		int(from), int(to), command, outcome, note, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not record transition: %v\n", err)
	}
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, from_phase, to_phase, command, outcome, note, at
		 FROM transitions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &e.FromPhase, &e.ToPhase, &e.Command, &e.Outcome, &e.Note, &at); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
