// Package store persists escalated command errors to SQLite so operators
// can review failures that outlive the log channel's scrollback.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists escalated command errors
type Store struct {
	db            *sql.DB
	path          string
	mu            sync.RWMutex
	retentionDays int
}

// Config configures the store
type Config struct {
	Path          string // Path to SQLite database file
	RetentionDays int    // Days to keep entries (0 = default 30)
}

// Entry is one escalated command error.
type Entry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Command     string    `json:"command"`
	Actor       string    `json:"actor"`
	Guild       string    `json:"guild"`
	Message     string    `json:"message"`
	Traceback   string    `json:"traceback"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	Occurrences int       `json:"occurrences"`
}

// New creates a new store at the given path
func New(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 30
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{
		db:            db,
		path:          cfg.Path,
		retentionDays: cfg.RetentionDays,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates or updates the database schema
func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS escalations (
			id           TEXT PRIMARY KEY,
			kind         TEXT NOT NULL,
			command      TEXT NOT NULL,
			actor        TEXT NOT NULL,
			guild        TEXT NOT NULL,
			message      TEXT NOT NULL,
			traceback    TEXT NOT NULL,
			first_seen   TIMESTAMP NOT NULL,
			last_seen    TIMESTAMP NOT NULL,
			occurrences  INTEGER DEFAULT 1
		);

		CREATE INDEX IF NOT EXISTS idx_escalations_kind ON escalations(kind);
		CREATE INDEX IF NOT EXISTS idx_escalations_command ON escalations(command);
		CREATE INDEX IF NOT EXISTS idx_escalations_last_seen ON escalations(last_seen);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Record persists an escalated error. A repeat of the same kind and
// command updates the existing row's occurrence count instead of
// inserting a duplicate.
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := e.LastSeen
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var existingID string
	queryErr := s.db.QueryRowContext(ctx,
		"SELECT id FROM escalations WHERE kind = ? AND command = ? ORDER BY last_seen DESC LIMIT 1",
		e.Kind, e.Command,
	).Scan(&existingID)

	if queryErr == nil && existingID != "" {
		_, err := s.db.ExecContext(ctx, `
			UPDATE escalations SET
				actor = ?,
				guild = ?,
				message = ?,
				traceback = ?,
				last_seen = ?,
				occurrences = occurrences + 1
			WHERE id = ?
		`, e.Actor, e.Guild, e.Message, e.Traceback, now, existingID)
		return err
	}

	id := e.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO escalations (id, kind, command, actor, guild, message, traceback, first_seen, last_seen, occurrences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, id, e.Kind, e.Command, e.Actor, e.Guild, e.Message, e.Traceback, now, now)

	return err
}

// Query defines parameters for retrieving escalations
type Query struct {
	Kind    string    // Filter by error kind
	Command string    // Filter by command name
	Since   time.Time // Only entries last seen after this time
	Limit   int       // Max results (default 20, max 1000)
}

// List retrieves escalations matching the query, most recent first
func (s *Store) List(ctx context.Context, q Query) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if q.Limit <= 0 {
		q.Limit = 20
	}
	if q.Limit > 1000 {
		q.Limit = 1000
	}

	query := "SELECT id, kind, command, actor, guild, message, traceback, first_seen, last_seen, occurrences FROM escalations WHERE 1=1"
	args := []interface{}{}

	if q.Kind != "" {
		query += " AND kind = ?"
		args = append(args, q.Kind)
	}
	if q.Command != "" {
		query += " AND command = ?"
		args = append(args, q.Command)
	}
	if !q.Since.IsZero() {
		query += " AND last_seen >= ?"
		args = append(args, q.Since)
	}

	query += " ORDER BY last_seen DESC LIMIT ?"
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.ID,
			&e.Kind,
			&e.Command,
			&e.Actor,
			&e.Guild,
			&e.Message,
			&e.Traceback,
			&e.FirstSeen,
			&e.LastSeen,
			&e.Occurrences,
		)
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		results = append(results, e)
	}

	return results, rows.Err()
}

// Cleanup removes entries older than the retention period
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().AddDate(0, 0, -s.retentionDays)

	result, err := s.db.ExecContext(ctx,
		"DELETE FROM escalations WHERE last_seen < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("cleanup failed: %w", err)
	}

	return result.RowsAffected()
}

// Stats holds statistics about stored escalations
type Stats struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"by_kind"`
}

// Stats returns statistics about stored escalations
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats Stats

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM escalations",
	).Scan(&stats.Total)
	if err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM escalations GROUP BY kind",
	)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	stats.ByKind = make(map[string]int)
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, err
		}
		stats.ByKind[kind] = count
	}

	return stats, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}
