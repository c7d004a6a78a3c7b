// Package history records publish attempts in a local SQLite database.
//
// The database is advisory. The publication ledger in the bucket is the sole
// idempotency authority; history exists so operators can inspect what past
// runs did without trawling log files.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"kamishibai/internal/config"
)

// Store manages publish attempt persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS publish_attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    object_key TEXT NOT NULL,
    title TEXT,
    status TEXT NOT NULL,
    video_id TEXT,
    publish_at TEXT,
    error_message TEXT,
    started_at TEXT NOT NULL,
    finished_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_publish_attempts_run ON publish_attempts(run_id);
CREATE INDEX IF NOT EXISTS idx_publish_attempts_key ON publish_attempts(object_key);
`

// Attempt is one item's journey through a single run.
type Attempt struct {
	ID           int64
	RunID        string
	ObjectKey    string
	Title        string
	Status       string
	VideoID      string
	PublishAt    string
	ErrorMessage string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Open initializes or connects to the history database in the log directory.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordStart inserts an attempt row when an item begins processing.
func (s *Store) RecordStart(ctx context.Context, runID, objectKey, title string) (int64, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO publish_attempts (run_id, object_key, title, status, started_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID,
		objectKey,
		nullableString(title),
		"pending",
		timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("insert attempt: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// RecordFinish updates an attempt with its terminal state.
func (s *Store) RecordFinish(ctx context.Context, id int64, status, videoID, publishAt, errorMessage string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE publish_attempts
         SET status = ?, video_id = ?, publish_at = ?, error_message = ?, finished_at = ?
         WHERE id = ?`,
		status,
		nullableString(videoID),
		nullableString(publishAt),
		nullableString(errorMessage),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish attempt: %w", err)
	}
	return nil
}

// Recent returns the most recent attempts, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM publish_attempts ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// ForRun returns all attempts recorded under a run identifier in insertion order.
func (s *Store) ForRun(ctx context.Context, runID string) ([]*Attempt, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+attemptColumns+` FROM publish_attempts WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query run attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*Attempt
	for rows.Next() {
		attempt, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, rows.Err()
}

// Stats returns a count of attempts grouped by terminal status.
func (s *Store) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM publish_attempts GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

const attemptColumns = "id, run_id, object_key, title, status, video_id, publish_at, error_message, started_at, finished_at"

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (*Attempt, error) {
	var (
		id           int64
		runID        string
		objectKey    string
		title        sql.NullString
		status       string
		videoID      sql.NullString
		publishAt    sql.NullString
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&objectKey,
		&title,
		&status,
		&videoID,
		&publishAt,
		&errorMessage,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:           id,
		RunID:        runID,
		ObjectKey:    objectKey,
		Title:        title.String,
		Status:       status,
		VideoID:      videoID.String,
		PublishAt:    publishAt.String,
		ErrorMessage: errorMessage.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		attempt.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			attempt.FinishedAt = &finished
		}
	}
	return attempt, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
