package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded item outcome.
type Entry struct {
	ID           int64
	RunID        string
	Source       string
	ItemTitle    string
	Outcome      string
	AudioLink    string
	ErrorKind    string
	ErrorMessage string
	RecordedAt   time.Time
}

// Store persists sync outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the ledger at path, creating it and applying migrations as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background(), migrationFS); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends an outcome. A zero RecordedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sync_outcomes (
            run_id, source_name, item_title, outcome, audio_link, error_kind, error_message, recorded_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.Source,
		nullableString(entry.ItemTitle),
		entry.Outcome,
		nullableString(entry.AudioLink),
		nullableString(entry.ErrorKind),
		nullableString(entry.ErrorMessage),
		entry.RecordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert outcome: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, source_name, item_title, outcome, audio_link, error_kind, error_message, recorded_at
           FROM sync_outcomes
          ORDER BY id DESC
          LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query outcomes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry                            Entry
			title, link, errKind, errMessage sql.NullString
			recordedAt                       string
		)
		if err := rows.Scan(&entry.ID, &entry.RunID, &entry.Source, &title, &entry.Outcome, &link, &errKind, &errMessage, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		entry.ItemTitle = title.String
		entry.AudioLink = link.String
		entry.ErrorKind = errKind.String
		entry.ErrorMessage = errMessage.String
		if ts, err := time.Parse(time.RFC3339Nano, recordedAt); err == nil {
			entry.RecordedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return entries, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
