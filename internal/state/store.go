// Package state keeps checklist progress in a SQLite database so a list can
// be resumed across runs.
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver
)

// ProgressRecord is one saved checked vector for an item list.
type ProgressRecord struct {
	SavedAt     time.Time
	Fingerprint string
	SourcePath  string
	SessionID   string
	Items       []string
	Checked     []bool
	ID          int64
}

// Store manages the SQLite database of saved progress. Concurrent writers
// to one database are not coordinated; the last save wins.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at the given path and runs migrations.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close() //nolint:errcheck,gosec // best-effort cleanup on error path
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

const progressColumns = `id, fingerprint, source_path, session_id, items, checked, saved_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (*ProgressRecord, error) {
	var r ProgressRecord
	var items, checked []byte
	var savedAt string

	if err := row.Scan(&r.ID, &r.Fingerprint, &r.SourcePath, &r.SessionID, &items, &checked, &savedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &r.Items); err != nil {
		return nil, fmt.Errorf("decoding items: %w", err)
	}
	if err := json.Unmarshal(checked, &r.Checked); err != nil {
		return nil, fmt.Errorf("decoding checked vector: %w", err)
	}

	var err error
	r.SavedAt, err = parseTime(savedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing saved_at: %w", err)
	}

	return &r, nil
}

func queryOne(ctx context.Context, db *sql.DB, what, query string, args ...any) (*ProgressRecord, error) {
	r, err := scanProgress(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // nil means "not found", distinct from error
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return r, nil
}

// SaveProgress stores a new progress record. SavedAt defaults to now.
func (s *Store) SaveProgress(rec ProgressRecord) (int64, error) {
	items, err := json.Marshal(rec.Items)
	if err != nil {
		return 0, fmt.Errorf("encoding items: %w", err)
	}
	checked, err := json.Marshal(rec.Checked)
	if err != nil {
		return 0, fmt.Errorf("encoding checked vector: %w", err)
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}

	res, err := s.db.ExecContext(context.Background(), `
		INSERT INTO progress (fingerprint, source_path, session_id, item_count, items, checked, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.Fingerprint, rec.SourcePath, rec.SessionID, len(rec.Checked), items, checked, rec.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("saving progress: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading progress id: %w", err)
	}

	return id, nil
}

// LatestProgress returns the most recent record for the list fingerprint.
// Returns nil if none exists.
func (s *Store) LatestProgress(fingerprint string) (*ProgressRecord, error) {
	return queryOne(context.Background(), s.db, "querying latest progress", `
		SELECT `+progressColumns+`
		FROM progress
		WHERE fingerprint = ?
		ORDER BY id DESC
		LIMIT 1
	`, fingerprint)
}

// LatestForSource returns the most recent record saved from the given source
// path, whatever list it held at the time. Returns nil if none exists.
func (s *Store) LatestForSource(sourcePath string) (*ProgressRecord, error) {
	return queryOne(context.Background(), s.db, "querying progress by source", `
		SELECT `+progressColumns+`
		FROM progress
		WHERE source_path = ?
		ORDER BY id DESC
		LIMIT 1
	`, sourcePath)
}

// ListProgress returns the latest record of each list, newest first.
func (s *Store) ListProgress(limit int) ([]ProgressRecord, error) {
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT `+progressColumns+`
		FROM progress
		WHERE id IN (SELECT MAX(id) FROM progress GROUP BY fingerprint)
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying progress: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck,gosec // defer close is best-effort

	var records []ProgressRecord
	for rows.Next() {
		r, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning progress record: %w", err)
		}
		records = append(records, *r)
	}

	return records, rows.Err()
}

// PruneHistory keeps only the N most recent records for a fingerprint.
func (s *Store) PruneHistory(fingerprint string, keepN int) error {
	_, err := s.db.ExecContext(context.Background(), `
		DELETE FROM progress
		WHERE fingerprint = ?
		AND id NOT IN (
			SELECT id FROM progress
			WHERE fingerprint = ?
			ORDER BY id DESC
			LIMIT ?
		)
	`, fingerprint, fingerprint, keepN)
	if err != nil {
		return fmt.Errorf("pruning history: %w", err)
	}

	return nil
}

// DeleteProgress removes every record for the fingerprint.
func (s *Store) DeleteProgress(fingerprint string) error {
	_, err := s.db.ExecContext(context.Background(), `
		DELETE FROM progress WHERE fingerprint = ?
	`, fingerprint)
	if err != nil {
		return fmt.Errorf("deleting progress: %w", err)
	}

	return nil
}

// migrate runs schema migrations.
func (s *Store) migrate() error {
	currentVersion := s.getSchemaVersion()

	migrations := []func(*sql.Tx) error{
		migrateV1,
	}

	ctx := context.Background()
	for i := currentVersion; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", i+1, err)
		}

		if err := migrations[i](tx); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort on migration failure
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM schema_version`); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("updating schema version: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, i+1); err != nil {
			_ = tx.Rollback() //nolint:errcheck,gosec // rollback best-effort
			return fmt.Errorf("inserting schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", i+1, err)
		}
	}

	return nil
}

// getSchemaVersion returns the current schema version, or 0 if the schema_version table doesn't exist.
func (s *Store) getSchemaVersion() int {
	ctx := context.Background()
	var tableName string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&tableName)
	if err != nil {
		return 0
	}

	var version int
	if err := s.db.QueryRowContext(ctx, `SELECT version FROM schema_version LIMIT 1`).Scan(&version); err != nil {
		return 0
	}

	return version
}

// parseTime parses a timestamp string from SQLite, trying multiple formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}

// migrateV1 creates the initial schema.
func migrateV1(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS progress (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			fingerprint  TEXT NOT NULL,
			source_path  TEXT NOT NULL DEFAULT '',
			session_id   TEXT NOT NULL DEFAULT '',
			item_count   INTEGER NOT NULL,
			items        BLOB NOT NULL,
			checked      BLOB NOT NULL,
			saved_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_fingerprint
			ON progress(fingerprint, id DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_progress_source
			ON progress(source_path, id DESC)`,
	}

	ctx := context.Background()
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", stmt[:40], err)
		}
	}

	return nil
}
