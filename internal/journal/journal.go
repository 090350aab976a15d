// Package journal keeps a SQLite record of every processed recording so
// operators can inspect batch outcomes and spot re-submitted files. The JSON
// course stores remain the source of truth for lecture content; the journal
// is bookkeeping beside them.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped when the journal schema changes; a mismatched
// database must be deleted and recreated.
const schemaVersion = 1

// ErrSchemaMismatch indicates the journal database was created by a
// different schema version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Recording statuses.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Entry is one processed-recording row.
type Entry struct {
	ID          int64
	SourcePath  string
	Fingerprint string
	Course      string
	Status      string
	ErrorMsg    string
	ArchiveDir  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Journal wraps the processing journal database.
type Journal struct {
	db   *sql.DB
	path string
}

// Open connects to the journal database under dataDir, creating it and its
// schema when missing.
func Open(dataDir string) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "journal.db")
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

	j := &Journal{db: db, path: dbPath}
	if err := j.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the journal database location.
func (j *Journal) Path() string {
	return j.path
}

func (j *Journal) initSchema(ctx context.Context) error {
	var tableExists int
	err := j.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return j.createSchema(ctx)
	}

	var version int
	if err := j.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, j.path)
	}
	return nil
}

func (j *Journal) createSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// RecordCompleted inserts a completed row for a recording.
func (j *Journal) RecordCompleted(ctx context.Context, sourcePath, fingerprint, course, archiveDir string) (*Entry, error) {
	return j.insert(ctx, Entry{
		SourcePath:  sourcePath,
		Fingerprint: fingerprint,
		Course:      course,
		Status:      StatusCompleted,
		ArchiveDir:  archiveDir,
	})
}

// RecordFailed inserts a failed row for a recording.
func (j *Journal) RecordFailed(ctx context.Context, sourcePath, fingerprint, errorMsg string) (*Entry, error) {
	return j.insert(ctx, Entry{
		SourcePath:  sourcePath,
		Fingerprint: fingerprint,
		Status:      StatusFailed,
		ErrorMsg:    errorMsg,
	})
}

func (j *Journal) insert(ctx context.Context, entry Entry) (*Entry, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := j.db.ExecContext(
		ctx,
		`INSERT INTO processed_recordings (
            source_path, fingerprint, course, status, error_message, archive_dir, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SourcePath,
		nullableString(entry.Fingerprint),
		nullableString(entry.Course),
		entry.Status,
		nullableString(entry.ErrorMsg),
		nullableString(entry.ArchiveDir),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert journal entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return j.GetByID(ctx, id)
}

// GetByID fetches a journal entry by identifier.
func (j *Journal) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM processed_recordings WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get journal entry: %w", err)
	}
	return entry, nil
}

// FindByFingerprint returns the earliest completed entry with the given
// content fingerprint, or nil when the content has not been processed before.
func (j *Journal) FindByFingerprint(ctx context.Context, fingerprint string) (*Entry, error) {
	if fingerprint == "" {
		return nil, nil
	}
	row := j.db.QueryRowContext(
		ctx,
		`SELECT `+entryColumns+` FROM processed_recordings
         WHERE fingerprint = ? AND status = ? ORDER BY id LIMIT 1`,
		fingerprint,
		StatusCompleted,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by fingerprint: %w", err)
	}
	return entry, nil
}

// List returns journal entries newest first, optionally filtered by status.
func (j *Journal) List(ctx context.Context, status string) ([]*Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = j.db.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM processed_recordings ORDER BY id DESC`)
	} else {
		rows, err = j.db.QueryContext(ctx,
			`SELECT `+entryColumns+` FROM processed_recordings WHERE status = ? ORDER BY id DESC`, status)
	}
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats returns a count of entries grouped by status.
func (j *Journal) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT status, COUNT(1) FROM processed_recordings GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("journal stats: %w", err)
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

const entryColumns = "id, source_path, fingerprint, course, status, error_message, archive_dir, created_at, updated_at"

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id          int64
		sourcePath  string
		fingerprint sql.NullString
		course      sql.NullString
		status      string
		errorMsg    sql.NullString
		archiveDir  sql.NullString
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(
		&id,
		&sourcePath,
		&fingerprint,
		&course,
		&status,
		&errorMsg,
		&archiveDir,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:          id,
		SourcePath:  sourcePath,
		Fingerprint: fingerprint.String,
		Course:      course.String,
		Status:      status,
		ErrorMsg:    errorMsg.String,
		ArchiveDir:  archiveDir.String,
	}
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	if updated, err := time.Parse(time.RFC3339Nano, updatedRaw); err == nil {
		entry.UpdatedAt = updated
	}
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
