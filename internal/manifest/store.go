package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store persists phrase-resolution outcomes in SQLite. One store owns one
// manifest database; a file lock keeps concurrent batch runs from writing
// to the same manifest.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// NewRunID mints the identifier shared by every entry of one batch run.
func NewRunID() string {
	return uuid.NewString()
}

// Open initializes or connects to the manifest database and applies
// migrations. The companion .lock file must be acquirable; a second
// process holding it means another run is already writing here.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire manifest lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("manifest %s is locked by another run", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
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
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, lock: lock}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database connection and the manifest lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.db != nil {
		err = s.db.Close()
	}
	if s.lock != nil {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = unlockErr
		}
	}
	return err
}

// Path returns the manifest database location.
func (s *Store) Path() string {
	return s.path
}

// Add inserts a pending entry for a phrase request and returns it with its
// assigned identifier.
func (s *Store) Add(ctx context.Context, runID string, entry *Entry) (*Entry, error) {
	if entry == nil {
		return nil, errors.New("entry is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	status := entry.Status
	if status == "" {
		status = StatusPending
	}

	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO manifest_entries (
            run_id, recording, phrase, translation, occurrence, line, status,
            failure_reason, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID,
		entry.Recording,
		entry.Phrase,
		nullableString(entry.Translation),
		entry.Occurrence,
		entry.Line,
		status,
		nullableString(entry.FailureReason),
		nullableString(entry.ErrorMessage),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a manifest entry by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM manifest_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return entry, nil
}

// Update persists changes to an existing entry.
func (s *Store) Update(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return errors.New("entry is nil")
	}
	entry.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE manifest_entries
         SET status = ?, method = ?, clip_start = ?, clip_end = ?, clip_path = ?,
             candidates_json = ?, suspicious = ?, suspicious_note = ?,
             failure_reason = ?, error_message = ?, updated_at = ?
         WHERE id = ?`,
		entry.Status,
		nullableString(entry.Method),
		nullableFloat(entry.ClipStart, entry.Status == StatusResolved),
		nullableFloat(entry.ClipEnd, entry.Status == StatusResolved),
		nullableString(entry.ClipPath),
		nullableString(entry.CandidatesJSON),
		boolToInt(entry.Suspicious),
		nullableString(entry.SuspiciousNote),
		nullableString(entry.FailureReason),
		nullableString(entry.ErrorMessage),
		entry.UpdatedAt.Format(time.RFC3339Nano),
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

// EntriesByRun returns every entry of a run in phrase-list order.
func (s *Store) EntriesByRun(ctx context.Context, runID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+entryColumns+` FROM manifest_entries WHERE run_id = ? ORDER BY line, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// List returns entries filtered by status set (or all entries when no
// status is provided).
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + entryColumns + ` FROM manifest_entries`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// LatestRunID returns the run identifier of the most recently created entry,
// or empty when the manifest has no entries.
func (s *Store) LatestRunID(ctx context.Context) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id FROM manifest_entries ORDER BY id DESC LIMIT 1`)
	var runID string
	if err := row.Scan(&runID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest run id: %w", err)
	}
	return runID, nil
}

// Summarize aggregates per-status counts for one run.
func (s *Store) Summarize(ctx context.Context, runID string) (Summary, error) {
	summary := Summary{RunID: runID}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT status, COUNT(1) FROM manifest_entries WHERE run_id = ? GROUP BY status`,
		runID,
	)
	if err != nil {
		return summary, fmt.Errorf("summarize run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return summary, err
		}
		summary.Total += count
		switch status {
		case StatusPending, StatusMatching:
			summary.Pending += count
		case StatusResolved:
			summary.Resolved += count
		case StatusAmbiguous:
			summary.Ambiguous += count
		case StatusNotFound:
			summary.NotFound += count
		case StatusFailed:
			summary.Failed += count
		}
	}
	if err := rows.Err(); err != nil {
		return summary, err
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1) FROM manifest_entries WHERE run_id = ? AND suspicious != 0`,
		runID,
	)
	if err := row.Scan(&summary.Suspicious); err != nil {
		return summary, fmt.Errorf("count suspicious: %w", err)
	}
	return summary, nil
}

// ClearRun removes every entry of one run.
func (s *Store) ClearRun(ctx context.Context, runID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM manifest_entries WHERE run_id = ?`, runID)
	if err != nil {
		return 0, fmt.Errorf("clear run: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes all entries from the manifest.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM manifest_entries`)
	if err != nil {
		return 0, fmt.Errorf("clear manifest: %w", err)
	}
	return res.RowsAffected()
}

const entryColumns = "id, run_id, recording, phrase, translation, occurrence, line, status, method, clip_start, clip_end, clip_path, candidates_json, suspicious, suspicious_note, failure_reason, error_message, created_at, updated_at"

func collectEntries(rows *sql.Rows) ([]*Entry, error) {
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

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		id             int64
		runID          string
		recording      string
		phrase         string
		translation    sql.NullString
		occurrence     sql.NullInt64
		line           sql.NullInt64
		statusStr      string
		method         sql.NullString
		clipStart      sql.NullFloat64
		clipEnd        sql.NullFloat64
		clipPath       sql.NullString
		candidatesJSON sql.NullString
		suspicious     sql.NullInt64
		suspiciousNote sql.NullString
		failureReason  sql.NullString
		errorMessage   sql.NullString
		createdRaw     sql.NullString
		updatedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&recording,
		&phrase,
		&translation,
		&occurrence,
		&line,
		&statusStr,
		&method,
		&clipStart,
		&clipEnd,
		&clipPath,
		&candidatesJSON,
		&suspicious,
		&suspiciousNote,
		&failureReason,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:             id,
		RunID:          runID,
		Recording:      recording,
		Phrase:         phrase,
		Translation:    translation.String,
		Occurrence:     int(occurrence.Int64),
		Line:           int(line.Int64),
		Status:         Status(statusStr),
		Method:         method.String,
		ClipStart:      clipStart.Float64,
		ClipEnd:        clipEnd.Float64,
		ClipPath:       clipPath.String,
		CandidatesJSON: candidatesJSON.String,
		SuspiciousNote: suspiciousNote.String,
		FailureReason:  failureReason.String,
		ErrorMessage:   errorMessage.String,
	}
	if suspicious.Valid {
		entry.Suspicious = suspicious.Int64 != 0
	}
	created, err := parseTimeString(createdRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	entry.CreatedAt = created
	updated, err := parseTimeString(updatedRaw.String)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	entry.UpdatedAt = updated
	return entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableFloat(value float64, valid bool) any {
	if !valid {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
