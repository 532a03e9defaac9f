// Package history records every harvest run so operators can see what each
// scheduled job wrote and why a run failed.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrRunNotFound is returned when a run ID does not exist.
	ErrRunNotFound = errors.New("run not found")
)

// Run is one execution of the harvest job.
type Run struct {
	RunID      uuid.UUID `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"`
	Scraped    int       `json:"scraped"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Skipped    int       `json:"skipped"`
	Error      *string   `json:"error,omitempty"`
}

// Duration returns how long the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Outcome *string
	Limit   int
	Offset  int
}

// RunStore manages run history using SQLite.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new run store with the given database path.
func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &RunStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the runs table if it doesn't exist.
func (s *RunStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		outcome TEXT NOT NULL,
		scraped INTEGER NOT NULL DEFAULT 0,
		inserted INTEGER NOT NULL DEFAULT 0,
		updated INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// Record stores a finished run. A nil RunID is replaced with a new one,
// which is returned.
func (s *RunStore) Record(run Run) (uuid.UUID, error) {
	if run.RunID == uuid.Nil {
		run.RunID = uuid.New()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (
			run_id, started_at, finished_at, outcome,
			scraped, inserted, updated, skipped, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.RunID.String(),
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.Outcome,
		run.Scraped, run.Inserted, run.Updated, run.Skipped,
		run.Error,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert run: %w", err)
	}

	return run.RunID, nil
}

const selectRuns = `
	SELECT run_id, started_at, finished_at, outcome,
	       scraped, inserted, updated, skipped, error
	FROM runs
`

// GetRun retrieves a run by ID.
func (s *RunStore) GetRun(runID uuid.UUID) (*Run, error) {
	row := s.db.QueryRow(selectRuns+" WHERE run_id = ?", runID.String())

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// ListRuns lists runs, newest first. Runs started at the same instant are
// ordered by insertion, latest first.
func (s *RunStore) ListRuns(filter RunFilter) ([]Run, error) {
	where, args := filter.where()
	query := selectRuns + where + " ORDER BY started_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// CountRuns counts the runs matching the filter's outcome, ignoring its
// limit and offset.
func (s *RunStore) CountRuns(filter RunFilter) (int, error) {
	where, args := filter.where()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return count, nil
}

func (f RunFilter) where() (string, []any) {
	if f.Outcome == nil {
		return "", nil
	}
	return " WHERE outcome = ?", []any{*f.Outcome}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var runIDStr, startedAtStr, finishedAtStr, outcome string
	var lastError sql.NullString
	run := &Run{}

	err := row.Scan(
		&runIDStr, &startedAtStr, &finishedAtStr, &outcome,
		&run.Scraped, &run.Inserted, &run.Updated, &run.Skipped,
		&lastError,
	)
	if err != nil {
		return nil, err
	}

	run.RunID, err = uuid.Parse(runIDStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run ID: %w", err)
	}
	run.StartedAt = parseTime(startedAtStr)
	run.FinishedAt = parseTime(finishedAtStr)
	run.Outcome = outcome
	if lastError.Valid {
		run.Error = &lastError.String
	}

	return run, nil
}

// ErrorString returns a pointer suitable for Run.Error, or nil for a nil
// error.
func ErrorString(err error) *string {
	if err == nil {
		return nil
	}
	msg := strings.TrimSpace(err.Error())
	return &msg
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	// Strip monotonic clock for consistent storage and comparisons
	return t.UTC().Truncate(0).Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
