package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Run kinds.
const (
	KindPublish = "publish"
	KindMirror  = "mirror"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// File outcome statuses.
const (
	FilePublished = "published"
	FileFailed    = "failed"
)

// Run is one row of the ledger.
type Run struct {
	ID         string
	Kind       string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Total      int
	Failed     int
	Summary    string
}

// Duration reports how long a finished run took.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FileOutcome records what happened to one staged file.
type FileOutcome struct {
	RunID      string
	UID        string
	Kind       string
	Source     string
	Status     string
	Error      string
	Keys       []string
	RecordedAt time.Time
}

// timeLayout is fixed-width so lexical order in SQLite matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// BeginRun inserts a running row.
func (s *Store) BeginRun(ctx context.Context, id, kind string, startedAt time.Time) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("run id is empty")
	}
	return s.exec(ctx,
		"INSERT INTO runs (id, kind, status, started_at) VALUES (?, ?, ?, ?)",
		id, kind, StatusRunning, startedAt.UTC().Format(timeLayout))
}

// FinishRun stamps the outcome of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	return s.exec(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, processed = ?, total = ?, failed = ?, summary = ?
		 WHERE id = ?`,
		run.Status, finished.UTC().Format(timeLayout), run.Processed, run.Total, run.Failed, run.Summary, run.ID)
}

// RecordFile appends a per-file outcome for a run.
func (s *Store) RecordFile(ctx context.Context, outcome FileOutcome) error {
	recorded := outcome.RecordedAt
	if recorded.IsZero() {
		recorded = time.Now()
	}
	return s.exec(ctx,
		`INSERT INTO run_files (run_id, uid, kind, source, status, error, keys, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.RunID, outcome.UID, outcome.Kind, outcome.Source, outcome.Status, outcome.Error,
		strings.Join(outcome.Keys, "\n"), recorded.UTC().Format(timeLayout))
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, started_at, COALESCE(finished_at, ''), processed, total, failed, summary
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run                Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.Status, &started, &finished,
			&run.Processed, &run.Total, &run.Failed, &run.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun loads a run by id or by unique id prefix.
func (s *Store) GetRun(ctx context.Context, idOrPrefix string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, status, started_at, COALESCE(finished_at, ''), processed, total, failed, summary
		 FROM runs WHERE id LIKE ? ORDER BY started_at DESC LIMIT 2`, idOrPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	defer rows.Close()
	var matches []Run
	for rows.Next() {
		var (
			run                Run
			started, finished string
		)
		if err := rows.Scan(&run.ID, &run.Kind, &run.Status, &started, &finished,
			&run.Processed, &run.Total, &run.Failed, &run.Summary); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, sql.ErrNoRows
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", idOrPrefix)
	}
}

// FilesForRun lists the per-file outcomes of a run in insertion order.
func (s *Store) FilesForRun(ctx context.Context, runID string) ([]FileOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, uid, kind, source, status, error, keys, recorded_at
		 FROM run_files WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var out []FileOutcome
	for rows.Next() {
		var (
			outcome  FileOutcome
			keys     string
			recorded string
		)
		if err := rows.Scan(&outcome.RunID, &outcome.UID, &outcome.Kind, &outcome.Source,
			&outcome.Status, &outcome.Error, &keys, &recorded); err != nil {
			return nil, fmt.Errorf("scan run file: %w", err)
		}
		if keys != "" {
			outcome.Keys = strings.Split(keys, "\n")
		}
		outcome.RecordedAt = parseTime(recorded)
		out = append(out, outcome)
	}
	return out, rows.Err()
}

// Prune deletes runs that started before cutoff and returns how many went.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var affected int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE started_at < ?", cutoff.UTC().Format(timeLayout))
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
