package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a ledger entry.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is one stage execution recorded in the ledger.
type Run struct {
	ID         string
	Stage      string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Requested  int
	Produced   int
	Unresolved int
	Error      string
}

// Duration returns how long the run took, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Outcome is what FinishRun records.
type Outcome struct {
	Status     RunStatus
	Requested  int
	Produced   int
	Unresolved int
	Error      string
}

// BeginRun records a running stage.
func (s *Store) BeginRun(ctx context.Context, id, stage string) error {
	if id == "" {
		return errors.New("run id is required")
	}
	_, err := exec(ctx, s.db, psql.Insert("runs").
		Columns("id", "stage", "status", "started_at").
		Values(id, stage, RunRunning, now()))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun stamps the outcome of a run started with BeginRun.
func (s *Store) FinishRun(ctx context.Context, id string, outcome Outcome) error {
	res, err := exec(ctx, s.db, psql.Update("runs").
		Set("status", outcome.Status).
		Set("finished_at", now()).
		Set("requested", outcome.Requested).
		Set("produced", outcome.Produced).
		Set("unresolved", outcome.Unresolved).
		Set("error_message", nullableString(outcome.Error)).
		Where("id = ?", id))
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: no such run", id)
	}
	return nil
}

// ListRuns returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	builder := psql.Select(
		"id", "stage", "status", "started_at", "finished_at",
		"requested", "produced", "unresolved", "error_message",
	).From("runs").OrderBy("started_at DESC", "rowid DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run         Run
		status      string
		startedRaw  string
		finishedRaw sql.NullString
		errorMsg    sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&run.Stage,
		&status,
		&startedRaw,
		&finishedRaw,
		&run.Requested,
		&run.Produced,
		&run.Unresolved,
		&errorMsg,
	); err != nil {
		return Run{}, err
	}
	run.Status = RunStatus(status)
	run.Error = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return run, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
