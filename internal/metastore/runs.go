// Package metastore persists pipeline run history in the SQLite metastore.
package metastore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"nbalake/internal/domain"
)

// RunStore records pipeline runs, per-model steps, and test results.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a RunStore backed by the given SQLite handle.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// CreateRun inserts a new run in running state.
func (s *RunStore) CreateRun(ctx context.Context, run *domain.Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_runs (id, trigger_type, status, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Trigger, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun marks a run finished with the given status and optional error.
func (s *RunStore) FinishRun(ctx context.Context, runID, status string, errMsg *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pipeline_runs SET status = ?, finished_at = ?, error = ? WHERE id = ?`,
		status, time.Now().UTC(), nullString(errMsg), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordStep inserts a completed model step.
func (s *RunStore) RecordStep(ctx context.Context, step *domain.RunStep) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pipeline_run_steps (run_id, model_name, status, rows_affected, started_at, finished_at, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		step.RunID, step.ModelName, step.Status, nullInt64(step.RowsAffected),
		step.StartedAt, nullTime(step.FinishedAt), nullString(step.Error))
	if err != nil {
		return fmt.Errorf("insert run step: %w", err)
	}
	return nil
}

// RecordTestResult inserts a model test outcome.
func (s *RunStore) RecordTestResult(ctx context.Context, res *domain.TestResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO model_test_results (run_id, model_name, test_name, status, rows_returned, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		res.RunID, res.ModelName, res.TestName, res.Status,
		nullInt64(res.RowsReturned), nullString(res.Error))
	if err != nil {
		return fmt.Errorf("insert test result: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_type, status, started_at, finished_at, error
		 FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(ctx context.Context, runID string) (*domain.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trigger_type, status, started_at, finished_at, error
		 FROM pipeline_runs WHERE id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound("run %s not found", runID)
	}
	return scanRun(rows)
}

// ListSteps returns all steps of a run in insertion order.
func (s *RunStore) ListSteps(ctx context.Context, runID string) ([]domain.RunStep, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, model_name, status, rows_affected, started_at, finished_at, error
		 FROM pipeline_run_steps WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list run steps: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var steps []domain.RunStep
	for rows.Next() {
		var (
			step     domain.RunStep
			rowsAff  sql.NullInt64
			finished sql.NullTime
			errMsg   sql.NullString
		)
		if err := rows.Scan(&step.ID, &step.RunID, &step.ModelName, &step.Status,
			&rowsAff, &step.StartedAt, &finished, &errMsg); err != nil {
			return nil, fmt.Errorf("scan run step: %w", err)
		}
		if rowsAff.Valid {
			step.RowsAffected = &rowsAff.Int64
		}
		if finished.Valid {
			step.FinishedAt = &finished.Time
		}
		if errMsg.Valid {
			step.Error = &errMsg.String
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// ListTestResults returns all test results recorded for a run.
func (s *RunStore) ListTestResults(ctx context.Context, runID string) ([]domain.TestResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, model_name, test_name, status, rows_returned, error
		 FROM model_test_results WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list test results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []domain.TestResult
	for rows.Next() {
		var (
			res      domain.TestResult
			returned sql.NullInt64
			errMsg   sql.NullString
		)
		if err := rows.Scan(&res.ID, &res.RunID, &res.ModelName, &res.TestName,
			&res.Status, &returned, &errMsg); err != nil {
			return nil, fmt.Errorf("scan test result: %w", err)
		}
		if returned.Valid {
			res.RowsReturned = &returned.Int64
		}
		if errMsg.Valid {
			res.Error = &errMsg.String
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

func scanRun(rows *sql.Rows) (*domain.Run, error) {
	var (
		run      domain.Run
		finished sql.NullTime
		errMsg   sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Trigger, &run.Status, &run.StartedAt, &finished, &errMsg); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	if errMsg.Valid {
		run.Error = &errMsg.String
	}
	return &run, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
