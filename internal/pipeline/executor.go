package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"nbalake/internal/domain"
	"nbalake/internal/metastore"
)

// Executor materializes a model project into DuckDB tables, tier by
// tier, recording run history in the metastore.
type Executor struct {
	duck   *sql.DB
	runs   *metastore.RunStore // nil disables run recording
	logger *slog.Logger
}

// RunOptions configures a single build.
type RunOptions struct {
	Trigger     string // manual (default) or scheduled
	SeasonLabel string // season label injected into the gold layer
}

// NewExecutor creates an Executor. runs may be nil, in which case no
// history is recorded.
func NewExecutor(duck *sql.DB, runs *metastore.RunStore, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{duck: duck, runs: runs, logger: logger}
}

// Run executes the full build: source preflight, then every model in
// dependency order, each followed by its data tests. Any failure fails
// the whole run and skips everything downstream. The build is a full
// refresh and is idempotent.
func (e *Executor) Run(ctx context.Context, project *Project, opts RunOptions) (string, error) {
	if opts.Trigger == "" {
		opts.Trigger = domain.TriggerTypeManual
	}

	runID := uuid.New().String()
	logger := e.logger.With("run_id", runID)

	if e.runs != nil {
		run := &domain.Run{
			ID:        runID,
			Trigger:   opts.Trigger,
			Status:    domain.RunStatusRunning,
			StartedAt: time.Now().UTC(),
		}
		if err := e.runs.CreateRun(ctx, run); err != nil {
			return runID, fmt.Errorf("create run: %w", err)
		}
	}

	err := e.execute(ctx, project, opts, runID, logger)
	e.finishRun(ctx, runID, err)
	return runID, err
}

func (e *Executor) execute(ctx context.Context, project *Project,
	opts RunOptions, runID string, logger *slog.Logger) error {

	tiers, err := ResolveDAG(project.Models)
	if err != nil {
		return err
	}

	// A single pinned connection carries session variables across the
	// whole build.
	conn, err := e.duck.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := e.checkSources(ctx, conn, project.Sources); err != nil {
		return err
	}

	if opts.SeasonLabel != "" {
		escaped := strings.ReplaceAll(opts.SeasonLabel, "'", "''")
		setSQL := fmt.Sprintf("SET VARIABLE season_label = '%s'", escaped)
		if _, err := conn.ExecContext(ctx, setSQL); err != nil {
			return fmt.Errorf("set season_label: %w", err)
		}
	}

	var failedErr error
	for _, tier := range tiers {
		for _, node := range tier {
			if failedErr != nil || ctx.Err() != nil {
				e.recordStep(ctx, &domain.RunStep{
					RunID:     runID,
					ModelName: node.Model.Name,
					Status:    domain.RunStatusSkipped,
					StartedAt: time.Now().UTC(),
				})
				continue
			}

			if err := e.executeModel(ctx, conn, node.Model, project.TargetSchema, runID, logger); err != nil {
				failedErr = err
			}
		}
	}

	if failedErr != nil {
		return failedErr
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

// executeModel materializes one model and runs its tests, recording the
// step outcome either way.
func (e *Executor) executeModel(ctx context.Context, conn *sql.Conn,
	model *domain.Model, targetSchema, runID string, logger *slog.Logger) error {

	started := time.Now().UTC()
	step := &domain.RunStep{
		RunID:     runID,
		ModelName: model.Name,
		StartedAt: started,
	}
	fail := func(err error) error {
		msg := err.Error()
		step.Status = domain.RunStatusFailed
		step.Error = &msg
		now := time.Now().UTC()
		step.FinishedAt = &now
		e.recordStep(ctx, step)
		return fmt.Errorf("model %s: %w", model.Name, err)
	}

	relation := relationFQN(targetSchema, model.Name)
	ddl := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS (%s)", relation, model.SQL)
	if _, err := conn.ExecContext(ctx, ddl); err != nil {
		return fail(fmt.Errorf("materialize: %w", err))
	}

	count, err := e.countRows(ctx, conn, relation)
	if err != nil {
		return fail(err)
	}
	step.RowsAffected = &count

	failedTest, err := e.runModelTests(ctx, conn, model, targetSchema, runID)
	if err != nil {
		return fail(err)
	}
	if failedTest != "" {
		return fail(fmt.Errorf("test %s failed", failedTest))
	}

	step.Status = domain.RunStatusSuccess
	now := time.Now().UTC()
	step.FinishedAt = &now
	e.recordStep(ctx, step)

	logger.Info("table materialized", "model", model.Name, "rows", count)
	return nil
}

// checkSources verifies every declared source table exists. A missing
// upstream table is fatal before anything is materialized.
func (e *Executor) checkSources(ctx context.Context, conn *sql.Conn, sources []domain.Source) error {
	for _, src := range sources {
		rows, err := conn.QueryContext(ctx,
			"SELECT 1 FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			src.Schema, src.Name)
		if err != nil {
			return fmt.Errorf("check source %s: %w", src.Relation(), err)
		}
		exists := rows.Next()
		closeErr := rows.Err()
		_ = rows.Close()
		if closeErr != nil {
			return fmt.Errorf("check source %s: %w", src.Relation(), closeErr)
		}
		if !exists {
			return domain.ErrNotFound("source table %s does not exist; run ingest first", src.Relation())
		}
	}
	return nil
}

func (e *Executor) countRows(ctx context.Context, conn *sql.Conn, relation string) (int64, error) {
	var count int64
	row := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+relation)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows in %s: %w", relation, err)
	}
	return count, nil
}

func (e *Executor) recordStep(ctx context.Context, step *domain.RunStep) {
	if e.runs == nil {
		return
	}
	if err := e.runs.RecordStep(ctx, step); err != nil {
		e.logger.Warn("failed to record run step", "model", step.ModelName, "error", err)
	}
}

func (e *Executor) finishRun(ctx context.Context, runID string, runErr error) {
	if e.runs == nil {
		return
	}
	status := domain.RunStatusSuccess
	var errMsg *string
	if runErr != nil {
		status = domain.RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}
	if err := e.runs.FinishRun(ctx, runID, status, errMsg); err != nil {
		e.logger.Warn("failed to finish run", "run_id", runID, "error", err)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func relationFQN(schema, name string) string {
	return quoteIdent(schema) + "." + quoteIdent(name)
}
