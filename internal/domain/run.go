package domain

import "time"

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
	RunStatusSkipped = "skipped"
)

// Trigger types for a pipeline run.
const (
	TriggerTypeManual    = "manual"
	TriggerTypeScheduled = "scheduled"
)

// Test result statuses.
const (
	TestResultPass  = "pass"
	TestResultFail  = "fail"
	TestResultError = "error"
)

// Run is one full execution of the pipeline build.
type Run struct {
	ID         string
	Trigger    string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      *string
}

// RunStep is the outcome of a single model within a run.
type RunStep struct {
	ID           int64
	RunID        string
	ModelName    string
	Status       string
	RowsAffected *int64
	StartedAt    time.Time
	FinishedAt   *time.Time
	Error        *string
}

// TestResult records one model test outcome within a run step.
type TestResult struct {
	ID           int64
	RunID        string
	ModelName    string
	TestName     string
	Status       string
	RowsReturned *int64
	Error        *string
}
