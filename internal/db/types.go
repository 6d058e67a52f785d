package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning      = "running"
	RunStatusCompliant    = "compliant"
	RunStatusNonCompliant = "non_compliant"
	RunStatusFailed       = "failed"
)

// Artifact steps stored per run
const (
	StepInitialReport     = "initial_report"
	StepInitialViolations = "initial_violations"
	StepActionPlan        = "action_plan"
	StepFinalReport       = "final_report"
	StepFinalViolations   = "final_violations"
)

// Artifact categories
const (
	CategoryDocument   = "document"
	CategoryValidation = "validation"
	CategoryRepair     = "repair"
)

// Step status values
const (
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
)

// Run represents a remediation run record
type Run struct {
	ID                uuid.UUID  `json:"id"`
	InputPath         string     `json:"input_path"`
	OutputPath        string     `json:"output_path"`
	Status            string     `json:"status"`
	InitialViolations *int       `json:"initial_violations,omitempty"`
	FinalViolations   *int       `json:"final_violations,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// RunCompletion carries the final state of a run
type RunCompletion struct {
	Status            string
	InitialViolations int
	FinalViolations   int
	ErrorMessage      string
}

// StatusFor derives the run status from the final violation count and error
func StatusFor(finalViolations int, err error) string {
	switch {
	case err != nil:
		return RunStatusFailed
	case finalViolations == 0:
		return RunStatusCompliant
	default:
		return RunStatusNonCompliant
	}
}

// RunStep represents one state transition of a run
type RunStep struct {
	ID           uuid.UUID `json:"id"`
	RunID        uuid.UUID `json:"run_id"`
	State        string    `json:"state"`
	Status       string    `json:"status"`
	DurationMs   int64     `json:"duration_ms"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// RunStepInput represents input for recording a run step
type RunStepInput struct {
	State    string
	Status   string
	Duration time.Duration
	Error    string
}
