// Package repair turns validation violations into engine fix actions and submits them.
package repair

import "fmt"

// Submission steps reported by SubmissionError
const (
	StepSerialize = "serialize"
	StepWrite     = "write"
	StepLoad      = "load"
	StepRun       = "run"
)

// SubmissionError represents a failure while handing an action plan to the engine
type SubmissionError struct {
	Step    string
	Message string
	Cause   error
}

func (e *SubmissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("plan submission error (%s): %s: %v", e.Step, e.Message, e.Cause)
	}
	return fmt.Sprintf("plan submission error (%s): %s", e.Step, e.Message)
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}

// PlanFileError represents an action plan file that cannot be read or decoded
type PlanFileError struct {
	Path    string
	Message string
	Cause   error
}

func (e *PlanFileError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("action plan %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("action plan %s: %s", e.Path, e.Message)
}

func (e *PlanFileError) Unwrap() error {
	return e.Cause
}
