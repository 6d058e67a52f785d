// Package validation runs the external PDF/UA validator and interprets its result.
package validation

import "fmt"

// ToolNotFoundError represents a validator (or its runtime) that is not installed
type ToolNotFoundError struct {
	Tool  string
	Cause error
}

func (e *ToolNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validator not found: %s: %v", e.Tool, e.Cause)
	}
	return fmt.Sprintf("validator not found: %s", e.Tool)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents a validator run that exceeded its time limit
type TimeoutError struct {
	Path    string
	Timeout string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("validator timed out after %s on %s", e.Timeout, e.Path)
}

// ToolInvocationError represents a validator that crashed or exited with an
// unexpected code. ExitCode is -1 when the process never produced one.
type ToolInvocationError struct {
	Path     string
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *ToolInvocationError) Error() string {
	msg := fmt.Sprintf("validator failed on %s with exit code %d", e.Path, e.ExitCode)
	if stderr := firstLine(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *ToolInvocationError) Unwrap() error {
	return e.Cause
}

// ReportError represents a violations report the validator produced but that could not be read
type ReportError struct {
	Path  string
	Cause error
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("unreadable validator report for %s: %v", e.Path, e.Cause)
}

func (e *ReportError) Unwrap() error {
	return e.Cause
}
