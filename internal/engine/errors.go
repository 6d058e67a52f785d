package engine

import "fmt"

// OpenError represents a document that could not be opened
type OpenError struct {
	Path  string
	Cause error
}

func (e *OpenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document open error: %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("document open error: %s", e.Path)
}

func (e *OpenError) Unwrap() error {
	return e.Cause
}

// SaveError represents a failure to write a document to disk
type SaveError struct {
	Path  string
	Mode  SaveMode
	Cause error
}

func (e *SaveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("document save error: %s (%s): %v", e.Path, e.Mode, e.Cause)
	}
	return fmt.Sprintf("document save error: %s (%s)", e.Path, e.Mode)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}

// TaggingError represents an auto-tagging failure
type TaggingError struct {
	Message string
	Cause   error
}

func (e *TaggingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tagging error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("tagging error: %s", e.Message)
}

func (e *TaggingError) Unwrap() error {
	return e.Cause
}

// CommandError represents a command payload the engine rejected or failed to run
type CommandError struct {
	Action  string
	Message string
	Cause   error
}

func (e *CommandError) Error() string {
	prefix := "command error"
	if e.Action != "" {
		prefix = fmt.Sprintf("command error in %s", e.Action)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// StreamError represents misuse of a MemStream
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error: %s", e.Message)
}
