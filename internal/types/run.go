package types

import "time"

// StageTiming records how long one pipeline state transition took
type StageTiming struct {
	State    string        `json:"state"`
	Duration time.Duration `json:"duration_ns"`
}

// RunSummary describes a completed or aborted remediation run
type RunSummary struct {
	RunID             string        `json:"run_id"`
	Input             string        `json:"input"`
	Output            string        `json:"output"`
	InitialViolations int           `json:"initial_violations"`
	FinalViolations   int           `json:"final_violations"`
	Actions           []string      `json:"actions"`
	Stages            []StageTiming `json:"stages"`
	Duration          time.Duration `json:"duration_ns"`
	Error             string        `json:"error,omitempty"`
}

// Compliant reports whether the final validation pass found nothing
func (s *RunSummary) Compliant() bool {
	return s != nil && s.Error == "" && s.FinalViolations == 0
}
