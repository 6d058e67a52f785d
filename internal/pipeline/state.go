package pipeline

import "fmt"

// State is a step of the remediation run. States are entered strictly in order.
type State int

const (
	StateInit State = iota
	StateOpened
	StateTagged
	StateValidated1
	StateFixed
	StateValidated2
	StateDone
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "Init"
	case StateOpened:
		return "Opened"
	case StateTagged:
		return "Tagged"
	case StateValidated1:
		return "Validated1"
	case StateFixed:
		return "Fixed"
	case StateValidated2:
		return "Validated2"
	case StateDone:
		return "Done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StageError reports the transition that aborted a run
type StageError struct {
	State State
	Cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("failed entering %s: %v", e.State, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
