package nativebuild

import (
	"fmt"
	"time"
)

// Outcome is the state of one invocation. Succeeded, FailedToSpawn and
// FailedNonZeroExit are terminal.
type Outcome int

const (
	NotStarted Outcome = iota
	Running
	Succeeded
	FailedToSpawn
	FailedNonZeroExit
)

func (o Outcome) String() string {
	switch o {
	case NotStarted:
		return "not-started"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case FailedToSpawn:
		return "failed-to-spawn"
	case FailedNonZeroExit:
		return "failed-non-zero-exit"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Terminal reports whether o is a final state.
func (o Outcome) Terminal() bool {
	return o == Succeeded || o == FailedToSpawn || o == FailedNonZeroExit
}

// Result is everything one invocation produced.
type Result struct {
	RunID     string
	Outcome   Outcome
	Command   Command
	DryRun    bool
	ExitCode  int
	SpawnCode string
	Stdout    string
	Stderr    string
	Truncated bool
	Duration  time.Duration
	Err       error
}

// OK reports whether the build succeeded.
func (r Result) OK() bool {
	return r.Outcome == Succeeded
}

// Error returns the typed failure for r, or nil on success.
func (r Result) Error() error {
	switch r.Outcome {
	case FailedToSpawn:
		return &SpawnError{Code: r.SpawnCode, Command: r.Command.String(), Err: r.Err}
	case FailedNonZeroExit:
		return &ExecutionError{
			ExitCode: r.ExitCode,
			Command:  r.Command.String(),
			Stdout:   r.Stdout,
			Stderr:   r.Stderr,
			Err:      r.Err,
		}
	case Succeeded:
		return nil
	default:
		return fmt.Errorf("native build did not finish: %s", r.Outcome)
	}
}
