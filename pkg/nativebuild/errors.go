package nativebuild

import (
	"fmt"
)

// Spawn failure codes.
const (
	CodeNotFound     = "ENOENT"
	CodePermission   = "EACCES"
	CodeInvalidInput = "EINVAL"
	CodePanic        = "EPANIC"
	CodeUnknown      = "ESPAWN"
)

// Shell-convention exit statuses for spawn failures.
const (
	statusCannotExecute = 126
	statusNotFound      = 127
)

// SpawnError reports that the build script could not be started at all.
type SpawnError struct {
	Code    string
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("native build could not start (%s): %s", e.Code, e.Command)
	}
	return fmt.Sprintf("native build could not start (%s): %s: %v", e.Code, e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ExitStatus maps the spawn code onto shell exit conventions.
func (e *SpawnError) ExitStatus() int {
	switch e.Code {
	case CodeNotFound:
		return statusNotFound
	case CodePermission:
		return statusCannotExecute
	default:
		return 1
	}
}

// ExecutionError reports that the build script ran and exited non-zero.
type ExecutionError struct {
	ExitCode int
	Command  string
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("native build %q exited with code %d", e.Command, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ExitStatus returns the child's exit code, or 1 if it was killed by a signal.
func (e *ExecutionError) ExitStatus() int {
	if e.ExitCode > 0 {
		return e.ExitCode
	}
	return 1
}
