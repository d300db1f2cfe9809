package task

import (
	"errors"
	"fmt"
)

var (
	// ErrCircularDependency is returned when the task graph contains a cycle.
	ErrCircularDependency = errors.New("circular dependency detected")

	// ErrMissingDependency is returned when a task names a task that was never registered.
	ErrMissingDependency = errors.New("dependency not found")

	// ErrDuplicateTask is returned when a task name is registered twice.
	ErrDuplicateTask = errors.New("task already registered")

	// ErrInvalidTask is returned for tasks that cannot be registered at all.
	ErrInvalidTask = errors.New("invalid task")
)

// ExitStatuser is an interface for errors that carry an exit status code.
type ExitStatuser interface {
	ExitStatus() int
}

type fatalError struct {
	code int
	error
}

func (f fatalError) ExitStatus() int {
	return f.code
}

func (f fatalError) Unwrap() error {
	return f.error
}

// Fatalf returns an error that makes the cargotask CLI exit with the given
// code after printing the message.
func Fatalf(code int, format string, args ...any) error {
	return fatalError{
		code:  code,
		error: fmt.Errorf(format, args...),
	}
}

// ExitStatus queries the error for an exit status. If the error is nil, it
// returns 0. If no error in the chain implements ExitStatus() int, it
// returns 1.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exit ExitStatuser
	if errors.As(err, &exit) {
		return exit.ExitStatus()
	}
	return 1
}
