package nativebuild

import (
	"errors"
	"fmt"
	"strings"
)

// FailurePolicy decides whether a failed native build fails the task.
type FailurePolicy int

const (
	// Warn logs the failure and lets the task complete.
	Warn FailurePolicy = iota
	// Fail returns the typed failure to the orchestrator.
	Fail
)

// ErrInvalidPolicy is returned by ParsePolicy for unknown names.
var ErrInvalidPolicy = errors.New("invalid failure policy")

func (p FailurePolicy) String() string {
	switch p {
	case Warn:
		return "warn"
	case Fail:
		return "fail"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// ParsePolicy maps "warn" or "fail" (case-insensitive) to a policy. Empty
// means Warn.
func ParsePolicy(name string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "warn", "continue":
		return Warn, nil
	case "fail", "error":
		return Fail, nil
	default:
		return Warn, fmt.Errorf("%w: %q (want warn or fail)", ErrInvalidPolicy, name)
	}
}

// Apply turns a result into the error the task reports.
func (p FailurePolicy) Apply(res Result) error {
	if p != Fail {
		return nil
	}
	return res.Error()
}
