// Package dryrun tracks whether cargotask should report native build commands
// instead of executing them.
//
// Dry-run mode is on when either the `CARGOTASK_DRYRUN` environment variable
// held a truthy value at the first call to IsRequested, or SetRequested(true)
// was called. The environment is read once per process.
package dryrun

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/yaklabco/cargotask/pkg/env"
)

// RequestedEnv is the environment variable that requests dry-run mode.
const RequestedEnv = "CARGOTASK_DRYRUN"

//nolint:gochecknoglobals // Once/mutex pattern.
var (
	requestedMu       sync.Mutex
	requestedValue    bool
	requestedEnvValue bool
	requestedEnvOnce  sync.Once
)

// SetRequested sets the explicit dry-run request, typically from --dryrun.
func SetRequested(value bool) {
	requestedMu.Lock()
	defer requestedMu.Unlock()
	requestedValue = value
}

// IsRequested reports whether dry-run mode was requested explicitly or via
// the environment.
func IsRequested() bool {
	requestedEnvOnce.Do(func() {
		requestedEnvValue = env.FailsafeParseBoolEnv(RequestedEnv, false)
	})

	requestedMu.Lock()
	defer requestedMu.Unlock()
	return requestedEnvValue || requestedValue
}

// Report writes the line a dry run prints in place of executing a command.
func Report(w io.Writer, dir, program string, args ...string) error {
	if w == nil {
		return nil
	}
	line := strings.TrimSpace("DRYRUN: (in " + dir + ") " + program + " " + strings.Join(args, " "))
	_, err := fmt.Fprintln(w, line)
	return err
}
