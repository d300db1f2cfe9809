package nativebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	logkeys "github.com/yaklabco/cargotask/internal/log"
)

// Runner starts a Command and blocks until it exits. Implementations must
// return an error satisfying errors.As(*exec.ExitError) when the process ran
// and exited non-zero, and any other error when it could not be started.
// A missing build script is a start failure, even when a wrapper such as
// cmd.exe would have started.
type Runner interface {
	Run(ctx context.Context, cmd Command, env []string, stdout, stderr io.Writer) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, cmd Command, env []string, stdout, stderr io.Writer) error

// Run calls f.
func (f RunnerFunc) Run(ctx context.Context, cmd Command, env []string, stdout, stderr io.Writer) error {
	return f(ctx, cmd, env, stdout, stderr)
}

// waitDelay bounds how long Wait blocks on output pipes held open by
// grandchildren after the script itself was killed.
const waitDelay = 5 * time.Second

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Verbose echoes each command line to the console before running it.
	Verbose bool
}

// Run implements Runner. The working directory is cmd.Dir with ".."
// resolved lexically, the way `cd` resolves it, so a symlinked module
// directory does not redirect the build to another tree.
func (r ExecRunner) Run(ctx context.Context, cmd Command, env []string, stdout, stderr io.Writer) error {
	dir := filepath.Clean(cmd.Dir)
	if err := checkScript(dir, cmd.Script); err != nil {
		return err
	}

	//nolint:gosec // Program and Args come from BuildCommand, not user input.
	theCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	theCmd.Dir = dir
	theCmd.Env = env
	theCmd.Stdout = stdout
	theCmd.Stderr = stderr
	theCmd.WaitDelay = waitDelay

	if r.Verbose {
		quoted := make([]string, 0, len(cmd.Args))
		for _, arg := range cmd.Args {
			quoted = append(quoted, fmt.Sprintf("%q", arg))
		}
		logkeys.SimpleConsoleLogger.Println("exec:", cmd.Program, strings.Join(quoted, " "), "in", dir)
	}

	return theCmd.Run()
}

// checkScript fails with an fs.ErrNotExist error unless dir/script is a
// regular file.
func checkScript(dir, script string) error {
	if script == "" {
		return nil
	}
	scriptPath := filepath.Join(dir, script)
	info, err := os.Stat(scriptPath)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return &fs.PathError{Op: "stat", Path: scriptPath, Err: fmt.Errorf("not a regular file: %w", fs.ErrNotExist)}
	}
	return nil
}

// CmdRan reports whether err came from a process that was actually started.
// A nil error counts as ran.
func CmdRan(err error) bool {
	if err == nil {
		return true
	}
	var ee *exec.ExitError
	return errors.As(err, &ee)
}

// ExitCode returns the exit code carried by err: 0 for nil, the process exit
// code for *exec.ExitError (-1 if killed by a signal), and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	return 1
}

// SpawnCode classifies a start failure into an errno-style identifier.
func SpawnCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidModulePath):
		return CodeInvalidInput
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return CodeNotFound
	case errors.Is(err, fs.ErrPermission):
		return CodePermission
	default:
		return CodeUnknown
	}
}
