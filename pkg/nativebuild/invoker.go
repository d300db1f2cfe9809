// Package nativebuild runs the out-of-band native library build for an
// OpenHarmony module: it picks build_ohos.sh or build_ohos.bat from the
// sibling cargokit directory, runs it to completion, and reports a typed
// Result.
package nativebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/yaklabco/cargotask/internal/dryrun"
	logkeys "github.com/yaklabco/cargotask/internal/log"
	"github.com/yaklabco/cargotask/pkg/env"
	"github.com/yaklabco/cargotask/pkg/task"
)

// InvocationContext is the module name and absolute module path supplied by
// the orchestrator for one run.
type InvocationContext = task.Context

// Environment variables exported to the build script.
const (
	ModuleNameEnv = "CARGOTASK_MODULE_NAME"
	ModulePathEnv = "CARGOTASK_MODULE_PATH"
)

// Invoker runs the native build script. The zero value is not usable; build
// one with New.
type Invoker struct {
	family    Family
	layout    Layout
	runner    Runner
	logger    *log.Logger
	policy    FailurePolicy
	timeout   time.Duration
	maxOutput int
	env       map[string]string
	dryRun    bool
	echo      io.Writer
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithFamily overrides host detection.
func WithFamily(f Family) Option {
	return func(inv *Invoker) { inv.family = f }
}

// WithLayout sets the library and tool directory names.
func WithLayout(l Layout) Option {
	return func(inv *Invoker) { inv.layout = l.withDefaults() }
}

// WithRunner replaces the os/exec runner.
func WithRunner(r Runner) Option {
	return func(inv *Invoker) {
		if r != nil {
			inv.runner = r
		}
	}
}

// WithLogger sets the logger for progress and outcome lines.
func WithLogger(l *log.Logger) Option {
	return func(inv *Invoker) {
		if l != nil {
			inv.logger = l
		}
	}
}

// WithPolicy sets what Execute does with a failed build.
func WithPolicy(p FailurePolicy) Option {
	return func(inv *Invoker) { inv.policy = p }
}

// WithTimeout kills the script after d. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(inv *Invoker) { inv.timeout = d }
}

// WithMaxOutput sets the per-stream capture limit in bytes.
func WithMaxOutput(n int) Option {
	return func(inv *Invoker) {
		if n > 0 {
			inv.maxOutput = n
		}
	}
}

// WithEnv adds variables to the script's environment, overriding inherited ones.
func WithEnv(vars map[string]string) Option {
	return func(inv *Invoker) { inv.env = env.Merge(inv.env, vars) }
}

// WithDryRun reports the command instead of running it.
func WithDryRun(on bool) Option {
	return func(inv *Invoker) { inv.dryRun = on }
}

// WithEcho streams the script's stdout and stderr to w while it runs, in
// addition to capturing them.
func WithEcho(w io.Writer) Option {
	return func(inv *Invoker) { inv.echo = w }
}

// New builds an Invoker for the running host with the default layout.
func New(opts ...Option) *Invoker {
	inv := &Invoker{
		family:    DetectFamily(),
		layout:    DefaultLayout(),
		runner:    ExecRunner{},
		logger:    logkeys.Discard(),
		policy:    Warn,
		maxOutput: DefaultMaxOutput,
		env:       map[string]string{},
		dryRun:    dryrun.IsRequested(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Family returns the OS family commands are built for.
func (inv *Invoker) Family() Family {
	return inv.family
}

// Policy returns the configured failure policy.
func (inv *Invoker) Policy() FailurePolicy {
	return inv.policy
}

// Command returns the command Run would execute for ic.
func (inv *Invoker) Command(ic InvocationContext) (Command, error) {
	return BuildCommand(inv.family, ic.ModulePath, inv.layout)
}

// Execute runs the build and applies the failure policy: under Warn it always
// returns nil, under Fail it returns a *SpawnError or *ExecutionError.
func (inv *Invoker) Execute(ctx context.Context, ic InvocationContext) error {
	return inv.policy.Apply(inv.Run(ctx, ic))
}

// Run builds the native library for ic and blocks until the script exits.
// It never returns an error or panics; every failure is described by the
// returned Result and logged.
func (inv *Invoker) Run(ctx context.Context, ic InvocationContext) (res Result) {
	res = Result{RunID: uuid.NewString(), Outcome: Running}
	logger := inv.logger.With(logkeys.RunID, res.RunID)
	start := time.Now()

	defer func() {
		if recovered := recover(); recovered != nil {
			res.Outcome = FailedToSpawn
			res.SpawnCode = CodePanic
			res.Err = fmt.Errorf("native build panicked: %v", recovered)
			logger.Error("native build could not start", logkeys.Code, res.SpawnCode, logkeys.Error, res.Err)
			logger.Error("native library build failed", logkeys.Module, ic.ModuleName)
		}
		res.Duration = time.Since(start)
	}()

	logger.Info("building native library", logkeys.Module, ic.ModuleName, logkeys.ModulePath, ic.ModulePath)
	if inv.family == Windows {
		logger.Info("host os is windows", logkeys.Family, inv.family)
	} else {
		logger.Info("host os is not windows", logkeys.Family, inv.family)
	}

	cmd, err := inv.Command(ic)
	if err != nil {
		res.Outcome = FailedToSpawn
		res.SpawnCode = SpawnCode(err)
		res.Err = err
		logger.Error("native build could not start", logkeys.Code, res.SpawnCode, logkeys.Error, err)
		logger.Error("native library build failed", logkeys.Module, ic.ModuleName)
		return res
	}
	res.Command = cmd
	logger.Info("native build command", logkeys.Cmd, cmd.String())

	if inv.dryRun {
		res.DryRun = true
		res.Outcome = Succeeded
		_ = dryrun.Report(inv.echo, cmd.Dir, cmd.Program, cmd.Args...)
		logger.Info("dry run: native build not executed", logkeys.Dir, cmd.ResolvedDir())
		return res
	}

	runCtx := ctx
	if inv.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	stdout := newTailBuffer(inv.maxOutput)
	stderr := newTailBuffer(inv.maxOutput)
	var outW, errW io.Writer = stdout, stderr
	if inv.echo != nil {
		outW = io.MultiWriter(stdout, inv.echo)
		errW = io.MultiWriter(stderr, inv.echo)
	}

	childEnv := env.ToAssignments(env.Merge(env.GetMap(), inv.env, map[string]string{
		ModuleNameEnv: ic.ModuleName,
		ModulePathEnv: ic.ModulePath,
	}))

	logger.Debug("exec", logkeys.Args, cmd.Argv(), logkeys.Dir, cmd.Dir)
	runErr := inv.runner.Run(runCtx, cmd, childEnv, outW, errW)

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	res.Truncated = stdout.Truncated() || stderr.Truncated()

	switch {
	case runErr == nil:
		res.Outcome = Succeeded
		logger.Info("native library build succeeded", logkeys.Duration, time.Since(start).Round(time.Millisecond))
	case CmdRan(runErr) || runCtx.Err() != nil:
		// A canceled or expired context counts as a failed run even when
		// the process never got to start.
		res.Outcome = FailedNonZeroExit
		res.ExitCode = ExitCode(runErr)
		res.Err = runErr
		if ctxErr := runCtx.Err(); ctxErr != nil && !errors.Is(runErr, ctxErr) {
			res.Err = fmt.Errorf("%w: %w", ctxErr, runErr)
		}
		logger.Error("native build output",
			logkeys.ExitCode, res.ExitCode,
			logkeys.Stdout, res.Stdout,
			logkeys.Stderr, res.Stderr,
			logkeys.Truncated, res.Truncated,
		)
		logger.Error("native library build failed", logkeys.Module, ic.ModuleName)
	default:
		res.Outcome = FailedToSpawn
		res.SpawnCode = SpawnCode(runErr)
		res.Err = runErr
		logger.Error("native build could not start", logkeys.Code, res.SpawnCode, logkeys.Error, runErr)
		logger.Error("native library build failed", logkeys.Module, ic.ModuleName)
	}

	return res
}
