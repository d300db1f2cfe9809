// Package cargotask wires configuration, the task registry, and the native
// build invoker together for the cargotask command.
package cargotask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/indent"

	"github.com/yaklabco/cargotask/config"
	"github.com/yaklabco/cargotask/internal/dryrun"
	logkeys "github.com/yaklabco/cargotask/internal/log"
	"github.com/yaklabco/cargotask/pkg/nativebuild"
	"github.com/yaklabco/cargotask/pkg/task"
	"github.com/yaklabco/cargotask/pkg/ui"
	"github.com/yaklabco/cargotask/pkg/watch"
)

// Flag names whose values override configuration when set.
const (
	FlagLibraryDir    = "library-dir"
	FlagToolDir       = "tool-dir"
	FlagOS            = "os"
	FlagFailurePolicy = "failure-policy"
	FlagTimeout       = "timeout"
	FlagMaxOutput     = "max-output"
	FlagDryRun        = "dryrun"
	FlagVerbose       = "verbose"
	FlagDebug         = "debug"
)

const planIndent = 2

// RunParams holds the parsed command line.
type RunParams struct {
	BaseCtx context.Context // BaseCtx is the base context for the run, often used for cancellation.

	Stdout          io.Writer // writer for plan, banner and config output
	Stderr          io.Writer // writer for warnings and, when verbose, the script's output
	WriterForLogger io.Writer // writer for log lines

	ModuleName string // module name for logs; defaults to the module directory name
	ModulePath string // module directory; defaults to the working directory

	LibraryDir    string
	ToolDir       string
	OS            string
	FailurePolicy string
	Timeout       time.Duration
	MaxOutput     int
	DryRun        bool
	Verbose       bool
	Debug         bool

	Plan   bool // print the task order instead of running it
	Watch  bool // rebuild when native sources change
	Config bool // manage configuration; Args holds the subcommand

	Args []string // task names to run, or the config subcommand

	// Changed records which override flags were set on the command line.
	Changed map[string]bool
}

// Run is the entrypoint for the cargotask command.
func Run(params RunParams) error {
	if err := preprocessRunParams(&params); err != nil {
		return err
	}

	if howManyThingsToDo(params) > 1 {
		return errors.New("only one of --config, --plan, or --watch may be specified")
	}

	if params.Config {
		if code := RunConfigCommand(params.Stdout, params.Stderr, params.ModulePath, params.Args); code != 0 {
			return task.Fatalf(code, "config command failed")
		}
		return nil
	}

	cfg, err := config.Load(&config.LoadOptions{ProjectDir: params.ModulePath, Stderr: params.Stderr})
	if err != nil {
		return task.Fatalf(2, "%w", err)
	}
	if err := applyFlags(cfg, params); err != nil {
		return task.Fatalf(2, "%w", err)
	}

	dryrun.SetRequested(cfg.DryRun)
	logger := logkeys.SetupPrettyLogger(params.WriterForLogger, cfg.Debug)
	if cfg.ConfigFile() != "" {
		logger.Debug("loaded config", logkeys.Path, cfg.ConfigFile())
	}

	registry, plugin, err := newRegistry(cfg, params.Stderr, logger)
	if err != nil {
		return err
	}

	if params.Plan {
		return printPlan(params.Stdout, registry, params.Args)
	}

	targets := params.Args
	if len(targets) == 0 {
		targets = []string{nativebuild.TaskName}
	}
	tc := task.Context{ModuleName: params.ModuleName, ModulePath: params.ModulePath}

	if params.Watch {
		return watchAndRun(params.BaseCtx, cfg, params, logger, func(ctx context.Context) error {
			err := registry.Run(ctx, tc, targets...)
			report(params.Stdout, plugin, err)
			return err
		})
	}

	err = registry.Run(params.BaseCtx, tc, targets...)
	report(params.Stdout, plugin, err)
	return err
}

func preprocessRunParams(params *RunParams) error {
	if params.BaseCtx == nil {
		params.BaseCtx = context.Background()
	}
	if params.Stdout == nil {
		params.Stdout = os.Stdout
	}
	if params.Stderr == nil {
		params.Stderr = os.Stderr
	}
	if params.WriterForLogger == nil {
		params.WriterForLogger = params.Stderr
	}

	if params.ModulePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		params.ModulePath = wd
	}
	if !filepath.IsAbs(params.ModulePath) {
		abs, err := filepath.Abs(params.ModulePath)
		if err != nil {
			return fmt.Errorf("resolving module path: %w", err)
		}
		params.ModulePath = abs
	}
	if params.ModuleName == "" {
		params.ModuleName = filepath.Base(params.ModulePath)
	}
	return nil
}

func howManyThingsToDo(params RunParams) int {
	n := 0
	for _, b := range []bool{params.Config, params.Plan, params.Watch} {
		if b {
			n++
		}
	}
	return n
}

// applyFlags overlays command-line values on cfg and revalidates.
func applyFlags(cfg *config.Config, params RunParams) error {
	set := params.Changed
	if set[FlagLibraryDir] {
		cfg.LibraryDir = params.LibraryDir
	}
	if set[FlagToolDir] {
		cfg.ToolDir = params.ToolDir
	}
	if set[FlagOS] {
		cfg.OS = params.OS
	}
	if set[FlagFailurePolicy] {
		cfg.FailurePolicy = params.FailurePolicy
	}
	if set[FlagTimeout] {
		cfg.Timeout = params.Timeout
	}
	if set[FlagMaxOutput] {
		cfg.MaxOutput = params.MaxOutput
	}
	if set[FlagDryRun] {
		cfg.DryRun = params.DryRun
	}
	if set[FlagVerbose] {
		cfg.Verbose = params.Verbose
	}
	if set[FlagDebug] {
		cfg.Debug = params.Debug
	}

	result := cfg.Validate()
	if result.HasErrors() {
		return errors.New(result.ErrorMessage())
	}
	return nil
}

// newInvoker builds the native build invoker described by cfg.
func newInvoker(cfg *config.Config, echo io.Writer, logger *log.Logger) (*nativebuild.Invoker, error) {
	family, err := cfg.Family()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	opts := []nativebuild.Option{
		nativebuild.WithFamily(family),
		nativebuild.WithLayout(cfg.Layout()),
		nativebuild.WithRunner(nativebuild.ExecRunner{Verbose: cfg.Verbose}),
		nativebuild.WithLogger(logger),
		nativebuild.WithPolicy(policy),
		nativebuild.WithTimeout(cfg.Timeout),
		nativebuild.WithMaxOutput(cfg.MaxOutput),
		nativebuild.WithEnv(cfg.EnvMap()),
	}
	if cfg.Verbose || dryrun.IsRequested() {
		opts = append(opts, nativebuild.WithEcho(echo))
	}
	return nativebuild.New(opts...), nil
}

func newRegistry(cfg *config.Config, echo io.Writer, logger *log.Logger) (*task.Registry, *nativebuild.Plugin, error) {
	inv, err := newInvoker(cfg, echo, logger)
	if err != nil {
		return nil, nil, task.Fatalf(2, "%w", err)
	}

	plugin := nativebuild.NewPlugin(inv)
	registry := task.NewRegistry(logger)
	if err := registry.Phases(task.DefaultPhases()...); err != nil {
		return nil, nil, err
	}
	if err := registry.Apply(plugin); err != nil {
		return nil, nil, err
	}
	return registry, plugin, nil
}

func printPlan(w io.Writer, registry *task.Registry, targets []string) error {
	plan, err := registry.Plan(targets...)
	if err != nil {
		return task.Fatalf(2, "%w", err)
	}

	var b strings.Builder
	for i, name := range plan {
		_, _ = fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	_, _ = fmt.Fprintln(w, "Task order:")
	_, err = io.WriteString(w, indent.String(b.String(), planIndent))
	return err
}

// report prints the outcome banner for the last native build, if one ran.
func report(w io.Writer, plugin *nativebuild.Plugin, runErr error) {
	res, ok := plugin.LastResult()
	if !ok {
		return
	}
	f, isFile := w.(*os.File)
	color := isFile && ui.IsTerminal(f)

	_, _ = fmt.Fprintln(w, ui.Banner(bannerText(res, runErr), res.OK(), color))
}

func bannerText(res nativebuild.Result, runErr error) string {
	switch {
	case res.DryRun:
		return "native build: dry run"
	case res.OK():
		return fmt.Sprintf("native build succeeded in %s", res.Duration.Round(time.Millisecond))
	case runErr == nil:
		return fmt.Sprintf("native build failed (%s), continuing", res.Outcome)
	default:
		return fmt.Sprintf("native build failed (%s)", res.Outcome)
	}
}

func watchAndRun(ctx context.Context, cfg *config.Config, params RunParams, logger *log.Logger, fn watch.RunFunc) error {
	root := filepath.Join(params.ModulePath, "..", "..", cfg.LibraryDir)
	w, err := watch.New(watch.Options{
		Root:     root,
		Patterns: cfg.Watch.Patterns,
		Debounce: cfg.Watch.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return task.Fatalf(2, "%w", err)
	}
	defer func() { _ = w.Close() }()

	return w.Run(ctx, fn)
}
