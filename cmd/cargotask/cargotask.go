// Package cargotask is the cobra command for the cargotask CLI.
package cargotask

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/cargotask/cmd/cargotask/version"
	"github.com/yaklabco/cargotask/pkg/cargotask"
	"github.com/yaklabco/cargotask/pkg/nativebuild"
	"github.com/yaklabco/cargotask/pkg/task"
)

const (
	shortDescription = "Build the Rust native library of an OpenHarmony module before the host build runs."
)

type rootCmdOptions struct {
	runFunc func(params cargotask.RunParams) error
}

type Option func(*rootCmdOptions)

// This is intentionally designed to be unusable from outside this package,
// as it exists purely for testing purposes.
func withRunFunc(fn func(params cargotask.RunParams) error) Option {
	return func(opts *rootCmdOptions) {
		opts.runFunc = fn
	}
}

func NewRootCmd(ctx context.Context, opts ...Option) *cobra.Command {
	rootCmdOpts := &rootCmdOptions{
		runFunc: cargotask.Run,
	}
	for _, opt := range opts {
		opt(rootCmdOpts)
	}

	var runParams cargotask.RunParams
	rootCmd := &cobra.Command{
		Use:   "cargotask [flags] [task...]",
		Short: shortDescription,
		Example: `	# Build the native library for the module in the current directory
	cargotask

	# Build for a specific module and fail on script errors
	cargotask -m /proj/ohos/entry --failure-policy fail

	# Show the order tasks run in
	cargotask --plan default@ProcessOHPackageJson

	# Rebuild whenever Rust sources change
	cargotask --watch

	# Manage configuration
	cargotask --config show`,
		Version: version.OverallVersionStringColorized(ctx),
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return append(task.DefaultPhases(), nativebuild.TaskName), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			runParams.Args = args
			runParams.Stdout = cmd.OutOrStdout()
			runParams.Stderr = cmd.ErrOrStderr()
			runParams.WriterForLogger = os.Stderr
			runParams.BaseCtx = cmd.Context() //nolint:fatcontext // intentionally setting context from cmd

			runParams.Changed = map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) {
				runParams.Changed[f.Name] = true
			})

			return rootCmdOpts.runFunc(runParams)
		},
	}

	// Flags.
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&runParams.ModuleName, "module-name", "", "module name used in log lines (default: module directory name)")
	flags.StringVarP(&runParams.ModulePath, "module-path", "m", "", "absolute path of the OpenHarmony module (default: working directory)")
	flags.StringVar(&runParams.LibraryDir, cargotask.FlagLibraryDir, nativebuild.DefaultLibraryDir, "library folder two levels above the module")
	flags.StringVar(&runParams.ToolDir, cargotask.FlagToolDir, nativebuild.DefaultToolDir, "folder inside the library holding build_ohos.sh/.bat")
	flags.StringVar(&runParams.OS, cargotask.FlagOS, "auto", "command family: auto, windows or other")
	flags.StringVar(&runParams.FailurePolicy, cargotask.FlagFailurePolicy, nativebuild.Warn.String(), "warn (log and continue) or fail (exit with the script's status)")
	flags.DurationVarP(&runParams.Timeout, cargotask.FlagTimeout, "t", 0, "kill the build script after this long (e.g. 20m); 0 waits forever")
	flags.IntVar(&runParams.MaxOutput, cargotask.FlagMaxOutput, nativebuild.DefaultMaxOutput, "per-stream output capture limit in bytes")
	flags.BoolVar(&runParams.DryRun, cargotask.FlagDryRun, false, "print the build command instead of executing it")
	flags.BoolVarP(&runParams.Verbose, cargotask.FlagVerbose, "v", false, "stream the build script's output while it runs")
	flags.BoolVarP(&runParams.Debug, cargotask.FlagDebug, "d", false, "turn on debug messages")

	// Flags that are actually commands ("pseudo-flags").
	flags.BoolVar(&runParams.Config, "config", false, "manage cargotask configuration (show, init, path)")
	flags.BoolVar(&runParams.Plan, "plan", false, "print the task order instead of running it")
	flags.BoolVar(&runParams.Watch, "watch", false, "rebuild when native sources change")

	return rootCmd
}

// ExecuteWithFang runs the root Cobra command with Fang-specific options.
func ExecuteWithFang(ctx context.Context, rootCmd *cobra.Command) error {
	//nolint:wrapcheck // top-level error from cobra, wrapping not needed
	return fang.Execute(
		ctx, rootCmd, fang.WithVersion(rootCmd.Version), fang.WithoutManpage())
}
