package cargotask

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/cargotask/config"
)

// ConfigSubcommand represents a config subcommand.
type ConfigSubcommand string

// Config subcommand constants.
const (
	ConfigInit ConfigSubcommand = "init"
	ConfigShow ConfigSubcommand = "show"
	ConfigPath ConfigSubcommand = "path"
)

// RunConfigCommand handles `cargotask --config`. projectDir is searched for
// cargotask.yaml. It returns the exit code.
func RunConfigCommand(stdout, stderr io.Writer, projectDir string, args []string) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.Usage = func() {
		configUsage(stdout)
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	subArgs := fs.Args()
	if len(subArgs) == 0 {
		return runConfigShow(stdout, stderr, projectDir)
	}

	switch ConfigSubcommand(strings.ToLower(subArgs[0])) {
	case ConfigInit:
		return runConfigInit(stdout, stderr)
	case ConfigShow:
		return runConfigShow(stdout, stderr, projectDir)
	case ConfigPath:
		return runConfigPath(stdout, projectDir)
	default:
		_, _ = fmt.Fprintf(stderr, "Error: unknown config subcommand %q\n", subArgs[0])
		configUsage(stderr)
		return 2
	}
}

func runConfigInit(stdout, stderr io.Writer) int {
	path, err := config.WriteDefaultConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintf(stdout, "Created config file: %s\n", path)
	return 0
}

func runConfigShow(stdout, stderr io.Writer, projectDir string) int {
	cfg, err := config.Load(&config.LoadOptions{ProjectDir: projectDir, Stderr: stderr})
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return 1
	}

	_, _ = fmt.Fprintln(stdout, "# Effective cargotask configuration")
	if cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "# Loaded from: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "# (using defaults, no config file found)")
	}
	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintf(stdout, "library_dir: %s\n", cfg.LibraryDir)
	_, _ = fmt.Fprintf(stdout, "tool_dir: %s\n", cfg.ToolDir)
	_, _ = fmt.Fprintf(stdout, "os: %s\n", cfg.OS)
	_, _ = fmt.Fprintf(stdout, "failure_policy: %s\n", cfg.FailurePolicy)
	_, _ = fmt.Fprintf(stdout, "timeout: %s\n", cfg.Timeout)
	_, _ = fmt.Fprintf(stdout, "max_output: %d\n", cfg.MaxOutput)
	_, _ = fmt.Fprintf(stdout, "verbose: %v\n", cfg.Verbose)
	_, _ = fmt.Fprintf(stdout, "debug: %v\n", cfg.Debug)
	_, _ = fmt.Fprintf(stdout, "dryrun: %v\n", cfg.DryRun)
	_, _ = fmt.Fprintln(stdout, "env:")
	for _, kv := range cfg.Env {
		_, _ = fmt.Fprintf(stdout, "  - %s\n", kv)
	}
	_, _ = fmt.Fprintln(stdout, "watch:")
	_, _ = fmt.Fprintf(stdout, "  debounce: %s\n", cfg.Watch.Debounce)
	_, _ = fmt.Fprintln(stdout, "  patterns:")
	for _, p := range cfg.Watch.Patterns {
		_, _ = fmt.Fprintf(stdout, "    - %q\n", p)
	}

	return 0
}

func runConfigPath(stdout io.Writer, projectDir string) int {
	paths := config.ResolveXDGPaths()

	_, _ = fmt.Fprintln(stdout, "Configuration Paths:")
	_, _ = fmt.Fprintf(stdout, "  User config:    %s\n", paths.ConfigFilePath())
	_, _ = fmt.Fprintf(stdout, "  Config dir:     %s\n", paths.ConfigDir())
	_, _ = fmt.Fprintf(stdout, "  Project config: %s\n", config.ProjectConfigPath(projectDir))

	cfg, err := config.Load(&config.LoadOptions{ProjectDir: projectDir, Stderr: io.Discard})
	if err == nil && cfg.ConfigFile() != "" {
		_, _ = fmt.Fprintf(stdout, "\nActive config file: %s\n", cfg.ConfigFile())
	} else {
		_, _ = fmt.Fprintln(stdout, "\nNo config file currently loaded (using defaults)")
	}

	return 0
}

func configUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `
cargotask --config [subcommand]

Manage cargotask configuration.

Subcommands:
  init    Create a default configuration file
  show    Display effective configuration (default)
  path    Show configuration file paths

Examples:
  cargotask --config           # Show effective configuration
  cargotask --config init      # Create ~/.config/cargotask/config.yaml
  cargotask --config show      # Same as 'cargotask --config'
  cargotask --config path      # Show config file locations
`[1:])
}
