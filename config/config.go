package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yaklabco/cargotask/pkg/env"
	"github.com/yaklabco/cargotask/pkg/nativebuild"
)

// Config holds all cargotask configuration values.
type Config struct {
	// LibraryDir is the sibling library folder two levels above the module.
	LibraryDir string `mapstructure:"library_dir"`

	// ToolDir is the folder inside LibraryDir holding the build scripts.
	ToolDir string `mapstructure:"tool_dir"`

	// OS forces the command family: auto, windows or other.
	OS string `mapstructure:"os"`

	// FailurePolicy is warn (log and continue) or fail (fail the task).
	FailurePolicy string `mapstructure:"failure_policy"`

	// Timeout kills the build script after this long. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxOutput is the per-stream capture limit in bytes.
	MaxOutput int `mapstructure:"max_output"`

	// Verbose streams the script output to the console while it runs.
	Verbose bool `mapstructure:"verbose"`

	// Debug enables debug messages.
	Debug bool `mapstructure:"debug"`

	// DryRun logs the command without running it.
	DryRun bool `mapstructure:"dryrun"`

	// Env holds extra KEY=VALUE pairs for the build script. A list is used
	// rather than a map because viper lowercases map keys.
	Env []string `mapstructure:"env"`

	// Watch configures --watch mode.
	Watch WatchConfig `mapstructure:"watch"`

	// configFile is the path to the config file that was loaded (if any).
	configFile string
}

// WatchConfig configures rebuild-on-change mode.
type WatchConfig struct {
	Patterns []string      `mapstructure:"patterns"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// ConfigFile returns the path to the configuration file that was loaded,
// or an empty string if no file was loaded.
func (c *Config) ConfigFile() string {
	return c.configFile
}

// EnvMap returns Env as a map.
func (c *Config) EnvMap() map[string]string {
	return env.ToMap(c.Env)
}

// Family parses OS.
func (c *Config) Family() (nativebuild.Family, error) {
	return nativebuild.ParseFamily(c.OS)
}

// Policy parses FailurePolicy.
func (c *Config) Policy() (nativebuild.FailurePolicy, error) {
	return nativebuild.ParsePolicy(c.FailurePolicy)
}

// Layout returns the script layout.
func (c *Config) Layout() nativebuild.Layout {
	return nativebuild.Layout{LibraryDir: c.LibraryDir, ToolDir: c.ToolDir}
}

// LoadOptions configures how configuration is loaded.
type LoadOptions struct {
	// ProjectDir is the directory to search for project-level config.
	// If empty, the current working directory is used.
	ProjectDir string

	// Stderr is where warnings are written.
	// If nil, os.Stderr is used.
	Stderr io.Writer

	// SkipProjectConfig skips loading project-level configuration.
	SkipProjectConfig bool

	// SkipUserConfig skips loading user-level configuration.
	SkipUserConfig bool

	// SkipEnv skips reading environment variables.
	SkipEnv bool
}

// Load reads configuration from all sources and returns a Config struct.
// Configuration is loaded in the following order (later sources override earlier):
//  1. Defaults
//  2. User config file (~/.config/cargotask/config.yaml)
//  3. Project config file (./cargotask.yaml)
//  4. Environment variables (CARGOTASK_*)
//
// If opts is nil, default options are used.
func Load(opts *LoadOptions) (*Config, error) {
	if opts == nil {
		opts = &LoadOptions{}
	}

	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	viperInstance := viper.New()
	setDefaults(viperInstance)
	viperInstance.SetConfigType("yaml")

	var configFileUsed string

	if !opts.SkipUserConfig {
		paths := ResolveXDGPaths()
		viperInstance.SetConfigName(ConfigFileName)
		viperInstance.AddConfigPath(paths.ConfigDir())

		if err := viperInstance.ReadInConfig(); err != nil {
			var configFileNotFoundError viper.ConfigFileNotFoundError
			if !errors.As(err, &configFileNotFoundError) {
				return nil, fmt.Errorf("failed to read user config file: %w", err)
			}
		} else {
			configFileUsed = viperInstance.ConfigFileUsed()
		}
	}

	if !opts.SkipProjectConfig {
		projectDir := opts.ProjectDir
		if projectDir == "" {
			var err error
			projectDir, err = os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		projectConfigPath := ProjectConfigPath(projectDir)
		if _, err := os.Stat(projectConfigPath); err == nil {
			viperInstance.SetConfigFile(projectConfigPath)
			if err := viperInstance.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read project config file: %w", err)
			}
			configFileUsed = projectConfigPath
		}
	}

	var cfg Config
	if err := viperInstance.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if !opts.SkipEnv {
		if err := applyEnvironmentOverrides(&cfg); err != nil {
			return nil, err
		}
	}

	cfg.configFile = configFileUsed

	result := cfg.Validate()
	if result.HasWarnings() {
		result.WriteWarnings(opts.Stderr)
	}
	if result.HasErrors() {
		return nil, errors.New(result.ErrorMessage())
	}

	return &cfg, nil
}

// Environment variables that override config file values.
const (
	EnvLibraryDir    = "CARGOTASK_LIBRARY_DIR"
	EnvToolDir       = "CARGOTASK_TOOL_DIR"
	EnvOS            = "CARGOTASK_OS"
	EnvFailurePolicy = "CARGOTASK_FAILURE_POLICY"
	EnvTimeout       = "CARGOTASK_TIMEOUT"
	EnvMaxOutput     = "CARGOTASK_MAX_OUTPUT"
	EnvVerbose       = "CARGOTASK_VERBOSE"
	EnvDebug         = "CARGOTASK_DEBUG"
	EnvDryRun        = "CARGOTASK_DRYRUN"
)

// applyEnvironmentOverrides applies environment variable overrides to the config.
func applyEnvironmentOverrides(cfg *Config) error {
	if v := os.Getenv(EnvLibraryDir); v != "" {
		cfg.LibraryDir = v
	}
	if v := os.Getenv(EnvToolDir); v != "" {
		cfg.ToolDir = v
	}
	if v := os.Getenv(EnvOS); v != "" {
		cfg.OS = v
	}
	if v := os.Getenv(EnvFailurePolicy); v != "" {
		cfg.FailurePolicy = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v := os.Getenv(EnvMaxOutput); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxOutput, err)
		}
		cfg.MaxOutput = n
	}

	for name, target := range map[string]*bool{
		EnvVerbose: &cfg.Verbose,
		EnvDebug:   &cfg.Debug,
		EnvDryRun:  &cfg.DryRun,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := env.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*target = b
	}

	return nil
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		LibraryDir:    DefaultLibraryDir,
		ToolDir:       DefaultToolDir,
		OS:            DefaultOS,
		FailurePolicy: DefaultFailurePolicy,
		Timeout:       DefaultTimeout,
		MaxOutput:     DefaultMaxOutput,
		Verbose:       DefaultVerbose,
		Debug:         DefaultDebug,
		DryRun:        DefaultDryRun,
		Watch: WatchConfig{
			Patterns: DefaultWatchPatterns(),
			Debounce: DefaultDebounce,
		},
	}
}

// WriteDefaultConfig writes a default configuration file to the user's config directory.
func WriteDefaultConfig() (string, error) {
	paths := ResolveXDGPaths()

	if err := os.MkdirAll(paths.ConfigDir(), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := paths.ConfigFilePath()
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("config file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigYAML()), 0o600); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}

// defaultConfigYAML returns the default configuration as YAML.
func defaultConfigYAML() string {
	return `# cargotask configuration

# Library folder two levels above the OpenHarmony module, and the folder
# inside it that holds build_ohos.sh / build_ohos.bat.
library_dir: super_native_extensions
tool_dir: cargokit

# Command family: auto, windows or other.
os: auto

# warn: log a failed native build and let the task complete.
# fail: fail the task with the script's exit code.
failure_policy: warn

# Kill the build script after this long (e.g. 20m). 0 waits forever.
timeout: 0s

# Per-stream output capture limit in bytes; the tail is kept.
max_output: 2048000

verbose: false
debug: false
dryrun: false

# Extra environment for the build script, as KEY=VALUE.
env: []

watch:
  patterns:
    - "**/*.rs"
    - "**/Cargo.toml"
    - "**/Cargo.lock"
    - "**/build_ohos.sh"
    - "**/build_ohos.bat"
  debounce: 500ms
`
}
