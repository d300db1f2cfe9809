package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/yaklabco/cargotask/pkg/nativebuild"
)

// Default configuration values.
const (
	DefaultLibraryDir    = nativebuild.DefaultLibraryDir
	DefaultToolDir       = nativebuild.DefaultToolDir
	DefaultOS            = "auto"
	DefaultFailurePolicy = "warn"
	DefaultTimeout       = time.Duration(0)
	DefaultMaxOutput     = nativebuild.DefaultMaxOutput
	DefaultVerbose       = false
	DefaultDebug         = false
	DefaultDryRun        = false
	DefaultDebounce      = 500 * time.Millisecond
)

// DefaultWatchPatterns are the files whose changes trigger a rebuild in watch mode.
func DefaultWatchPatterns() []string {
	return []string{"**/*.rs", "**/Cargo.toml", "**/Cargo.lock", "**/build_ohos.sh", "**/build_ohos.bat"}
}

// setDefaults configures default values in the viper instance.
func setDefaults(viperInstance *viper.Viper) {
	viperInstance.SetDefault("library_dir", DefaultLibraryDir)
	viperInstance.SetDefault("tool_dir", DefaultToolDir)
	viperInstance.SetDefault("os", DefaultOS)
	viperInstance.SetDefault("failure_policy", DefaultFailurePolicy)
	viperInstance.SetDefault("timeout", DefaultTimeout)
	viperInstance.SetDefault("max_output", DefaultMaxOutput)
	viperInstance.SetDefault("verbose", DefaultVerbose)
	viperInstance.SetDefault("debug", DefaultDebug)
	viperInstance.SetDefault("dryrun", DefaultDryRun)
	viperInstance.SetDefault("env", []string{})
	viperInstance.SetDefault("watch.patterns", DefaultWatchPatterns())
	viperInstance.SetDefault("watch.debounce", DefaultDebounce)
}
