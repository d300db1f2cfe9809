package log

// Structured logging keys.
const (
	Args       = "args"
	Cmd        = "cmd"
	Code       = "code"
	Dir        = "dir"
	Duration   = "duration"
	Error      = "error"
	ExitCode   = "exit_code"
	Family     = "os"
	Module     = "module"
	ModulePath = "module_path"
	Path       = "path"
	Plugin     = "plugin"
	RunID      = "run_id"
	Stderr     = "stderr"
	Stdout     = "stdout"
	Task       = "task"
	Truncated  = "truncated"
)
