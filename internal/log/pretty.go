package log

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// SetupPrettyLogger builds the charm logger used for task output and installs
// it as the slog default.
func SetupPrettyLogger(writerForLogger io.Writer, debug bool) *log.Logger {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	logHandler := log.NewWithOptions(
		writerForLogger,
		log.Options{
			Level:           level,
			ReportTimestamp: true,
			ReportCaller:    debug,
			Prefix:          "cargotask",
		},
	)
	slog.SetDefault(slog.New(logHandler))

	return logHandler
}

// Discard returns a logger that drops everything. Useful as a zero value.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
