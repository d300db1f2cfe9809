package log

import (
	"log"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/yaklabco/cargotask/pkg/ui"
)

// SimpleConsoleLogger prints the exec line for each native build command
// when --verbose is on. It writes plain, unstructured lines to stderr under
// a dimmed "[CARGOTASK]" prefix, next to the script's own echoed output.
//
//nolint:gochecknoglobals // This is unchanged in the course of the process lifecycle.
var SimpleConsoleLogger = log.New(os.Stderr, consolePrefix(), 0)

// ConsolePrefixText is the unstyled prefix of SimpleConsoleLogger lines.
const ConsolePrefixText = "[CARGOTASK] "

func consolePrefix() string {
	return lipgloss.NewStyle().Foreground(ui.GetFangScheme().Flag).Render(ConsolePrefixText)
}
