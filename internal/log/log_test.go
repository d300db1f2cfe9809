package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestSimpleConsoleLogger_Prefix(t *testing.T) {
	assert.Contains(t, SimpleConsoleLogger.Prefix(), ConsolePrefixText)
}

func TestSetupPrettyLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	logger := SetupPrettyLogger(&buf, false)
	logger.Debug("hidden")
	slog.Info("shown", Module, "entry")

	assert.Equal(t, log.InfoLevel, logger.GetLevel())
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "module=entry")

	buf.Reset()
	debugLogger := SetupPrettyLogger(&buf, true)
	debugLogger.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestDiscard(t *testing.T) {
	assert.Equal(t, log.FatalLevel, Discard().GetLevel())
}
