package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
)

// minUsefulOutput is the capture size below which build logs are almost
// always cut off.
const minUsefulOutput = 64 * 1024

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("config warning: %s: %s", w.Field, w.Message)
}

// ValidationResults holds the results of configuration validation.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are validation errors.
func (r ValidationResults) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (r ValidationResults) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessage returns a combined error message for all validation errors.
func (r ValidationResults) ErrorMessage() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// WriteWarnings writes all warnings to the given writer.
func (r ValidationResults) WriteWarnings(w io.Writer) {
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintln(w, warn.String())
	}
}

func (r *ValidationResults) fail(field, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResults) warn(field, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Validate checks the configuration for errors and warnings.
func (c *Config) Validate() ValidationResults {
	var result ValidationResults

	if _, err := c.Family(); err != nil {
		result.fail("os", "%v (want auto, windows or other)", err)
	}
	if _, err := c.Policy(); err != nil {
		result.fail("failure_policy", "%v", err)
	}

	for _, f := range [...]struct{ field, dir string }{
		{"library_dir", c.LibraryDir},
		{"tool_dir", c.ToolDir},
	} {
		field, dir := f.field, f.dir
		switch {
		case strings.TrimSpace(dir) == "":
			result.fail(field, "must not be empty")
		case strings.ContainsAny(dir, `/\`):
			result.warn(field, "%q contains a path separator; it is joined as-is", dir)
		case dir == "." || dir == "..":
			result.fail(field, "%q is not a directory name", dir)
		}
	}

	if c.Timeout < 0 {
		result.fail("timeout", "must not be negative, got %s", c.Timeout)
	}

	switch {
	case c.MaxOutput <= 0:
		result.fail("max_output", "must be positive, got %d", c.MaxOutput)
	case c.MaxOutput < minUsefulOutput:
		result.warn("max_output", "%d bytes will usually truncate native build logs", c.MaxOutput)
	}

	for _, kv := range c.Env {
		if key, _, ok := strings.Cut(kv, "="); !ok || key == "" {
			result.fail("env", "%q is not KEY=VALUE", kv)
		}
	}

	if c.Watch.Debounce < 0 {
		result.fail("watch.debounce", "must not be negative, got %s", c.Watch.Debounce)
	}
	for _, pattern := range c.Watch.Patterns {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			result.fail("watch.patterns", "invalid pattern %q: %v", pattern, err)
		}
	}

	return result
}
