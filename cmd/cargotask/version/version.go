// Package version reports the cargotask build version.
package version

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/yaklabco/cargotask/pkg/ui"
)

// Build metadata, set with -ldflags "-X github.com/yaklabco/cargotask/cmd/cargotask/version.<Name>=<value>".
//
//nolint:gochecknoglobals // Populated by goreleaser ldflags.
var (
	Version   = "dev"
	Commit    = ""
	BuildDate = "" // RFC3339
)

// buildSetting returns a key from the Go build info, such as vcs.revision.
func buildSetting(key string) string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi == nil {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// EffectiveVersion returns, in order of preference: the ldflags Version, the
// module version recorded by `go install module@version`, the VCS revision
// (with "-dirty" for modified trees), or "dev".
func EffectiveVersion(_ context.Context) string {
	if v := strings.TrimSpace(Version); v != "" && v != "dev" {
		return v
	}

	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		if mv := strings.TrimSpace(bi.Main.Version); mv != "" && mv != "(devel)" {
			return mv
		}
	}
	if rev := buildSetting("vcs.revision"); rev != "" {
		if buildSetting("vcs.modified") == "true" {
			rev += "-dirty"
		}
		return rev
	}

	return "dev"
}

// EffectiveCommit returns the ldflags Commit or the VCS revision.
func EffectiveCommit(_ context.Context) string {
	if c := strings.TrimSpace(Commit); c != "" {
		return c
	}
	return buildSetting("vcs.revision")
}

// EffectiveBuildTime returns BuildDate, falling back to the VCS commit time.
func EffectiveBuildTime() (time.Time, bool) {
	for _, v := range []string{strings.TrimSpace(BuildDate), buildSetting("vcs.time")} {
		if v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, time.RFC3339Nano} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// OverallVersionStringColorized renders a version line with fang-consistent colors.
func OverallVersionStringColorized(ctx context.Context) string {
	cs := ui.GetFangScheme()

	versionStyle := lipgloss.NewStyle().Foreground(cs.QuotedString)
	commitStyle := lipgloss.NewStyle().Foreground(cs.Program)
	timeStyle := lipgloss.NewStyle().Foreground(cs.Flag)
	sepStyle := lipgloss.NewStyle().Foreground(cs.Base)

	parts := []string{versionStyle.Render(EffectiveVersion(ctx))}
	if c := EffectiveCommit(ctx); c != "" && c != EffectiveVersion(ctx) {
		parts = append(parts, commitStyle.Render(c))
	}
	if t, ok := EffectiveBuildTime(); ok {
		parts = append(parts, timeStyle.Render(t.In(time.Local).Format(time.RFC3339)))
	}

	return strings.Join(parts, sepStyle.Render("-"))
}
