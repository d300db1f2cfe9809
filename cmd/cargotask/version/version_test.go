package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEffectiveVersion_Ldflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = " v1.2.3 "
	assert.Equal(t, "v1.2.3", EffectiveVersion(t.Context()))

	Version = "dev"
	assert.NotEmpty(t, EffectiveVersion(t.Context()))
}

func TestEffectiveCommit_Ldflags(t *testing.T) {
	old := Commit
	t.Cleanup(func() { Commit = old })

	Commit = "abc123"
	assert.Equal(t, "abc123", EffectiveCommit(t.Context()))
}

func TestEffectiveBuildTime(t *testing.T) {
	old := BuildDate
	t.Cleanup(func() { BuildDate = old })

	BuildDate = "2026-03-01T10:00:00Z"
	got, ok := EffectiveBuildTime()
	assert.True(t, ok)
	assert.True(t, got.Equal(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)))

	BuildDate = "2026-03-01T10:00:00.123456789Z"
	got, ok = EffectiveBuildTime()
	assert.True(t, ok)
	assert.Equal(t, 123456789, got.Nanosecond())
}

func TestOverallVersionStringColorized(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v9.9.9"
	assert.Contains(t, OverallVersionStringColorized(t.Context()), "v9.9.9")
}
