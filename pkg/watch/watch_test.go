package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rustPatterns = []string{"**/*.rs", "**/Cargo.toml"}

func newTestWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := New(Options{Root: root, Patterns: rustPatterns, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New(Options{Root: dir})
	require.ErrorIs(t, err, ErrNoPatterns)

	_, err = New(Options{Root: dir, Patterns: []string{"[oops"}})
	require.Error(t, err)

	_, err = New(Options{Root: filepath.Join(dir, "missing"), Patterns: rustPatterns})
	require.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = New(Options{Root: file, Patterns: rustPatterns})
	require.Error(t, err)
}

func TestMatches(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	tests := []struct {
		path string
		want bool
	}{
		{"lib.rs", true},
		{"src/lib.rs", true},
		{filepath.Join(root, "rust", "src", "ffi.rs"), true},
		{"Cargo.toml", true},
		{"rust/Cargo.toml", true},
		{"README.md", false},
		{"src/lib.rs.orig", false},
		{filepath.Join(filepath.Dir(root), "elsewhere.rs"), false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Matches(tt.path))
		})
	}
}

func TestRun_RebuildsOnMatchingChange(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "rust", "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	w := newTestWatcher(t, root)

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.Run(ctx, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o600))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load(), "non-matching change must not rebuild")

	for i := range 5 {
		require.NoError(t, os.WriteFile(filepath.Join(src, "lib.rs"), []byte{byte('a' + i)}, 0o600))
	}
	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load(), "a burst of writes is one rebuild")

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	var runs atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Run(ctx, func(context.Context) error {
			runs.Add(1)
			return nil
		})
	}()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	nested := filepath.Join(root, "crates", "core")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	// The directory is added asynchronously; keep touching until it is seen.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(nested, "mod.rs"), []byte("x"), 0o600)
		return runs.Load() >= 2
	}, 3*time.Second, 100*time.Millisecond)
}

func TestRun_ChangeCancelsRunningBuild(t *testing.T) {
	root := t.TempDir()
	w := newTestWatcher(t, root)

	var runs atomic.Int32
	canceled := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = w.Run(ctx, func(runCtx context.Context) error {
			if runs.Add(1) > 1 {
				return nil
			}
			<-runCtx.Done()
			canceled <- struct{}{}
			return runCtx.Err()
		})
	}()
	require.Eventually(t, func() bool { return runs.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Cargo.toml"), []byte("[package]"), 0o600))

	select {
	case <-canceled:
	case <-time.After(2 * time.Second):
		t.Fatal("running build was not canceled")
	}
	require.Eventually(t, func() bool { return runs.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestAddTree_SkipsIgnored(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "target", "debug"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0o755))
	w := newTestWatcher(t, root)

	watched := w.fsw.WatchList()
	assert.Contains(t, watched, filepath.Join(root, "src"))
	assert.NotContains(t, watched, filepath.Join(root, "target"))
	assert.NotContains(t, watched, filepath.Join(root, "target", "debug"))
}
