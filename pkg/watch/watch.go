// Package watch reruns a build whenever matching files change under a
// directory tree.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	logkeys "github.com/yaklabco/cargotask/internal/log"
)

// ErrNoPatterns is returned by New when there is nothing to watch for.
var ErrNoPatterns = errors.New("watch: no patterns")

// DefaultIgnore lists directory names that are never descended into.
func DefaultIgnore() []string {
	return []string{".git", ".hvigor", "build", "node_modules", "oh_modules", "target"}
}

// RunFunc is one build. Its context is canceled when a newer change arrives
// or the watcher stops.
type RunFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string

	// Patterns are gobwas/glob patterns matched against slash-separated
	// paths relative to Root.
	Patterns []string

	// Debounce is how long the tree must stay quiet before a rerun starts.
	Debounce time.Duration

	// Ignore lists directory names to skip. Nil means DefaultIgnore.
	Ignore []string

	Logger *log.Logger
}

// Watcher watches a directory tree. It is not reusable after Close.
type Watcher struct {
	root     string
	globs    []glob.Glob
	debounce time.Duration
	ignore   []string
	logger   *log.Logger
	fsw      *fsnotify.Watcher
}

// New compiles the patterns and registers every directory under Root.
func New(opts Options) (*Watcher, error) {
	if len(opts.Patterns) == 0 {
		return nil, ErrNoPatterns
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("watch root %q: %w", opts.Root, err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %q is not a directory", root)
	}

	globs := make([]glob.Glob, 0, len(opts.Patterns))
	for _, p := range opts.Patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("watch pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}

	w := &Watcher{
		root:     root,
		globs:    globs,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		logger:   opts.Logger,
	}
	if w.ignore == nil {
		w.ignore = DefaultIgnore()
	}
	if w.logger == nil {
		w.logger = logkeys.Discard()
	}

	w.fsw, err = fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := w.addTree(root); err != nil {
		_ = w.fsw.Close()
		return nil, err
	}

	return w, nil
}

// Close releases the underlying file watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Matches reports whether path (absolute, or relative to Root) matches any
// pattern. A file directly under Root also matches patterns that begin
// with "**/".
func (w *Watcher) Matches(path string) bool {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(w.root, path)
		if err != nil {
			return false
		}
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	for _, g := range w.globs {
		if g.Match(rel) || g.Match("/"+rel) {
			return true
		}
	}
	return false
}

// Run calls fn once, then again after every debounced burst of matching
// changes. A change that arrives while fn is running cancels it and queues
// one rerun. Run returns nil when ctx is canceled, and fn's errors are only
// logged.
func (w *Watcher) Run(ctx context.Context, fn RunFunc) error {
	var (
		cancelRun context.CancelFunc
		done      chan struct{}
		pending   = true
		quiet     <-chan time.Time
	)

	start := func() {
		pending = false
		var runCtx context.Context
		runCtx, cancelRun = context.WithCancel(ctx)
		done = make(chan struct{})
		go func(ctx context.Context, done chan<- struct{}) {
			defer close(done)
			if err := fn(ctx); err != nil {
				w.logger.Error("watched build failed", logkeys.Error, err)
			}
		}(runCtx, done)
	}

	stop := func() {
		if cancelRun != nil {
			cancelRun()
			<-done
			cancelRun, done = nil, nil
		}
	}
	defer stop()

	start()
	w.logger.Info("watching for changes", logkeys.Dir, w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-done:
			cancelRun()
			cancelRun, done = nil, nil
			if pending {
				start()
			}

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			quiet = time.After(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", logkeys.Error, err)

		case <-quiet:
			quiet = nil
			pending = true
			if cancelRun != nil {
				w.logger.Info("change detected, restarting build")
				cancelRun()
				continue
			}
			w.logger.Info("change detected, rebuilding")
			start()
		}
	}
}

// handle registers new directories and reports whether event should
// trigger a rebuild.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("could not watch new directory", logkeys.Dir, event.Name, logkeys.Error, err)
			}
			return false
		}
	}

	if !w.Matches(event.Name) {
		return false
	}
	w.logger.Debug("file changed", logkeys.Path, event.Name, "op", event.Op.String())
	return true
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && slices.Contains(w.ignore, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %q: %w", path, err)
		}
		return nil
	})
}
