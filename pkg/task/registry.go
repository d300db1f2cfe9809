// Package task models the slice of a host build orchestrator that cargotask
// plugs into: named tasks with predecessor and successor constraints, plugins
// that register them, and a serial runner that honors the resulting order.
package task

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"

	logkeys "github.com/yaklabco/cargotask/internal/log"
)

// Host phases that the native build is positioned between.
const (
	PhasePreBuild             = "default@PreBuild"
	PhaseProcessOHPackageJSON = "default@ProcessOHPackageJson"
	PhaseCompileArkTS         = "default@CompileArkTS"
)

// DefaultPhases are the host phases cargotask knows about.
func DefaultPhases() []string {
	return []string{PhasePreBuild, PhaseProcessOHPackageJSON, PhaseCompileArkTS}
}

// Context is the per-run data the orchestrator hands to every task.
type Context struct {
	ModuleName string
	ModulePath string
}

// RunFunc is the body of a task.
type RunFunc func(ctx context.Context, tc Context) error

// Task is a named unit of work. Dependencies must run before it;
// PostDependencies must run after it.
type Task struct {
	Name             string
	Dependencies     []string
	PostDependencies []string
	Run              RunFunc
}

// Plugin registers one or more tasks.
type Plugin interface {
	ID() string
	Apply(r *Registry) error
}

// Registry holds registered tasks. It is safe for concurrent registration,
// though Run itself executes tasks one at a time.
type Registry struct {
	mu     sync.Mutex
	tasks  map[string]Task
	logger *log.Logger
}

// NewRegistry creates an empty registry. A nil logger discards output.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = logkeys.Discard()
	}
	return &Registry{
		tasks:  make(map[string]Task),
		logger: logger,
	}
}

// Register adds t. Names must be non-empty and unique.
func (r *Registry) Register(t Task) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTask)
	}
	if lo.Contains(t.Dependencies, t.Name) || lo.Contains(t.PostDependencies, t.Name) {
		return fmt.Errorf("%w: %q depends on itself", ErrCircularDependency, t.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, t.Name)
	}
	r.tasks[t.Name] = t
	r.logger.Debug("registered task", logkeys.Task, t.Name,
		"dependencies", t.Dependencies, "post_dependencies", t.PostDependencies)
	return nil
}

// Phases registers no-op tasks standing in for phases the host owns.
// Names already registered are left alone.
func (r *Registry) Phases(names ...string) error {
	for _, name := range names {
		if r.Has(name) {
			continue
		}
		if err := r.Register(Task{Name: name}); err != nil {
			return err
		}
	}
	return nil
}

// Apply lets each plugin register its tasks.
func (r *Registry) Apply(plugins ...Plugin) error {
	for _, p := range plugins {
		if err := p.Apply(r); err != nil {
			return fmt.Errorf("applying plugin %q: %w", p.ID(), err)
		}
		r.logger.Debug("applied plugin", logkeys.Plugin, p.ID())
	}
	return nil
}

// Has reports whether a task with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[name]
	return ok
}

// Names returns all registered task names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := lo.Keys(r.tasks)
	sort.Strings(names)
	return names
}

// Plan returns the execution order needed to run targets. With no targets,
// every registered task is planned.
func (r *Registry) Plan(targets ...string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	preds := make(map[string][]string, len(r.tasks))
	for name, t := range r.tasks {
		preds[name] = append(preds[name], t.Dependencies...)
		for _, after := range t.PostDependencies {
			if _, ok := r.tasks[after]; !ok {
				return nil, fmt.Errorf("%q must precede %q: %w", name, after, ErrMissingDependency)
			}
			preds[after] = append(preds[after], name)
		}
	}

	wanted := make(map[string]struct{}, len(r.tasks))
	if len(targets) == 0 {
		for name := range r.tasks {
			wanted[name] = struct{}{}
		}
	} else {
		stack := append([]string(nil), targets...)
		for len(stack) > 0 {
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, done := wanted[name]; done {
				continue
			}
			if _, ok := r.tasks[name]; !ok {
				return nil, fmt.Errorf("task %q: %w", name, ErrMissingDependency)
			}
			wanted[name] = struct{}{}
			stack = append(stack, preds[name]...)
		}
	}

	nodes := make([]node, 0, len(wanted))
	for name := range wanted {
		nodes = append(nodes, node{id: name, preds: preds[name]})
	}

	return order(nodes)
}

// Run executes the plan for targets serially, stopping at the first failing
// task.
func (r *Registry) Run(ctx context.Context, tc Context, targets ...string) error {
	plan, err := r.Plan(targets...)
	if err != nil {
		return err
	}

	for _, name := range plan {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("before task %q: %w", name, err)
		}

		r.mu.Lock()
		t := r.tasks[name]
		r.mu.Unlock()

		if t.Run == nil {
			r.logger.Debug("phase reached", logkeys.Task, name)
			continue
		}

		start := time.Now()
		r.logger.Info("running task", logkeys.Task, name, logkeys.Module, tc.ModuleName)
		if err := t.Run(ctx, tc); err != nil {
			r.logger.Error("task failed", logkeys.Task, name, logkeys.Error, err)
			return fmt.Errorf("task %q: %w", name, err)
		}
		r.logger.Info("task finished", logkeys.Task, name, logkeys.Duration, time.Since(start).Round(time.Millisecond))
	}

	return nil
}
