package nativebuild

import (
	"context"
	"sync"

	"github.com/yaklabco/cargotask/pkg/task"
)

// Plugin registration names.
const (
	PluginID = "cargotask.native"
	TaskName = "rustTask"
)

// Plugin registers the native build task so that it runs after the host's
// pre-build phase and before package metadata is processed.
type Plugin struct {
	invoker *Invoker

	mu   sync.Mutex
	last *Result
}

// NewPlugin wraps inv as a task plugin.
func NewPlugin(inv *Invoker) *Plugin {
	return &Plugin{invoker: inv}
}

// ID implements task.Plugin.
func (p *Plugin) ID() string {
	return PluginID
}

// Apply implements task.Plugin.
func (p *Plugin) Apply(r *task.Registry) error {
	return r.Register(task.Task{
		Name:             TaskName,
		Dependencies:     []string{task.PhasePreBuild},
		PostDependencies: []string{task.PhaseProcessOHPackageJSON},
		Run:              p.run,
	})
}

func (p *Plugin) run(ctx context.Context, tc task.Context) error {
	res := p.invoker.Run(ctx, tc)

	p.mu.Lock()
	p.last = &res
	p.mu.Unlock()

	return p.invoker.Policy().Apply(res)
}

// LastResult returns the result of the most recent rustTask run, if any.
// Under the warn policy this is the only place a failed build is visible to
// callers.
func (p *Plugin) LastResult() (Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return Result{}, false
	}
	return *p.last, true
}
