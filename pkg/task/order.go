package task

import (
	"fmt"
	"sort"
)

// node is one vertex of the ordering graph. preds are the ids that must come
// first.
type node struct {
	id    string
	preds []string
}

// order sorts nodes with Kahn's algorithm. Among ready nodes the
// lexicographically smallest id goes first, so the result is deterministic.
// Every pred must be the id of another node in the slice.
func order(nodes []node) ([]string, error) {
	if len(nodes) == 0 {
		return nil, nil
	}

	known := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		known[n.id] = struct{}{}
	}

	succs := make(map[string][]string, len(nodes))
	indeg := make(map[string]int, len(nodes))
	for _, n := range nodes {
		indeg[n.id] += 0
		seen := make(map[string]struct{}, len(n.preds))
		for _, pred := range n.preds {
			if pred == n.id {
				return nil, fmt.Errorf("%w: %q depends on itself", ErrCircularDependency, n.id)
			}
			if _, ok := known[pred]; !ok {
				return nil, fmt.Errorf("%q needed by %q: %w", pred, n.id, ErrMissingDependency)
			}
			if _, dup := seen[pred]; dup {
				continue
			}
			seen[pred] = struct{}{}
			succs[pred] = append(succs[pred], n.id)
			indeg[n.id]++
		}
	}

	ready := make([]string, 0, len(nodes))
	for id, d := range indeg {
		if d == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	result := make([]string, 0, len(nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		result = append(result, id)
		for _, next := range succs[id] {
			indeg[next]--
			if indeg[next] == 0 {
				ready = append(ready, next)
			}
		}
		sort.Strings(ready)
	}

	if len(result) != len(nodes) {
		stuck := make([]string, 0, len(nodes)-len(result))
		for id, d := range indeg {
			if d > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("%w: cycle among tasks: %v", ErrCircularDependency, stuck)
	}

	return result, nil
}
