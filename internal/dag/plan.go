package dag

import (
	"context"
	"sort"

	"github.com/vk/wsgen/internal/ctxlog"
)

// Plan computes the execution order for the task-holding packages in holders.
//
// The full graph is reduced to the holders: holder A is ordered after holder
// B whenever A depends on B, directly or through any chain of intermediate
// packages, whether or not those intermediates hold a task themselves.
// Ties between simultaneously schedulable packages are broken by memberIndex,
// the package's position in the workspace member list, which makes the plan
// reproducible across runs.
//
// A cycle among the holders yields a *CycleError and an empty plan; nothing
// must be invoked in that case.
func Plan(ctx context.Context, g *Graph, holders []string, memberIndex func(name string) int) ([]string, error) {
	logger := ctxlog.FromContext(ctx)

	holderSet := make(map[string]bool, len(holders))
	for _, h := range holders {
		holderSet[h] = true
	}

	// Reduce to the holders, collapsing chains through non-holders into
	// direct edges so transitive ordering survives the reduction.
	deps := make(map[string][]string, len(holders))
	dependents := make(map[string][]string, len(holders))
	indegree := make(map[string]int, len(holders))
	for _, h := range holders {
		indegree[h] = 0
	}
	for _, a := range holders {
		for _, b := range g.holderDeps(a, holderSet) {
			deps[a] = append(deps[a], b)
			dependents[b] = append(dependents[b], a)
			indegree[a]++
		}
	}

	ready := make([]string, 0, len(holders))
	for _, h := range holders {
		if indegree[h] == 0 {
			ready = append(ready, h)
		}
	}

	byMemberOrder := func(names []string) {
		sort.Slice(names, func(i, j int) bool { return memberIndex(names[i]) < memberIndex(names[j]) })
	}

	plan := make([]string, 0, len(holders))
	for len(ready) > 0 {
		byMemberOrder(ready)
		next := ready[0]
		ready = ready[1:]
		plan = append(plan, next)
		for _, dep := range dependents[next] {
			indegree[dep]--
			if indegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(plan) < len(holders) {
		var stuck []string
		scheduled := make(map[string]bool, len(plan))
		for _, p := range plan {
			scheduled[p] = true
		}
		for _, h := range holders {
			if !scheduled[h] {
				stuck = append(stuck, h)
			}
		}
		byMemberOrder(stuck)
		return nil, &CycleError{Packages: stuck}
	}

	logger.Debug("Execution plan computed.", "plan", plan)
	return plan, nil
}

// holderDeps returns the holders that from depends on, directly or
// transitively, excluding from itself. Traversal uses an explicit visited set
// so it terminates even on a cyclic graph; the cycle itself is caught by the
// caller when the sort cannot make progress.
func (g *Graph) holderDeps(from string, holderSet map[string]bool) []string {
	start, ok := g.nodes[from]
	if !ok {
		return nil
	}
	visited := make(map[string]bool)
	var out []string
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for name, dep := range n.deps {
			if visited[name] {
				continue
			}
			visited[name] = true
			if holderSet[name] && name != from {
				out = append(out, name)
			}
			stack = append(stack, dep)
		}
	}
	return out
}
