package dag

import (
	"fmt"
	"strings"

	"github.com/vk/wsgen/internal/workspace"
)

// Graph is a directed graph over package names. An edge A -> B means
// "A depends on B".
type Graph struct {
	nodes map[string]*node
}

type node struct {
	name string
	// deps holds the packages this node depends on.
	deps map[string]*node
	// dependents holds the packages that depend on this node.
	dependents map[string]*node
}

// New returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*node)}
}

// FromWorkspace builds the dependency graph over all workspace members and
// defensively checks it for cycles. The workspace model provider guarantees
// an acyclic relation, but a broken manifest must fail here rather than send
// the scheduler into a loop.
func FromWorkspace(ws *workspace.Workspace) (*Graph, error) {
	g := New()
	for _, m := range ws.Members {
		g.AddNode(m.Name)
	}
	for _, m := range ws.Members {
		for _, dep := range m.Deps {
			if err := g.AddEdge(m.Name, dep); err != nil {
				return nil, err
			}
		}
	}
	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Packages: cycle}
	}
	return g, nil
}

// AddNode adds a node with the given name. Adding an existing node is a
// no-op.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodes[name]; ok {
		return
	}
	g.nodes[name] = &node{
		name:       name,
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
}

// AddEdge records that from depends on to. Both nodes must already exist and
// self-edges are rejected.
func (g *Graph) AddEdge(from, to string) error {
	if from == to {
		return fmt.Errorf("package %q cannot depend on itself", from)
	}
	fromNode, ok := g.nodes[from]
	if !ok {
		return fmt.Errorf("unknown package %q in dependency edge %s -> %s", from, from, to)
	}
	toNode, ok := g.nodes[to]
	if !ok {
		return fmt.Errorf("unknown package %q in dependency edge %s -> %s", to, from, to)
	}
	fromNode.deps[to] = toNode
	toNode.dependents[from] = fromNode
	return nil
}

// Dependencies returns the names of the packages that the given package
// directly depends on.
func (g *Graph) Dependencies(name string) ([]string, error) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, fmt.Errorf("unknown package %q", name)
	}
	out := make([]string, 0, len(n.deps))
	for dep := range n.deps {
		out = append(out, dep)
	}
	return out, nil
}

// DependsOn reports whether from transitively depends on to.
func (g *Graph) DependsOn(from, to string) bool {
	start, ok := g.nodes[from]
	if !ok {
		return false
	}
	visited := make(map[string]bool)
	stack := []*node{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for name, dep := range n.deps {
			if name == to {
				return true
			}
			if !visited[name] {
				visited[name] = true
				stack = append(stack, dep)
			}
		}
	}
	return false
}

// CycleError reports a dependency cycle. The package list walks the cycle in
// dependency direction, first package repeated at the end.
type CycleError struct {
	Packages []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency between packages: %s", strings.Join(e.Packages, " -> "))
}

// findCycle returns one dependency cycle as a package-name walk, or nil when
// the graph is acyclic. Classic depth-first search with permanent and
// in-progress marks.
func (g *Graph) findCycle() []string {
	permanent := make(map[string]bool)
	inProgress := make(map[string]bool)
	var stack []string
	var cycle []string

	var visit func(n *node) bool
	visit = func(n *node) bool {
		if permanent[n.name] {
			return false
		}
		if inProgress[n.name] {
			// Close the walk at the node we came back to.
			for i, name := range stack {
				if name == n.name {
					cycle = append(append(cycle, stack[i:]...), n.name)
					return true
				}
			}
			return true
		}
		inProgress[n.name] = true
		stack = append(stack, n.name)
		for _, dep := range n.deps {
			if visit(dep) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		delete(inProgress, n.name)
		permanent[n.name] = true
		return false
	}

	for _, n := range g.nodes {
		if !permanent[n.name] {
			if visit(n) {
				return cycle
			}
		}
	}
	return nil
}
