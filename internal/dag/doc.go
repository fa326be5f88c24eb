// Package dag models the workspace dependency graph and computes
// dependency-ordered execution plans over it.
//
// The graph is a plain adjacency-list structure: an edge A -> B means
// "A depends on B". It is built once per invocation from the workspace model
// and is never mutated afterwards. Plans are deterministic: ties between
// simultaneously schedulable packages are broken by workspace member order,
// so the same workspace always yields a byte-identical plan.
package dag
