// SPDX-License-Identifier: MPL-2.0

// Package dag orders build tasks. Edges express "must run before"; finalizer
// edges additionally pull a task into every plan that includes the task it
// finalizes, the way an installer step follows a native compile.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError reports the nodes left unordered by a cyclic graph.
	CycleError struct {
		Cycle []string
	}

	// UnknownNodeError is returned by Plan for a requested node that was
	// never added.
	UnknownNodeError struct {
		Node string
	}

	// Graph is a directed graph of named nodes. An edge from A to B means A
	// must complete before B starts.
	Graph struct {
		// successors maps a node to the nodes that depend on it.
		successors map[string][]string
		// predecessors maps a node to the nodes it depends on.
		predecessors map[string][]string
		// finalizers maps a node to the nodes that must follow it whenever it runs.
		finalizers map[string][]string
		// nodes in insertion order for deterministic output.
		nodes   []string
		nodeSet map[string]bool
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

func (e *UnknownNodeError) Error() string {
	return fmt.Sprintf("unknown task %q", e.Node)
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
		finalizers:   make(map[string][]string),
		nodeSet:      make(map[string]bool),
	}
}

// AddNode adds a node. Adding an existing node is a no-op.
func (g *Graph) AddNode(name string) {
	if g.nodeSet[name] {
		return
	}
	g.nodeSet[name] = true
	g.nodes = append(g.nodes, name)
}

// Has reports whether name is a node of the graph.
func (g *Graph) Has(name string) bool {
	return g.nodeSet[name]
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// AddEdge records that from must run before to. Both nodes are added if
// missing.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.successors[from] = append(g.successors[from], to)
	g.predecessors[to] = append(g.predecessors[to], from)
}

// AddFinalizer registers finalizer to run after task whenever task is part
// of a plan. The finalizer's own dependencies are honored as usual.
func (g *Graph) AddFinalizer(task, finalizer string) {
	g.AddNode(task)
	g.AddNode(finalizer)
	if !slices.Contains(g.finalizers[task], finalizer) {
		g.finalizers[task] = append(g.finalizers[task], finalizer)
	}
}

// RemoveFinalizers drops every finalizer registered for task.
func (g *Graph) RemoveFinalizers(task string) {
	delete(g.finalizers, task)
}

// TopologicalSort orders every node using Kahn's algorithm. Nodes at the
// same level keep insertion order.
func (g *Graph) TopologicalSort() ([]string, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}
	return g.sort(g.nodeSet)
}

// Plan returns the execution order for the requested nodes, their
// transitive dependencies and any finalizers they pull in.
func (g *Graph) Plan(requested ...string) ([]string, error) {
	include := make(map[string]bool)
	stack := make([]string, 0, len(requested))
	for _, r := range requested {
		if !g.nodeSet[r] {
			return nil, &UnknownNodeError{Node: r}
		}
		stack = append(stack, r)
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if include[n] {
			continue
		}
		include[n] = true
		stack = append(stack, g.predecessors[n]...)
		stack = append(stack, g.finalizers[n]...)
	}

	if len(include) == 0 {
		return nil, nil
	}
	return g.sort(include)
}

// sort runs Kahn's algorithm restricted to the nodes in include. Finalizer
// edges count as ordering edges.
func (g *Graph) sort(include map[string]bool) ([]string, error) {
	edges := func(n string) []string {
		out := make([]string, 0, len(g.successors[n])+len(g.finalizers[n]))
		for _, s := range g.successors[n] {
			if include[s] {
				out = append(out, s)
			}
		}
		for _, f := range g.finalizers[n] {
			if include[f] {
				out = append(out, f)
			}
		}
		return out
	}

	inDegree := make(map[string]int, len(include))
	for _, n := range g.nodes {
		if include[n] {
			for _, s := range edges(n) {
				inDegree[s]++
			}
		}
	}

	var queue []string
	for _, n := range g.nodes {
		if include[n] && inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	result := make([]string, 0, len(include))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		result = append(result, n)
		for _, s := range edges(n) {
			inDegree[s]--
			if inDegree[s] == 0 {
				queue = append(queue, s)
			}
		}
	}

	if len(result) != len(include) {
		var cycle []string
		for _, n := range g.nodes {
			if include[n] && inDegree[n] > 0 {
				cycle = append(cycle, n)
			}
		}
		return nil, &CycleError{Cycle: cycle}
	}
	return result, nil
}
