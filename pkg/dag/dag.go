// Package dag implements DependencyGraph (spec §4.10 C12): a
// named-node directed graph with forward (dependency) and reverse
// (dependent) edges, cycle detection, topological sort, and parallel
// execution-group extraction for RefreshScheduler.
package dag

import (
	"sort"

	"github.com/malbeclabs/grizzly/pkg/grizzlyerr"
)

// Graph is a directed graph of named nodes. Zero value is not usable;
// construct with New.
type Graph struct {
	nodes    map[string]struct{}
	forward  map[string]map[string]struct{} // node -> its dependencies
	reverse  map[string]map[string]struct{} // node -> its dependents

	topoCache  []string
	topoValid  bool
	transCache map[string][]string
}

// New constructs an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]struct{}),
		forward:    make(map[string]map[string]struct{}),
		reverse:    make(map[string]map[string]struct{}),
		transCache: make(map[string][]string),
	}
}

func (g *Graph) ensureNode(name string) {
	if _, ok := g.nodes[name]; ok {
		return
	}
	g.nodes[name] = struct{}{}
	g.forward[name] = make(map[string]struct{})
	g.reverse[name] = make(map[string]struct{})
}

func (g *Graph) invalidate() {
	g.topoValid = false
	g.topoCache = nil
	g.transCache = make(map[string][]string)
}

// AddDependency records that `from` depends on `to`, ensuring both
// nodes exist. Duplicate edges are no-ops.
func (g *Graph) AddDependency(from, to string) {
	g.ensureNode(from)
	g.ensureNode(to)
	if _, ok := g.forward[from][to]; ok {
		return
	}
	g.forward[from][to] = struct{}{}
	g.reverse[to][from] = struct{}{}
	g.invalidate()
}

// AddNode ensures name exists in the graph even with no edges.
func (g *Graph) AddNode(name string) {
	if _, ok := g.nodes[name]; !ok {
		g.ensureNode(name)
		g.invalidate()
	}
}

// Nodes returns every node currently in the graph.
func (g *Graph) Nodes() []string {
	return setKeys(g.nodes)
}

// Dependencies returns the direct dependencies of name.
func (g *Graph) Dependencies(name string) []string {
	return setKeys(g.forward[name])
}

// Dependents returns the direct dependents of name.
func (g *Graph) Dependents(name string) []string {
	return setKeys(g.reverse[name])
}

func setKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// HasCycles reports whether the graph contains a cycle, via DFS with a
// recursion set.
func (g *Graph) HasCycles() bool {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))
	var visit func(n string) bool
	visit = func(n string) bool {
		state[n] = visiting
		for dep := range g.forward[n] {
			switch state[dep] {
			case visiting:
				return true
			case unvisited:
				if visit(dep) {
					return true
				}
			}
		}
		state[n] = done
		return false
	}
	for n := range g.nodes {
		if state[n] == unvisited {
			if visit(n) {
				return true
			}
		}
	}
	return false
}

// TopologicalSort returns nodes ordered so that every node appears
// after all of its dependencies. The result is memoized and
// invalidated on any graph mutation.
func (g *Graph) TopologicalSort() ([]string, error) {
	if g.topoValid {
		return g.topoCache, nil
	}
	if g.HasCycles() {
		return nil, grizzlyerr.New(grizzlyerr.CircularDependency, "dependency graph contains a cycle")
	}

	visited := make(map[string]bool, len(g.nodes))
	order := make([]string, 0, len(g.nodes))
	var visit func(n string)
	visit = func(n string) {
		if visited[n] {
			return
		}
		visited[n] = true
		for dep := range g.forward[n] {
			visit(dep)
		}
		order = append(order, n)
	}
	for n := range g.nodes {
		visit(n)
	}

	g.topoCache = order
	g.topoValid = true
	return order, nil
}

// TransitiveDependencies returns every node reachable from name via
// forward edges (name's dependencies, their dependencies, and so on),
// memoized per node and invalidated on mutation.
func (g *Graph) TransitiveDependencies(name string) []string {
	if cached, ok := g.transCache[name]; ok {
		return cached
	}
	seen := make(map[string]struct{})
	var visit func(n string)
	visit = func(n string) {
		for dep := range g.forward[n] {
			if _, ok := seen[dep]; ok {
				continue
			}
			seen[dep] = struct{}{}
			visit(dep)
		}
	}
	visit(name)
	out := setKeys(seen)
	g.transCache[name] = out
	return out
}

// GetParallelExecutionGroups repeatedly collects the set of
// not-yet-executed nodes whose dependencies are all already in
// `executed`, groups them together, and appends the group to
// `executed` before computing the next group. It stops when every
// node has executed, or fails CircularDependency if a round makes no
// progress.
func (g *Graph) GetParallelExecutionGroups(executed map[string]bool) ([][]string, error) {
	done := make(map[string]bool, len(executed))
	for k, v := range executed {
		done[k] = v
	}

	var groups [][]string
	for {
		remaining := 0
		var ready []string
		for n := range g.nodes {
			if done[n] {
				continue
			}
			remaining++
			if nodeReady(g, n, done) {
				ready = append(ready, n)
			}
		}
		if remaining == 0 {
			return groups, nil
		}
		if len(ready) == 0 {
			return nil, grizzlyerr.New(grizzlyerr.CircularDependency, "no node is ready to execute; dependency graph contains a cycle")
		}
		sort.Strings(ready) // deterministic group member order, so "first error in insertion order" is reproducible
		groups = append(groups, ready)
		for _, n := range ready {
			done[n] = true
		}
	}
}

func nodeReady(g *Graph, n string, done map[string]bool) bool {
	for dep := range g.forward[n] {
		if !done[dep] {
			return false
		}
	}
	return true
}
