// Package dag provides directed acyclic graph operations for frequency and
// sync dependencies. It supports cycle detection, topological sorting, and
// incremental change propagation.
package dag

import (
	"fmt"
	"sort"
)

// Graph represents a directed acyclic graph of named nodes.
// An edge A -> B means B depends on A.
type Graph struct {
	nodes      map[string]struct{}
	dependents map[string][]string // node -> nodes that depend on it
	depends    map[string][]string // node -> nodes it depends on
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		nodes:      make(map[string]struct{}),
		dependents: make(map[string][]string),
		depends:    make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if _, exists := g.nodes[id]; exists {
		return
	}
	g.nodes[id] = struct{}{}
	g.dependents[id] = []string{}
	g.depends[id] = []string{}
}

// AddEdge records that dependent depends on source.
func (g *Graph) AddEdge(source, dependent string) error {
	if _, exists := g.nodes[source]; !exists {
		return fmt.Errorf("source node %q does not exist", source)
	}
	if _, exists := g.nodes[dependent]; !exists {
		return fmt.Errorf("dependent node %q does not exist", dependent)
	}
	if source == dependent {
		return fmt.Errorf("self-loop detected: %s", source)
	}

	if !contains(g.dependents[source], dependent) {
		g.dependents[source] = append(g.dependents[source], dependent)
	}
	if !contains(g.depends[dependent], source) {
		g.depends[dependent] = append(g.depends[dependent], source)
	}
	return nil
}

// HasNode reports whether a node exists.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodes[id]
	return exists
}

// Dependencies returns the nodes the given node depends on.
func (g *Graph) Dependencies(id string) []string {
	return g.depends[id]
}

// Dependents returns the nodes that depend on the given node.
func (g *Graph) Dependents(id string) []string {
	return g.dependents[id]
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, deps := range g.dependents {
		count += len(deps)
	}
	return count
}

// HasCycle returns true if the graph contains a cycle, along with the cycle path.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		recStack[id] = true

		for _, dep := range g.dependents[id] {
			if !visited[dep] {
				path[dep] = id
				if dfs(dep) {
					return true
				}
			} else if recStack[dep] {
				// Found cycle, reconstruct path
				cyclePath = []string{dep}
				for curr := id; curr != dep; curr = path[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{dep}, cyclePath...)
				return true
			}
		}

		recStack[id] = false
		return false
	}

	// Iterate in sorted order so reported cycles are deterministic
	for _, id := range g.sortedIDs() {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}

	return false, nil
}

// TopologicalSort returns node IDs ordered so that every node appears after
// everything it depends on. Returns an error if the graph contains a cycle.
func (g *Graph) TopologicalSort() ([]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true

		for _, dep := range g.depends[id] {
			visit(dep)
		}

		result = append(result, id)
	}

	for _, id := range g.sortedIDs() {
		visit(id)
	}

	return result, nil
}

// Levels returns node IDs grouped by evaluation level. Level 0 holds nodes
// with no dependencies; a node's level is one more than its deepest dependency.
func (g *Graph) Levels() ([][]string, error) {
	if hasCycle, cyclePath := g.HasCycle(); hasCycle {
		return nil, fmt.Errorf("cycle detected: %v", cyclePath)
	}

	assigned := make(map[string]int)

	var level func(id string) int
	level = func(id string) int {
		if l, ok := assigned[id]; ok {
			return l
		}

		deps := g.depends[id]
		if len(deps) == 0 {
			assigned[id] = 0
			return 0
		}

		max := 0
		for _, dep := range deps {
			if l := level(dep); l > max {
				max = l
			}
		}
		assigned[id] = max + 1
		return max + 1
	}

	maxLevel := 0
	for id := range g.nodes {
		if l := level(id); l > maxLevel {
			maxLevel = l
		}
	}

	levels := make([][]string, maxLevel+1)
	for id, l := range assigned {
		levels[l] = append(levels[l], id)
	}
	for i := range levels {
		sort.Strings(levels[i])
	}

	return levels, nil
}

// Affected returns the given nodes plus every downstream dependent, ordered
// topologically. This drives incremental re-resolution: only these nodes need
// recomputing after a change.
func (g *Graph) Affected(changed []string) []string {
	affected := make(map[string]bool)

	var mark func(id string)
	mark = func(id string) {
		if affected[id] {
			return
		}
		affected[id] = true
		for _, dep := range g.dependents[id] {
			mark(dep)
		}
	}

	for _, id := range changed {
		if _, exists := g.nodes[id]; exists {
			mark(id)
		}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		// Incremental updates only run on graphs that already resolved once,
		// so this path is limited to callers probing a broken graph.
		result := make([]string, 0, len(affected))
		for id := range affected {
			result = append(result, id)
		}
		sort.Strings(result)
		return result
	}

	result := make([]string, 0, len(affected))
	for _, id := range order {
		if affected[id] {
			result = append(result, id)
		}
	}
	return result
}

// Roots returns nodes with no dependencies.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.depends[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

func (g *Graph) sortedIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// contains checks if a slice contains a string.
func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
