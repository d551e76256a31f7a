package dag

import (
	"reflect"
	"testing"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New()

	g.AddNode("root")
	g.AddNode("fifth")
	g.AddNode("octave")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// fifth depends on root
	if err := g.AddEdge("root", "fifth"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// octave depends on fifth
	if err := g.AddEdge("fifth", "octave"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := New()
	g.AddNode("root")

	if err := g.AddEdge("root", "missing"); err == nil {
		t.Error("expected error for nonexistent dependent node")
	}
	if err := g.AddEdge("missing", "root"); err == nil {
		t.Error("expected error for nonexistent source node")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := New()
	g.AddNode("root")

	if err := g.AddEdge("root", "root"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := New()
	g.AddNode("root")
	g.AddNode("third")
	g.AddNode("chord")

	// third depends on root, chord depends on both
	g.AddEdge("root", "third")
	g.AddEdge("root", "chord")
	g.AddEdge("third", "chord")

	if deps := g.Dependencies("chord"); len(deps) != 2 {
		t.Errorf("expected chord to have 2 dependencies, got %d", len(deps))
	}
	if deps := g.Dependents("root"); len(deps) != 2 {
		t.Errorf("expected root to have 2 dependents, got %d", len(deps))
	}
}

func TestGraph_HasCycle_NoCycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	hasCycle, path := g.HasCycle()
	if hasCycle {
		t.Errorf("expected no cycle, but found: %v", path)
	}
}

func TestGraph_HasCycle_WithCycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", "a") // creates cycle

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Error("expected cycle to be detected")
	}
	if len(path) == 0 {
		t.Error("expected cycle path to be non-empty")
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")

	// b depends on a, c depends on b
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("invalid topological order: %v", order)
	}
}

func TestGraph_TopologicalSort_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, id := range []string{"e", "d", "c", "b", "a"} {
			g.AddNode(id)
		}
		g.AddEdge("a", "c")
		g.AddEdge("b", "c")
		g.AddEdge("c", "d")
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := build().TopologicalSort()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(first, next) {
			t.Fatalf("order not deterministic: %v vs %v", first, next)
		}
	}
}

func TestGraph_TopologicalSort_Cycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	g.AddNode("root")
	g.AddNode("fifth")
	g.AddNode("major")
	g.AddNode("other")

	g.AddEdge("root", "fifth")
	g.AddEdge("fifth", "major")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [][]string{
		{"other", "root"},
		{"fifth"},
		{"major"},
	}
	if !reflect.DeepEqual(levels, want) {
		t.Errorf("expected levels %v, got %v", want, levels)
	}
}

func TestGraph_Affected(t *testing.T) {
	g := New()
	g.AddNode("root")
	g.AddNode("fifth")
	g.AddNode("major")
	g.AddNode("unrelated")

	g.AddEdge("root", "fifth")
	g.AddEdge("fifth", "major")

	affected := g.Affected([]string{"root"})
	want := []string{"root", "fifth", "major"}
	if !reflect.DeepEqual(affected, want) {
		t.Errorf("expected %v, got %v", want, affected)
	}

	if affected := g.Affected([]string{"unrelated"}); len(affected) != 1 {
		t.Errorf("expected only the changed node, got %v", affected)
	}
}

func TestGraph_Roots(t *testing.T) {
	g := New()
	g.AddNode("root")
	g.AddNode("fifth")
	g.AddEdge("root", "fifth")

	if roots := g.Roots(); !reflect.DeepEqual(roots, []string{"root"}) {
		t.Errorf("expected [root], got %v", roots)
	}
}
