package tuning

import (
	"fmt"
	"sort"

	"github.com/maliciousblahaj/harmony-playground/internal/dag"
)

// Change records one recomputed frequency from an incremental update.
type Change struct {
	Name      string
	Frequency float64
}

// Resolver resolves a set of variable definitions into concrete frequencies.
// Definitions are validated and ordered once in Resolve; afterwards literal
// and ratio updates recompute only the affected dependents.
type Resolver struct {
	defs  map[string]Definition
	graph *dag.Graph
	freqs map[string]float64
}

// NewResolver creates an empty resolver.
func NewResolver() *Resolver {
	return &Resolver{
		defs:  make(map[string]Definition),
		freqs: make(map[string]float64),
	}
}

// Define adds or replaces a variable definition. The definition is validated
// structurally; cross-variable checks happen in Resolve.
func (r *Resolver) Define(name string, def Definition) error {
	if !ValidName(name) {
		return fmt.Errorf("invalid variable name %q", name)
	}
	r.defs[name] = def
	r.graph = nil
	return nil
}

// DefineExpr parses expr and defines the variable with the result.
func (r *Resolver) DefineExpr(name, expr string) error {
	def, err := ParseDefinition(expr)
	if err != nil {
		return fmt.Errorf("variable %q: %w", name, err)
	}
	return r.Define(name, def)
}

// Names returns all defined variable names, sorted.
func (r *Resolver) Names() []string {
	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definition returns the definition of a variable.
func (r *Resolver) Definition(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Frequency returns the resolved frequency of a variable. Only valid after a
// successful Resolve.
func (r *Resolver) Frequency(name string) (float64, bool) {
	hz, ok := r.freqs[name]
	return hz, ok
}

// Frequencies returns a copy of all resolved frequencies.
func (r *Resolver) Frequencies() map[string]float64 {
	out := make(map[string]float64, len(r.freqs))
	for name, hz := range r.freqs {
		out[name] = hz
	}
	return out
}

// Graph returns the dependency graph built by the last Resolve, or nil if the
// resolver has not resolved yet.
func (r *Resolver) Graph() *dag.Graph {
	return r.graph
}

// Resolve validates every definition, builds the dependency graph, and
// evaluates all variables in topological order. The result is deterministic
// and independent of definition order.
func (r *Resolver) Resolve() error {
	graph := dag.New()
	for name := range r.defs {
		graph.AddNode(name)
	}

	for name, def := range r.defs {
		if err := validate(name, def); err != nil {
			return err
		}
		if def.IsLiteral() {
			continue
		}
		if !graph.HasNode(def.Base) {
			return &UnresolvedReferenceError{Variable: name, Ref: def.Base}
		}
		if def.Base == name {
			return &CycleError{Path: []string{name, name}}
		}
		if err := graph.AddEdge(def.Base, name); err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
	}

	if hasCycle, path := graph.HasCycle(); hasCycle {
		return &CycleError{Path: path}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}

	freqs := make(map[string]float64, len(order))
	for _, name := range order {
		freqs[name] = evaluate(r.defs[name], freqs)
	}

	r.graph = graph
	r.freqs = freqs
	return nil
}

// SetLiteral changes a literal variable's frequency and recomputes only the
// variable and its downstream dependents. The graph shape is unchanged, so no
// re-validation is needed.
func (r *Resolver) SetLiteral(name string, hz float64) ([]Change, error) {
	def, ok := r.defs[name]
	if !ok {
		return nil, &UnresolvedReferenceError{Variable: name, Ref: name}
	}
	if !def.IsLiteral() {
		return nil, fmt.Errorf("variable %q is not a literal", name)
	}
	if hz <= 0 {
		return nil, &InvalidRatioError{Variable: name, Reason: "frequency must be positive"}
	}
	if r.graph == nil {
		return nil, fmt.Errorf("resolver has not resolved yet")
	}

	r.defs[name] = Definition{Literal: hz}
	return r.recompute([]string{name}), nil
}

// SetRatio redefines a variable as a ratio of another and recomputes the
// affected subgraph. Changing a definition can reshape the graph, so the full
// validation pass runs again; on failure the previous state is kept.
func (r *Resolver) SetRatio(name string, ratio Ratio, base string) ([]Change, error) {
	prev, ok := r.defs[name]
	if !ok {
		return nil, &UnresolvedReferenceError{Variable: name, Ref: name}
	}

	r.defs[name] = Definition{Ratio: ratio, Base: base}
	if err := r.Resolve(); err != nil {
		r.defs[name] = prev
		// Restore the previous consistent state
		if prev2 := r.Resolve(); prev2 != nil {
			return nil, fmt.Errorf("restoring previous state: %w", prev2)
		}
		return nil, err
	}

	changes := make([]Change, 0, 1)
	for _, affected := range r.graph.Affected([]string{name}) {
		changes = append(changes, Change{Name: affected, Frequency: r.freqs[affected]})
	}
	return changes, nil
}

// recompute re-evaluates the changed variables and their dependents in
// topological order and returns the new values.
func (r *Resolver) recompute(changed []string) []Change {
	affected := r.graph.Affected(changed)
	changes := make([]Change, 0, len(affected))
	for _, name := range affected {
		hz := evaluate(r.defs[name], r.freqs)
		r.freqs[name] = hz
		changes = append(changes, Change{Name: name, Frequency: hz})
	}
	return changes
}

func validate(name string, def Definition) error {
	if def.IsLiteral() {
		if def.Literal <= 0 {
			return &InvalidRatioError{Variable: name, Reason: "literal frequency must be positive"}
		}
		return nil
	}
	if def.Ratio.Denominator == 0 {
		return &InvalidRatioError{Variable: name, Reason: "zero denominator"}
	}
	if def.Ratio.Numerator == 0 {
		return &InvalidRatioError{Variable: name, Reason: "zero numerator"}
	}
	return nil
}

func evaluate(def Definition, freqs map[string]float64) float64 {
	if def.IsLiteral() {
		return def.Literal
	}
	return freqs[def.Base] * def.Ratio.Multiplicand()
}
