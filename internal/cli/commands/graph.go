package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/cli/output"
	"github.com/maliciousblahaj/harmony-playground/internal/dag"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph [project]",
		Short: "Show the variable dependency graph",
		Long: `Display the dependency graph of the project's variables.

Variables are grouped by evaluation level: level 0 holds the literal
frequencies, each following level holds ratios of earlier levels.

Output adapts to environment:
  - Terminal: indented text
  - Piped/Scripted: Markdown format (agent-friendly)`,
		Example: `  # Show the graph
  harmony graph

  # Output as JSON
  harmony graph --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(cmd, args)
		},
	}
}

func runGraph(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	p, path, err := loadProject(cmdCtx.Cfg, args)
	if err != nil {
		return err
	}

	resolver, err := newResolver(p)
	if err != nil {
		return describeResolveError(path, err)
	}

	graph := resolver.Graph()
	levels, err := graph.Levels()
	if err != nil {
		return fmt.Errorf("failed to compute evaluation levels: %w", err)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return graphJSON(r, graph, levels)
	case output.ModeMarkdown:
		return graphMarkdown(r, graph, levels)
	default:
		return graphText(r, graph, levels)
	}
}

func graphText(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	r.Println("Dependency graph (evaluation levels):")
	r.Println("")

	for i, level := range levels {
		r.Printf("Level %d:\n", i)
		for _, name := range level {
			deps := graph.Dependencies(name)
			dependents := graph.Dependents(name)

			r.Printf("  %s\n", name)
			if len(deps) > 0 {
				r.Printf("    depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(dependents) > 0 {
				r.Printf("    used by: %s\n", strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Printf("Total: %d variables, %d references\n", graph.NodeCount(), graph.EdgeCount())
	return nil
}

func graphMarkdown(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	r.Println(output.FormatHeader(1, "Dependency Graph"))
	r.Println("")

	for i, level := range levels {
		levelName := fmt.Sprintf("Level %d", i)
		if i == 0 {
			levelName = "Level 0 (Literals)"
		}
		r.Println(output.FormatHeader(2, levelName))

		for _, name := range level {
			deps := graph.Dependencies(name)
			dependents := graph.Dependents(name)

			r.Printf("- %s\n", name)
			if len(deps) > 0 {
				r.Printf("  - depends on: %s\n", strings.Join(deps, ", "))
			}
			if len(dependents) > 0 {
				r.Printf("  - used by: %s\n", strings.Join(dependents, ", "))
			}
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println(output.FormatKeyValue("Total Variables", fmt.Sprintf("%d", graph.NodeCount())))
	r.Println(output.FormatKeyValue("Total References", fmt.Sprintf("%d", graph.EdgeCount())))

	return nil
}

// graphOutput is the JSON shape of the graph command.
type graphOutput struct {
	Levels         []graphLevel `json:"levels"`
	TotalVariables int          `json:"total_variables"`
	TotalEdges     int          `json:"total_edges"`
}

type graphLevel struct {
	Level     int         `json:"level"`
	Variables []graphNode `json:"variables"`
}

type graphNode struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	UsedBy    []string `json:"used_by,omitempty"`
}

func graphJSON(r *output.Renderer, graph *dag.Graph, levels [][]string) error {
	out := graphOutput{
		Levels:         make([]graphLevel, 0, len(levels)),
		TotalVariables: graph.NodeCount(),
		TotalEdges:     graph.EdgeCount(),
	}

	for i, level := range levels {
		gl := graphLevel{Level: i, Variables: make([]graphNode, 0, len(level))}
		for _, name := range level {
			gl.Variables = append(gl.Variables, graphNode{
				Name:      name,
				DependsOn: graph.Dependencies(name),
				UsedBy:    graph.Dependents(name),
			})
		}
		out.Levels = append(out.Levels, gl)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
