package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/cli/output"
	"github.com/maliciousblahaj/harmony-playground/internal/project"
	"github.com/maliciousblahaj/harmony-playground/internal/theory"
	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [project]",
		Short: "List variables and oscillators with resolved frequencies",
		Long: `List every variable with its expression, resolved frequency, and the
nearest 12-TET note name, followed by the oscillators voicing them.

Output adapts to environment:
  - Terminal: table output
  - Piped/Scripted: Markdown format (agent-friendly)

Use --output to override: auto, text, markdown, json`,
		Example: `  # List the current project
  harmony list

  # List as JSON
  harmony list --output json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args)
		},
	}
}

func runList(cmd *cobra.Command, args []string) error {
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

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return listJSON(r, p, resolver)
	case output.ModeMarkdown:
		return listMarkdown(r, p, resolver)
	default:
		return listText(r, p, resolver)
	}
}

// variableRow is one resolved variable for display.
type variableRow struct {
	Name       string  `json:"name"`
	Expression string  `json:"expression"`
	Frequency  float64 `json:"frequency"`
	Note       string  `json:"note"`
}

func variableRows(p *project.Project, resolver *tuning.Resolver) []variableRow {
	names := resolver.Names()
	rows := make([]variableRow, 0, len(names))
	for _, name := range names {
		hz, _ := resolver.Frequency(name)
		rows = append(rows, variableRow{
			Name:       name,
			Expression: p.Variables[name],
			Frequency:  hz,
			Note:       theory.NoteFromFrequency(hz).String(),
		})
	}
	return rows
}

func describeSync(osc project.Oscillator) string {
	if osc.Sync == nil {
		return ""
	}
	if osc.Sync.Offset != 0 {
		return fmt.Sprintf("%s @ %g", osc.Sync.Master, osc.Sync.Offset)
	}
	return osc.Sync.Master
}

func listText(r *output.Renderer, p *project.Project, resolver *tuning.Resolver) error {
	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Variable", "Expression", "Frequency", "Note"})
	for _, row := range variableRows(p, resolver) {
		t.AppendRow(table.Row{row.Name, row.Expression, fmt.Sprintf("%.4f Hz", row.Frequency), row.Note})
	}
	t.Render()

	if len(p.Oscillators) == 0 {
		return nil
	}

	r.Println("")
	t = table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Oscillator", "Variable", "Waveform", "Gain", "Sync"})
	for _, osc := range p.Oscillators {
		wf := osc.Waveform
		if wf == "" {
			wf = p.Waveform
		}
		if wf == "" {
			wf = "sine"
		}
		t.AppendRow(table.Row{osc.Name, osc.Variable, wf, fmt.Sprintf("%g", osc.Gain), describeSync(osc)})
	}
	t.Render()

	return nil
}

func listMarkdown(r *output.Renderer, p *project.Project, resolver *tuning.Resolver) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Variables (%d total)", len(p.Variables))))
	r.Println("")

	for _, row := range variableRows(p, resolver) {
		r.Println(output.FormatHeader(2, row.Name))
		r.Println(output.FormatKeyValue("Expression", row.Expression))
		r.Println(output.FormatKeyValue("Frequency", fmt.Sprintf("%.4f Hz", row.Frequency)))
		r.Println(output.FormatKeyValue("Note", row.Note))
		r.Println("")
	}

	if len(p.Oscillators) > 0 {
		r.Println(output.FormatHeader(1, fmt.Sprintf("Oscillators (%d total)", len(p.Oscillators))))
		r.Println("")
		for _, osc := range p.Oscillators {
			r.Println(output.FormatHeader(2, osc.Name))
			r.Println(output.FormatKeyValue("Variable", osc.Variable))
			if osc.Waveform != "" {
				r.Println(output.FormatKeyValue("Waveform", osc.Waveform))
			}
			r.Println(output.FormatKeyValue("Gain", fmt.Sprintf("%g", osc.Gain)))
			if sync := describeSync(osc); sync != "" {
				r.Println(output.FormatKeyValue("Sync", sync))
			}
			r.Println("")
		}
	}

	return nil
}

// listOutput is the JSON shape of the list command.
type listOutput struct {
	Variables   []variableRow        `json:"variables"`
	Oscillators []project.Oscillator `json:"oscillators"`
}

func listJSON(r *output.Renderer, p *project.Project, resolver *tuning.Resolver) error {
	out := listOutput{
		Variables:   variableRows(p, resolver),
		Oscillators: p.Oscillators,
	}
	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
