package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/cli/output"
	"github.com/maliciousblahaj/harmony-playground/internal/state"
)

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recent playback and render sessions",
		Long: `List recent sessions from the state database, newest first.

Every play and render run is recorded with its project, duration, and
frame count.`,
		Example: `  # Show the last 20 sessions
  harmony sessions

  # Show everything as JSON
  harmony sessions --limit 0 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSessions(cmd, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum sessions to show (0 for all)")

	return cmd
}

func runSessions(cmd *cobra.Command, limit int) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	store, err := openStore(cmdCtx.Cfg)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer store.Close()

	sessions, err := store.ListSessions(limit)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return sessionsJSON(r, sessions)
	case output.ModeMarkdown:
		return sessionsMarkdown(r, sessions)
	default:
		return sessionsText(r, sessions)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func sessionsText(r *output.Renderer, sessions []*state.Session) error {
	if len(sessions) == 0 {
		r.Println("No sessions recorded yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Kind", "Project", "Status", "Frames", "Duration", "Started"})
	for _, s := range sessions {
		t.AppendRow(table.Row{
			shortID(s.ID),
			s.Kind,
			s.ProjectPath,
			s.Status,
			s.Frames,
			s.Duration().Round(time.Millisecond),
			s.StartedAt.Local().Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
	return nil
}

func sessionsMarkdown(r *output.Renderer, sessions []*state.Session) error {
	r.Println(output.FormatHeader(1, fmt.Sprintf("Sessions (%d shown)", len(sessions))))
	r.Println("")

	for _, s := range sessions {
		r.Println(output.FormatHeader(2, fmt.Sprintf("%s (%s)", shortID(s.ID), s.Kind)))
		r.Println(output.FormatKeyValue("Project", s.ProjectPath))
		r.Println(output.FormatKeyValue("Status", string(s.Status)))
		r.Println(output.FormatKeyValue("Frames", fmt.Sprintf("%d", s.Frames)))
		r.Println(output.FormatKeyValue("Duration", s.Duration().Round(time.Millisecond).String()))
		r.Println(output.FormatKeyValue("Started", s.StartedAt.Format(time.RFC3339)))
		if s.Error != "" {
			r.Println(output.FormatKeyValue("Error", s.Error))
		}
		r.Println("")
	}
	return nil
}

func sessionsJSON(r *output.Renderer, sessions []*state.Session) error {
	type sessionInfo struct {
		ID          string  `json:"id"`
		Kind        string  `json:"kind"`
		ProjectPath string  `json:"project_path"`
		SampleRate  int     `json:"sample_rate"`
		Frames      int64   `json:"frames"`
		Status      string  `json:"status"`
		Error       *string `json:"error,omitempty"`
		StartedAt   string  `json:"started_at"`
		FinishedAt  *string `json:"finished_at,omitempty"`
	}

	out := make([]sessionInfo, 0, len(sessions))
	for _, s := range sessions {
		info := sessionInfo{
			ID:          s.ID,
			Kind:        string(s.Kind),
			ProjectPath: s.ProjectPath,
			SampleRate:  s.SampleRate,
			Frames:      s.Frames,
			Status:      string(s.Status),
			StartedAt:   s.StartedAt.Format(time.RFC3339),
		}
		if s.Error != "" {
			info.Error = &s.Error
		}
		if s.FinishedAt != nil {
			finished := s.FinishedAt.Format(time.RFC3339)
			info.FinishedAt = &finished
		}
		out = append(out, info)
	}

	enc := json.NewEncoder(r.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
