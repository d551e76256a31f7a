package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/engine"
	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
)

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [project]",
		Short: "Validate a project file",
		Long: `Validate a project file without playing it.

Reports cyclic variable definitions, references to undefined variables,
invalid ratios, and malformed oscillator or sync declarations. Exits
non-zero when the project does not resolve.`,
		Example: `  # Check the project in the current directory
  harmony check

  # Check a specific file
  harmony check songs/drone.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	p, path, err := loadProject(cmdCtx.Cfg, args)
	if err != nil {
		return describeResolveError(path, err)
	}

	// Resolving through a throwaway engine exercises the full pipeline,
	// sync graph included.
	eng := engine.New(engine.Config{
		SampleRate: p.SampleRate,
		BlockSize:  p.BlockSize,
		Logger:     slog.New(slog.DiscardHandler),
	})
	if err := eng.LoadProject(p); err != nil {
		return describeResolveError(path, err)
	}

	r.Success(fmt.Sprintf("%s: %d variables, %d oscillators, all resolved", path, len(p.Variables), len(p.Oscillators)))
	return nil
}

// describeResolveError rewraps resolution errors with the detail a user
// needs to fix the file.
func describeResolveError(path string, err error) error {
	var cycleErr *tuning.CycleError
	if errors.As(err, &cycleErr) {
		return fmt.Errorf("%s: cyclic dependency: %s", path, strings.Join(cycleErr.Path, " -> "))
	}

	var unresolvedErr *tuning.UnresolvedReferenceError
	if errors.As(err, &unresolvedErr) {
		return fmt.Errorf("%s: variable %q references undefined variable %q", path, unresolvedErr.Variable, unresolvedErr.Ref)
	}

	var ratioErr *tuning.InvalidRatioError
	if errors.As(err, &ratioErr) {
		return fmt.Errorf("%s: variable %q: %s", path, ratioErr.Variable, ratioErr.Reason)
	}

	return fmt.Errorf("%s: %w", path, err)
}
