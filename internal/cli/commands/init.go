package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/project"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new harmony project",
		Long: `Initialize a new harmony project.

This writes a harmony.yaml with the demo tuning: two root frequencies
(220 Hz and 253.4622 Hz) plus a just major sixth, unison, and perfect
fifth defined as ratios of them.`,
		Example: `  # Initialize in the current directory
  harmony init

  # Initialize in a new directory
  harmony init my-drone

  # Overwrite an existing project file
  harmony init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project file")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	path := filepath.Join(dir, project.DefaultFile)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}

	if err := project.Default().Save(path); err != nil {
		return err
	}

	r.Success(fmt.Sprintf("created %s", path))
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Run 'harmony play' to hear the drone")
	r.Println("  2. Edit the variables while playing; changes glide in live")
	r.Println("  3. Run 'harmony list' to see resolved frequencies")

	return nil
}
