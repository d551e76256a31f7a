// Package commands implements the harmony subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/cli/config"
	"github.com/maliciousblahaj/harmony-playground/internal/cli/output"
	"github.com/maliciousblahaj/harmony-playground/internal/engine"
	"github.com/maliciousblahaj/harmony-playground/internal/project"
	"github.com/maliciousblahaj/harmony-playground/internal/state"
	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the command's
// configuration and context.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	mode := output.Mode(cfg.OutputFormat)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back
// to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	glideMS := config.DefaultGlideMS
	if v := os.Getenv("HARMONY_GLIDE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			glideMS = n
		}
	}

	return &config.Config{
		Project:      getEnvOrDefault("HARMONY_PROJECT", config.DefaultProjectFile),
		StatePath:    getEnvOrDefault("HARMONY_STATE_PATH", config.DefaultStateFile),
		Backend:      getEnvOrDefault("HARMONY_BACKEND", config.DefaultBackend),
		GlideMS:      glideMS,
		Verbose:      os.Getenv("HARMONY_VERBOSE") == "true",
		OutputFormat: os.Getenv("HARMONY_OUTPUT"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// projectPath resolves the project file path: positional argument if
// given, otherwise the configured one.
func projectPath(cfg *config.Config, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Project
}

// loadProject loads and validates the project file.
func loadProject(cfg *config.Config, args []string) (*project.Project, string, error) {
	path := projectPath(cfg, args)
	p, err := project.Load(path)
	if err != nil {
		return nil, path, err
	}
	return p, path, nil
}

// newEngine creates an engine configured from the project and CLI
// settings and loads the project into it.
func newEngine(cfg *config.Config, p *project.Project, logger *slog.Logger) (*engine.Engine, error) {
	eng := engine.New(engine.Config{
		SampleRate: p.SampleRate,
		BlockSize:  p.BlockSize,
		Glide:      time.Duration(cfg.GlideMS) * time.Millisecond,
		Logger:     logger,
	})
	if err := eng.LoadProject(p); err != nil {
		return nil, err
	}
	return eng, nil
}

// newResolver builds a resolver from the project's variables and
// resolves them.
func newResolver(p *project.Project) (*tuning.Resolver, error) {
	r := tuning.NewResolver()
	for name, expr := range p.Variables {
		if err := r.DefineExpr(name, expr); err != nil {
			return nil, err
		}
	}
	if err := r.Resolve(); err != nil {
		return nil, err
	}
	return r, nil
}

// openStore opens the session store, creating its directory and
// running migrations.
func openStore(cfg *config.Config) (*state.SQLiteStore, error) {
	stateDir := filepath.Dir(cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
