package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maliciousblahaj/harmony-playground/internal/audio"
	"github.com/maliciousblahaj/harmony-playground/internal/project"
	"github.com/maliciousblahaj/harmony-playground/internal/state"
)

// NewPlayCommand creates the play command.
func NewPlayCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "play [project]",
		Short: "Play a project live",
		Long: `Resolve the project and stream it to the audio device until
interrupted.

The project file is watched while playing: edits are re-resolved off
the render path and applied at the next block boundary, with frequency
changes gliding in. A broken edit is rejected and the last good state
keeps playing. Ctrl-C stops between blocks.`,
		Example: `  # Play the project in the current directory
  harmony play

  # Play a specific file through oto
  harmony play songs/drone.yaml --backend oto`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, args)
		},
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger
	r := cmdCtx.Renderer

	p, path, err := loadProject(cfg, args)
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg, p, logger)
	if err != nil {
		return describeResolveError(path, err)
	}

	var backend audio.Backend
	switch cfg.Backend {
	case "oto":
		backend = audio.NewOtoBackend(eng.SampleRate(), eng.BlockSize())
	default:
		backend = audio.NewPortAudioBackend(eng.SampleRate(), eng.BlockSize())
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer store.Close()

	sess, err := store.CreateSession(state.SessionKindPlay, path, eng.SampleRate())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.Printf("Playing %s (%d Hz, %s backend). Ctrl-C to stop.\n", path, eng.SampleRate(), cfg.Backend)
	logger.Info("starting playback", "project", path, "backend", cfg.Backend, "session", sess.ID)

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return backend.Run(egctx, eng.Render)
	})

	eg.Go(func() error {
		return project.Watch(egctx, logger, path, func(updated *project.Project) {
			if err := eng.ApplyProject(updated); err != nil {
				logger.Warn("rejected project edit", "error", err)
				return
			}
			logger.Info("applied project edit", "project", path)
		})
	})

	playErr := eg.Wait()
	if errors.Is(playErr, context.Canceled) {
		playErr = nil
	}

	stats := eng.Stats()
	status := state.SessionStatusCompleted
	errMsg := ""
	if playErr != nil {
		status = state.SessionStatusFailed
		errMsg = playErr.Error()
	}
	if err := store.FinishSession(sess.ID, status, int64(stats.Frames), errMsg); err != nil {
		logger.Warn("failed to record session", "error", err)
	}

	if playErr != nil {
		return playErr
	}

	r.Printf("Stopped after %d frames (%d cycle boundaries).\n", stats.Frames, stats.CycleBoundaries)
	return nil
}
