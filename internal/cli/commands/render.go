package commands

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maliciousblahaj/harmony-playground/internal/audio"
	"github.com/maliciousblahaj/harmony-playground/internal/state"
)

// NewRenderCommand creates the render command.
func NewRenderCommand() *cobra.Command {
	var (
		out      string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render [project]",
		Short: "Render a project to a WAV file",
		Long: `Render the project offline to a mono 16-bit PCM WAV file.

Rendering runs block by block through the same scheduler as live
playback, just faster than real time.`,
		Example: `  # Render 5 seconds to drone.wav
  harmony render -o drone.wav

  # Render 30 seconds of a specific project
  harmony render songs/drone.yaml -o drone.wav -d 30s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args, out, duration)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output WAV path (default: project name with .wav)")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "Length of audio to render")

	return cmd
}

func runRender(cmd *cobra.Command, args []string, out string, duration time.Duration) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	logger := cmdCtx.Logger
	r := cmdCtx.Renderer

	if duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", duration)
	}

	p, path, err := loadProject(cfg, args)
	if err != nil {
		return err
	}

	if out == "" {
		out = strings.TrimSuffix(path, ".yaml")
		out = strings.TrimSuffix(out, ".yml") + ".wav"
	}

	eng, err := newEngine(cfg, p, logger)
	if err != nil {
		return describeResolveError(path, err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open state database: %w", err)
	}
	defer store.Close()

	sess, err := store.CreateSession(state.SessionKindRender, path, eng.SampleRate())
	if err != nil {
		return err
	}

	writer, f, err := audio.CreateWAV(out, eng.SampleRate())
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("rendering", "project", path, "out", out, "duration", duration, "session", sess.ID)

	totalFrames := int64(float64(eng.SampleRate()) * duration.Seconds())
	block := make([]float32, eng.BlockSize())

	renderErr := func() error {
		for rendered := int64(0); rendered < totalFrames; {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			n := int64(len(block))
			if remaining := totalFrames - rendered; remaining < n {
				n = remaining
			}
			eng.Render(block[:n])
			if err := writer.WriteBlock(block[:n]); err != nil {
				return err
			}
			rendered += n
		}
		return writer.Close()
	}()

	status := state.SessionStatusCompleted
	errMsg := ""
	if renderErr != nil {
		status = state.SessionStatusFailed
		errMsg = renderErr.Error()
	}
	if err := store.FinishSession(sess.ID, status, writer.Frames(), errMsg); err != nil {
		logger.Warn("failed to record session", "error", err)
	}

	if renderErr != nil {
		return renderErr
	}

	r.Success(fmt.Sprintf("wrote %s (%d frames, %s)", out, writer.Frames(), duration))
	return nil
}
