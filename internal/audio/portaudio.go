package audio

import (
	"context"
	"errors"
	"fmt"

	pa "github.com/gordonklaus/portaudio"
)

// PortAudioBackend plays audio through the default PortAudio output
// device using blocking writes.
type PortAudioBackend struct {
	sampleRate int
	blockSize  int
}

// NewPortAudioBackend creates a backend for the given sample rate and
// block size. The device is not opened until Run.
func NewPortAudioBackend(sampleRate, blockSize int) *PortAudioBackend {
	return &PortAudioBackend{sampleRate: sampleRate, blockSize: blockSize}
}

// Run opens the default output stream and writes rendered blocks to it
// until ctx is cancelled.
func (b *PortAudioBackend) Run(ctx context.Context, render RenderFunc) error {
	if err := pa.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize portaudio: %w", err)
	}
	defer pa.Terminate()

	buf := make([]float32, b.blockSize)
	stream, err := pa.OpenDefaultStream(0, 1, float64(b.sampleRate), b.blockSize, &buf)
	if err != nil {
		return fmt.Errorf("failed to open output stream: %w", err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("failed to start output stream: %w", err)
	}
	defer stream.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		render(buf)
		if err := stream.Write(); err != nil {
			// An occasional underflow after a long control-path stall
			// is recoverable; keep playing.
			if errors.Is(err, pa.OutputUnderflowed) {
				continue
			}
			return fmt.Errorf("failed to write audio block: %w", err)
		}
	}
}
