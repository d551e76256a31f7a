// Package audio drives rendered sample blocks to an output: a sound
// device for live playback or a WAV file for offline rendering.
package audio

import "context"

// RenderFunc fills dst with the next block of mono samples in [-1, 1].
// It is called from the output loop; implementations must not block.
type RenderFunc func(dst []float32)

// Backend plays rendered audio until the context is cancelled.
type Backend interface {
	// Run repeatedly calls render for the next block and writes it to
	// the output. It returns when ctx is cancelled or the output fails.
	Run(ctx context.Context, render RenderFunc) error
}
