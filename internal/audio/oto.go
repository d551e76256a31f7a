package audio

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hajimehoshi/oto/v2"
)

// OtoBackend plays audio through the oto library, which needs no cgo
// audio device bindings. It is the fallback when PortAudio is not
// available on the host.
type OtoBackend struct {
	sampleRate int
	blockSize  int
}

// NewOtoBackend creates a backend for the given sample rate and block
// size. The audio context is not created until Run.
func NewOtoBackend(sampleRate, blockSize int) *OtoBackend {
	return &OtoBackend{sampleRate: sampleRate, blockSize: blockSize}
}

// Run creates an oto player that pulls rendered blocks as 16-bit PCM
// and plays until ctx is cancelled.
func (b *OtoBackend) Run(ctx context.Context, render RenderFunc) error {
	otoCtx, ready, err := oto.NewContext(b.sampleRate, 1, 2)
	if err != nil {
		return fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	src := &blockReader{
		ctx:    ctx,
		render: render,
		block:  make([]float32, b.blockSize),
		pcm:    make([]byte, b.blockSize*2),
	}

	player := otoCtx.NewPlayer(src)
	player.Play()
	defer player.Close()

	<-ctx.Done()
	// Let the device drain its buffer before tearing down.
	for player.IsPlaying() && player.UnplayedBufferSize() > 0 {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

// blockReader adapts a RenderFunc to the io.Reader oto consumes,
// converting each rendered block to little-endian 16-bit PCM.
type blockReader struct {
	ctx    context.Context
	render RenderFunc
	block  []float32
	pcm    []byte
	pos    int
	n      int
}

func (r *blockReader) Read(p []byte) (int, error) {
	if r.ctx.Err() != nil {
		return 0, io.EOF
	}

	if r.pos >= r.n {
		r.render(r.block)
		r.n = EncodePCM16(r.pcm, r.block)
		r.pos = 0
	}

	n := copy(p, r.pcm[r.pos:r.n])
	r.pos += n
	return n, nil
}

// EncodePCM16 writes samples into dst as little-endian signed 16-bit
// PCM, clipping to [-1, 1], and returns the number of bytes written.
// dst must hold at least 2*len(samples) bytes.
func EncodePCM16(dst []byte, samples []float32) int {
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		dst[2*i] = byte(v)
		dst[2*i+1] = byte(v >> 8)
	}
	return 2 * len(samples)
}
