package audio

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePCM16(t *testing.T) {
	tests := []struct {
		name    string
		samples []float32
		want    []int16
	}{
		{
			name:    "silence",
			samples: []float32{0, 0},
			want:    []int16{0, 0},
		},
		{
			name:    "full scale",
			samples: []float32{1, -1},
			want:    []int16{32767, -32767},
		},
		{
			name:    "half scale",
			samples: []float32{0.5},
			want:    []int16{16383},
		},
		{
			name:    "clips out of range",
			samples: []float32{1.5, -2},
			want:    []int16{32767, -32767},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, 2*len(tt.samples))
			n := EncodePCM16(dst, tt.samples)
			require.Equal(t, 2*len(tt.samples), n)

			for i, want := range tt.want {
				got := int16(binary.LittleEndian.Uint16(dst[2*i:]))
				assert.Equal(t, want, got, "sample %d", i)
			}
		})
	}
}

func TestWAVWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")

	ww, f, err := CreateWAV(path, 48000)
	require.NoError(t, err)

	block := make([]float32, 256)
	for i := range block {
		block[i] = 0.25
	}
	require.NoError(t, ww.WriteBlock(block))
	require.NoError(t, ww.WriteBlock(block))
	assert.Equal(t, int64(512), ww.Frames())

	require.NoError(t, ww.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize+512*2)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint32(36+1024), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "channels")
	assert.Equal(t, uint32(48000), binary.LittleEndian.Uint32(data[24:28]), "sample rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]), "bit depth")
	assert.Equal(t, uint32(1024), binary.LittleEndian.Uint32(data[40:44]), "data size")

	// First sample should decode back to ~0.25.
	first := int16(binary.LittleEndian.Uint16(data[wavHeaderSize:]))
	assert.InDelta(t, 0.25, float64(first)/32767, 1e-4)
}

func TestWAVWriter_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.wav")

	ww, f, err := CreateWAV(path, 44100)
	require.NoError(t, err)
	require.NoError(t, ww.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, wavHeaderSize)
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[40:44]))
}

func TestBlockReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	blocks := 0
	r := &blockReader{
		ctx: ctx,
		render: func(dst []float32) {
			for i := range dst {
				dst[i] = 0.5
			}
			blocks++
		},
		block: make([]float32, 4),
		pcm:   make([]byte, 8),
	}

	// Small destination forces reads to straddle block boundaries.
	buf := make([]byte, 6)
	total := 0
	for total < 16 {
		n, err := r.Read(buf)
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, 2, blocks)

	cancel()
	_, err := r.Read(buf)
	assert.ErrorIs(t, err, io.EOF)
}
