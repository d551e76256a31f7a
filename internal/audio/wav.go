package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const wavHeaderSize = 44

// WAVWriter writes mono 16-bit PCM WAV data. The header is written
// with placeholder sizes and patched on Close, so the destination must
// be seekable.
type WAVWriter struct {
	w          io.WriteSeeker
	sampleRate int
	frames     int64
	pcm        []byte
}

// NewWAVWriter writes the WAV header to w and returns a writer ready
// to accept sample blocks.
func NewWAVWriter(w io.WriteSeeker, sampleRate int) (*WAVWriter, error) {
	ww := &WAVWriter{w: w, sampleRate: sampleRate}
	if err := ww.writeHeader(); err != nil {
		return nil, fmt.Errorf("failed to write wav header: %w", err)
	}
	return ww, nil
}

// CreateWAV creates the file at path and returns a WAVWriter on it
// along with the file, which the caller owns and must close after the
// writer.
func CreateWAV(path string, sampleRate int) (*WAVWriter, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create wav file: %w", err)
	}
	ww, err := NewWAVWriter(f, sampleRate)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return ww, f, nil
}

// WriteBlock appends a block of samples, clipped to [-1, 1].
func (ww *WAVWriter) WriteBlock(samples []float32) error {
	if need := 2 * len(samples); cap(ww.pcm) < need {
		ww.pcm = make([]byte, need)
	}
	n := EncodePCM16(ww.pcm[:2*len(samples)], samples)
	if _, err := ww.w.Write(ww.pcm[:n]); err != nil {
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	ww.frames += int64(len(samples))
	return nil
}

// Frames returns the number of sample frames written so far.
func (ww *WAVWriter) Frames() int64 {
	return ww.frames
}

// Close patches the header sizes. It does not close the underlying
// writer.
func (ww *WAVWriter) Close() error {
	if _, err := ww.w.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek to wav header: %w", err)
	}
	if err := ww.writeHeader(); err != nil {
		return fmt.Errorf("failed to finalize wav header: %w", err)
	}
	if _, err := ww.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("failed to seek past wav data: %w", err)
	}
	return nil
}

func (ww *WAVWriter) writeHeader() error {
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataSize := uint32(ww.frames * 2)
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(ww.sampleRate) * uint32(blockAlign)

	var hdr [wavHeaderSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataSize)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(hdr[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], channels)
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(ww.sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataSize)

	_, err := ww.w.Write(hdr[:])
	return err
}
