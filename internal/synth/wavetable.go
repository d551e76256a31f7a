// Package synth implements the oscillator bank: wavetable oscillators with
// phase accumulators and phase sync between oscillators.
package synth

import (
	"fmt"
	"math"
)

// WaveTableSize is the number of samples in one wavetable period.
const WaveTableSize = 1024

// Waveform identifies a wavetable shape.
type Waveform string

const (
	WaveformSine     Waveform = "sine"
	WaveformTriangle Waveform = "triangle"
	WaveformSquare   Waveform = "square"
	WaveformSaw      Waveform = "saw"
)

// ParseWaveform validates a waveform name from config or project files.
func ParseWaveform(s string) (Waveform, error) {
	switch Waveform(s) {
	case WaveformSine, WaveformTriangle, WaveformSquare, WaveformSaw:
		return Waveform(s), nil
	case "":
		return WaveformSine, nil
	}
	return "", fmt.Errorf("unknown waveform %q (expected sine, triangle, square or saw)", s)
}

// WaveTable holds one period of a waveform, sampled at WaveTableSize points.
type WaveTable struct {
	samples [WaveTableSize]float64
}

// NewWaveTable builds a table from a periodic function of period 1.
func NewWaveTable(f func(t float64) float64) *WaveTable {
	var table WaveTable
	for i := range table.samples {
		table.samples[i] = f(float64(i) / WaveTableSize)
	}
	return &table
}

// Tables for the built-in waveforms, shared by all oscillators.
var tables = map[Waveform]*WaveTable{
	WaveformSine: NewWaveTable(func(t float64) float64 {
		return math.Sin(t * 2 * math.Pi)
	}),
	WaveformTriangle: NewWaveTable(func(t float64) float64 {
		return 4*math.Abs(t+0.25-math.Floor(t+0.75)) - 1
	}),
	WaveformSquare: NewWaveTable(func(t float64) float64 {
		if t <= 0.5 {
			return 1
		}
		return -1
	}),
	WaveformSaw: NewWaveTable(func(t float64) float64 {
		return math.Mod(2*t+3, 2) - 1
	}),
}

// Table returns the shared table for a built-in waveform.
func Table(w Waveform) *WaveTable {
	if t, ok := tables[w]; ok {
		return t
	}
	return tables[WaveformSine]
}

// At returns the linearly interpolated sample for a phase in [0, 1).
func (w *WaveTable) At(phase float64) float64 {
	index := phase * WaveTableSize
	floor := int(index) % WaveTableSize
	next := (floor + 1) % WaveTableSize
	return lerp(w.samples[floor], w.samples[next], index-math.Floor(index))
}

func lerp(s0, s1, t float64) float64 {
	return (1-t)*s0 + t*s1
}
