package synth

import "math"

// Oscillator is a phase-accumulating wavetable signal generator. The phase
// lives in [0, 1) and advances by frequency/sampleRate per sample; wraps are
// handled by subtraction so the accumulator never grows without bound.
type Oscillator struct {
	name            string
	waveform        Waveform
	table           *WaveTable
	sampleRateRecip float64

	frequency float64
	gain      float64 // base-2, clamped to <= 0
	gainMul   float64

	// Linear glide toward a target frequency, in samples
	glideTarget float64
	glideStep   float64
	glideLeft   int

	phase float64

	// Cycle boundary state for the most recent Tick
	wrapped   bool
	overshoot float64 // phase past the boundary, in cycles
}

// NewOscillator creates an oscillator at the given frequency.
// Gain is a base-2 exponent; 0 is unity, -1 halves the amplitude.
func NewOscillator(name string, waveform Waveform, sampleRate int, frequency, gain float64) *Oscillator {
	o := &Oscillator{
		name:            name,
		waveform:        waveform,
		table:           Table(waveform),
		sampleRateRecip: 1 / float64(sampleRate),
		frequency:       frequency,
	}
	o.SetGain(gain)
	return o
}

// Name returns the oscillator's name.
func (o *Oscillator) Name() string { return o.name }

// Frequency returns the current frequency in Hz.
func (o *Oscillator) Frequency() float64 { return o.frequency }

// Phase returns the current phase in [0, 1).
func (o *Oscillator) Phase() float64 { return o.phase }

// Gain returns the base-2 gain exponent.
func (o *Oscillator) Gain() float64 { return o.gain }

// Waveform returns the oscillator's waveform.
func (o *Oscillator) Waveform() Waveform { return o.waveform }

// SetFrequency changes the frequency immediately, cancelling any glide.
func (o *Oscillator) SetFrequency(hz float64) {
	o.frequency = hz
	o.glideLeft = 0
}

// GlideTo ramps the frequency linearly to hz over the given number of
// samples, avoiding the discontinuity of an instant jump.
func (o *Oscillator) GlideTo(hz float64, samples int) {
	if samples <= 0 || hz == o.frequency {
		o.SetFrequency(hz)
		return
	}
	o.glideTarget = hz
	o.glideStep = (hz - o.frequency) / float64(samples)
	o.glideLeft = samples
}

// SetGain sets the base-2 gain exponent, clamped to at most 0.
func (o *Oscillator) SetGain(gain float64) {
	o.gain = gain
	o.gainMul = math.Exp2(math.Min(gain, 0))
}

// SetWaveform swaps the wavetable.
func (o *Oscillator) SetWaveform(w Waveform) {
	o.waveform = w
	o.table = Table(w)
}

// ResetPhase forces the phase accumulator to the given value, wrapped into
// [0, 1). Used by sync when a master crosses a cycle boundary.
func (o *Oscillator) ResetPhase(phase float64) {
	o.phase = phase - math.Floor(phase)
}

// Tick produces the next sample and advances the phase. After Tick, Wrapped
// reports whether the accumulator crossed a cycle boundary during this
// sample, and Overshoot how far past the boundary it landed.
func (o *Oscillator) Tick() float64 {
	sample := o.table.At(o.phase) * o.gainMul

	if o.glideLeft > 0 {
		o.frequency += o.glideStep
		o.glideLeft--
		if o.glideLeft == 0 {
			// Land exactly on target, shedding float accumulation error
			o.frequency = o.glideTarget
		}
	}

	o.phase += o.frequency * o.sampleRateRecip
	if o.phase >= 1 {
		o.phase -= math.Floor(o.phase)
		o.wrapped = true
		o.overshoot = o.phase
	} else {
		o.wrapped = false
		o.overshoot = 0
	}

	return sample
}

// Wrapped reports whether the last Tick crossed a cycle boundary.
func (o *Oscillator) Wrapped() bool { return o.wrapped }

// Overshoot returns the phase past the last cycle boundary, in cycles.
func (o *Oscillator) Overshoot() float64 { return o.overshoot }
