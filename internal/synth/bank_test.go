package synth

import (
	"math"
	"testing"

	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBank_AddAndGet(t *testing.T) {
	b := NewBank(testSampleRate)

	_, err := b.Add("root", WaveformSine, 220, 0)
	require.NoError(t, err)
	_, err = b.Add("root", WaveformSine, 330, 0)
	assert.Error(t, err, "duplicate names rejected")

	osc, ok := b.Get("root")
	require.True(t, ok)
	assert.Equal(t, 220.0, osc.Frequency())

	_, ok = b.Get("missing")
	assert.False(t, ok)
}

func TestBank_Tick_SumsOscillators(t *testing.T) {
	b := NewBank(testSampleRate)
	_, err := b.Add("a", WaveformSquare, 440, 0)
	require.NoError(t, err)
	_, err = b.Add("b", WaveformSquare, 440, 0)
	require.NoError(t, err)
	require.NoError(t, b.Finalize())

	// Two identical square waves in phase sum to +-2
	for i := 0; i < 100; i++ {
		assert.InDelta(t, 2, math.Abs(b.Tick()), 1e-12)
	}
}

func TestBank_Sync_Validation(t *testing.T) {
	b := NewBank(testSampleRate)
	b.Add("a", WaveformSine, 220, 0)
	b.Add("b", WaveformSine, 330, 0)

	assert.Error(t, b.Sync("missing", "a", 0))
	assert.Error(t, b.Sync("a", "missing", 0))
	assert.Error(t, b.Sync("a", "b", 1.5))
	assert.ErrorIs(t, b.Sync("a", "a", 0), tuning.ErrCyclicDependency)
	assert.NoError(t, b.Sync("a", "b", 0.5))
}

func TestBank_Finalize_SyncCycle(t *testing.T) {
	b := NewBank(testSampleRate)
	b.Add("a", WaveformSine, 220, 0)
	b.Add("b", WaveformSine, 330, 0)
	b.Add("c", WaveformSine, 440, 0)

	require.NoError(t, b.Sync("b", "a", 0))
	require.NoError(t, b.Sync("c", "b", 0))
	require.NoError(t, b.Sync("a", "c", 0))

	err := b.Finalize()
	require.Error(t, err)
	assert.ErrorIs(t, err, tuning.ErrCyclicDependency)
}

func TestBank_Sync_PhaseLock(t *testing.T) {
	// Master at 220 Hz, dependent at 330 Hz (3:2). At every master cycle
	// boundary the dependent is re-seated at its offset plus the master's
	// overshoot scaled to the dependent's rate.
	b := NewBank(testSampleRate)
	master, err := b.Add("m", WaveformSine, 220, 0)
	require.NoError(t, err)
	dep, err := b.Add("d", WaveformSine, 330, 0)
	require.NoError(t, err)
	require.NoError(t, b.Sync("d", "m", 0.25))
	require.NoError(t, b.Finalize())

	boundaries := 0
	for i := 0; i < testSampleRate; i++ {
		b.Tick()
		if master.Wrapped() {
			boundaries++
			// Dependent was re-seated before its own advance this sample
			want := 0.25 + master.Overshoot()*330.0/220.0 + 330.0/testSampleRate
			want -= math.Floor(want)
			assert.InDelta(t, want, dep.Phase(), 1e-9)
		}
	}
	assert.InDelta(t, 220, float64(boundaries), 1.5)
}

func TestBank_Sync_NoDriftLongRun(t *testing.T) {
	// Phase error at master boundaries stays bounded near zero regardless of
	// run length, even under frequency modulation of the master.
	b := NewBank(testSampleRate)
	master, err := b.Add("m", WaveformSine, 220, 0)
	require.NoError(t, err)
	dep, err := b.Add("d", WaveformSine, 440, 0)
	require.NoError(t, err)
	require.NoError(t, b.Sync("d", "m", 0))
	require.NoError(t, b.Finalize())

	const seconds = 20
	for i := 0; i < seconds*testSampleRate; i++ {
		if i == 5*testSampleRate {
			master.GlideTo(247.5, testSampleRate/100)
		}
		b.Tick()
		if master.Wrapped() {
			// Error relative to the ideal re-seated phase, one sample after
			// the boundary.
			ideal := master.Overshoot()*dep.Frequency()/master.Frequency() + dep.Frequency()/testSampleRate
			ideal -= math.Floor(ideal)
			diff := math.Abs(dep.Phase() - ideal)
			if diff > 0.5 {
				diff = 1 - diff
			}
			require.Less(t, diff, 1e-4, "drift at sample %d", i)
		}
	}
}

func TestBank_Finalize_OrdersMastersFirst(t *testing.T) {
	// Chained sync: c locks to b locks to a. Regardless of insertion order,
	// a boundary in a propagates to b and c within the same sample.
	b := NewBank(testSampleRate)
	b.Add("c", WaveformSine, 880, 0)
	b.Add("b", WaveformSine, 440, 0)
	b.Add("a", WaveformSine, 12000, 0) // wraps every 4 samples
	require.NoError(t, b.Sync("b", "a", 0))
	require.NoError(t, b.Sync("c", "b", 0))
	require.NoError(t, b.Finalize())

	oscA, _ := b.Get("a")
	oscB, _ := b.Get("b")
	locked := false
	for i := 0; i < 40; i++ {
		b.Tick()
		if oscA.Wrapped() {
			locked = true
			// b was reset this sample: phase close to just its own advance
			assert.Less(t, oscB.Phase(), 2*440.0/testSampleRate+0.01)
		}
	}
	assert.True(t, locked)
}

func TestBank_SetWaveformAll(t *testing.T) {
	b := NewBank(testSampleRate)
	b.Add("a", WaveformSine, 220, 0)
	b.Add("b", WaveformSquare, 330, 0)

	b.SetWaveformAll(WaveformSaw)
	for _, name := range b.Names() {
		osc, _ := b.Get(name)
		assert.Equal(t, WaveformSaw, osc.Waveform())
	}
}
