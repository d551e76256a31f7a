package engine

import (
	"math"
	"sync/atomic"

	"github.com/maliciousblahaj/harmony-playground/internal/synth"
)

// Scheduler drives the oscillator bank at the audio rate, producing fixed
// size sample blocks. The render path reads a snapshot pointer and drains the
// control queue only at block boundaries; inside a block it never allocates,
// locks, or does I/O. Structural changes (different oscillators or sync
// relations) arrive as a whole replacement bank via SwapBank.
type Scheduler struct {
	blockSize    int
	glideSamples int
	queue        *ControlQueue
	notifier     *Notifier

	bank      atomic.Pointer[synth.Bank]
	masterMul atomic.Uint64 // float64 bits
	masterExp atomic.Uint64 // float64 bits, raw exponent for reporting

	frames         atomic.Uint64
	blocks         atomic.Uint64
	boundariesBase atomic.Uint64 // wraps accumulated by replaced banks

	scratch Update
}

// Stats is a point-in-time snapshot of render progress.
type Stats struct {
	Frames          uint64
	Blocks          uint64
	CycleBoundaries uint64
	PendingUpdates  int
}

// NewScheduler creates a scheduler over a finalized bank.
func NewScheduler(bank *synth.Bank, blockSize, glideSamples int, masterGain float64, queue *ControlQueue, notifier *Notifier) *Scheduler {
	s := &Scheduler{
		blockSize:    blockSize,
		glideSamples: glideSamples,
		queue:        queue,
		notifier:     notifier,
	}
	s.bank.Store(bank)
	s.SetMasterGain(masterGain)
	return s
}

// BlockSize returns the fixed block size in samples.
func (s *Scheduler) BlockSize() int { return s.blockSize }

// MasterGain returns the current master gain exponent.
func (s *Scheduler) MasterGain() float64 {
	return math.Float64frombits(s.masterExp.Load())
}

// SetMasterGain sets the base-2 master gain, clamped to at most 0.
// Safe to call from the control path; the render path picks it up on the
// next block.
func (s *Scheduler) SetMasterGain(gain float64) {
	s.masterExp.Store(math.Float64bits(gain))
	s.masterMul.Store(math.Float64bits(math.Exp2(math.Min(gain, 0))))
}

// SwapBank replaces the bank snapshot. The render path switches to the new
// bank at its next block boundary. The replaced bank's boundary count is
// folded into the running total.
func (s *Scheduler) SwapBank(bank *synth.Bank) {
	old := s.bank.Swap(bank)
	if old != nil {
		s.boundariesBase.Add(old.Wraps())
	}
}

// Bank returns the current bank snapshot. Control-path use only; the render
// path owns the oscillators' mutable state.
func (s *Scheduler) Bank() *synth.Bank {
	return s.bank.Load()
}

// Render fills dst with the next block of samples. Pending parameter updates
// are applied first, so every change lands exactly on a block boundary.
func (s *Scheduler) Render(dst []float32) {
	bank := s.bank.Load()
	s.applyPending(bank)

	mul := math.Float64frombits(s.masterMul.Load())
	for i := range dst {
		dst[i] = float32(bank.Tick() * mul)
	}

	s.frames.Add(uint64(len(dst)))
	s.blocks.Add(1)
	s.notifier.Broadcast()
}

// applyPending drains the control queue into the bank. Frequency changes
// glide rather than jump, so a sounding oscillator never clicks.
func (s *Scheduler) applyPending(bank *synth.Bank) {
	for s.queue.Pop(&s.scratch) {
		u := &s.scratch
		switch u.Kind {
		case UpdateMasterGain:
			s.SetMasterGain(u.Value)
			continue
		}
		osc, ok := bank.Get(u.Target)
		if !ok {
			// The update was queued against a bank that has since been
			// swapped out; nothing to apply.
			continue
		}
		switch u.Kind {
		case UpdateFrequency:
			osc.GlideTo(u.Value, s.glideSamples)
		case UpdateGain:
			osc.SetGain(u.Value)
		case UpdateWaveform:
			osc.SetWaveform(u.Waveform)
		}
	}
}

// Stats returns a snapshot of render progress.
func (s *Scheduler) Stats() Stats {
	bank := s.bank.Load()
	return Stats{
		Frames:          s.frames.Load(),
		Blocks:          s.blocks.Load(),
		CycleBoundaries: s.boundariesBase.Load() + bank.Wraps(),
		PendingUpdates:  s.queue.Len(),
	}
}
