package engine

import (
	"sync/atomic"

	"github.com/maliciousblahaj/harmony-playground/internal/synth"
)

// UpdateKind identifies a control-path parameter change.
type UpdateKind uint8

const (
	// UpdateFrequency glides an oscillator to a new frequency
	UpdateFrequency UpdateKind = iota
	// UpdateGain sets an oscillator's base-2 gain
	UpdateGain
	// UpdateWaveform swaps an oscillator's wavetable
	UpdateWaveform
	// UpdateMasterGain sets the engine's base-2 master gain
	UpdateMasterGain
)

// Update is one parameter change handed from the control path to the render
// path. It is applied at the next block boundary.
type Update struct {
	Kind     UpdateKind
	Target   string // oscillator name; unused for UpdateMasterGain
	Value    float64
	Waveform synth.Waveform
}

// ControlQueue is a lock-free single-producer/single-consumer ring buffer of
// parameter updates. The control goroutine pushes, the render path pops at
// block boundaries; neither side blocks or allocates. A full ring rejects the
// push, which the producer handles by retrying after the next block.
type ControlQueue struct {
	buf  []Update
	mask uint64
	head atomic.Uint64 // next slot to read (consumer)
	tail atomic.Uint64 // next slot to write (producer)
}

// NewControlQueue creates a queue. Capacity is rounded up to a power of two.
func NewControlQueue(capacity int) *ControlQueue {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ControlQueue{
		buf:  make([]Update, size),
		mask: uint64(size - 1),
	}
}

// Push enqueues an update. Returns false if the queue is full.
// Must only be called from the single producer goroutine.
func (q *ControlQueue) Push(u Update) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}
	q.buf[tail&q.mask] = u
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues an update into u. Returns false when the queue is empty.
// Must only be called from the single consumer goroutine.
func (q *ControlQueue) Pop(u *Update) bool {
	head := q.head.Load()
	if head == q.tail.Load() {
		return false
	}
	*u = q.buf[head&q.mask]
	q.head.Store(head + 1)
	return true
}

// Len returns the number of pending updates.
func (q *ControlQueue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}
