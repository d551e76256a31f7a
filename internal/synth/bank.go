package synth

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/maliciousblahaj/harmony-playground/internal/dag"
	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
)

// SyncRelation phase-locks a dependent oscillator to a master: whenever the
// master crosses a cycle boundary, the dependent's phase is forced to Offset.
type SyncRelation struct {
	Oscillator string
	Master     string
	Offset     float64 // phase in [0, 1)
}

// Bank is a fixed set of oscillators advanced together, with sync relations
// applied at master cycle boundaries. Build the bank up with Add and Sync,
// then call Finalize before rendering; the render path then runs without
// allocation or error checks.
type Bank struct {
	sampleRate int
	oscs       map[string]*Oscillator
	syncs      map[string]SyncRelation // keyed by dependent

	// Established by Finalize: masters ordered before their dependents
	order   []*Oscillator
	masters []*Oscillator // masters[i] drives order[i], nil when unsynced
	offsets []float64

	wraps atomic.Uint64
}

// NewBank creates an empty bank at the given sample rate.
func NewBank(sampleRate int) *Bank {
	return &Bank{
		sampleRate: sampleRate,
		oscs:       make(map[string]*Oscillator),
		syncs:      make(map[string]SyncRelation),
	}
}

// SampleRate returns the bank's sample rate.
func (b *Bank) SampleRate() int { return b.sampleRate }

// Add creates an oscillator and adds it to the bank.
func (b *Bank) Add(name string, waveform Waveform, frequency, gain float64) (*Oscillator, error) {
	if _, exists := b.oscs[name]; exists {
		return nil, fmt.Errorf("oscillator %q already exists", name)
	}
	osc := NewOscillator(name, waveform, b.sampleRate, frequency, gain)
	b.oscs[name] = osc
	b.order = nil
	return osc, nil
}

// Get returns an oscillator by name.
func (b *Bank) Get(name string) (*Oscillator, bool) {
	osc, ok := b.oscs[name]
	return osc, ok
}

// Names returns all oscillator names, sorted.
func (b *Bank) Names() []string {
	names := make([]string, 0, len(b.oscs))
	for name := range b.oscs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Relations returns the sync relations, sorted by dependent.
func (b *Bank) Relations() []SyncRelation {
	rels := make([]SyncRelation, 0, len(b.syncs))
	for _, rel := range b.syncs {
		rels = append(rels, rel)
	}
	sort.Slice(rels, func(i, j int) bool { return rels[i].Oscillator < rels[j].Oscillator })
	return rels
}

// Sync phase-locks dependent to master with the given phase offset.
func (b *Bank) Sync(dependent, master string, offset float64) error {
	if _, ok := b.oscs[dependent]; !ok {
		return fmt.Errorf("oscillator %q does not exist", dependent)
	}
	if _, ok := b.oscs[master]; !ok {
		return fmt.Errorf("sync master %q does not exist", master)
	}
	if dependent == master {
		return &tuning.CycleError{Path: []string{dependent, dependent}}
	}
	if offset < 0 || offset >= 1 {
		return fmt.Errorf("sync offset %v out of range [0, 1)", offset)
	}
	b.syncs[dependent] = SyncRelation{Oscillator: dependent, Master: master, Offset: offset}
	b.order = nil
	return nil
}

// SetWaveformAll swaps every oscillator to the given waveform.
func (b *Bank) SetWaveformAll(w Waveform) {
	for _, osc := range b.oscs {
		osc.SetWaveform(w)
	}
}

// Finalize validates the sync graph and fixes the advance order so that
// masters tick before their dependents. Must be called before Tick.
func (b *Bank) Finalize() error {
	graph := dag.New()
	for name := range b.oscs {
		graph.AddNode(name)
	}
	for _, rel := range b.syncs {
		if err := graph.AddEdge(rel.Master, rel.Oscillator); err != nil {
			return err
		}
	}

	if hasCycle, path := graph.HasCycle(); hasCycle {
		return &tuning.CycleError{Path: path}
	}

	order, err := graph.TopologicalSort()
	if err != nil {
		return err
	}

	b.order = make([]*Oscillator, len(order))
	b.masters = make([]*Oscillator, len(order))
	b.offsets = make([]float64, len(order))
	for i, name := range order {
		b.order[i] = b.oscs[name]
		if rel, ok := b.syncs[name]; ok {
			b.masters[i] = b.oscs[rel.Master]
			b.offsets[i] = rel.Offset
		}
	}
	return nil
}

// Tick advances every oscillator by one sample and returns their sum.
// Masters advance first; when a master wraps, its dependents are re-seated at
// their offset plus the master's overshoot scaled to the dependent's rate, so
// the lock holds exactly even when the boundary falls between samples.
func (b *Bank) Tick() float64 {
	var sum float64
	for i, osc := range b.order {
		if m := b.masters[i]; m != nil && m.Wrapped() {
			overshoot := m.Overshoot() * osc.Frequency() / m.Frequency()
			osc.ResetPhase(b.offsets[i] + overshoot)
		}
		sum += osc.Tick()
		if osc.Wrapped() {
			b.wraps.Add(1)
		}
	}
	return sum
}

// Wraps returns the total number of cycle boundaries crossed since the bank
// was created. Safe to read from outside the render path.
func (b *Bank) Wraps() uint64 { return b.wraps.Load() }

// Len returns the number of oscillators in the bank.
func (b *Bank) Len() int { return len(b.oscs) }
