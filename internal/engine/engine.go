// Package engine ties the resolver, oscillator bank, and render scheduler
// together. The control side (CLI, project reload) mutates state here; the
// render side only ever sees immutable bank snapshots plus a lock-free queue
// of parameter updates.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maliciousblahaj/harmony-playground/internal/project"
	"github.com/maliciousblahaj/harmony-playground/internal/synth"
	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
)

// Defaults applied when config or project files leave settings unset.
const (
	DefaultSampleRate = 48000
	DefaultBlockSize  = 256
	DefaultGlide      = 10 * time.Millisecond
	DefaultMasterGain = -2.0

	controlQueueCapacity = 256
)

// Config holds engine configuration.
type Config struct {
	// SampleRate in Hz
	SampleRate int
	// BlockSize is the number of samples per rendered block
	BlockSize int
	// Glide is the ramp time for frequency changes
	Glide time.Duration
	// MasterGain is the base-2 master gain used when a project sets none
	MasterGain float64
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine orchestrates resolution and rendering for one project.
type Engine struct {
	logger       *slog.Logger
	sampleRate   int
	blockSize    int
	glideSamples int
	masterGain   float64

	queue    *ControlQueue
	notifier *Notifier
	sched    *Scheduler

	mu        sync.Mutex // guards the control-side state below
	resolver  *tuning.Resolver
	proj      *project.Project
	varVoices map[string][]string // variable name -> oscillators voicing it
}

// New creates an engine. Zero-value config fields fall back to the defaults.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	if cfg.Glide <= 0 {
		cfg.Glide = DefaultGlide
	}
	if cfg.MasterGain == 0 {
		cfg.MasterGain = DefaultMasterGain
	}

	glideSamples := int(float64(cfg.SampleRate) * cfg.Glide.Seconds())

	logger.Debug("initializing engine",
		"sample_rate", cfg.SampleRate,
		"block_size", cfg.BlockSize,
		"glide_samples", glideSamples)

	return &Engine{
		logger:       logger,
		sampleRate:   cfg.SampleRate,
		blockSize:    cfg.BlockSize,
		glideSamples: glideSamples,
		masterGain:   cfg.MasterGain,
		queue:        NewControlQueue(controlQueueCapacity),
		notifier:     NewNotifier(),
	}
}

// SampleRate returns the engine sample rate in Hz.
func (e *Engine) SampleRate() int { return e.sampleRate }

// BlockSize returns the render block size in samples.
func (e *Engine) BlockSize() int { return e.blockSize }

// Notifier returns the block-boundary notifier.
func (e *Engine) Notifier() *Notifier { return e.notifier }

// LoadProject resolves the project and installs a freshly built bank. On the
// first call it creates the scheduler; afterwards the new bank is swapped in
// at the next block boundary. All oscillator phases restart at zero.
func (e *Engine) LoadProject(p *project.Project) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(p)
}

func (e *Engine) loadLocked(p *project.Project) error {
	resolver, err := resolve(p)
	if err != nil {
		return err
	}

	bank, err := buildBank(p, resolver, e.sampleRate)
	if err != nil {
		return err
	}

	masterGain := e.masterGain
	if p.MasterGain != nil {
		masterGain = *p.MasterGain
	}

	if e.sched == nil {
		e.sched = NewScheduler(bank, e.blockSize, e.glideSamples, masterGain, e.queue, e.notifier)
	} else {
		e.sched.SwapBank(bank)
		e.sched.SetMasterGain(masterGain)
	}

	e.resolver = resolver
	e.proj = p
	e.varVoices = voiceMap(p)

	e.logger.Info("project loaded",
		"variables", len(p.Variables),
		"oscillators", len(p.Oscillators))
	return nil
}

// ApplyProject applies a changed project during playback. Parameter-level
// changes (variable values, gains, waveforms, master gain) go through the
// control queue and land at block boundaries with frequency glides.
// Structural changes (oscillators or sync relations added, removed, or
// rewired) rebuild the bank, restarting phases.
func (e *Engine) ApplyProject(p *project.Project) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.proj == nil || e.sched == nil {
		return e.loadLocked(p)
	}

	if p.SampleRate != 0 && p.SampleRate != e.sampleRate {
		e.logger.Warn("sample rate change requires restart, ignoring",
			"current", e.sampleRate, "requested", p.SampleRate)
	}
	if p.BlockSize != 0 && p.BlockSize != e.blockSize {
		e.logger.Warn("block size change requires restart, ignoring",
			"current", e.blockSize, "requested", p.BlockSize)
	}

	if !sameStructure(e.proj, p) {
		e.logger.Info("project structure changed, rebuilding bank")
		return e.loadLocked(p)
	}

	resolver, err := resolve(p)
	if err != nil {
		return err
	}

	// Diff parameters oscillator by oscillator
	old := indexOscillators(e.proj)
	for _, osc := range p.Oscillators {
		prev := old[osc.Name]

		hz, _ := resolver.Frequency(osc.Variable)
		prevHz, _ := e.resolver.Frequency(prev.Variable)
		if hz != prevHz {
			e.push(Update{Kind: UpdateFrequency, Target: osc.Name, Value: hz})
		}
		if osc.Gain != prev.Gain {
			e.push(Update{Kind: UpdateGain, Target: osc.Name, Value: osc.Gain})
		}

		wf, err := effectiveWaveform(p, osc)
		if err != nil {
			return err
		}
		prevWf, err := effectiveWaveform(e.proj, prev)
		if err != nil {
			return err
		}
		if wf != prevWf {
			e.push(Update{Kind: UpdateWaveform, Target: osc.Name, Waveform: wf})
		}
	}

	masterGain := e.masterGain
	if p.MasterGain != nil {
		masterGain = *p.MasterGain
	}
	if masterGain != e.sched.MasterGain() {
		e.push(Update{Kind: UpdateMasterGain, Value: masterGain})
	}

	e.resolver = resolver
	e.proj = p
	e.varVoices = voiceMap(p)
	return nil
}

// SetVariable changes a literal variable and glides every affected
// oscillator to its recomputed frequency.
func (e *Engine) SetVariable(name string, hz float64) ([]tuning.Change, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resolver == nil {
		return nil, fmt.Errorf("no project loaded")
	}

	changes, err := e.resolver.SetLiteral(name, hz)
	if err != nil {
		return nil, err
	}

	for _, change := range changes {
		for _, oscName := range e.varVoices[change.Name] {
			e.push(Update{Kind: UpdateFrequency, Target: oscName, Value: change.Frequency})
		}
	}
	return changes, nil
}

// Render fills dst with the next block of samples. A project must be loaded.
func (e *Engine) Render(dst []float32) {
	e.sched.Render(dst)
}

// Stats returns a snapshot of render progress.
func (e *Engine) Stats() Stats {
	if e.sched == nil {
		return Stats{}
	}
	return e.sched.Stats()
}

// Frequencies returns the resolved frequency of every variable.
func (e *Engine) Frequencies() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.resolver == nil {
		return nil
	}
	return e.resolver.Frequencies()
}

func (e *Engine) push(u Update) {
	if !e.queue.Push(u) {
		// The ring holds far more updates than one reload can generate, so a
		// full queue means the render path has stalled.
		e.logger.Warn("control queue full, dropping update", "target", u.Target)
	}
}

// resolve builds and resolves a resolver from the project's variables.
func resolve(p *project.Project) (*tuning.Resolver, error) {
	resolver := tuning.NewResolver()
	for name, expr := range p.Variables {
		if err := resolver.DefineExpr(name, expr); err != nil {
			return nil, err
		}
	}
	if err := resolver.Resolve(); err != nil {
		return nil, err
	}
	return resolver, nil
}

// buildBank constructs and finalizes a bank voicing the project.
func buildBank(p *project.Project, resolver *tuning.Resolver, sampleRate int) (*synth.Bank, error) {
	bank := synth.NewBank(sampleRate)

	for _, osc := range p.Oscillators {
		wf, err := effectiveWaveform(p, osc)
		if err != nil {
			return nil, err
		}
		hz, ok := resolver.Frequency(osc.Variable)
		if !ok {
			return nil, &tuning.UnresolvedReferenceError{Variable: osc.Name, Ref: osc.Variable}
		}
		if _, err := bank.Add(osc.Name, wf, hz, osc.Gain); err != nil {
			return nil, err
		}
	}

	for _, osc := range p.Oscillators {
		if osc.Sync == nil {
			continue
		}
		if err := bank.Sync(osc.Name, osc.Sync.Master, osc.Sync.Offset); err != nil {
			return nil, err
		}
	}

	if err := bank.Finalize(); err != nil {
		return nil, err
	}
	return bank, nil
}

func effectiveWaveform(p *project.Project, osc project.Oscillator) (synth.Waveform, error) {
	name := osc.Waveform
	if name == "" {
		name = p.Waveform
	}
	return synth.ParseWaveform(name)
}

func voiceMap(p *project.Project) map[string][]string {
	voices := make(map[string][]string)
	for _, osc := range p.Oscillators {
		voices[osc.Variable] = append(voices[osc.Variable], osc.Name)
	}
	return voices
}

func indexOscillators(p *project.Project) map[string]project.Oscillator {
	index := make(map[string]project.Oscillator, len(p.Oscillators))
	for _, osc := range p.Oscillators {
		index[osc.Name] = osc
	}
	return index
}

// sameStructure reports whether two projects have the same oscillators
// voicing the same variables with the same sync topology. Everything else is
// a parameter change.
func sameStructure(a, b *project.Project) bool {
	if len(a.Oscillators) != len(b.Oscillators) {
		return false
	}
	old := indexOscillators(a)
	for _, osc := range b.Oscillators {
		prev, ok := old[osc.Name]
		if !ok || prev.Variable != osc.Variable {
			return false
		}
		if (prev.Sync == nil) != (osc.Sync == nil) {
			return false
		}
		if osc.Sync != nil && (prev.Sync.Master != osc.Sync.Master || prev.Sync.Offset != osc.Sync.Offset) {
			return false
		}
	}
	return true
}
