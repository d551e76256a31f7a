// Package project defines the YAML project file: engine settings, frequency
// variables, and the oscillator bank with its sync relations.
package project

import (
	"bytes"
	"fmt"
	"os"

	"github.com/maliciousblahaj/harmony-playground/internal/tuning"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file name looked up when none is given.
const DefaultFile = "harmony.yaml"

// Project is the on-disk description of a playground: variables define
// frequencies (literals or just ratios of each other), oscillators voice
// them.
type Project struct {
	// SampleRate in Hz; 0 means the configured default
	SampleRate int `yaml:"sample_rate,omitempty"`
	// BlockSize in samples; 0 means the configured default
	BlockSize int `yaml:"block_size,omitempty"`
	// MasterGain is a base-2 gain exponent; nil means the default (-2)
	MasterGain *float64 `yaml:"master_gain,omitempty"`
	// Waveform is the default waveform for oscillators that set none
	Waveform string `yaml:"waveform,omitempty"`
	// Variables maps names to frequency expressions (e.g. "220" or "3/2 a3")
	Variables map[string]string `yaml:"variables"`
	// Oscillators voice variables
	Oscillators []Oscillator `yaml:"oscillators"`
}

// Oscillator configures one voice in the bank.
type Oscillator struct {
	Name     string  `yaml:"name" json:"name"`
	Variable string  `yaml:"variable" json:"variable"`
	Waveform string  `yaml:"waveform,omitempty" json:"waveform,omitempty"`
	Gain     float64 `yaml:"gain,omitempty" json:"gain"`
	Sync     *Sync   `yaml:"sync,omitempty" json:"sync,omitempty"`
}

// Sync phase-locks an oscillator to a master at a phase offset.
type Sync struct {
	Master string  `yaml:"master" json:"master"`
	Offset float64 `yaml:"offset,omitempty" json:"offset"`
}

// Load reads and parses a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse parses project YAML. Unknown fields are rejected so typos in project
// files surface instead of silently dropping settings.
func Parse(data []byte) (*Project, error) {
	var p Project
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("invalid project file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the project to path as YAML.
func (p *Project) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}
	return nil
}

// Validate checks structural consistency: names, duplicates, and that every
// oscillator references a defined variable and an existing sync master.
// Resolution-level errors (cycles, ratio validity) are the resolver's job.
func (p *Project) Validate() error {
	if len(p.Variables) == 0 {
		return fmt.Errorf("project defines no variables")
	}
	for name := range p.Variables {
		if !tuning.ValidName(name) {
			return fmt.Errorf("invalid variable name %q", name)
		}
	}

	oscNames := make(map[string]struct{}, len(p.Oscillators))
	for _, osc := range p.Oscillators {
		if !tuning.ValidName(osc.Name) {
			return fmt.Errorf("invalid oscillator name %q", osc.Name)
		}
		if _, dup := oscNames[osc.Name]; dup {
			return fmt.Errorf("duplicate oscillator name %q", osc.Name)
		}
		oscNames[osc.Name] = struct{}{}

		if _, ok := p.Variables[osc.Variable]; !ok {
			return fmt.Errorf("oscillator %q references undefined variable %q", osc.Name, osc.Variable)
		}
	}

	for _, osc := range p.Oscillators {
		if osc.Sync == nil {
			continue
		}
		if _, ok := oscNames[osc.Sync.Master]; !ok {
			return fmt.Errorf("oscillator %q syncs to unknown master %q", osc.Name, osc.Sync.Master)
		}
		if osc.Sync.Offset < 0 || osc.Sync.Offset >= 1 {
			return fmt.Errorf("oscillator %q: sync offset %v out of range [0, 1)", osc.Name, osc.Sync.Offset)
		}
	}

	return nil
}

// Default returns the demo project: two roots and three just intervals.
func Default() *Project {
	gain := -2.0
	return &Project{
		MasterGain: &gain,
		Waveform:   "sine",
		Variables: map[string]string{
			"a3":     "220",
			"root":   "253.4622",
			"sixth":  "5/3 a3",
			"unison": "1/1 a3",
			"fifth":  "3/2 root",
		},
		Oscillators: []Oscillator{
			{Name: "a3", Variable: "a3"},
			{Name: "root", Variable: "root"},
			{Name: "sixth", Variable: "sixth"},
			{Name: "unison", Variable: "unison"},
			{Name: "fifth", Variable: "fifth"},
		},
	}
}
