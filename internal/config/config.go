// Package config loads and validates the YAML run spec that describes a
// sweep: the parameter table, trial set, dispatch options, and
// checkpoint destination.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// RunSpec is the configuration surface for one sweep run.
type RunSpec struct {
	// Pipeline names the registered generator/executor pair to run.
	Pipeline string `yaml:"pipeline"`
	// Settings is the parameter table, one opaque row per setting.
	Settings []sweep.Setting `yaml:"settings"`

	// NTrials selects the implicit trial range 1..NTrials. Mutually
	// exclusive with SpecificTrials.
	NTrials int `yaml:"ntrials,omitempty"`
	// SpecificTrials selects an explicit ordered trial list.
	SpecificTrials []int `yaml:"specific_trials,omitempty"`

	// Cores is the worker count; 1 (the default) runs sequentially.
	Cores int `yaml:"cores,omitempty"`
	// ShuffleGroups lists disjoint sets of 1-based setting indices.
	ShuffleGroups [][]int `yaml:"shuffle_groups,omitempty"`
	// ChunkCount governs checkpoint granularity; defaults to the number
	// of settings.
	ChunkCount int `yaml:"chunk_count,omitempty"`
	// RequiredModules names pipelines preloaded into every worker.
	RequiredModules []string `yaml:"required_modules,omitempty"`
	// SharedState is broadcast, opaque, to every generator/executor call.
	SharedState map[string]any `yaml:"shared_state,omitempty"`

	// CheckpointPath, when set, receives a full accumulator snapshot
	// after every chunk.
	CheckpointPath string `yaml:"checkpoint_path,omitempty"`
	// Resume reloads the snapshot at CheckpointPath and skips slots that
	// already succeeded.
	Resume bool `yaml:"resume,omitempty"`

	// Seed decorrelates whole runs without breaking trial pairing.
	Seed int64 `yaml:"seed,omitempty"`
	// Verbose enables the live progress view and chunk notifications.
	Verbose bool `yaml:"verbose,omitempty"`
	// LogDir, when set, receives the append-only run log.
	LogDir string `yaml:"log_dir,omitempty"`
}

// Load reads a run spec from disk, applies defaults, and validates it.
func Load(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read run spec: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes, defaults, and validates a run spec document.
func Parse(data []byte) (*RunSpec, error) {
	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse run spec: %w", err)
	}
	spec.ApplyDefaults()
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ApplyDefaults fills the documented defaults for omitted options.
func (s *RunSpec) ApplyDefaults() {
	if s.Cores == 0 {
		s.Cores = 1
	}
	if s.ChunkCount == 0 {
		s.ChunkCount = len(s.Settings)
	}
}

// Validate checks the spec's internal consistency. Schedule-dependent
// limits (chunk count versus schedule length, shuffle-group ranges) are
// enforced when the schedule is built.
func (s *RunSpec) Validate() error {
	if len(s.Settings) == 0 {
		return sweep.Configf("settings table is empty")
	}
	if s.NTrials > 0 && len(s.SpecificTrials) > 0 {
		return sweep.Configf("ntrials and specific_trials are mutually exclusive")
	}
	if s.NTrials == 0 && len(s.SpecificTrials) == 0 {
		return sweep.Configf("either ntrials or specific_trials is required")
	}
	if s.NTrials < 0 {
		return sweep.Configf("ntrials must be positive, got %d", s.NTrials)
	}
	if s.Cores < 1 {
		return sweep.Configf("cores must be positive, got %d", s.Cores)
	}
	if s.ChunkCount < 1 {
		return sweep.Configf("chunk_count must be positive, got %d", s.ChunkCount)
	}
	if s.Resume && s.CheckpointPath == "" {
		return sweep.Configf("resume requires checkpoint_path")
	}
	return nil
}
