// Package engine dispatches a sweep schedule through the user-supplied
// generate/execute pipeline, sequentially or across a worker pool,
// writing results into the accumulator and checkpointing after every
// chunk.
package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/sweeprig/internal/checkpoint"
	"github.com/kingrea/sweeprig/internal/logging"
	"github.com/kingrea/sweeprig/internal/progress"
	"github.com/kingrea/sweeprig/internal/schedule"
	"github.com/kingrea/sweeprig/internal/sweep"
)

// ModuleResolver resolves named auxiliary modules so they can be
// preloaded into workers before any task runs.
type ModuleResolver interface {
	Resolve(name string) (sweep.Pipeline, error)
}

// Options captures the run-level configuration the engine honors.
type Options struct {
	// Trials selects the trial set (implicit 1..N range or explicit list).
	Trials schedule.TrialSpec
	// Cores is the worker count: 1 runs sequentially, >1 runs a pool of
	// that size for the whole run.
	Cores int
	// ShuffleGroups lists disjoint sets of setting indices whose
	// per-trial execution order is randomized.
	ShuffleGroups [][]int
	// ChunkCount governs checkpoint granularity. Zero defaults to the
	// number of settings.
	ChunkCount int
	// RequiredModules names pipelines to preload into workers.
	RequiredModules []string
	// Shared is an opaque value broadcast to every generator and
	// executor call.
	Shared any
	// Seed decorrelates whole runs. Per-task streams still derive from
	// the trial id alone, so trial pairing across settings is preserved.
	Seed int64
	// Resume reloads an existing snapshot and skips succeeded slots.
	Resume bool
}

// Report summarizes a completed run for presentation layers.
type Report struct {
	RunID     string
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Chunks    int
	Cores     int
	Elapsed   time.Duration
}

// Engine owns the schedule and accumulator for the duration of a run.
// Workers only ever see read-only broadcast state and hand results back
// by value.
type Engine struct {
	settings []sweep.Setting
	pipeline sweep.Pipeline
	opts     Options

	store       checkpoint.Store
	logger      *logging.Logger
	resolver    ModuleResolver
	sink        func(progress.Update)
	notifyChunk func(index, count int)

	clock       func() time.Time
	shuffleRand *rand.Rand
	runID       string
}

// Option customizes the engine instance.
type Option func(*Engine)

// WithStore configures the checkpoint destination. Without a store no
// snapshots are written.
func WithStore(store checkpoint.Store) Option {
	return func(e *Engine) { e.store = store }
}

// WithLogger attaches a run log.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithModuleResolver supplies the registry used to preload
// RequiredModules.
func WithModuleResolver(resolver ModuleResolver) Option {
	return func(e *Engine) {
		if resolver != nil {
			e.resolver = resolver
		}
	}
}

// WithProgressSink receives a progress update after every finished task.
// The sink must be safe for concurrent calls.
func WithProgressSink(sink func(progress.Update)) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithChunkNotify receives the 1-based chunk index and the chunk count
// at the start of every chunk.
func WithChunkNotify(notify func(index, count int)) Option {
	return func(e *Engine) { e.notifyChunk = notify }
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithShuffleRand injects the randomness source used for group
// shuffling (primarily for tests).
func WithShuffleRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.shuffleRand = rng
		}
	}
}

// New wires an engine to a parameter table and pipeline.
func New(settings []sweep.Setting, pipeline sweep.Pipeline, opts Options, optFns ...Option) (*Engine, error) {
	if len(settings) == 0 {
		return nil, sweep.Configf("at least one setting is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("engine: pipeline is required")
	}
	if opts.Cores == 0 {
		opts.Cores = 1
	}
	if opts.Cores < 1 {
		return nil, sweep.Configf("cores must be positive, got %d", opts.Cores)
	}
	if opts.ChunkCount == 0 {
		opts.ChunkCount = len(settings)
	}
	e := &Engine{
		settings: settings,
		pipeline: pipeline,
		opts:     opts,
		clock:    time.Now,
		runID:    uuid.NewString(),
	}
	for _, fn := range optFns {
		fn(e)
	}
	if e.shuffleRand == nil {
		e.shuffleRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e, nil
}

// RunID identifies this run in logs and snapshots.
func (e *Engine) RunID() string { return e.runID }
