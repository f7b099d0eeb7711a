package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/kingrea/sweeprig/internal/checkpoint"
	"github.com/kingrea/sweeprig/internal/progress"
	"github.com/kingrea/sweeprig/internal/schedule"
	"github.com/kingrea/sweeprig/internal/sweep"
)

// Run executes the full sweep and returns the completed accumulator.
//
// Configuration problems surface before any task starts. Task failures
// never abort the run; they land in the failed task's slot as a marker.
// A checkpoint write failure is fatal, since a silently missing snapshot
// would defeat resumability. Cancelling ctx abandons the current chunk
// without checkpointing it; previously checkpointed chunks stay intact.
func (e *Engine) Run(ctx context.Context) (sweep.Accumulator, Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	n := len(e.settings)

	sched, err := schedule.Build(n, e.opts.Trials)
	if err != nil {
		return nil, Report{}, err
	}
	if err := schedule.Shuffle(sched, e.opts.ShuffleGroups, n, e.shuffleRand); err != nil {
		return nil, Report{}, err
	}
	chunks, err := schedule.Chunks(len(sched), e.opts.ChunkCount)
	if err != nil {
		return nil, Report{}, err
	}
	modules, err := e.preloadModules()
	if err != nil {
		return nil, Report{}, err
	}

	acc := sweep.NewAccumulator(n)
	skip, err := e.mergeResume(acc, sched)
	if err != nil {
		return nil, Report{}, err
	}

	started := e.clock()
	meter := progress.NewMeter(int64(len(sched)), e.sink)
	for range skip {
		meter.Advance(false)
	}

	var workers *pool
	if e.opts.Cores > 1 {
		// One pool for the whole run; settings, schedule, shared state
		// and preloaded modules are broadcast to workers here, once.
		workers = newPool(e, e.opts.Cores, modules, meter)
		defer workers.stop()
		e.logger.Printf("run %s: pool of %d workers started", e.runID, e.opts.Cores)
	}

	for ci, chunk := range chunks {
		e.logger.Printf("run %s: chunk %d/%d (%d tasks)", e.runID, ci+1, len(chunks), chunk.Len())
		if e.notifyChunk != nil {
			e.notifyChunk(ci+1, len(chunks))
		}

		batch := make(sweep.Schedule, 0, chunk.Len())
		for _, task := range chunk.Tasks(sched) {
			if !skip[task] {
				batch = append(batch, task)
			}
		}

		var results map[sweep.Task]sweep.TaskResult
		if workers != nil {
			results, err = workers.runBatch(ctx, batch)
		} else {
			results, err = e.runSequential(ctx, batch, meter)
		}
		if err != nil {
			return nil, Report{}, err
		}

		// Barrier passed: write every result back to its own
		// (setting, trial) slot, never by completion order.
		for _, task := range batch {
			res := results[task]
			acc.Set(task, res)
			if res.Failed {
				e.logger.Printf("run %s: task %s failed: %s", e.runID, task, res.Error)
			}
		}

		if e.store != nil {
			if err := e.saveSnapshot(acc, n, started); err != nil {
				return nil, Report{}, fmt.Errorf("engine: checkpoint after chunk %d/%d: %w", ci+1, len(chunks), err)
			}
		}
	}

	succeeded, failed := acc.Counts()
	report := Report{
		RunID:     e.runID,
		Total:     len(sched),
		Succeeded: succeeded,
		Failed:    failed,
		Skipped:   len(skip),
		Chunks:    len(chunks),
		Cores:     e.opts.Cores,
		Elapsed:   e.clock().Sub(started),
	}
	e.logger.Printf("run %s: done (%d succeeded, %d failed, %d resumed)", e.runID, succeeded, failed, len(skip))
	return acc, report, nil
}

// runSequential executes a chunk's tasks one at a time in schedule order.
func (e *Engine) runSequential(ctx context.Context, batch sweep.Schedule, meter *progress.Meter) (map[sweep.Task]sweep.TaskResult, error) {
	results := make(map[sweep.Task]sweep.TaskResult, len(batch))
	for _, task := range batch {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("engine: run cancelled: %w", ctx.Err())
		default:
		}
		res := e.runTask(task)
		results[task] = res
		meter.Advance(res.Failed)
	}
	return results, nil
}

// runTask performs one generate/execute cycle. The rng stream derives
// from the trial id alone, so the draws are identical for every setting
// sharing that trial regardless of worker scheduling. Errors and panics
// in either stage become the failure marker; nothing propagates.
func (e *Engine) runTask(task sweep.Task) (res sweep.TaskResult) {
	defer func() {
		if r := recover(); r != nil {
			res = sweep.Failure(fmt.Errorf("panic: %v", r))
		}
	}()
	rng := rand.New(rand.NewSource(streamSeed(e.opts.Seed, task.Trial)))
	setting := e.settings[task.Setting-1]

	data, err := e.pipeline.Generate(rng, setting, e.opts.Shared)
	if err != nil {
		return sweep.Failure(err)
	}
	start := e.clock()
	value, err := e.pipeline.Execute(rng, data, setting, task.Trial, e.opts.Shared)
	if err != nil {
		return sweep.Failure(err)
	}
	return sweep.TaskResult{Value: value, Elapsed: e.clock().Sub(start)}
}

// preloadModules resolves every required module up front so unknown
// names fail the run before any task executes.
func (e *Engine) preloadModules() (map[string]sweep.Pipeline, error) {
	if len(e.opts.RequiredModules) == 0 {
		return nil, nil
	}
	if e.resolver == nil {
		return nil, sweep.Configf("required_modules set but no module resolver configured")
	}
	modules := make(map[string]sweep.Pipeline, len(e.opts.RequiredModules))
	for _, name := range e.opts.RequiredModules {
		p, err := e.resolver.Resolve(name)
		if err != nil {
			return nil, sweep.Configf("required module %q: %v", name, err)
		}
		modules[name] = p
	}
	return modules, nil
}

// mergeResume loads the previous snapshot when resuming and copies its
// succeeded slots into acc. Failed and unset slots re-run. Returns the
// set of tasks to skip.
func (e *Engine) mergeResume(acc sweep.Accumulator, sched sweep.Schedule) (map[sweep.Task]bool, error) {
	skip := make(map[sweep.Task]bool)
	if !e.opts.Resume {
		return skip, nil
	}
	if e.store == nil {
		return nil, sweep.Configf("resume requires a checkpoint destination")
	}
	snap, err := e.store.Load()
	if errors.Is(err, checkpoint.ErrNoSnapshot) {
		return skip, nil
	}
	if err != nil {
		return nil, fmt.Errorf("engine: load snapshot for resume: %w", err)
	}
	if snap.Settings != len(e.settings) {
		return nil, sweep.Configf("snapshot was taken with %d settings, run has %d", snap.Settings, len(e.settings))
	}
	for _, task := range sched {
		if res, ok := snap.Results.Get(task); ok && !res.Failed {
			acc.Set(task, res)
			skip[task] = true
		}
	}
	e.logger.Printf("run %s: resume skips %d completed tasks", e.runID, len(skip))
	return skip, nil
}

// saveSnapshot persists the entire accumulator, replacing the previous
// snapshot.
func (e *Engine) saveSnapshot(acc sweep.Accumulator, n int, started time.Time) error {
	succeeded, failed := acc.Counts()
	return e.store.Save(checkpoint.Snapshot{
		RunID:     e.runID,
		Settings:  n,
		StartedAt: started,
		UpdatedAt: e.clock(),
		Succeeded: succeeded,
		Failed:    failed,
		Results:   acc.Clone(),
	})
}
