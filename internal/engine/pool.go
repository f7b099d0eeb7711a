package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/kingrea/sweeprig/internal/progress"
	"github.com/kingrea/sweeprig/internal/sweep"
)

// pool is the run-scoped set of workers used when Cores > 1. It is
// created once before the first chunk and torn down when the run exits,
// on every path. Workers read the broadcast state captured at creation
// (settings, pipeline, shared value, preloaded modules) and hand results
// back by value; they never touch the accumulator.
type pool struct {
	work    chan sweep.Task
	results chan poolResult

	// modules holds the preloaded auxiliary pipelines for the pool's
	// lifetime so workers never resolve names mid-run.
	modules map[string]sweep.Pipeline

	wg       sync.WaitGroup
	stopOnce sync.Once
}

type poolResult struct {
	task sweep.Task
	res  sweep.TaskResult
}

func newPool(e *Engine, size int, modules map[string]sweep.Pipeline, meter *progress.Meter) *pool {
	p := &pool{
		work:    make(chan sweep.Task),
		results: make(chan poolResult, size),
		modules: modules,
	}
	for w := 0; w < size; w++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.work {
				res := e.runTask(task)
				meter.Advance(res.Failed)
				p.results <- poolResult{task: task, res: res}
			}
		}()
	}
	return p
}

// runBatch distributes one chunk's tasks across the workers and blocks
// until every task finishes. This barrier is what makes the per-chunk
// checkpoint well-defined. Completion order across workers is
// unspecified; results are keyed by task identity.
func (p *pool) runBatch(ctx context.Context, batch sweep.Schedule) (map[sweep.Task]sweep.TaskResult, error) {
	feederDone := make(chan struct{})
	go func() {
		defer close(feederDone)
		for _, task := range batch {
			select {
			case p.work <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	results := make(map[sweep.Task]sweep.TaskResult, len(batch))
	for received := 0; received < len(batch); received++ {
		select {
		case r := <-p.results:
			results[r.task] = r.res
		case <-ctx.Done():
			<-feederDone
			return nil, fmt.Errorf("engine: run cancelled: %w", ctx.Err())
		}
	}
	<-feederDone
	return results, nil
}

// stop releases the workers. In-flight tasks finish and their results
// are drained so no worker blocks forever.
func (p *pool) stop() {
	p.stopOnce.Do(func() {
		close(p.work)
		go func() {
			p.wg.Wait()
			close(p.results)
		}()
		for range p.results {
		}
	})
}
