// Package sweep holds the data model shared by the schedule builder and
// the execution engine: parameter settings, tasks, task results, and the
// generator/executor contracts a study pipeline must satisfy.
//
// The engine never interprets a Setting's attributes, the synthetic data
// a generator produces, or the value an executor returns. All three are
// opaque and flow through the run untouched.
package sweep

import (
	"fmt"
	"math/rand"
	"time"
)

// Setting is one row of the parameter table. Attributes are opaque to the
// runtime; only pipelines read them.
type Setting map[string]any

// Task pairs a setting with a trial repetition. Setting is the 1-based row
// index into the parameter table; Trial is a positive repetition id.
type Task struct {
	Setting int `json:"setting"`
	Trial   int `json:"trial"`
}

func (t Task) String() string {
	return fmt.Sprintf("(%d,%d)", t.Setting, t.Trial)
}

// Schedule is the ordered list of tasks a run executes. Every
// (setting, trial) pair in the active trial set appears exactly once.
type Schedule []Task

// TaskState enumerates the lifecycle of a single task. States are
// terminal once reached; there are no retries.
type TaskState string

const (
	TaskPending   TaskState = "pending"
	TaskRunning   TaskState = "running"
	TaskSucceeded TaskState = "succeeded"
	TaskFailed    TaskState = "failed"
)

// TaskResult records the outcome of one task. On success Value holds the
// executor's return and Elapsed the executor's wall time. On failure the
// Failed marker is set and Value is nil; whether the generator or the
// executor failed is not distinguished.
type TaskResult struct {
	Value   any           `json:"value,omitempty"`
	Elapsed time.Duration `json:"elapsed,omitempty"`
	Failed  bool          `json:"failed,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// Failure builds the failure marker for a task error.
func Failure(err error) TaskResult {
	msg := "task failed"
	if err != nil {
		msg = err.Error()
	}
	return TaskResult{Failed: true, Error: msg}
}

// Generator produces synthetic data for one task. The rng stream is
// seeded from the trial id alone, so every setting executed under the
// same trial sees identical draws.
type Generator func(rng *rand.Rand, setting Setting, shared any) (any, error)

// Executor runs the estimator against generated data and returns an
// opaque result value.
type Executor func(rng *rand.Rand, data any, setting Setting, trial int, shared any) (any, error)

// Pipeline pairs the two user-supplied stages of a study.
type Pipeline interface {
	Generate(rng *rand.Rand, setting Setting, shared any) (any, error)
	Execute(rng *rand.Rand, data any, setting Setting, trial int, shared any) (any, error)
}

// Funcs adapts plain functions to the Pipeline interface.
type Funcs struct {
	GenerateFn Generator
	ExecuteFn  Executor
}

// Generate implements Pipeline.
func (f Funcs) Generate(rng *rand.Rand, setting Setting, shared any) (any, error) {
	if f.GenerateFn == nil {
		return nil, fmt.Errorf("sweep: pipeline has no generator")
	}
	return f.GenerateFn(rng, setting, shared)
}

// Execute implements Pipeline.
func (f Funcs) Execute(rng *rand.Rand, data any, setting Setting, trial int, shared any) (any, error) {
	if f.ExecuteFn == nil {
		return nil, fmt.Errorf("sweep: pipeline has no executor")
	}
	return f.ExecuteFn(rng, data, setting, trial, shared)
}
