// Package pipeline maintains the named registry of generator/executor
// pairs the CLI resolves run specs against, plus the built-in reference
// pipelines.
package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// Registry maintains known pipelines by name.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]sweep.Pipeline
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{pipelines: map[string]sweep.Pipeline{}}
}

// Register installs a pipeline. Returns an error if the name already
// exists.
func (r *Registry) Register(name string, p sweep.Pipeline) error {
	if name == "" {
		return fmt.Errorf("pipeline: name is required")
	}
	if p == nil {
		return fmt.Errorf("pipeline: implementation is required for %s", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pipelines[name]; exists {
		return fmt.Errorf("pipeline: %s already registered", name)
	}
	r.pipelines[name] = p
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(name string, p sweep.Pipeline) {
	if err := r.Register(name, p); err != nil {
		panic(err)
	}
}

// Resolve looks up a pipeline by name.
func (r *Registry) Resolve(name string) (sweep.Pipeline, error) {
	r.mu.RLock()
	p, ok := r.pipelines[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("pipeline: unknown name %s", name)
	}
	return p, nil
}

// Names returns a sorted list of registered pipeline names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.pipelines))
	for name := range r.pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns a registry with the built-in reference pipelines
// installed.
func Builtin() *Registry {
	r := NewRegistry()
	r.MustRegister("normal-mean", NormalMean{})
	r.MustRegister("coin-bias", CoinBias{})
	return r
}
