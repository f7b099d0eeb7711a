// Package schedule builds and transforms the task order for a sweep run:
// the full (setting, trial) schedule, group-scoped execution-order
// shuffling, and the contiguous chunks checkpointing works over.
package schedule

import (
	"github.com/kingrea/sweeprig/internal/sweep"
)

// TrialSpec selects the trial set for a run. Exactly one of NTrials and
// Specific may be set: NTrials > 0 yields the implicit range 1..NTrials,
// Specific supplies an explicit ordered list of positive trial ids.
type TrialSpec struct {
	NTrials  int
	Specific []int
}

// Trials expands the spec into the ordered trial list.
func (s TrialSpec) Trials() ([]int, error) {
	if s.NTrials > 0 && len(s.Specific) > 0 {
		return nil, sweep.Configf("ntrials and specific_trials are mutually exclusive")
	}
	if len(s.Specific) > 0 {
		seen := make(map[int]bool, len(s.Specific))
		for _, t := range s.Specific {
			if t < 1 {
				return nil, sweep.Configf("specific_trials contains non-positive trial %d", t)
			}
			if seen[t] {
				return nil, sweep.Configf("specific_trials contains duplicate trial %d", t)
			}
			seen[t] = true
		}
		trials := make([]int, len(s.Specific))
		copy(trials, s.Specific)
		return trials, nil
	}
	if s.NTrials < 1 {
		return nil, sweep.Configf("either ntrials or specific_trials is required")
	}
	trials := make([]int, s.NTrials)
	for i := range trials {
		trials[i] = i + 1
	}
	return trials, nil
}

// Build constructs the schedule for n settings: setting index ascending,
// and within each setting the trial set in its specified order. Length is
// always n times the trial-set size.
func Build(n int, spec TrialSpec) (sweep.Schedule, error) {
	if n < 1 {
		return nil, sweep.Configf("at least one setting is required, got %d", n)
	}
	trials, err := spec.Trials()
	if err != nil {
		return nil, err
	}
	sched := make(sweep.Schedule, 0, n*len(trials))
	for i := 1; i <= n; i++ {
		for _, t := range trials {
			sched = append(sched, sweep.Task{Setting: i, Trial: t})
		}
	}
	return sched, nil
}
