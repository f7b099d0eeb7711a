package schedule

import (
	"math/rand"
	"sort"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// Shuffle randomizes, in place, the execution order of tasks that share a
// trial across the settings of each group. The multiset of (setting,
// trial) pairs is unchanged; only which physical schedule position runs
// which task moves. Groups and trials shuffle independently. With no
// groups the schedule is left untouched.
//
// For each group the occupied positions are first re-sorted stably by
// trial, then the positions holding each distinct trial receive a uniform
// random permutation of their tasks.
func Shuffle(sched sweep.Schedule, groups [][]int, n int, rng *rand.Rand) error {
	if err := validateGroups(groups, n); err != nil {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	for _, group := range groups {
		members := make(map[int]bool, len(group))
		for _, idx := range group {
			members[idx] = true
		}

		// Physical positions owned by this group, in schedule order.
		var positions []int
		for p, task := range sched {
			if members[task.Setting] {
				positions = append(positions, p)
			}
		}

		tasks := make([]sweep.Task, len(positions))
		for k, p := range positions {
			tasks[k] = sched[p]
		}
		sort.SliceStable(tasks, func(a, b int) bool {
			return tasks[a].Trial < tasks[b].Trial
		})

		// Permute each run of equal trials independently.
		for lo := 0; lo < len(tasks); {
			hi := lo
			for hi < len(tasks) && tasks[hi].Trial == tasks[lo].Trial {
				hi++
			}
			if hi-lo > 1 {
				rng.Shuffle(hi-lo, func(a, b int) {
					tasks[lo+a], tasks[lo+b] = tasks[lo+b], tasks[lo+a]
				})
			}
			lo = hi
		}

		for k, p := range positions {
			sched[p] = tasks[k]
		}
	}
	return nil
}

// validateGroups enforces the group invariants: every index within
// [1, n], and no index shared between (or repeated within) groups.
func validateGroups(groups [][]int, n int) error {
	seen := make(map[int]bool)
	for _, group := range groups {
		for _, idx := range group {
			if idx < 1 || idx > n {
				return sweep.Configf("shuffle group index %d out of range [1,%d]", idx, n)
			}
			if seen[idx] {
				return sweep.Configf("setting %d appears in more than one shuffle group", idx)
			}
			seen[idx] = true
		}
	}
	return nil
}
