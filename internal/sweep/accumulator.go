package sweep

// Accumulator maps setting index to trial id to task result. Slots start
// unset and are filled as chunks complete; the orchestrating engine is
// the only writer.
type Accumulator map[int]map[int]TaskResult

// NewAccumulator returns an accumulator with an empty slot map for every
// setting index in [1, n].
func NewAccumulator(n int) Accumulator {
	acc := make(Accumulator, n)
	for i := 1; i <= n; i++ {
		acc[i] = make(map[int]TaskResult)
	}
	return acc
}

// Set records a result in the task's slot.
func (a Accumulator) Set(task Task, res TaskResult) {
	slots, ok := a[task.Setting]
	if !ok {
		slots = make(map[int]TaskResult)
		a[task.Setting] = slots
	}
	slots[task.Trial] = res
}

// Get returns the result for a task and whether its slot is set.
func (a Accumulator) Get(task Task) (TaskResult, bool) {
	res, ok := a[task.Setting][task.Trial]
	return res, ok
}

// Counts reports how many filled slots succeeded and how many failed.
func (a Accumulator) Counts() (succeeded, failed int) {
	for _, slots := range a {
		for _, res := range slots {
			if res.Failed {
				failed++
			} else {
				succeeded++
			}
		}
	}
	return succeeded, failed
}

// Clone returns a deep copy of the slot maps. Result values themselves
// are opaque and shared, not copied.
func (a Accumulator) Clone() Accumulator {
	cp := make(Accumulator, len(a))
	for i, slots := range a {
		inner := make(map[int]TaskResult, len(slots))
		for t, res := range slots {
			inner[t] = res
		}
		cp[i] = inner
	}
	return cp
}
