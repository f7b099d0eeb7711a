// Package progress provides the monotonic task counter the engine
// advances as tasks finish. Increments are atomic and order-independent,
// so workers completing in any interleaving produce the same final count.
package progress

import "sync/atomic"

// Update is a point-in-time snapshot pushed to the sink after each
// advance.
type Update struct {
	Done   int64
	Failed int64
	Total  int64
}

// Meter counts completed tasks. A nil *Meter is safe to advance; all
// methods become no-ops.
type Meter struct {
	total  int64
	done   atomic.Int64
	failed atomic.Int64
	sink   func(Update)
}

// NewMeter creates a meter for total tasks. sink, if non-nil, receives
// an Update after every advance and must be safe for concurrent calls.
func NewMeter(total int64, sink func(Update)) *Meter {
	return &Meter{total: total, sink: sink}
}

// Advance records one finished task.
func (m *Meter) Advance(failed bool) {
	if m == nil {
		return
	}
	done := m.done.Add(1)
	f := m.failed.Load()
	if failed {
		f = m.failed.Add(1)
	}
	if m.sink != nil {
		m.sink(Update{Done: done, Failed: f, Total: m.total})
	}
}

// Done returns the number of tasks counted so far.
func (m *Meter) Done() int64 {
	if m == nil {
		return 0
	}
	return m.done.Load()
}

// Failed returns the number of failed tasks counted so far.
func (m *Meter) Failed() int64 {
	if m == nil {
		return 0
	}
	return m.failed.Load()
}

// Total returns the task count the meter was created with.
func (m *Meter) Total() int64 {
	if m == nil {
		return 0
	}
	return m.total
}
