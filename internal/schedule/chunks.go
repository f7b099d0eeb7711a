package schedule

import (
	"math"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// Chunk is a contiguous half-open range [Start, End) of schedule
// positions, 0-based. Chunks are processed and checkpointed as a unit.
type Chunk struct {
	Start int
	End   int
}

// Len returns the number of positions in the chunk.
func (c Chunk) Len() int { return c.End - c.Start }

// Tasks returns the sub-schedule the chunk covers.
func (c Chunk) Tasks(sched sweep.Schedule) sweep.Schedule {
	return sched[c.Start:c.End]
}

// Chunks partitions n schedule positions into at most c contiguous
// chunks with sizes differing by at most one. Boundaries are evenly
// spaced points over [0, n], rounded and deduplicated. The single-chunk
// case uses the same list shape as the general one.
func Chunks(n, c int) ([]Chunk, error) {
	if n < 1 {
		return nil, sweep.Configf("cannot chunk an empty schedule")
	}
	if c < 1 || c > n {
		return nil, sweep.Configf("chunk_count must be in [1,%d], got %d", n, c)
	}
	bounds := make([]int, 0, c+1)
	for i := 0; i <= c; i++ {
		b := int(math.Round(float64(i) * float64(n) / float64(c)))
		if len(bounds) == 0 || b != bounds[len(bounds)-1] {
			bounds = append(bounds, b)
		}
	}
	chunks := make([]Chunk, 0, len(bounds)-1)
	for i := 1; i < len(bounds); i++ {
		chunks = append(chunks, Chunk{Start: bounds[i-1], End: bounds[i]})
	}
	return chunks, nil
}
