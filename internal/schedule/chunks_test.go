package schedule

import (
	"errors"
	"testing"

	"github.com/kingrea/sweeprig/internal/sweep"
)

func TestChunksPartitionWithoutGapsOrOverlaps(t *testing.T) {
	for _, tc := range []struct{ n, c int }{
		{6, 3}, {7, 3}, {5, 3}, {10, 4}, {10, 10}, {1, 1}, {100, 7},
	} {
		chunks, err := Chunks(tc.n, tc.c)
		if err != nil {
			t.Fatalf("chunks(%d,%d): %v", tc.n, tc.c, err)
		}
		if len(chunks) > tc.c {
			t.Fatalf("chunks(%d,%d): %d chunks exceeds requested %d", tc.n, tc.c, len(chunks), tc.c)
		}
		pos := 0
		for _, ch := range chunks {
			if ch.Start != pos {
				t.Fatalf("chunks(%d,%d): chunk starts at %d, want %d", tc.n, tc.c, ch.Start, pos)
			}
			if ch.Len() < 1 {
				t.Fatalf("chunks(%d,%d): empty chunk", tc.n, tc.c)
			}
			pos = ch.End
		}
		if pos != tc.n {
			t.Fatalf("chunks(%d,%d): coverage ends at %d, want %d", tc.n, tc.c, pos, tc.n)
		}
	}
}

func TestChunkSizesDifferByAtMostOne(t *testing.T) {
	for _, tc := range []struct{ n, c int }{{7, 3}, {5, 3}, {23, 5}, {100, 9}} {
		chunks, err := Chunks(tc.n, tc.c)
		if err != nil {
			t.Fatalf("chunks(%d,%d): %v", tc.n, tc.c, err)
		}
		minLen, maxLen := tc.n, 0
		for _, ch := range chunks {
			if ch.Len() < minLen {
				minLen = ch.Len()
			}
			if ch.Len() > maxLen {
				maxLen = ch.Len()
			}
		}
		if maxLen-minLen > 1 {
			t.Fatalf("chunks(%d,%d): sizes range from %d to %d", tc.n, tc.c, minLen, maxLen)
		}
	}
}

func TestSingleChunkSpansWholeSchedule(t *testing.T) {
	chunks, err := Chunks(9, 1)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d", len(chunks))
	}
	if chunks[0].Start != 0 || chunks[0].End != 9 {
		t.Fatalf("chunk spans [%d,%d), want [0,9)", chunks[0].Start, chunks[0].End)
	}
}

func TestChunksExampleBoundaries(t *testing.T) {
	// 3 settings x 2 trials split into 3 chunks: one setting per chunk.
	chunks, err := Chunks(6, 3)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	want := []Chunk{{0, 2}, {2, 4}, {4, 6}}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Fatalf("chunk %d is [%d,%d), want [%d,%d)", i, chunks[i].Start, chunks[i].End, want[i].Start, want[i].End)
		}
	}
}

func TestChunksRejectsInvalidCounts(t *testing.T) {
	for _, c := range []int{0, -1, 7} {
		_, err := Chunks(6, c)
		var cfgErr *sweep.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("count %d: expected ConfigError, got %v", c, err)
		}
	}
}

func TestChunkTasksSlicesTheSchedule(t *testing.T) {
	sched := mustBuild(t, 3, 2)
	chunks, err := Chunks(len(sched), 3)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}
	got := chunks[1].Tasks(sched)
	want := sweep.Schedule{{Setting: 2, Trial: 1}, {Setting: 2, Trial: 2}}
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("task %d is %s, want %s", i, got[i], want[i])
		}
	}
}
