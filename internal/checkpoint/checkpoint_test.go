package checkpoint

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kingrea/sweeprig/internal/sweep"
)

func TestLoadWithoutSnapshotReturnsSentinel(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "snapshot.json"))
	_, err := repo.Load()
	if !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "out", "snapshot.json"))
	acc := sweep.NewAccumulator(2)
	acc.Set(sweep.Task{Setting: 1, Trial: 1}, sweep.TaskResult{Value: 3.5, Elapsed: time.Millisecond})
	acc.Set(sweep.Task{Setting: 2, Trial: 1}, sweep.Failure(errors.New("boom")))

	saved := Snapshot{
		RunID:     "run-1",
		Settings:  2,
		StartedAt: time.Unix(100, 0).UTC(),
		UpdatedAt: time.Unix(200, 0).UTC(),
		Succeeded: 1,
		Failed:    1,
		Results:   acc,
	}
	if err := repo.Save(saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != "run-1" || loaded.Settings != 2 || loaded.Succeeded != 1 || loaded.Failed != 1 {
		t.Fatalf("metadata mismatch: %+v", loaded)
	}
	good, ok := loaded.Results.Get(sweep.Task{Setting: 1, Trial: 1})
	if !ok || good.Failed {
		t.Fatalf("slot [1][1] not restored: %+v", good)
	}
	if good.Value != 3.5 {
		t.Fatalf("slot [1][1] value %v, want 3.5", good.Value)
	}
	if good.Elapsed != time.Millisecond {
		t.Fatalf("slot [1][1] elapsed %v, want 1ms", good.Elapsed)
	}
	bad, ok := loaded.Results.Get(sweep.Task{Setting: 2, Trial: 1})
	if !ok || !bad.Failed || bad.Error != "boom" {
		t.Fatalf("failure marker not restored: %+v", bad)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	repo := NewRepository(path)
	if err := repo.Save(Snapshot{RunID: "old", Results: sweep.NewAccumulator(1)}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(Snapshot{RunID: "new", Results: sweep.NewAccumulator(1)}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	loaded, err := repo.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.RunID != "new" {
		t.Fatalf("loaded run id %q, want the replacing snapshot", loaded.RunID)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the snapshot file, found %d entries", len(entries))
	}
}

func TestLoadRejectsCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := NewRepository(path).Load()
	if err == nil || errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected decode error, got %v", err)
	}
}
