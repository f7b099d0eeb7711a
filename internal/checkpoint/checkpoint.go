// Package checkpoint persists full accumulator snapshots between chunks
// so an interrupted sweep can resume at chunk granularity.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// ErrNoSnapshot is returned when no persisted snapshot exists yet.
var ErrNoSnapshot = errors.New("checkpoint: no snapshot")

// Snapshot is the durable record written after every chunk: run
// metadata plus the entire accumulator. Snapshots are always written
// whole, never per-task, so a stored snapshot is consistent at a chunk
// boundary.
type Snapshot struct {
	RunID     string            `json:"run_id"`
	Settings  int               `json:"settings"`
	StartedAt time.Time         `json:"started_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   sweep.Accumulator `json:"results"`
}

// Store persists and reloads run snapshots.
type Store interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// Repository stores snapshots as a single JSON file, each write
// replacing the previous snapshot.
type Repository struct {
	path string
}

// NewRepository creates a repository backed by the given file path.
func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// Load reads the persisted snapshot if present.
func (r *Repository) Load() (Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("checkpoint: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("checkpoint: decode snapshot: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot to disk, replacing any previous one. The
// write goes through a temp file and rename so readers never observe a
// torn snapshot.
func (r *Repository) Save(snap Snapshot) error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: ensure snapshot dir: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encode snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(encoded, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: replace snapshot: %w", err)
	}
	return nil
}
