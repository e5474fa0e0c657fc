package saddle

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stableScope/internal/model"
)

// FileSource serves a snapshot previously written by WriteSnapshotFile.
type FileSource struct {
	Path string
}

// Snapshot reads the file. A non-zero block must match the stored block.
func (f FileSource) Snapshot(_ context.Context, block uint64) (model.PoolSnapshot, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap model.PoolSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	if block != 0 && block != snap.BlockNumber {
		return model.PoolSnapshot{}, fmt.Errorf("snapshot is at block %d, requested %d", snap.BlockNumber, block)
	}
	return snap, nil
}

// WriteSnapshotFile writes the snapshot as indented JSON, replacing path
// atomically.
func WriteSnapshotFile(path string, snap model.PoolSnapshot) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
