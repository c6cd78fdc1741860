package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ruleforge/dungeon/pkg/state"
)

// File snapshots back the console's save/load commands. A failed save
// leaves the in-memory state authoritative and untouched.

// SaveSnapshot writes a full gamestate snapshot to path. The write goes
// through a temp file and rename so a crash never leaves a truncated save.
func SaveSnapshot(path string, gs *state.GameState) error {
	data, err := json.MarshalIndent(gs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".save-*")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to finalize snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a gamestate snapshot, sufficient to resume the
// session exactly.
func LoadSnapshot(path string) (*state.GameState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("save file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &gs, nil
}
