package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/pkg/state"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")

	gs := &state.GameState{
		ID:        uuid.New(),
		Ruleset:   "forest_quest.json",
		Location:  "stream",
		Inventory: []string{"rusty sword", "rope"},
		Flags:     map[string]bool{"met_hermit": true},
		HP:        7,
		Turn:      5,
		Outcome:   state.OutcomeInProgress,
	}
	gs.RecordTurn("go stream", "You follow the water.")

	if err := SaveSnapshot(path, gs); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if loaded.ID != gs.ID || loaded.Location != gs.Location || loaded.Turn != gs.Turn || loaded.HP != gs.HP {
		t.Errorf("snapshot changed state: %+v vs %+v", loaded, gs)
	}
	if !reflect.DeepEqual(loaded.Inventory, gs.Inventory) || !reflect.DeepEqual(loaded.Flags, gs.Flags) {
		t.Error("inventory or flags lost in snapshot round trip")
	}
	if len(loaded.History) != 1 || loaded.History[0].Input != "go stream" {
		t.Errorf("history lost in snapshot round trip: %+v", loaded.History)
	}
}

func TestSaveSnapshot_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	gs := &state.GameState{ID: uuid.New(), Location: "cell", HP: 5}

	if err := SaveSnapshot(path, gs); err != nil {
		t.Fatalf("first save failed: %v", err)
	}
	gs.Location = "vault"
	if err := SaveSnapshot(path, gs); err != nil {
		t.Fatalf("second save failed: %v", err)
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Location != "vault" {
		t.Errorf("expected overwritten location 'vault', got %q", loaded.Location)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the save file in the directory, found %d entries", len(entries))
	}
}

func TestLoadSnapshot_Missing(t *testing.T) {
	if _, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing save file")
	}
}

func TestLoadSnapshot_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path); err == nil {
		t.Error("expected error for corrupt save file")
	}
}
