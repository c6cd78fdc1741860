package state

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ruleforge/dungeon/pkg/rules"
)

func TestNewGameState(t *testing.T) {
	rs := &rules.RuleSet{
		Commands:       []string{"look"},
		InventoryLimit: 3,
		EndConditions:  rules.EndConditions{MaxTurns: 10},
		World:          map[string]string{"cell": "A cell."},
		Start: rules.Start{
			Location:  "cell",
			HP:        8,
			Inventory: []string{"lantern"},
			Flags:     map[string]bool{"briefed": true},
		},
	}

	gs := NewGameState(rs)

	if gs.ID.String() == "" {
		t.Error("expected a session ID")
	}
	if gs.Location != "cell" || gs.HP != 8 {
		t.Errorf("START not applied: location=%q hp=%d", gs.Location, gs.HP)
	}
	if !gs.HasItem("lantern") {
		t.Error("start inventory not applied")
	}
	if !gs.Flag("briefed") {
		t.Error("start flags not applied")
	}
	if gs.Outcome != OutcomeInProgress {
		t.Errorf("expected in_progress, got %q", gs.Outcome)
	}
	if gs.IsEnded() {
		t.Error("new session should not be ended")
	}

	// The seeded state must be copies, not aliases of the ruleset.
	gs.Inventory[0] = "changed"
	gs.Flags["briefed"] = false
	if rs.Start.Inventory[0] != "lantern" || !rs.Start.Flags["briefed"] {
		t.Error("game state aliases the ruleset START block")
	}
}

func TestGameState_RecordTurnTrimsHistory(t *testing.T) {
	gs := &GameState{}
	for i := 1; i <= HistoryLimit+5; i++ {
		gs.Turn = i
		gs.RecordTurn(fmt.Sprintf("command %d", i), fmt.Sprintf("narration %d", i))
	}

	if len(gs.History) != HistoryLimit {
		t.Fatalf("expected history trimmed to %d, got %d", HistoryLimit, len(gs.History))
	}
	if gs.History[0].Turn != 6 {
		t.Errorf("expected oldest retained turn 6, got %d", gs.History[0].Turn)
	}
	if gs.History[len(gs.History)-1].Turn != HistoryLimit+5 {
		t.Errorf("expected newest turn %d, got %d", HistoryLimit+5, gs.History[len(gs.History)-1].Turn)
	}
}

func TestGameState_RecentHistory(t *testing.T) {
	gs := &GameState{}
	for i := 1; i <= 5; i++ {
		gs.Turn = i
		gs.RecordTurn(fmt.Sprintf("command %d", i), "ok")
	}

	recent := gs.RecentHistory(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}
	if recent[0].Turn != 3 || recent[2].Turn != 5 {
		t.Errorf("expected turns 3..5 oldest first, got %d..%d", recent[0].Turn, recent[2].Turn)
	}

	if got := gs.RecentHistory(100); len(got) != 5 {
		t.Errorf("over-ask should return everything, got %d", len(got))
	}
	if got := gs.RecentHistory(0); got != nil {
		t.Errorf("zero window should return nil, got %v", got)
	}
}

func TestGameState_JSONRoundTrip(t *testing.T) {
	rs := &rules.RuleSet{
		World: map[string]string{"cell": "A cell."},
		Start: rules.Start{Location: "cell", HP: 5, Inventory: []string{"key"}},
	}
	gs := NewGameState(rs)
	gs.Ruleset = "test_quest.json"
	gs.Turn = 4
	gs.Flags = map[string]bool{"door_open": true}
	gs.RecordTurn("look", "You see a cell.")

	data, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back GameState
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if back.ID != gs.ID || back.Ruleset != gs.Ruleset || back.Turn != gs.Turn {
		t.Errorf("identity fields changed: %+v vs %+v", back, gs)
	}
	if !reflect.DeepEqual(back.Inventory, gs.Inventory) || !reflect.DeepEqual(back.Flags, gs.Flags) {
		t.Error("inventory or flags changed in round trip")
	}
	if len(back.History) != 1 || back.History[0].Input != "look" {
		t.Errorf("history changed in round trip: %+v", back.History)
	}
}

func TestGameState_DescribeInventory(t *testing.T) {
	gs := &GameState{}
	if got := gs.DescribeInventory(3); got != "Your inventory is empty." {
		t.Errorf("unexpected empty description: %q", got)
	}

	gs.Inventory = []string{"rope", "torch"}
	got := gs.DescribeInventory(3)
	if !strings.Contains(got, "(2/3)") {
		t.Errorf("expected count header, got %q", got)
	}
	if !strings.Contains(got, "rope") || !strings.Contains(got, "torch") {
		t.Errorf("expected items listed, got %q", got)
	}
}

func TestGameState_ActiveFlags(t *testing.T) {
	gs := &GameState{Flags: map[string]bool{
		"zeta":  true,
		"alpha": true,
		"mid":   false,
	}}
	got := gs.ActiveFlags()
	want := []string{"alpha", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
