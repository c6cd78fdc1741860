package state

import (
	"testing"

	"github.com/ruleforge/dungeon/pkg/rules"
)

func testRules() *rules.RuleSet {
	return &rules.RuleSet{
		Commands:       []string{"look", "take <item>", "go <location>"},
		InventoryLimit: 1,
		Locks:          map[string]string{"ancient gate": "have_golden_key"},
		EndConditions: rules.EndConditions{
			WinAllFlags:  []string{"treasure_found"},
			LoseAnyFlags: []string{FlagHPZero},
			MaxTurns:     10,
		},
		World: map[string]string{
			"forest clearing": "A clearing.",
			"ancient gate":    "A locked gate.",
		},
		Start: rules.Start{Location: "forest clearing", HP: 10},
	}
}

func TestApplier_InventoryCap(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{
		AddItem("rope"),
		AddItem("torch"),
	})

	if !results[0].Applied {
		t.Errorf("first pickup should apply, blocked with %q", results[0].Reason)
	}
	if results[1].Applied {
		t.Error("second pickup should be blocked at limit 1")
	}
	if results[1].Reason != ReasonInventoryFull {
		t.Errorf("expected reason %q, got %q", ReasonInventoryFull, results[1].Reason)
	}
	if len(gs.Inventory) != 1 || gs.Inventory[0] != "rope" {
		t.Errorf("expected inventory [rope], got %v", gs.Inventory)
	}
}

func TestApplier_AddItemIdempotent(t *testing.T) {
	rs := testRules()
	rs.InventoryLimit = 3
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{AddItem("rope"), AddItem("rope")})
	for i, res := range results {
		if !res.Applied {
			t.Errorf("atom %d should apply", i)
		}
	}
	if len(gs.Inventory) != 1 {
		t.Errorf("duplicate add should not duplicate the item, got %v", gs.Inventory)
	}
}

func TestApplier_RemoveItemNotHeld(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{RemoveItem("sword")})
	if results[0].Applied {
		t.Error("removing an item not held should be blocked")
	}
	if results[0].Reason != ReasonItemNotHeld {
		t.Errorf("expected reason %q, got %q", ReasonItemNotHeld, results[0].Reason)
	}
}

func TestApplier_BatchIsSequential(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	// The remove sees the add that precedes it in the same batch.
	results := applier.Apply([]Atom{AddItem("rope"), RemoveItem("rope")})
	if !results[0].Applied || !results[1].Applied {
		t.Fatalf("both atoms should apply: %+v", results)
	}
	if len(gs.Inventory) != 0 {
		t.Errorf("expected empty inventory, got %v", gs.Inventory)
	}
}

func TestApplier_LockedLocation(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{MoveTo("ancient gate")})
	if results[0].Applied {
		t.Error("move through a locked gate without the key flag should be blocked")
	}
	if want := "location locked: requires flag have_golden_key"; results[0].Reason != want {
		t.Errorf("expected reason %q, got %q", want, results[0].Reason)
	}
	if gs.Location != "forest clearing" {
		t.Errorf("location should be unchanged, got %q", gs.Location)
	}

	// With the flag set the same move succeeds.
	results = applier.Apply([]Atom{
		SetFlag("have_golden_key", true),
		MoveTo("ancient gate"),
	})
	if !results[1].Applied {
		t.Errorf("move should apply once flag is set, blocked with %q", results[1].Reason)
	}
	if gs.Location != "ancient gate" {
		t.Errorf("expected location 'ancient gate', got %q", gs.Location)
	}
}

func TestApplier_HPClampAndDerivedFlag(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{HPDelta(-3)})
	if !results[0].Applied || gs.HP != 7 {
		t.Fatalf("expected hp 7, got %d (applied=%t)", gs.HP, results[0].Applied)
	}
	if gs.Flag(FlagHPZero) {
		t.Error("hp_zero should not be set while hp > 0")
	}

	applier.Apply([]Atom{HPDelta(-100)})
	if gs.HP != 0 {
		t.Errorf("hp should clamp at 0, got %d", gs.HP)
	}
	if !gs.Flag(FlagHPZero) {
		t.Error("hp_zero flag should be derived when hp reaches 0")
	}
}

func TestApplier_TerminalSessionBlocksEverything(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	gs.Outcome = OutcomeLost
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{
		AddItem("rope"),
		SetFlag("anything", true),
		HPDelta(5),
	})
	for i, res := range results {
		if res.Applied {
			t.Errorf("atom %d should be blocked on an ended session", i)
		}
		if res.Reason != ReasonSessionEnded {
			t.Errorf("atom %d: expected reason %q, got %q", i, ReasonSessionEnded, res.Reason)
		}
	}
	if len(gs.Inventory) != 0 || gs.HP != 10 {
		t.Error("terminal session state must not change")
	}
}

func TestApplier_SetFlagFalse(t *testing.T) {
	rs := testRules()
	gs := NewGameState(rs)
	gs.Flags["door_open"] = true
	applier := NewApplier(gs, rs, nil)

	results := applier.Apply([]Atom{SetFlag("door_open", false)})
	if !results[0].Applied {
		t.Fatal("set_flag false should apply")
	}
	if gs.Flag("door_open") {
		t.Error("flag should be false after set_flag false")
	}
}
