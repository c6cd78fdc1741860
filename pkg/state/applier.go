package state

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/ruleforge/dungeon/pkg/rules"
)

// Blocked reasons reported upstream for diagnostic logging.
const (
	ReasonInventoryFull = "inventory full"
	ReasonItemNotHeld   = "item not held"
	ReasonSessionEnded  = "session ended"
)

// Applier validates proposed atoms against the ruleset and current game
// state, applies the legal ones, and records a reason for each rejection.
// It is the only component that writes to a GameState.
type Applier struct {
	gs     *GameState
	rules  *rules.RuleSet
	logger *slog.Logger
}

// NewApplier creates an applier bound to one game state and ruleset.
func NewApplier(gs *GameState, rs *rules.RuleSet, logger *slog.Logger) *Applier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Applier{gs: gs, rules: rs, logger: logger}
}

// Apply processes atoms in order. Each atom sees the effects of the
// atoms before it; a blocked atom has no effect and does not abort the
// rest of the batch. Once the session is terminal every atom is blocked.
func (ap *Applier) Apply(atoms []Atom) []ApplyResult {
	results := make([]ApplyResult, 0, len(atoms))
	for _, atom := range atoms {
		if ap.gs.IsEnded() {
			results = append(results, ap.blocked(atom, ReasonSessionEnded))
			continue
		}

		switch atom.Type {
		case AtomAddItem:
			results = append(results, ap.applyAddItem(atom))
		case AtomRemoveItem:
			results = append(results, ap.applyRemoveItem(atom))
		case AtomMoveTo:
			results = append(results, ap.applyMoveTo(atom))
		case AtomSetFlag:
			ap.gs.setFlag(atom.Flag, atom.Value)
			results = append(results, ApplyResult{Atom: atom, Applied: true})
		case AtomHPDelta:
			results = append(results, ap.applyHPDelta(atom))
		default:
			// Unknown types are rejected at the parse boundary; an atom
			// reaching here without a known type is a programming error.
			results = append(results, ap.blocked(atom, fmt.Sprintf("unknown atom type %q", atom.Type)))
		}
	}
	return results
}

func (ap *Applier) applyAddItem(atom Atom) ApplyResult {
	if len(ap.gs.Inventory) >= ap.rules.InventoryLimit {
		return ap.blocked(atom, ReasonInventoryFull)
	}
	if !slices.Contains(ap.gs.Inventory, atom.Item) {
		ap.gs.Inventory = append(ap.gs.Inventory, atom.Item)
	}
	return ApplyResult{Atom: atom, Applied: true}
}

func (ap *Applier) applyRemoveItem(atom Atom) ApplyResult {
	for i, item := range ap.gs.Inventory {
		if item == atom.Item {
			ap.gs.Inventory = append(ap.gs.Inventory[:i], ap.gs.Inventory[i+1:]...)
			return ApplyResult{Atom: atom, Applied: true}
		}
	}
	return ap.blocked(atom, ReasonItemNotHeld)
}

func (ap *Applier) applyMoveTo(atom Atom) ApplyResult {
	if flag, locked := ap.rules.RequiredFlag(atom.Location); locked && !ap.gs.Flag(flag) {
		return ap.blocked(atom, fmt.Sprintf("location locked: requires flag %s", flag))
	}
	if ap.gs.Location != atom.Location {
		ap.logger.Info("Location changed",
			"from", ap.gs.Location,
			"to", atom.Location)
	}
	ap.gs.Location = atom.Location
	return ApplyResult{Atom: atom, Applied: true}
}

func (ap *Applier) applyHPDelta(atom Atom) ApplyResult {
	hp := ap.gs.HP + atom.Delta
	if hp <= 0 {
		hp = 0
		ap.gs.setFlag(FlagHPZero, true)
	}
	ap.gs.HP = hp
	return ApplyResult{Atom: atom, Applied: true}
}

func (ap *Applier) blocked(atom Atom, reason string) ApplyResult {
	ap.logger.Warn("Rule blocked atom",
		"atom", atom.String(),
		"reason", reason)
	return ApplyResult{Atom: atom, Applied: false, Reason: reason}
}

func (gs *GameState) setFlag(flag string, value bool) {
	if gs.Flags == nil {
		gs.Flags = make(map[string]bool)
	}
	gs.Flags[flag] = value
}
