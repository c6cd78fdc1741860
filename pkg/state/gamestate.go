package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/pkg/rules"
)

// Outcome is the terminal status of a session. Once a session leaves
// InProgress it never transitions again.
type Outcome string

const (
	OutcomeInProgress Outcome = "in_progress"
	OutcomeWon        Outcome = "won"
	OutcomeLost       Outcome = "lost"
)

// FlagHPZero is derived by the applier whenever HP reaches zero. Rulesets
// typically list it in LOSE_ANY_FLAGS.
const FlagHPZero = "hp_zero"

// HistoryLimit is how many turn records are retained on the game state.
const HistoryLimit = 10

// PromptHistoryLimit is how many recent turns are surfaced to the narrator.
const PromptHistoryLimit = 3

// TurnRecord is one completed turn, kept for narrator context and transcripts.
type TurnRecord struct {
	Turn      int    `json:"turn"`
	Input     string `json:"input"`
	Narration string `json:"narration"`
}

// GameState is the mutable record of a game session. All mutation goes
// through the Applier; other components only read it.
type GameState struct {
	ID        uuid.UUID       `json:"id"`
	Ruleset   string          `json:"ruleset,omitempty"` // ruleset filename, set at session creation
	Location  string          `json:"location"`
	Inventory []string        `json:"inventory"`
	Flags     map[string]bool `json:"flags"`
	HP        int             `json:"hp"`
	Turn      int             `json:"turn"`
	Outcome   Outcome         `json:"outcome"`
	History   []TurnRecord    `json:"history,omitempty"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// NewGameState creates a session seeded from the ruleset's START block.
func NewGameState(rs *rules.RuleSet) *GameState {
	flags := make(map[string]bool, len(rs.Start.Flags))
	for k, v := range rs.Start.Flags {
		flags[k] = v
	}
	return &GameState{
		ID:        uuid.New(),
		Location:  rs.Start.Location,
		Inventory: slices.Clone(rs.Start.Inventory),
		Flags:     flags,
		HP:        rs.Start.HP,
		Outcome:   OutcomeInProgress,
		CreatedAt: time.Now(),
	}
}

// Flag reports a flag's value; an absent flag is false.
func (gs *GameState) Flag(name string) bool {
	return gs.Flags[name]
}

// HasItem reports whether an item is currently held.
func (gs *GameState) HasItem(item string) bool {
	return slices.Contains(gs.Inventory, item)
}

// IsEnded reports whether the session has reached a terminal outcome.
func (gs *GameState) IsEnded() bool {
	return gs.Outcome != "" && gs.Outcome != OutcomeInProgress
}

// RecordTurn appends a completed turn and trims history to HistoryLimit.
func (gs *GameState) RecordTurn(input, narration string) {
	gs.History = append(gs.History, TurnRecord{
		Turn:      gs.Turn,
		Input:     input,
		Narration: narration,
	})
	if len(gs.History) > HistoryLimit {
		gs.History = gs.History[len(gs.History)-HistoryLimit:]
	}
}

// RecentHistory returns the last n turn records, oldest first.
func (gs *GameState) RecentHistory(n int) []TurnRecord {
	if n <= 0 || len(gs.History) == 0 {
		return nil
	}
	if len(gs.History) <= n {
		return gs.History
	}
	return gs.History[len(gs.History)-n:]
}

// DescribeInventory renders the inventory for the player.
func (gs *GameState) DescribeInventory(limit int) string {
	if len(gs.Inventory) == 0 {
		return "Your inventory is empty."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Inventory (%d/%d):\n", len(gs.Inventory), limit)
	for _, item := range gs.Inventory {
		fmt.Fprintf(&sb, "  - %s\n", item)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ActiveFlags returns the names of all true flags, sorted.
func (gs *GameState) ActiveFlags() []string {
	var active []string
	for name, v := range gs.Flags {
		if v {
			active = append(active, name)
		}
	}
	slices.Sort(active)
	return active
}
