package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruleforge/dungeon/pkg/chat"
	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
)

// Builder assembles the message array for one narrator call using a
// fluent interface. It keeps prompt construction out of turn logic.
type Builder struct {
	gs           *state.GameState
	rules        *rules.RuleSet
	command      string
	historyLimit int
}

// New creates a builder with the default history window.
func New() *Builder {
	return &Builder{historyLimit: state.PromptHistoryLimit}
}

// WithGameState sets the current session state.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithRules sets the session ruleset.
func (b *Builder) WithRules(rs *rules.RuleSet) *Builder {
	b.rules = rs
	return b
}

// WithCommand sets the accepted player command for this turn.
func (b *Builder) WithCommand(command string) *Builder {
	b.command = command
	return b
}

// WithHistoryLimit overrides how many recent turns are included.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs the final message array for the narrator.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	if b.rules == nil {
		return nil, fmt.Errorf("ruleset is required")
	}

	context, err := b.buildContext()
	if err != nil {
		return nil, err
	}

	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: GMSystemPrompt},
		{Role: chat.ChatRoleUser, Content: context},
	}, nil
}

// buildContext renders the current state, the ruleset, recent history,
// and the player command into a single user message.
func (b *Builder) buildContext() (string, error) {
	rulesJSON, err := json.MarshalIndent(b.rules, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshaling ruleset: %w", err)
	}

	inventory := "empty"
	if len(b.gs.Inventory) > 0 {
		inventory = strings.Join(b.gs.Inventory, ", ")
	}
	flags := "none"
	if active := b.gs.ActiveFlags(); len(active) > 0 {
		flags = strings.Join(active, ", ")
	}

	var sb strings.Builder
	sb.WriteString("CURRENT STATE:\n")
	fmt.Fprintf(&sb, "Location: %s\n", b.gs.Location)
	fmt.Fprintf(&sb, "Inventory: %s\n", inventory)
	fmt.Fprintf(&sb, "HP: %d\n", b.gs.HP)
	fmt.Fprintf(&sb, "Flags: %s\n", flags)
	fmt.Fprintf(&sb, "Turn: %d\n\n", b.gs.Turn)

	sb.WriteString("RULES:\n")
	sb.Write(rulesJSON)
	sb.WriteString("\n\n")

	if history := b.gs.RecentHistory(b.historyLimit); len(history) > 0 {
		fmt.Fprintf(&sb, "RECENT HISTORY (last %d turns):\n", len(history))
		for _, turn := range history {
			fmt.Fprintf(&sb, "Player: %s\n", turn.Input)
			fmt.Fprintf(&sb, "GM: %s\n\n", truncate(turn.Narration, 200))
		}
	}

	fmt.Fprintf(&sb, "Player command: %s\n\nRespond with JSON only.", b.command)
	return sb.String(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
