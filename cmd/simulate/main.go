// Command simulate replays a scripted session against a ruleset with a
// deterministic narrator. Useful for exercising rule enforcement
// end-to-end without Ollama: every blocked atom, turn count, and the
// final outcome print to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/jwebster45206/d20"

	"github.com/ruleforge/dungeon/internal/config"
	"github.com/ruleforge/dungeon/internal/engine"
	"github.com/ruleforge/dungeon/internal/logger"
	"github.com/ruleforge/dungeon/internal/services"
	"github.com/ruleforge/dungeon/pkg/chat"
	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
)

// Step is one scripted turn: the player command and the narrator reply
// the mock will return for it.
type Step struct {
	Command   string       `json:"command"`
	Narration string       `json:"narration"`
	Atoms     []state.Atom `json:"atoms,omitempty"`
}

func main() {
	rulesPath := flag.String("rules", "", "path to ruleset file (required)")
	scriptPath := flag.String("script", "", "path to JSON script of steps (defaults to a built-in smoke script)")
	flag.Parse()

	if *rulesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	rs, err := rules.Load(*rulesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load ruleset: %v\n", err)
		os.Exit(1)
	}

	steps, err := loadScript(*scriptPath, rs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load script: %v\n", err)
		os.Exit(1)
	}

	// The reply is pinned per step rather than consumed from a script:
	// a rejected command never reaches the narrator, and the pairing of
	// step to reply must survive that.
	responses := renderResponses(steps)
	var reply string
	mock := services.NewMockLLM()
	mock.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return &chat.ChatResponse{Message: reply}, nil
	}
	eng := engine.New(rs, mock, log)
	gs := state.NewGameState(rs)

	// A d20 actor shadows the session HP so hp_delta bookkeeping can be
	// cross-checked against an independent implementation.
	actor, err := d20.NewActor("player").
		WithHP(gs.HP).
		WithAC(10).
		WithAttributes(map[string]int{"luck": 10}).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build shadow actor: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== SIMULATION: %s ===\n", rs.Quest.Name)
	fmt.Printf("Start: location=%s hp=%d inventory=%v\n\n", gs.Location, gs.HP, gs.Inventory)

	var applied, blocked, rejected int
	for i, step := range steps {
		reply = responses[i]
		result, err := eng.RunTurn(context.Background(), gs, step.Command)
		if err != nil {
			fmt.Printf("[step %d] %q: session refused further turns (%v)\n", i+1, step.Command, err)
			break
		}

		if result.Rejected != "" {
			rejected++
			fmt.Printf("[step %d] %q rejected: %s\n", i+1, step.Command, result.Rejected)
			continue
		}

		fmt.Printf("[turn %d] > %s\n", result.Turn, step.Command)
		fmt.Printf("  %s\n", result.Narration)
		for _, res := range result.Results {
			if res.Applied {
				applied++
				fmt.Printf("  ✓ %s\n", res.Atom.String())
			} else {
				blocked++
				fmt.Printf("  ✗ %s — %s\n", res.Atom.String(), res.Reason)
			}
		}

		if gs.HP > 0 {
			if err := actor.SetHP(gs.HP); err != nil {
				fmt.Fprintf(os.Stderr, "shadow actor rejected hp %d: %v\n", gs.HP, err)
			} else if actor.HP() != gs.HP {
				fmt.Printf("  ! shadow actor hp mismatch: engine=%d actor=%d\n", gs.HP, actor.HP())
			}
		}

		if result.Outcome != state.OutcomeInProgress {
			break
		}
	}

	fmt.Printf("\n=== RESULT ===\n")
	fmt.Printf("Outcome:  %s\n", gs.Outcome)
	fmt.Printf("Turns:    %d/%d\n", gs.Turn, rs.EndConditions.MaxTurns)
	fmt.Printf("Location: %s\n", gs.Location)
	fmt.Printf("HP:       %d\n", gs.HP)
	fmt.Printf("Atoms:    %d applied, %d blocked\n", applied, blocked)
	fmt.Printf("Commands: %d rejected\n", rejected)
}

// loadScript reads the step script, or synthesizes a short smoke script
// from the ruleset when none is given.
func loadScript(path string, rs *rules.RuleSet) ([]Step, error) {
	if path == "" {
		return smokeScript(rs), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var steps []Step
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("invalid script %s: %w", path, err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("script %s has no steps", path)
	}
	return steps, nil
}

// smokeScript probes the rule boundaries: over-cap pickups, a locked
// move, and a fatal hp_delta.
func smokeScript(rs *rules.RuleSet) []Step {
	steps := []Step{
		{
			Command:   "look",
			Narration: "You take stock of your surroundings.",
			Atoms:     []state.Atom{state.SetFlag("looked_around", true)},
		},
	}

	// Fill the inventory past its cap.
	for i := 0; i <= rs.InventoryLimit; i++ {
		item := fmt.Sprintf("trinket_%d", i+1)
		steps = append(steps, Step{
			Command:   "take " + item,
			Narration: fmt.Sprintf("You pocket the %s.", item),
			Atoms:     []state.Atom{state.AddItem(item)},
		})
	}

	// Walk into the first lock without its key flag.
	for location := range rs.Locks {
		steps = append(steps, Step{
			Command:   "move " + location,
			Narration: fmt.Sprintf("You push against the way into %s.", location),
			Atoms:     []state.Atom{state.MoveTo(location)},
		})
		break
	}

	steps = append(steps, Step{
		Command:   "attack the shadow",
		Narration: "The shadow strikes back, hard.",
		Atoms:     []state.Atom{state.HPDelta(-999)},
	})
	return steps
}

// renderResponses marshals each step's reply into the narrator wire
// format the engine parses.
func renderResponses(steps []Step) []string {
	responses := make([]string, 0, len(steps))
	for _, step := range steps {
		atoms := step.Atoms
		if atoms == nil {
			atoms = []state.Atom{}
		}
		payload, _ := json.Marshal(struct {
			Narration   string       `json:"narration"`
			StateChange []state.Atom `json:"state_change"`
		}{Narration: step.Narration, StateChange: atoms})
		responses = append(responses, string(payload))
	}
	return responses
}
