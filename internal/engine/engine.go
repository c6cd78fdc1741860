// Package engine sequences game turns. It owns the pipeline from
// accepted command to terminal-outcome check; the narrator proposes,
// the rules engine disposes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruleforge/dungeon/internal/services"
	"github.com/ruleforge/dungeon/pkg/narrator"
	"github.com/ruleforge/dungeon/pkg/prompts"
	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
	"github.com/ruleforge/dungeon/pkg/transcript"
)

var (
	// ErrNarratorUnavailable wraps transport failures reaching the
	// narrator. The session does not advance; retrying is the caller's
	// decision.
	ErrNarratorUnavailable = errors.New("narrator unavailable")

	// ErrSessionEnded is returned for turns against a terminal session.
	ErrSessionEnded = errors.New("session has ended")
)

// FallbackNarration covers turns where the narrator reply carried no
// usable payload.
const FallbackNarration = "The story falters for a moment, then continues."

// TurnResult is everything one turn produced.
type TurnResult struct {
	Turn      int                 `json:"turn"`
	Narration string              `json:"narration,omitempty"`
	Results   []state.ApplyResult `json:"results,omitempty"`
	Outcome   state.Outcome       `json:"outcome"`

	// Rejected carries the command-validation reason. A rejected turn
	// costs nothing: no narrator call, no state change, no increment.
	Rejected string `json:"rejected,omitempty"`

	// ParseErr is the narrator-protocol diagnostic for a turn that
	// proceeded without atoms because the reply was unusable.
	ParseErr string `json:"parse_error,omitempty"`
}

// Engine orchestrates turns for one ruleset. It holds no per-session
// state; the caller owns the GameState and passes it in.
type Engine struct {
	rules    *rules.RuleSet
	llm      services.LLMService
	logger   *slog.Logger
	recorder *transcript.Recorder
}

// New creates an engine for a ruleset and narrator service.
func New(rs *rules.RuleSet, llm services.LLMService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{rules: rs, llm: llm, logger: logger}
}

// WithRecorder attaches a transcript recorder.
func (e *Engine) WithRecorder(r *transcript.Recorder) *Engine {
	e.recorder = r
	return e
}

// Rules exposes the session ruleset to read-only collaborators (UI).
func (e *Engine) Rules() *rules.RuleSet {
	return e.rules
}

// RunTurn processes exactly one turn:
//
//  1. validate the command; rejection costs nothing
//  2. call the narrator with assembled context
//  3. parse the reply; an unusable reply means zero atoms
//  4. apply atoms in order, blocking the illegal ones
//  5. increment the turn counter
//  6. evaluate end conditions
//
// GameState is mutated in place. The only error returns are narrator
// transport failures and turns against an ended session; both leave the
// state untouched.
func (e *Engine) RunTurn(ctx context.Context, gs *state.GameState, input string) (*TurnResult, error) {
	if gs.IsEnded() {
		return nil, ErrSessionEnded
	}

	if err := state.ValidateCommand(input, e.rules); err != nil {
		e.logger.Debug("Command rejected", "input", input, "reason", err)
		return &TurnResult{
			Turn:     gs.Turn,
			Outcome:  gs.Outcome,
			Rejected: err.Error(),
		}, nil
	}

	messages, err := prompts.New().
		WithRules(e.rules).
		WithGameState(gs).
		WithCommand(input).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build narrator prompt: %w", err)
	}

	reply, err := e.llm.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNarratorUnavailable, err)
	}

	result := &TurnResult{}
	resp, parseErr := narrator.Parse(reply.Message)
	if parseErr != nil {
		// The turn proceeds without state mutation from atoms, but the
		// failure is surfaced, not swallowed.
		e.logger.Warn("Unusable narrator response",
			"error", parseErr,
			"session_id", gs.ID.String())
		result.ParseErr = parseErr.Error()
		resp = &narrator.Response{Narration: FallbackNarration}
	}
	if resp.Narration == "" {
		resp.Narration = FallbackNarration
	}

	applier := state.NewApplier(gs, e.rules, e.logger)
	result.Results = applier.Apply(resp.StateChange)

	gs.Turn++
	state.EvaluateOutcome(gs, e.rules)

	result.Turn = gs.Turn
	result.Narration = resp.Narration
	result.Outcome = gs.Outcome

	gs.RecordTurn(input, resp.Narration)
	if e.recorder != nil {
		e.recorder.RecordTurn(gs.Turn, input, resp.Narration, result.Results)
		if result.ParseErr != "" {
			e.recorder.RecordNote(fmt.Sprintf("[NARRATOR ERROR: %s]", result.ParseErr))
		}
	}

	return result, nil
}
