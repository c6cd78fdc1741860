package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
)

// Storage persists game sessions and serves ruleset files. Session
// writes must never overlap a turn in flight; the engine's session
// locks enforce that above this layer.
type Storage interface {
	// Ping tests the backing connection.
	Ping(ctx context.Context) error

	// Close closes the backing connection.
	Close() error

	// SaveGameState saves a gamestate under its session ID.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error

	// LoadGameState retrieves a gamestate by session ID.
	// Returns nil if the gamestate doesn't exist.
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)

	// DeleteGameState removes a gamestate by session ID.
	DeleteGameState(ctx context.Context, id uuid.UUID) error

	// GetRuleSet loads and validates a ruleset file by filename.
	GetRuleSet(ctx context.Context, filename string) (*rules.RuleSet, error)

	// ListRuleSets maps ruleset quest names to filenames.
	ListRuleSets(ctx context.Context) (map[string]string, error)
}
