package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu         sync.Mutex
	gameStates map[uuid.UUID]*state.GameState
	ruleSets   map[string]*rules.RuleSet

	// Optional error overrides
	SaveErr error
	LoadErr error
	PingErr error
}

var _ Storage = (*MockStorage)(nil)

// NewMockStorage creates an empty in-memory store.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		gameStates: make(map[uuid.UUID]*state.GameState),
		ruleSets:   make(map[string]*rules.RuleSet),
	}
}

// AddRuleSet registers a ruleset under a filename.
func (m *MockStorage) AddRuleSet(filename string, rs *rules.RuleSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ruleSets[filename] = rs
}

func (m *MockStorage) Ping(ctx context.Context) error {
	return m.PingErr
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameStates[id] = gs
	return nil
}

func (m *MockStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameStates[id], nil
}

func (m *MockStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gameStates, id)
	return nil
}

func (m *MockStorage) GetRuleSet(ctx context.Context, filename string) (*rules.RuleSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rs, ok := m.ruleSets[filename]
	if !ok {
		return nil, fmt.Errorf("ruleset not found: %s", filename)
	}
	return rs, nil
}

func (m *MockStorage) ListRuleSets(ctx context.Context) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.ruleSets))
	for filename, rs := range m.ruleSets {
		name := rs.Quest.Name
		if name == "" {
			name = filename
		}
		out[name] = filename
	}
	return out, nil
}
