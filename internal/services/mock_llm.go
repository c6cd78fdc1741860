package services

import (
	"context"
	"sync"

	"github.com/ruleforge/dungeon/pkg/chat"
)

// MockLLM is a scriptable LLMService for tests and the simulator.
type MockLLM struct {
	InitModelFunc    func(ctx context.Context, modelName string) error
	ChatFunc         func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)
	IsModelReadyFunc func(ctx context.Context, modelName string) (bool, error)

	// Responses are returned in order when ChatFunc is unset. After the
	// script runs out the last response repeats.
	Responses []string

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      [][]chat.ChatMessage

	mu sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLM)(nil)

// NewMockLLM creates a new mock narrator.
func NewMockLLM(responses ...string) *MockLLM {
	return &MockLLM{
		Responses:      responses,
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([][]chat.ChatMessage, 0),
	}
}

// InitModel mocks model initialization.
func (m *MockLLM) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)
	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Chat mocks narrator replies, walking the scripted responses.
func (m *MockLLM) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChatCalls = append(m.ChatCalls, messages)

	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, messages)
	}

	if len(m.Responses) == 0 {
		return &chat.ChatResponse{Message: `{"narration":"Nothing happens.","state_change":[]}`}, nil
	}
	idx := len(m.ChatCalls) - 1
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	}
	return &chat.ChatResponse{Message: m.Responses[idx]}, nil
}

// IsModelReady mocks model readiness.
func (m *MockLLM) IsModelReady(ctx context.Context, modelName string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.IsModelReadyFunc != nil {
		return m.IsModelReadyFunc(ctx, modelName)
	}
	return true, nil
}

// SetChatError sets up the mock to fail every Chat call.
func (m *MockLLM) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// Reset clears all call tracking.
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([][]chat.ChatMessage, 0)
}
