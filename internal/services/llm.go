package services

import (
	"context"

	"github.com/ruleforge/dungeon/pkg/chat"
)

// LLMService is the narrator collaborator boundary. The engine sends a
// fully assembled message array and gets raw text back; everything the
// narrator proposes is validated downstream.
type LLMService interface {
	// InitModel prepares the model on startup.
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a narrator reply for the given messages.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

	// IsModelReady checks if the specified model is ready for use.
	IsModelReady(ctx context.Context, modelName string) (bool, error)
}
