package chat

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Narrator response
	ChatRoleSystem = "system"    // GM instructions
)

// ChatMessage is a single message in the narrator conversation. The
// shape is defined by the Ollama chat API and reused for every provider.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the raw narrator reply before any parsing.
type ChatResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TurnRequest asks the API to process one player turn.
type TurnRequest struct {
	GameStateID uuid.UUID `json:"gamestate_id"`
	Command     string    `json:"command"`
}

func (tr *TurnRequest) Validate() error {
	if tr.GameStateID == uuid.Nil {
		return fmt.Errorf("gamestate_id is required")
	}
	if tr.Command == "" {
		return fmt.Errorf("command cannot be empty")
	}
	return nil
}
