package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/internal/engine"
	"github.com/ruleforge/dungeon/internal/logger"
	"github.com/ruleforge/dungeon/internal/services"
	"github.com/ruleforge/dungeon/internal/storage"
	"github.com/ruleforge/dungeon/pkg/chat"
	"github.com/ruleforge/dungeon/pkg/state"
)

// narratorTimeout bounds the blocking narrator call for one turn.
const narratorTimeout = 90 * time.Second

// TurnResponse is the composite result of one processed turn.
type TurnResponse struct {
	GameStateID uuid.UUID           `json:"gamestate_id"`
	Turn        int                 `json:"turn"`
	Narration   string              `json:"narration,omitempty"`
	Results     []state.ApplyResult `json:"results,omitempty"`
	Outcome     state.Outcome       `json:"outcome"`
	Rejected    string              `json:"rejected,omitempty"`
	ParseError  string              `json:"parse_error,omitempty"`
}

// TurnHandler processes player turns. Each session is strictly
// sequential: the session lock holds from load to save, so no partial
// turn state is ever observable.
type TurnHandler struct {
	llm     services.LLMService
	storage storage.Storage
	locks   *engine.SessionLocks
	logger  *slog.Logger
}

func NewTurnHandler(llm services.LLMService, storage storage.Storage, logger *slog.Logger) *TurnHandler {
	return &TurnHandler{
		llm:     llm,
		storage: storage,
		locks:   engine.NewSessionLocks(),
		logger:  logger,
	}
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var req chat.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'gamestate_id' and 'command'.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	unlock := h.locks.Lock(req.GameStateID)
	defer unlock()

	gs, err := h.storage.LoadGameState(r.Context(), req.GameStateID)
	if err != nil {
		h.logger.Error("Failed to load gamestate", "uuid", req.GameStateID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game state.")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found.")
		return
	}

	rs, err := h.storage.GetRuleSet(r.Context(), gs.Ruleset)
	if err != nil {
		h.logger.Error("Failed to load ruleset", "ruleset", gs.Ruleset, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session ruleset.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), narratorTimeout)
	defer cancel()

	eng := engine.New(rs, h.llm, sessionLogger(h.logger, gs.ID))
	result, err := eng.RunTurn(ctx, gs, req.Command)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrSessionEnded):
			writeError(w, h.logger, http.StatusConflict, "Session has already ended.")
		case errors.Is(err, engine.ErrNarratorUnavailable):
			h.logger.Error("Narrator unavailable", "error", err)
			writeError(w, h.logger, http.StatusBadGateway, "Narrator is unavailable. Please try again.")
		default:
			h.logger.Error("Turn processing failed", "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to process turn.")
		}
		return
	}

	// A rejected command did not mutate anything; skip the save.
	if result.Rejected == "" {
		if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
			h.logger.Error("Failed to save gamestate after turn", "uuid", gs.ID, "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Turn applied but saving failed.")
			return
		}
	}

	response := TurnResponse{
		GameStateID: gs.ID,
		Turn:        result.Turn,
		Narration:   result.Narration,
		Results:     result.Results,
		Outcome:     result.Outcome,
		Rejected:    result.Rejected,
		ParseError:  result.ParseErr,
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Error encoding turn response", "error", err)
	}
}

func sessionLogger(base *slog.Logger, id uuid.UUID) *slog.Logger {
	return logger.WithSession(base, id.String())
}
