package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/internal/storage"
	"github.com/ruleforge/dungeon/pkg/state"
)

type errorResponse struct {
	Error string `json:"error"`
}

// CreateGameStateRequest starts a new session from a ruleset file.
type CreateGameStateRequest struct {
	Ruleset string `json:"ruleset"`
}

// GameStateHandler serves session lifecycle: create, fetch, delete.
type GameStateHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewGameStateHandler(storage storage.Storage, logger *slog.Logger) *GameStateHandler {
	return &GameStateHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *GameStateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodDelete:
		h.handleDelete(w, r)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (h *GameStateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateGameStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'ruleset' field.")
		return
	}
	if req.Ruleset == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Ruleset cannot be empty.")
		return
	}

	rs, err := h.storage.GetRuleSet(r.Context(), req.Ruleset)
	if err != nil {
		h.logger.Warn("Failed to load ruleset", "ruleset", req.Ruleset, "error", err)
		writeError(w, h.logger, http.StatusNotFound, "Ruleset not found or invalid.")
		return
	}

	gs := state.NewGameState(rs)
	gs.Ruleset = req.Ruleset

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save gamestate", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game state.")
		return
	}

	h.logger.Info("Session created",
		"session_id", gs.ID.String(),
		"ruleset", req.Ruleset)

	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Error encoding gamestate response", "error", err)
	}
}

func (h *GameStateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load gamestate", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game state.")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game state not found.")
		return
	}

	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Error encoding gamestate response", "error", err)
	}
}

func (h *GameStateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete gamestate", "uuid", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game state.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sessionID extracts the session UUID from /v1/gamestate/{id}.
func (h *GameStateHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := strings.TrimPrefix(r.URL.Path, "/v1/gamestate/")
	if raw == "" || strings.Contains(raw, "/") {
		writeError(w, h.logger, http.StatusBadRequest, "Game state ID is required.")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game state ID.")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: msg}); err != nil {
		logger.Error("Error encoding error response", "error", err)
	}
}
