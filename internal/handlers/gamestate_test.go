package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ruleforge/dungeon/internal/storage"
	"github.com/ruleforge/dungeon/pkg/rules"
	"github.com/ruleforge/dungeon/pkg/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))
}

func handlerRules() *rules.RuleSet {
	return &rules.RuleSet{
		Commands:       []string{"look", "take <item>"},
		InventoryLimit: 2,
		Quest:          rules.Quest{Name: "Handler Quest"},
		EndConditions:  rules.EndConditions{WinAllFlags: []string{"done"}, MaxTurns: 10},
		World:          map[string]string{"cell": "A cell."},
		Start:          rules.Start{Location: "cell", HP: 5, Inventory: []string{"key"}},
	}
}

func TestGameStateHandler_Create(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddRuleSet("handler_quest.json", handlerRules())
	handler := NewGameStateHandler(mockStorage, testLogger())

	reqBody := `{"ruleset":"handler_quest.json"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/gamestate", strings.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d. Response body: %s", rr.Code, rr.Body.String())
	}
	if rr.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Expected Content-Type application/json, got %s", rr.Header().Get("Content-Type"))
	}

	var response state.GameState
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.ID == uuid.Nil {
		t.Error("Expected non-nil game state ID")
	}
	if response.Ruleset != "handler_quest.json" {
		t.Errorf("Expected ruleset recorded on session, got %q", response.Ruleset)
	}
	if response.Location != "cell" || response.HP != 5 {
		t.Errorf("Expected START applied, got location=%q hp=%d", response.Location, response.HP)
	}
	if response.Outcome != state.OutcomeInProgress {
		t.Errorf("Expected in_progress, got %q", response.Outcome)
	}
}

func TestGameStateHandler_CreateErrors(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	mockStorage.AddRuleSet("handler_quest.json", handlerRules())
	handler := NewGameStateHandler(mockStorage, testLogger())

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{name: "invalid json", body: "not json", expectedStatus: http.StatusBadRequest},
		{name: "empty ruleset", body: `{"ruleset":""}`, expectedStatus: http.StatusBadRequest},
		{name: "unknown ruleset", body: `{"ruleset":"nope.json"}`, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/gamestate", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d. Body: %s", tt.expectedStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestGameStateHandler_GetAndDelete(t *testing.T) {
	mockStorage := storage.NewMockStorage()
	handler := NewGameStateHandler(mockStorage, testLogger())

	gs := state.NewGameState(handlerRules())
	gs.Ruleset = "handler_quest.json"
	if err := mockStorage.SaveGameState(context.Background(), gs.ID, gs); err != nil {
		t.Fatal(err)
	}

	// GET existing
	req := httptest.NewRequest(http.MethodGet, "/v1/gamestate/"+gs.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var fetched state.GameState
	if err := json.NewDecoder(rr.Body).Decode(&fetched); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if fetched.ID != gs.ID {
		t.Errorf("Expected ID %s, got %s", gs.ID, fetched.ID)
	}

	// GET missing
	req = httptest.NewRequest(http.MethodGet, "/v1/gamestate/"+uuid.New().String(), nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for missing session, got %d", rr.Code)
	}

	// GET malformed ID
	req = httptest.NewRequest(http.MethodGet, "/v1/gamestate/not-a-uuid", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for malformed ID, got %d", rr.Code)
	}

	// DELETE
	req = httptest.NewRequest(http.MethodDelete, "/v1/gamestate/"+gs.ID.String(), nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rr.Code)
	}
	loaded, err := mockStorage.LoadGameState(context.Background(), gs.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Error("Expected session deleted from storage")
	}
}

func TestGameStateHandler_MethodNotAllowed(t *testing.T) {
	handler := NewGameStateHandler(storage.NewMockStorage(), testLogger())

	req := httptest.NewRequest(http.MethodPatch, "/v1/gamestate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rr.Code)
	}
}
