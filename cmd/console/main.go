package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/ruleforge/dungeon/internal/config"
	"github.com/ruleforge/dungeon/internal/engine"
	"github.com/ruleforge/dungeon/internal/logger"
	"github.com/ruleforge/dungeon/internal/services"
	"github.com/ruleforge/dungeon/internal/storage"
	"github.com/ruleforge/dungeon/pkg/state"
	"github.com/ruleforge/dungeon/pkg/transcript"
)

// SaveFile is where /save and /load snapshot the session.
const SaveFile = "save.json"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Setup(cfg)

	store := storage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, log)
	rulesets, err := store.ListRuleSets(context.Background())
	if err != nil || len(rulesets) == 0 {
		fmt.Fprintf(os.Stderr, "No rulesets found under %s: %v\n", filepath.Join(cfg.DataDir, "rules"), err)
		os.Exit(1)
	}

	names := make([]string, 0, len(rulesets))
	for name := range rulesets {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Available Quests:")
	for i, name := range names {
		fmt.Printf("  %d - %s (%s)\n", i+1, name, rulesets[name])
	}
	fmt.Print("\nSelect a quest by number: ")

	var choice int
	if _, err := fmt.Scanf("%d", &choice); err != nil || choice < 1 || choice > len(names) {
		fmt.Fprintf(os.Stderr, "Invalid selection\n")
		os.Exit(1)
	}

	rs, err := store.GetRuleSet(context.Background(), rulesets[names[choice-1]])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load ruleset: %v\n", err)
		os.Exit(1)
	}

	llm := services.NewOllamaService(cfg.OllamaURL, cfg.ModelName, log)
	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	if err := llm.InitModel(initCtx, cfg.ModelName); err != nil {
		fmt.Fprintf(os.Stderr, "Could not reach Ollama. Is it running? (ollama serve)\n%v\n", err)
		os.Exit(1)
	}

	recorder := transcript.NewRecorder(cfg.ModelName)
	eng := engine.New(rs, llm, log).WithRecorder(recorder)
	gs := state.NewGameState(rs)

	p := tea.NewProgram(NewConsoleUI(eng, gs, recorder),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}

	// Save transcript on exit, matching the classic behavior.
	if !recorder.Empty() {
		path := filepath.Join("samples", "transcript.txt")
		if err := recorder.Save(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save transcript: %v\n", err)
		} else {
			fmt.Printf("Transcript saved to %s\n", path)
		}
	}
}
