// Package transcript records a readable log of a play session: player
// input, narration, applied state changes, and the rule-blocked
// diagnostics the engine surfaced along the way.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ruleforge/dungeon/pkg/state"
)

// Recorder accumulates transcript entries for one session.
type Recorder struct {
	model   string
	entries []string
}

// NewRecorder creates a recorder. The model name appears in the header.
func NewRecorder(model string) *Recorder {
	return &Recorder{model: model}
}

// RecordTurn appends one completed turn. Blocked atoms get a
// [RULE BLOCKED] line so refused narrator proposals stay visible.
func (r *Recorder) RecordTurn(turn int, input, narration string, results []state.ApplyResult) {
	r.entries = append(r.entries,
		fmt.Sprintf("[Turn %d]", turn),
		fmt.Sprintf("Player: %s", input),
		fmt.Sprintf("GM: %s", narration),
	)

	applied := make([]state.Atom, 0, len(results))
	for _, res := range results {
		if res.Applied {
			applied = append(applied, res.Atom)
			continue
		}
		r.entries = append(r.entries, fmt.Sprintf("[RULE BLOCKED: %s — %s]", res.Atom.String(), res.Reason))
	}

	changes, _ := json.Marshal(applied)
	r.entries = append(r.entries, fmt.Sprintf("State: %s", changes))
}

// RecordNote appends a free-form diagnostic line.
func (r *Recorder) RecordNote(note string) {
	r.entries = append(r.entries, note)
}

// Empty reports whether anything has been recorded.
func (r *Recorder) Empty() bool {
	return len(r.entries) == 0
}

// WriteTo writes the transcript with its header.
func (r *Recorder) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString("=== AI DUNGEON TRANSCRIPT ===\n")
	fmt.Fprintf(&sb, "Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Model: %s\n\n", r.model)
	for _, entry := range r.entries {
		sb.WriteString(entry)
		sb.WriteString("\n\n")
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// Save writes the transcript to a file, creating parent directories.
func (r *Recorder) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create transcript file: %w", err)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()

	if _, err := r.WriteTo(f); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
