// Package narrator parses narrator replies into structured turn data.
// The narrator is untrusted: replies may wrap the JSON payload in code
// fences or surrounding prose, propose illegal state changes, or be
// garbage. Parsing is strict about the payload itself and tolerant of
// everything around it.
package narrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ruleforge/dungeon/pkg/state"
)

// ErrNoPayload is returned when no JSON object can be found in the reply.
var ErrNoPayload = errors.New("no JSON payload in narrator response")

// Response is the structured portion of a narrator reply.
type Response struct {
	Narration   string       `json:"narration"`
	StateChange []state.Atom `json:"state_change,omitempty"`
}

// Parse extracts the structured payload from a raw narrator reply. Code
// fences and text outside the first balanced JSON object are discarded.
// An atom with an unknown type tag fails the whole parse; the caller
// treats that turn as atom-free.
func Parse(raw string) (*Response, error) {
	payload, err := extractObject(raw)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("malformed narrator payload: %w", err)
	}
	return &resp, nil
}

// extractObject returns the first balanced top-level JSON object in the
// text, skipping braces inside string literals.
func extractObject(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", ErrNoPayload
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// Braces inside strings don't count.
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("%w: unbalanced object", ErrNoPayload)
}
