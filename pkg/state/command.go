package state

import (
	"errors"
	"strings"

	"github.com/ruleforge/dungeon/pkg/rules"
)

// Command validation failures. These are player-facing and recoverable;
// a rejected command never reaches the narrator and never costs a turn.
var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
)

// ValidateCommand checks a player command against the ruleset's command
// templates before anything is sent to the narrator. A template with a
// placeholder ("move <place>") requires a non-empty argument; a bare
// template ("look") requires none.
func ValidateCommand(input string, rs *rules.RuleSet) error {
	verb, arg := splitCommand(input)
	if verb == "" {
		return ErrUnknownCommand
	}

	for _, tmpl := range rs.Commands {
		tmplVerb, placeholder := splitCommand(tmpl)
		if verb != strings.ToLower(tmplVerb) {
			continue
		}
		wantsArg := strings.HasPrefix(placeholder, "<")
		if wantsArg && arg == "" {
			return ErrMissingArgument
		}
		if !wantsArg && arg != "" {
			// Extra argument on a bare verb doesn't match the template.
			continue
		}
		return nil
	}
	return ErrUnknownCommand
}

// splitCommand divides input into a lowercased verb and the remainder.
func splitCommand(input string) (string, string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	verb := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return verb, ""
	}
	return verb, strings.TrimSpace(parts[1])
}
