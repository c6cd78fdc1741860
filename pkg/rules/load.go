package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a ruleset file. The extension picks the
// codec: .json is decoded strictly, .yaml/.yml through yaml.v3. Any
// failure here is fatal to session startup.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ruleset file: %w", err)
	}

	var rs RuleSet
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&rs); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset %s: %w", filepath.Base(path), err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rs); err != nil {
			return nil, fmt.Errorf("failed to parse ruleset %s: %w", filepath.Base(path), err)
		}
	default:
		return nil, fmt.Errorf("unsupported ruleset format: %s", filepath.Ext(path))
	}

	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ruleset %s: %w", filepath.Base(path), err)
	}
	return &rs, nil
}

// Validate checks the structural constraints a ruleset must satisfy
// before a session can begin.
func (r *RuleSet) Validate() error {
	var errs []string

	if len(r.Commands) == 0 {
		errs = append(errs, "COMMANDS must list at least one command template")
	}
	for _, tmpl := range r.Commands {
		if strings.TrimSpace(tmpl) == "" {
			errs = append(errs, "COMMANDS contains an empty template")
		}
	}
	if r.InventoryLimit <= 0 {
		errs = append(errs, "INVENTORY_LIMIT must be a positive integer")
	}
	if r.EndConditions.MaxTurns <= 0 {
		errs = append(errs, "END_CONDITIONS.MAX_TURNS must be a positive integer")
	}
	if r.Start.Location == "" {
		errs = append(errs, "START.LOCATION is required")
	} else if !r.KnownLocation(r.Start.Location) {
		errs = append(errs, fmt.Sprintf("START.LOCATION %q is not in WORLD_DESCRIPTION", r.Start.Location))
	}
	if len(r.Start.Inventory) > r.InventoryLimit {
		errs = append(errs, "START.INVENTORY exceeds INVENTORY_LIMIT")
	}
	for location := range r.Locks {
		if !r.KnownLocation(location) {
			errs = append(errs, fmt.Sprintf("LOCKS references unknown location %q", location))
		}
	}

	lose := make(map[string]bool, len(r.EndConditions.LoseAnyFlags))
	for _, flag := range r.EndConditions.LoseAnyFlags {
		lose[flag] = true
	}
	for _, flag := range r.EndConditions.WinAllFlags {
		if lose[flag] {
			errs = append(errs, fmt.Sprintf("flag %q appears in both WIN_ALL_FLAGS and LOSE_ANY_FLAGS", flag))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
