package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTempRuleset(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp ruleset: %v", err)
	}
	return path
}

const validJSON = `{
  "COMMANDS": ["look", "take <item>", "go <location>"],
  "INVENTORY_LIMIT": 2,
  "LOCKS": {"vault": "have_key"},
  "QUEST": {"NAME": "Test Quest", "GOAL_FLAG": "done", "INTRO": "Go."},
  "END_CONDITIONS": {
    "WIN_ALL_FLAGS": ["done"],
    "LOSE_ANY_FLAGS": ["hp_zero"],
    "MAX_TURNS": 10
  },
  "WORLD_DESCRIPTION": {
    "cell": "A damp cell.",
    "vault": "The vault."
  },
  "ITEMS": {"key": "A small key."},
  "START": {"LOCATION": "cell", "HP": 5, "INVENTORY": ["key"], "FLAGS": {}}
}`

func TestLoad_JSON(t *testing.T) {
	path := writeTempRuleset(t, "test_quest.json", validJSON)

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if rs.Quest.Name != "Test Quest" {
		t.Errorf("expected quest name 'Test Quest', got %q", rs.Quest.Name)
	}
	if rs.InventoryLimit != 2 {
		t.Errorf("expected inventory limit 2, got %d", rs.InventoryLimit)
	}
	if rs.EndConditions.MaxTurns != 10 {
		t.Errorf("expected max turns 10, got %d", rs.EndConditions.MaxTurns)
	}
	if flag, ok := rs.RequiredFlag("vault"); !ok || flag != "have_key" {
		t.Errorf("expected vault locked by have_key, got %q (locked=%t)", flag, ok)
	}
	if _, ok := rs.RequiredFlag("cell"); ok {
		t.Error("cell should not be locked")
	}
	if !rs.KnownLocation("cell") || rs.KnownLocation("moon") {
		t.Error("KnownLocation mismatch")
	}
}

func TestLoad_YAML(t *testing.T) {
	content := `
COMMANDS:
  - look
  - take <item>
INVENTORY_LIMIT: 1
QUEST:
  NAME: Yaml Quest
END_CONDITIONS:
  WIN_ALL_FLAGS: [done]
  MAX_TURNS: 5
WORLD_DESCRIPTION:
  cave: A dark cave.
START:
  LOCATION: cave
  HP: 3
`
	path := writeTempRuleset(t, "yaml_quest.yaml", content)

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rs.Quest.Name != "Yaml Quest" {
		t.Errorf("expected quest name 'Yaml Quest', got %q", rs.Quest.Name)
	}
	if rs.Start.Location != "cave" || rs.Start.HP != 3 {
		t.Errorf("START not parsed: %+v", rs.Start)
	}
}

func TestLoad_RejectsUnknownJSONFields(t *testing.T) {
	content := strings.Replace(validJSON, `"COMMANDS"`, `"TYPO_FIELD": true, "COMMANDS"`, 1)
	path := writeTempRuleset(t, "typo.json", content)

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown JSON field, got nil")
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeTempRuleset(t, "quest.toml", "COMMANDS = []")
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported extension, got nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestRuleSet_Validate(t *testing.T) {
	base := func() RuleSet {
		return RuleSet{
			Commands:       []string{"look"},
			InventoryLimit: 2,
			EndConditions:  EndConditions{WinAllFlags: []string{"done"}, MaxTurns: 10},
			World:          map[string]string{"cell": "A cell."},
			Start:          Start{Location: "cell", HP: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*RuleSet)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(r *RuleSet) {},
		},
		{
			name:    "no commands",
			mutate:  func(r *RuleSet) { r.Commands = nil },
			wantErr: "COMMANDS",
		},
		{
			name:    "empty command template",
			mutate:  func(r *RuleSet) { r.Commands = []string{"look", "  "} },
			wantErr: "empty template",
		},
		{
			name:    "zero inventory limit",
			mutate:  func(r *RuleSet) { r.InventoryLimit = 0 },
			wantErr: "INVENTORY_LIMIT",
		},
		{
			name:    "zero max turns",
			mutate:  func(r *RuleSet) { r.EndConditions.MaxTurns = 0 },
			wantErr: "MAX_TURNS",
		},
		{
			name:    "missing start location",
			mutate:  func(r *RuleSet) { r.Start.Location = "" },
			wantErr: "START.LOCATION is required",
		},
		{
			name:    "unknown start location",
			mutate:  func(r *RuleSet) { r.Start.Location = "moon" },
			wantErr: "not in WORLD_DESCRIPTION",
		},
		{
			name:    "start inventory over limit",
			mutate:  func(r *RuleSet) { r.Start.Inventory = []string{"a", "b", "c"} },
			wantErr: "exceeds INVENTORY_LIMIT",
		},
		{
			name:    "lock on unknown location",
			mutate:  func(r *RuleSet) { r.Locks = map[string]string{"moon": "flag"} },
			wantErr: "unknown location",
		},
		{
			name: "win and lose flag overlap",
			mutate: func(r *RuleSet) {
				r.EndConditions.LoseAnyFlags = []string{"done"}
			},
			wantErr: "both WIN_ALL_FLAGS and LOSE_ANY_FLAGS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := base()
			tt.mutate(&rs)
			err := rs.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected valid ruleset, got error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestRuleSet_Validate_CollectsAllErrors(t *testing.T) {
	rs := RuleSet{}
	err := rs.Validate()
	if err == nil {
		t.Fatal("expected errors for empty ruleset")
	}
	for _, want := range []string{"COMMANDS", "INVENTORY_LIMIT", "MAX_TURNS", "START.LOCATION"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected combined error to mention %s, got %q", want, err.Error())
		}
	}
}
