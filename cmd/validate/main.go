package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ruleforge/dungeon/pkg/rules"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <ruleset.json|ruleset.yaml> [...]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &RuleSetValidator{}
	failed := false
	for _, filename := range os.Args[1:] {
		if err := validator.validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

type RuleSetValidator struct {
	warnings []string
}

var filenamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func (v *RuleSetValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)
	v.warnings = nil

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return fmt.Errorf("ruleset file must have .json, .yaml or .yml extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ext)
	if !filenamePattern.MatchString(nameWithoutExt) {
		return fmt.Errorf("ruleset filename '%s' must be lowercase snake_case (e.g. forest_quest.json, not Forest-Quest.json)", baseName)
	}

	rs, err := rules.Load(filename)
	if err != nil {
		return err
	}

	v.lint(rs)
	for _, w := range v.warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

// lint reports quality issues that Load's Validate does not treat as
// fatal.
func (v *RuleSetValidator) lint(rs *rules.RuleSet) {
	if rs.Quest.Name == "" {
		v.warn("QUEST.NAME is empty; the console quest list will look bare")
	}
	if rs.Quest.Intro == "" {
		v.warn("QUEST.INTRO is empty; players get no opening scene")
	}
	if rs.Quest.GoalFlag != "" && !contains(rs.EndConditions.WinAllFlags, rs.Quest.GoalFlag) {
		v.warn(fmt.Sprintf("QUEST.GOAL_FLAG %q is not in END_CONDITIONS.WIN_ALL_FLAGS; the quest goal never ends the game", rs.Quest.GoalFlag))
	}
	if len(rs.EndConditions.WinAllFlags) == 0 {
		v.warn("END_CONDITIONS.WIN_ALL_FLAGS is empty; the session can only end by losing")
	}

	for location, desc := range rs.World {
		if desc == "" {
			v.warn(fmt.Sprintf("WORLD location %q has no description", location))
		}
	}
	for item, desc := range rs.Items {
		if desc == "" {
			v.warn(fmt.Sprintf("ITEMS entry %q has no description", item))
		}
	}
	for _, item := range rs.Start.Inventory {
		if _, ok := rs.Items[item]; !ok {
			v.warn(fmt.Sprintf("START.INVENTORY item %q is not described in ITEMS", item))
		}
	}
	for location, flag := range rs.Locks {
		if flag == "" {
			v.warn(fmt.Sprintf("LOCKS entry %q requires an empty flag; the lock can never open", location))
		}
	}
}

func (v *RuleSetValidator) warn(msg string) {
	v.warnings = append(v.warnings, msg)
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
