package rules

// Quest is narrative metadata shown to the player and the narrator.
// It is not enforced directly; the goal flag participates in end
// conditions only if listed in WIN_ALL_FLAGS.
type Quest struct {
	Name     string `json:"NAME" yaml:"NAME"`
	GoalFlag string `json:"GOAL_FLAG,omitempty" yaml:"GOAL_FLAG,omitempty"`
	Intro    string `json:"INTRO,omitempty" yaml:"INTRO,omitempty"`
}

// EndConditions describes when a session transitions to a terminal outcome.
type EndConditions struct {
	WinAllFlags  []string `json:"WIN_ALL_FLAGS,omitempty" yaml:"WIN_ALL_FLAGS,omitempty"`
	LoseAnyFlags []string `json:"LOSE_ANY_FLAGS,omitempty" yaml:"LOSE_ANY_FLAGS,omitempty"`
	MaxTurns     int      `json:"MAX_TURNS" yaml:"MAX_TURNS"`
}

// Start seeds the initial game state for a new session.
type Start struct {
	Location  string          `json:"LOCATION" yaml:"LOCATION"`
	HP        int             `json:"HP" yaml:"HP"`
	Inventory []string        `json:"INVENTORY,omitempty" yaml:"INVENTORY,omitempty"`
	Flags     map[string]bool `json:"FLAGS,omitempty" yaml:"FLAGS,omitempty"`
}

// RuleSet is the immutable declarative configuration for a game session.
// It is loaded once at session start and never mutated afterward. The
// uppercase keys are the ruleset file format; they predate this engine
// and are kept for compatibility with existing ruleset files.
type RuleSet struct {
	Commands       []string          `json:"COMMANDS" yaml:"COMMANDS"`
	InventoryLimit int               `json:"INVENTORY_LIMIT" yaml:"INVENTORY_LIMIT"`
	Locks          map[string]string `json:"LOCKS,omitempty" yaml:"LOCKS,omitempty"`
	Quest          Quest             `json:"QUEST" yaml:"QUEST"`
	EndConditions  EndConditions     `json:"END_CONDITIONS" yaml:"END_CONDITIONS"`
	World          map[string]string `json:"WORLD_DESCRIPTION" yaml:"WORLD_DESCRIPTION"`
	Items          map[string]string `json:"ITEMS,omitempty" yaml:"ITEMS,omitempty"`
	Start          Start             `json:"START" yaml:"START"`
}

// RequiredFlag returns the flag guarding a location, if any. Locations
// absent from LOCKS are unlocked.
func (r *RuleSet) RequiredFlag(location string) (string, bool) {
	flag, ok := r.Locks[location]
	return flag, ok
}

// KnownLocation reports whether a location appears in the world description.
func (r *RuleSet) KnownLocation(location string) bool {
	_, ok := r.World[location]
	return ok
}
