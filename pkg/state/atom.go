package state

import (
	"encoding/json"
	"fmt"
)

// AtomType tags the closed set of state-change operations a narrator may
// propose. Anything outside this set is rejected when the narrator
// response is parsed, not silently dropped.
type AtomType string

const (
	AtomAddItem    AtomType = "add_item"
	AtomRemoveItem AtomType = "remove_item"
	AtomMoveTo     AtomType = "move_to"
	AtomSetFlag    AtomType = "set_flag"
	AtomHPDelta    AtomType = "hp_delta"
)

// Atom is one proposed state-change operation. Which fields are
// meaningful depends on Type; UnmarshalJSON enforces the shape.
type Atom struct {
	Type     AtomType `json:"type"`
	Item     string   `json:"item,omitempty"`
	Location string   `json:"location,omitempty"`
	Flag     string   `json:"flag,omitempty"`
	Value    bool     `json:"value,omitempty"`
	Delta    int      `json:"delta,omitempty"`
}

// Constructors for the atom variants, used by tests and the simulator.

func AddItem(item string) Atom          { return Atom{Type: AtomAddItem, Item: item} }
func RemoveItem(item string) Atom       { return Atom{Type: AtomRemoveItem, Item: item} }
func MoveTo(location string) Atom       { return Atom{Type: AtomMoveTo, Location: location} }
func SetFlag(flag string, v bool) Atom  { return Atom{Type: AtomSetFlag, Flag: flag, Value: v} }
func HPDelta(delta int) Atom            { return Atom{Type: AtomHPDelta, Delta: delta} }

// UnmarshalJSON validates the atom at the parse boundary: the type tag
// must be one of the five known variants and the fields that variant
// requires must be present. SetFlag's value defaults to true when
// omitted, matching the wire format narrators were trained on.
func (a *Atom) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type     AtomType `json:"type"`
		Item     string   `json:"item"`
		Location string   `json:"location"`
		Flag     string   `json:"flag"`
		Value    *bool    `json:"value"`
		Delta    *int     `json:"delta"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch raw.Type {
	case AtomAddItem, AtomRemoveItem:
		if raw.Item == "" {
			return fmt.Errorf("%s atom requires an item", raw.Type)
		}
		*a = Atom{Type: raw.Type, Item: raw.Item}
	case AtomMoveTo:
		if raw.Location == "" {
			return fmt.Errorf("move_to atom requires a location")
		}
		*a = Atom{Type: raw.Type, Location: raw.Location}
	case AtomSetFlag:
		if raw.Flag == "" {
			return fmt.Errorf("set_flag atom requires a flag")
		}
		value := true
		if raw.Value != nil {
			value = *raw.Value
		}
		*a = Atom{Type: raw.Type, Flag: raw.Flag, Value: value}
	case AtomHPDelta:
		if raw.Delta == nil {
			return fmt.Errorf("hp_delta atom requires a delta")
		}
		*a = Atom{Type: raw.Type, Delta: *raw.Delta}
	default:
		return fmt.Errorf("unknown atom type %q", raw.Type)
	}
	return nil
}

// MarshalJSON emits only the fields the variant carries. set_flag
// always writes value explicitly so a false does not round-trip back
// to the omitted-means-true default.
func (a Atom) MarshalJSON() ([]byte, error) {
	m := map[string]interface{}{"type": a.Type}
	switch a.Type {
	case AtomAddItem, AtomRemoveItem:
		m["item"] = a.Item
	case AtomMoveTo:
		m["location"] = a.Location
	case AtomSetFlag:
		m["flag"] = a.Flag
		m["value"] = a.Value
	case AtomHPDelta:
		m["delta"] = a.Delta
	}
	return json.Marshal(m)
}

// String renders a compact human-readable form for logs and transcripts.
func (a Atom) String() string {
	switch a.Type {
	case AtomAddItem, AtomRemoveItem:
		return fmt.Sprintf("%s(%s)", a.Type, a.Item)
	case AtomMoveTo:
		return fmt.Sprintf("move_to(%s)", a.Location)
	case AtomSetFlag:
		return fmt.Sprintf("set_flag(%s=%t)", a.Flag, a.Value)
	case AtomHPDelta:
		return fmt.Sprintf("hp_delta(%+d)", a.Delta)
	default:
		return string(a.Type)
	}
}

// ApplyResult records the fate of one atom: applied to the game state,
// or blocked with the rule that rejected it.
type ApplyResult struct {
	Atom    Atom   `json:"atom"`
	Applied bool   `json:"applied"`
	Reason  string `json:"reason,omitempty"`
}
