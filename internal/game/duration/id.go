package duration

import "fmt"

// ID names one countdown timer on the entity.
type ID int

const (
	DeathsDoor ID = iota
	IcyArmour
	Regeneration
	Infusion
	SongOfSlaying
	ShroudOfGolubria
	Swiftness
	Silence
	Liquefying
	Paralysis

	numIDs
)

var idNames = [numIDs]string{
	DeathsDoor:       "deaths_door",
	IcyArmour:        "icy_armour",
	Regeneration:     "regeneration",
	Infusion:         "infusion",
	SongOfSlaying:    "song_of_slaying",
	ShroudOfGolubria: "shroud_of_golubria",
	Swiftness:        "swiftness",
	Silence:          "silence",
	Liquefying:       "liquefying",
	Paralysis:        "paralysis",
}

// String returns the snake_case name used in content and persistence.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("duration(%d)", int(id))
	}
	return idNames[id]
}

// Valid reports whether id is one of the declared timers.
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// ParseID maps a snake_case name back to its ID.
func ParseID(s string) (ID, error) {
	for i, name := range idNames {
		if name == s {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown duration %q", s)
}

// All returns every declared ID in declaration order.
func All() []ID {
	out := make([]ID, numIDs)
	for i := range out {
		out[i] = ID(i)
	}
	return out
}

// UnmarshalText lets IDs appear by name in YAML content.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText writes the ID by name.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid duration %d", int(id))
	}
	return []byte(idNames[id]), nil
}
