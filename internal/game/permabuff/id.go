package permabuff

import "fmt"

// ID names one permabuff subscription.
type ID int

const (
	Song ID = iota
	Infusion
	Shroud
	Regen

	numIDs
)

var idNames = [numIDs]string{
	Song:     "song",
	Infusion: "infusion",
	Shroud:   "shroud",
	Regen:    "regen",
}

// String returns the short name used in content and persistence.
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("permabuff(%d)", int(id))
	}
	return idNames[id]
}

// Valid reports whether id is a declared permabuff.
func (id ID) Valid() bool {
	return id >= 0 && id < numIDs
}

// ParseID maps a name back to its ID.
func ParseID(s string) (ID, error) {
	for i, name := range idNames {
		if name == s {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown permabuff %q", s)
}

// All returns every permabuff in declaration order.
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
		return nil, fmt.Errorf("invalid permabuff %d", int(id))
	}
	return []byte(idNames[id]), nil
}
