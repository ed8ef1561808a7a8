// Package spell defines spell identities, their static definitions, the
// tri-state cast result and the failure-roll collaborator.
package spell

import "fmt"

// ID identifies a castable spell. The zero value is not a valid spell.
type ID string

// Self-enchantment spells.
const (
	DeathsDoor       ID = "deaths_door"
	OzocubusArmour   ID = "ozocubus_armour"
	DeflectMissiles  ID = "deflect_missiles"
	Regeneration     ID = "regeneration"
	Revivification   ID = "revivification"
	Swiftness        ID = "swiftness"
	Infusion         ID = "infusion"
	SongOfSlaying    ID = "song_of_slaying"
	Silence          ID = "silence"
	Liquefaction     ID = "liquefaction"
	ShroudOfGolubria ID = "shroud_of_golubria"
)

// Transformation spells.
const (
	SpiderForm    ID = "spider_form"
	BladeHands    ID = "blade_hands"
	StatueForm    ID = "statue_form"
	IceForm       ID = "ice_form"
	DragonForm    ID = "dragon_form"
	Necromutation ID = "necromutation"
)

var order = []ID{
	DeathsDoor, OzocubusArmour, DeflectMissiles, Regeneration,
	Revivification, Swiftness, Infusion, SongOfSlaying, Silence,
	Liquefaction, ShroudOfGolubria,
	SpiderForm, BladeHands, StatueForm, IceForm, DragonForm, Necromutation,
}

var known = func() map[ID]bool {
	m := make(map[ID]bool, len(order))
	for _, id := range order {
		m[id] = true
	}
	return m
}()

// All returns every known spell in a stable order.
func All() []ID {
	return append([]ID(nil), order...)
}

// ParseID validates s as a known spell ID.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if !known[id] {
		return "", fmt.Errorf("%w: %q", ErrUnknownSpell, s)
	}
	return id, nil
}

// Valid reports whether id is a known spell.
func (id ID) Valid() bool {
	return known[id]
}

// String returns the spell ID as written in content files.
func (id ID) String() string {
	return string(id)
}
