package spell

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownSpell is returned when a spell ID is not recognised.
var ErrUnknownSpell = errors.New("unknown spell")

// Def is the static definition of a spell, loaded from YAML.
type Def struct {
	ID    ID     `yaml:"id"`
	Name  string `yaml:"name"`
	Level int    `yaml:"level"`
	// Power is the caster's spell power for this spell. Power formulas live
	// outside this module; content supplies the resolved value.
	Power       int `yaml:"power"`
	BaseFailure int `yaml:"base_failure"` // percent, 0-100
	// NominalDuration scales how often an active permabuff rolls for upkeep failure.
	NominalDuration int `yaml:"nominal_duration"`
	// UpkeepFailure overrides the failure percent used by upkeep rolls. 0 = use the cast failure rate.
	UpkeepFailure int    `yaml:"upkeep_failure"`
	Form          string `yaml:"form"` // transformation spells only
}

// Validate checks the definition's invariants.
func (d *Def) Validate() error {
	var errs []string
	if !d.ID.Valid() {
		errs = append(errs, fmt.Sprintf("id %q is not a known spell", d.ID))
	}
	if d.BaseFailure < 0 || d.BaseFailure > 100 {
		errs = append(errs, fmt.Sprintf("base_failure must be 0-100, got %d", d.BaseFailure))
	}
	if d.UpkeepFailure < 0 || d.UpkeepFailure > 100 {
		errs = append(errs, fmt.Sprintf("upkeep_failure must be 0-100, got %d", d.UpkeepFailure))
	}
	if d.NominalDuration < 0 {
		errs = append(errs, fmt.Sprintf("nominal_duration must be >= 0, got %d", d.NominalDuration))
	}
	if d.Power < 0 {
		errs = append(errs, fmt.Sprintf("power must be >= 0, got %d", d.Power))
	}
	if len(errs) > 0 {
		return fmt.Errorf("spell %q: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Book holds every known spell definition keyed by ID.
type Book struct {
	defs map[ID]*Def
}

// NewBook creates an empty Book.
func NewBook() *Book {
	return &Book{defs: make(map[ID]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil.
func (b *Book) Register(def *Def) {
	b.defs[def.ID] = def
}

// Get returns the definition for id, or (nil, false).
func (b *Book) Get(id ID) (*Def, bool) {
	d, ok := b.defs[id]
	return d, ok
}

// Power returns the caster's power for id, or 0 when id is not in the book.
func (b *Book) Power(id ID) int {
	if d, ok := b.defs[id]; ok {
		return d.Power
	}
	return 0
}

// NominalDuration returns the baseline duration used for upkeep cadence,
// or 0 when id is not in the book.
func (b *Book) NominalDuration(id ID) int {
	if d, ok := b.defs[id]; ok {
		return d.NominalDuration
	}
	return 0
}

// Len returns the number of registered definitions.
func (b *Book) Len() int {
	return len(b.defs)
}

// DefaultBook returns the built-in definitions used when no content
// directory is configured.
func DefaultBook() *Book {
	defs := []Def{
		{ID: DeathsDoor, Name: "Death's Door", Level: 9, Power: 100, BaseFailure: 30},
		{ID: OzocubusArmour, Name: "Ozocubu's Armour", Level: 3, Power: 60, BaseFailure: 10},
		{ID: DeflectMissiles, Name: "Deflect Missiles", Level: 6, Power: 60, BaseFailure: 20},
		{ID: Regeneration, Name: "Regeneration", Level: 3, Power: 60, BaseFailure: 10, NominalDuration: 40},
		{ID: Revivification, Name: "Revivification", Level: 9, Power: 100, BaseFailure: 30},
		{ID: Swiftness, Name: "Swiftness", Level: 2, Power: 50, BaseFailure: 8},
		{ID: Infusion, Name: "Infusion", Level: 1, Power: 40, BaseFailure: 5, NominalDuration: 30},
		{ID: SongOfSlaying, Name: "Song of Slaying", Level: 2, Power: 50, BaseFailure: 10, NominalDuration: 40, UpkeepFailure: 15},
		{ID: Silence, Name: "Silence", Level: 5, Power: 60, BaseFailure: 15},
		{ID: Liquefaction, Name: "Liquefaction", Level: 4, Power: 60, BaseFailure: 12},
		{ID: ShroudOfGolubria, Name: "Shroud of Golubria", Level: 2, Power: 50, BaseFailure: 8, NominalDuration: 40},
		{ID: SpiderForm, Name: "Spider Form", Level: 3, Power: 60, BaseFailure: 10, Form: "spider"},
		{ID: BladeHands, Name: "Blade Hands", Level: 5, Power: 60, BaseFailure: 15, Form: "blade_hands"},
		{ID: StatueForm, Name: "Statue Form", Level: 6, Power: 60, BaseFailure: 20, Form: "statue"},
		{ID: IceForm, Name: "Ice Form", Level: 4, Power: 60, BaseFailure: 12, Form: "ice_beast"},
		{ID: DragonForm, Name: "Dragon Form", Level: 7, Power: 80, BaseFailure: 25, Form: "dragon"},
		{ID: Necromutation, Name: "Necromutation", Level: 8, Power: 80, BaseFailure: 25, Form: "lich"},
	}
	b := NewBook()
	for i := range defs {
		b.Register(&defs[i])
	}
	return b
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// validates it and returns a populated Book.
//
// Postcondition: Returns a non-nil Book, or an error naming the first bad file.
func LoadDirectory(dir string) (*Book, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading spell dir %q: %w", dir, err)
	}
	book := NewBook()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		book.Register(&def)
	}
	return book, nil
}
