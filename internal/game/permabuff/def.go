package permabuff

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// DefaultRefreshDice is the upkeep refresh roll used when content omits one.
var DefaultRefreshDice = dice.MustParse("2d10")

// Def binds a permabuff to its duration, its spell and its upkeep tuning.
type Def struct {
	ID       ID          `yaml:"id"`
	Spell    spell.ID    `yaml:"spell"`
	Duration duration.ID `yaml:"duration"`
	// FailureCadence divides the spell's nominal duration to give the
	// one-in-N chance of an upkeep failure roll. Must be > 0.
	FailureCadence int `yaml:"failure_cadence"`
	// RefreshDice is added to the bound duration on an upkeep failure.
	RefreshDice dice.Expression `yaml:"refresh_dice"`
	// RefreshCap limits the refreshed duration. 0 = uncapped.
	RefreshCap     int    `yaml:"refresh_cap"`
	MiscastMessage string `yaml:"miscast_message"`
}

// Validate checks the definition and fills in the default refresh dice.
func (d *Def) Validate() error {
	var errs []string
	if !d.ID.Valid() {
		errs = append(errs, "id is not a known permabuff")
	}
	if !d.Spell.Valid() {
		errs = append(errs, fmt.Sprintf("spell %q is not a known spell", d.Spell))
	}
	if !d.Duration.Valid() {
		errs = append(errs, "duration is not a known duration")
	}
	if d.FailureCadence <= 0 {
		errs = append(errs, fmt.Sprintf("failure_cadence must be > 0, got %d", d.FailureCadence))
	}
	if d.RefreshCap < 0 {
		errs = append(errs, fmt.Sprintf("refresh_cap must be >= 0, got %d", d.RefreshCap))
	}
	if d.RefreshDice.Count == 0 {
		d.RefreshDice = DefaultRefreshDice
	}
	if len(errs) > 0 {
		return fmt.Errorf("permabuff %s: %s", d.ID, strings.Join(errs, "; "))
	}
	return nil
}

// Refresh returns the refresh dice expression.
//
// Precondition: Validate has succeeded.
func (d *Def) Refresh() dice.Expression {
	return d.RefreshDice
}

// Catalog holds exactly one Def per permabuff.
type Catalog struct {
	defs [numIDs]*Def
}

// Get returns the definition for id.
//
// Precondition: id.Valid().
func (c *Catalog) Get(id ID) *Def {
	return c.defs[id]
}

// Register validates def and replaces the entry for def.ID.
func (c *Catalog) Register(def *Def) error {
	if err := def.Validate(); err != nil {
		return err
	}
	c.defs[def.ID] = def
	return nil
}

// CheckSpells verifies every bound spell's nominal duration against the
// def's failure cadence. A duration below the cadence gives one-in-zero
// upkeep odds, which fail on every turn.
func (c *Catalog) CheckSpells(spells SpellInfo) error {
	var errs []string
	for _, id := range All() {
		def := c.defs[id]
		if nominal := spells.NominalDuration(def.Spell); nominal < def.FailureCadence {
			errs = append(errs, fmt.Sprintf("%s: spell %s nominal_duration %d is below failure_cadence %d",
				id, def.Spell, nominal, def.FailureCadence))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("permabuff catalog: %s", strings.Join(errs, "; "))
	}
	return nil
}

// DefaultCatalog returns the built-in bindings.
func DefaultCatalog() *Catalog {
	c := &Catalog{}
	for _, d := range []*Def{
		{
			ID: Song, Spell: spell.SongOfSlaying, Duration: duration.SongOfSlaying,
			FailureCadence: 2, MiscastMessage: "You stumble over the syllables of your song.",
		},
		{
			ID: Infusion, Spell: spell.Infusion, Duration: duration.Infusion,
			FailureCadence: 3, MiscastMessage: "Your infusion sputters and sparks.",
		},
		{
			ID: Shroud, Spell: spell.ShroudOfGolubria, Duration: duration.ShroudOfGolubria,
			FailureCadence: 3, MiscastMessage: "Your shroud twists and tears.",
		},
		{
			ID: Regen, Spell: spell.Regeneration, Duration: duration.Regeneration,
			FailureCadence: 4, RefreshCap: 25, MiscastMessage: "Your skin itches painfully.",
		},
	} {
		if err := c.Register(d); err != nil {
			panic("permabuff: invalid built-in definition: " + err.Error())
		}
	}
	return c
}

// LoadDirectory starts from DefaultCatalog and overrides it with every
// *.yaml file in dir, one Def per file.
//
// Postcondition: Returns a Catalog with every permabuff bound, or an error.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading permabuff dir %q: %w", dir, err)
	}
	cat := DefaultCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		if err := requireKeys(data, "id", "spell", "duration"); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		var def Def
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := cat.Register(&def); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
	}
	return cat, nil
}

// requireKeys rejects documents missing any of keys. Enumerated fields have
// meaningful zero values, so absence must be caught before decoding.
func requireKeys(data []byte, keys ...string) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}
	var missing []string
	for _, k := range keys {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required keys: %s", strings.Join(missing, ", "))
	}
	return nil
}
