// Package form holds the transformation shapes a caster can adopt and the
// rules that decide whether a transformation may happen.
package form

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Form names a transformation shape. None is the caster's natural shape.
type Form string

const (
	None       Form = ""
	Spider     Form = "spider"
	BladeHands Form = "blade_hands"
	Statue     Form = "statue"
	IceBeast   Form = "ice_beast"
	Dragon     Form = "dragon"
	Lich       Form = "lich"
)

// String returns the form's content name, or "none".
func (f Form) String() string {
	if f == None {
		return "none"
	}
	return string(f)
}

var (
	// ErrUnknownForm is returned for a form with no definition.
	ErrUnknownForm = errors.New("unknown form")
	// ErrTooWeak is returned when the caster's power is below the form's minimum.
	ErrTooWeak = errors.New("not enough power to transform")
	// ErrAlreadyInForm is returned when the caster already has the target form.
	ErrAlreadyInForm = errors.New("already in that form")
)

// Stats are the attributes a transformation may shift.
type Stats struct {
	Str int `yaml:"str"`
	Int int `yaml:"int"`
	Dex int `yaml:"dex"`
}

// Add returns s shifted by d.
func (s Stats) Add(d Stats) Stats {
	return Stats{Str: s.Str + d.Str, Int: s.Int + d.Int, Dex: s.Dex + d.Dex}
}

// Def is the static definition of a form, loaded from YAML.
type Def struct {
	ID       Form   `yaml:"id"`
	Name     string `yaml:"name"`
	MinPower int    `yaml:"min_power"`
	Stats    Stats  `yaml:"stats"` // deltas applied while in the form
	Message  string `yaml:"message"`
}

// Rules is the registry of form definitions.
type Rules struct {
	defs map[Form]*Def
}

// NewRules creates an empty Rules.
func NewRules() *Rules {
	return &Rules{defs: make(map[Form]*Def)}
}

// Register adds def, overwriting any existing entry with the same ID.
//
// Precondition: def must not be nil and def.ID must not be None.
func (r *Rules) Register(def *Def) {
	r.defs[def.ID] = def
}

// Get returns the definition for f, or (nil, false).
func (r *Rules) Get(f Form) (*Def, bool) {
	d, ok := r.defs[f]
	return d, ok
}

// CanTransform reports why a caster at power in form current cannot become
// target, or nil if it can. It changes nothing.
func (r *Rules) CanTransform(current, target Form, power int) error {
	def, ok := r.defs[target]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, target)
	}
	if current == target {
		return ErrAlreadyInForm
	}
	if power < def.MinPower {
		return fmt.Errorf("%w: %s needs %d, have %d", ErrTooWeak, target, def.MinPower, power)
	}
	return nil
}

// Effective returns base shifted by f's deltas. Unknown forms and None
// leave base unchanged.
func (r *Rules) Effective(base Stats, f Form) Stats {
	if def, ok := r.defs[f]; ok {
		return base.Add(def.Stats)
	}
	return base
}

// StatSafe reports whether becoming target leaves every stat above zero.
func (r *Rules) StatSafe(base Stats, target Form) bool {
	s := r.Effective(base, target)
	return s.Str > 0 && s.Int > 0 && s.Dex > 0
}

// Transform validates the transformation and returns the new form and its
// arrival message.
//
// Postcondition: on error the returned form is current.
func (r *Rules) Transform(current, target Form, power int) (Form, string, error) {
	if err := r.CanTransform(current, target, power); err != nil {
		return current, "", err
	}
	return target, r.defs[target].Message, nil
}

// DefaultRules returns the built-in forms.
func DefaultRules() *Rules {
	defs := []Def{
		{ID: Spider, Name: "spider", MinPower: 0, Stats: Stats{Dex: 5}, Message: "You turn into a venomous arachnid creature."},
		{ID: BladeHands, Name: "blade hands", MinPower: 10, Message: "Your hands turn into razor-sharp scythe blades."},
		{ID: Statue, Name: "statue", MinPower: 20, Stats: Stats{Str: 2, Dex: -2}, Message: "You turn into a living statue of rough stone."},
		{ID: IceBeast, Name: "ice beast", MinPower: 10, Message: "You turn into a creature of crystalline ice."},
		{ID: Dragon, Name: "dragon", MinPower: 30, Stats: Stats{Str: 10}, Message: "You turn into a fearsome dragon!"},
		{ID: Lich, Name: "lich", MinPower: 30, Message: "Your body is suffused with negative energy!"},
	}
	r := NewRules()
	for i := range defs {
		r.Register(&defs[i])
	}
	return r
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Def,
// and returns a populated Rules.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Rules, or an error if any file fails to parse.
func LoadDirectory(dir string) (*Rules, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading form dir %q: %w", dir, err)
	}
	r := NewRules()
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
		if def.ID == None {
			return nil, fmt.Errorf("parsing %q: id is required", path)
		}
		if def.MinPower < 0 {
			return nil, fmt.Errorf("parsing %q: min_power must be >= 0", path)
		}
		r.Register(&def)
	}
	return r, nil
}
