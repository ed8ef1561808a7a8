// Package player defines the caster aggregate: the single entity that owns
// every timer, subscription and attribute the self-enchantment spells touch.
package player

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Attributes are the persistent counters set by one-shot spells.
type Attributes struct {
	DeflectMissiles int
	// Swiftness mirrors the swiftness duration at cast time; movement code
	// uses it to tell a fresh cast from the lingering slow-down.
	Swiftness  int
	BoneArmour int
}

// Player is the caster. It is the root of all mutable spell state and is
// passed by reference to every component that touches it.
//
// It is not safe for concurrent use.
type Player struct {
	ID   uuid.UUID
	Name string

	HP    int
	MaxHP int
	Base  form.Stats
	Form  form.Form

	Durations  *duration.Store
	Permabuffs *permabuff.Table
	Attributes Attributes
	// IcyArmourPower is the power the current icy armour was cast at.
	IcyArmourPower int

	// Memorised lists spells in slot order.
	Memorised []spell.ID
	// Library records every spell the caster can relearn.
	Library map[spell.ID]bool
	// MaxSpellLevels is the memorisation capacity.
	MaxSpellLevels int

	InLiquid  bool
	InWater   bool
	Beholders int
}

// New returns a Player with full HP and every timer and subscription at rest.
// A nil sink discards duration announcements.
func New(name string, maxHP int, base form.Stats, sink message.Sink) *Player {
	return &Player{
		ID:             uuid.New(),
		Name:           name,
		HP:             maxHP,
		MaxHP:          maxHP,
		Base:           base,
		Durations:      duration.NewStore(sink),
		Permabuffs:     permabuff.NewTable(),
		Library:        make(map[spell.ID]bool),
		MaxSpellLevels: 27,
	}
}

// SetHP sets current HP, clamped to [0, MaxHP].
func (p *Player) SetHP(hp int) {
	p.HP = clamp(hp, 0, p.MaxHP)
}

// DecMaxHP lowers max HP by loss, never below 1, and clamps current HP.
func (p *Player) DecMaxHP(loss int) {
	if loss < 0 {
		return
	}
	p.MaxHP = max(p.MaxHP-loss, 1)
	p.SetHP(p.HP)
}

// Beheld reports whether anything holds the caster's attention captive.
func (p *Player) Beheld() bool {
	return p.Beholders > 0
}

// Silenced reports whether the caster cannot vocalise.
func (p *Player) Silenced() bool {
	return p.Durations.Active(duration.Silence)
}

// Learn memorises id and adds it to the library.
func (p *Player) Learn(id spell.ID) {
	p.Memorised = append(p.Memorised, id)
	p.Library[id] = true
}

// Forget removes the spell in slot from memory. The library is untouched.
//
// Postcondition: returns the forgotten spell, or false if slot is out of range.
func (p *Player) Forget(slot int) (spell.ID, bool) {
	if slot < 0 || slot >= len(p.Memorised) {
		return "", false
	}
	id := p.Memorised[slot]
	p.Memorised = append(p.Memorised[:slot], p.Memorised[slot+1:]...)
	return id, true
}

// SpellLevelsFree returns the memorisation capacity not taken by memorised
// spells, using book for spell levels.
func (p *Player) SpellLevelsFree(book *spell.Book) int {
	used := 0
	for _, id := range p.Memorised {
		if def, ok := book.Get(id); ok {
			used += def.Level
		}
	}
	return p.MaxSpellLevels - used
}

// IsWorking reports whether the permabuff id is delivering its effect this
// turn: switched on, its bound duration elapsed, and for song of slaying
// the caster has a voice.
func (p *Player) IsWorking(cat *permabuff.Catalog, id permabuff.ID) bool {
	if !p.Permabuffs.Active(id) {
		return false
	}
	if p.Durations.Active(cat.Get(id).Duration) {
		return false
	}
	if id == permabuff.Song && p.Silenced() {
		return false
	}
	return true
}

// Snapshot is the persisted form of a Player.
type Snapshot struct {
	ID             uuid.UUID
	Name           string
	HP             int
	MaxHP          int
	Base           form.Stats
	Form           string
	Durations      map[string]int
	Permabuffs     permabuff.Snapshot
	Attributes     Attributes
	IcyArmourPower int
	Memorised      []string
	Library        []string
	MaxSpellLevels int
}

// Snapshot captures the persisted state. Positional flags such as InLiquid
// and Beholders belong to the map and are not included.
func (p *Player) Snapshot() Snapshot {
	s := Snapshot{
		ID:             p.ID,
		Name:           p.Name,
		HP:             p.HP,
		MaxHP:          p.MaxHP,
		Base:           p.Base,
		Form:           string(p.Form),
		Durations:      p.Durations.Snapshot(),
		Permabuffs:     p.Permabuffs.Snapshot(),
		Attributes:     p.Attributes,
		IcyArmourPower: p.IcyArmourPower,
		MaxSpellLevels: p.MaxSpellLevels,
	}
	for _, id := range p.Memorised {
		s.Memorised = append(s.Memorised, id.String())
	}
	for _, id := range spell.All() {
		if p.Library[id] {
			s.Library = append(s.Library, id.String())
		}
	}
	return s
}

// Restore replaces the player's persisted state with s.
//
// Postcondition: on error the Player is unchanged.
func (p *Player) Restore(s Snapshot) error {
	memorised, err := parseSpells(s.Memorised)
	if err != nil {
		return fmt.Errorf("restoring memorised spells: %w", err)
	}
	library, err := parseSpells(s.Library)
	if err != nil {
		return fmt.Errorf("restoring library: %w", err)
	}
	if s.MaxHP < 1 {
		return fmt.Errorf("restoring player: max hp must be >= 1, got %d", s.MaxHP)
	}

	durations := duration.NewStore(nil)
	if err := durations.Restore(s.Durations); err != nil {
		return err
	}
	table := permabuff.NewTable()
	if err := table.Restore(s.Permabuffs); err != nil {
		return err
	}
	// Both snapshots validated; copy into the live stores so hooks fire.
	p.Durations.CopyFrom(durations)
	p.Permabuffs.CopyFrom(table)

	p.ID = s.ID
	p.Name = s.Name
	p.MaxHP = s.MaxHP
	p.SetHP(s.HP)
	p.Base = s.Base
	p.Form = form.Form(s.Form)
	p.Attributes = s.Attributes
	p.IcyArmourPower = s.IcyArmourPower
	p.MaxSpellLevels = s.MaxSpellLevels
	p.Memorised = memorised
	p.Library = make(map[spell.ID]bool, len(library))
	for _, id := range library {
		p.Library[id] = true
	}
	return nil
}

func parseSpells(names []string) ([]spell.ID, error) {
	out := make([]spell.ID, 0, len(names))
	for _, n := range names {
		id, err := spell.ParseID(n)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
