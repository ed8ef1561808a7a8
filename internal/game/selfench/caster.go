// Package selfench implements the self-enchantment spells: the permabuff
// cast entry points, the one-shot buffs and transformations, and the
// per-turn session hook that drives upkeep and decay.
package selfench

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/player"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Rand is the set of random generators the spells draw on.
// *dice.Roller satisfies it.
type Rand interface {
	Random2(n int) int
	RandomRange(lo, hi int) int
	Random2Avg(n, rolls int) int
	Binomial(trials, num, den int) int
	OneChanceIn(n int) bool
	Roll(expr dice.Expression) dice.RollResult
}

// Prompter asks the player to pick and confirm.
type Prompter interface {
	// ChooseSpell asks the player to pick one of spells by slot.
	// ok is false when the player backs out.
	ChooseSpell(prompt string, spells []spell.ID) (slot int, ok bool)
	// Confirm asks a yes/no question. The default answer is no.
	Confirm(prompt string) bool
}

// World receives the side effects a spell has on the map and interface.
type World interface {
	InvalidateAreas()
	UpdateBeholders()
	FlashView(colour string, delayMS int)
	LearnedSomethingNew(hint string)
}

// Deps are the collaborators a Caster needs. All fields are required except
// Prompter and World, which default to no-ops.
type Deps struct {
	Player   *player.Player
	Book     *spell.Book
	Checker  spell.Checker
	Rand     Rand
	Forms    *form.Rules
	Catalog  *permabuff.Catalog
	Sink     message.Sink
	Prompter Prompter
	World    World
	Logger   *zap.Logger
}

// Caster casts spells for one player.
type Caster struct {
	p        *player.Player
	book     *spell.Book
	checker  spell.Checker
	rng      Rand
	forms    *form.Rules
	catalog  *permabuff.Catalog
	sink     message.Sink
	prompter Prompter
	world    World
	logger   *zap.Logger

	buffs   permabuff.Deps
	toggler *permabuff.Toggler
	dropper *permabuff.Dropper
}

// NewCaster wires a Caster from deps.
//
// Precondition: every required field of deps is non-nil.
func NewCaster(deps Deps) *Caster {
	if deps.Prompter == nil {
		deps.Prompter = declinePrompter{}
	}
	if deps.World == nil {
		deps.World = NopWorld{}
	}
	buffs := permabuff.Deps{
		Table:     deps.Player.Permabuffs,
		Durations: deps.Player.Durations,
		Catalog:   deps.Catalog,
		Rand:      deps.Rand,
		Sink:      deps.Sink,
		Logger:    deps.Logger,
	}
	return &Caster{
		p:        deps.Player,
		book:     deps.Book,
		checker:  deps.Checker,
		rng:      deps.Rand,
		forms:    deps.Forms,
		catalog:  deps.Catalog,
		sink:     deps.Sink,
		prompter: deps.Prompter,
		world:    deps.World,
		logger:   deps.Logger,
		buffs:    buffs,
		toggler:  permabuff.NewToggler(buffs),
		dropper:  permabuff.NewDropper(buffs),
	}
}

// Player returns the caster's player.
func (c *Caster) Player() *player.Player {
	return c.p
}

// Power returns the player's power for id.
func (c *Caster) Power(id spell.ID) int {
	return c.book.Power(id)
}

// failCheck returns a precondition that rolls the cast fail check for id at
// power and reports a miscast when it fails.
func (c *Caster) failCheck(id spell.ID, power int) func() bool {
	return func() bool {
		if c.checker.Passes(id, power) {
			return true
		}
		c.sink.Say(message.Plain, fmt.Sprintf("You miscast %s.", c.spellName(id)))
		c.logger.Debug("cast failed", zap.Stringer("spell", id), zap.Int("power", power))
		return false
	}
}

func (c *Caster) spellName(id spell.ID) string {
	if def, ok := c.book.Get(id); ok && def.Name != "" {
		return def.Name
	}
	return id.String()
}

func (c *Caster) say(text string) {
	c.sink.Say(message.Plain, text)
}

// NopWorld ignores every world side effect.
type NopWorld struct{}

func (NopWorld) InvalidateAreas() {}
func (NopWorld) UpdateBeholders() {}
func (NopWorld) FlashView(string, int) {}
func (NopWorld) LearnedSomethingNew(string) {}

type declinePrompter struct{}

func (declinePrompter) ChooseSpell(string, []spell.ID) (int, bool) { return 0, false }
func (declinePrompter) Confirm(string) bool { return false }
