package selfench

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Cast casts id at the power recorded in the book.
//
// Postcondition: returns an error wrapping spell.ErrUnknownSpell when id has
// no book entry or no handler; otherwise the cast's Result.
func (c *Caster) Cast(id spell.ID) (spell.Result, error) {
	def, ok := c.book.Get(id)
	if !ok {
		return spell.Abort, fmt.Errorf("%w: %q is not in the spell book", spell.ErrUnknownSpell, id)
	}
	power := def.Power

	var res spell.Result
	switch id {
	case spell.DeathsDoor:
		res = c.CastDeathsDoor(power)
	case spell.OzocubusArmour:
		res = c.CastIceArmour(power)
	case spell.DeflectMissiles:
		res = c.CastDeflection(power)
	case spell.Regeneration:
		res = c.CastRegen(power)
	case spell.Revivification:
		res = c.CastRevivification(power)
	case spell.Swiftness:
		res = c.CastSwiftness(power)
	case spell.Infusion:
		res = c.CastInfusion(power)
	case spell.SongOfSlaying:
		res = c.CastSongOfSlaying(power)
	case spell.Silence:
		res = c.CastSilence(power)
	case spell.Liquefaction:
		res = c.CastLiquefaction(power)
	case spell.ShroudOfGolubria:
		res = c.CastShroud(power)
	default:
		if def.Form == "" {
			return spell.Abort, fmt.Errorf("%w: no handler for %q", spell.ErrUnknownSpell, id)
		}
		res = c.CastTransform(id, form.Form(def.Form), power)
	}

	c.logger.Info("spell cast",
		zap.Stringer("spell", id),
		zap.Int("power", power),
		zap.Stringer("result", res),
		zap.Bool("billable", res.Billable()),
	)
	return res, nil
}
