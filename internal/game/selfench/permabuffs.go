package selfench

import (
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Each permabuff spell is one Binding. The compensating action on cancel
// is specific to each spell and deliberately not shared.

var songBinding = permabuff.Binding{
	ID: permabuff.Song,
	Cancel: permabuff.Notice{
		Pending: "You stop trying to sing a song of slaying.",
		Now:     "You stop singing a song of slaying.",
	},
	Enable: permabuff.Notice{
		Pending: "You will soon be singing a song of slaying.",
		Now:     "You start singing a song of slaying.",
	},
}

var infusionBinding = permabuff.Binding{
	ID: permabuff.Infusion,
	Cancel: permabuff.Notice{
		Pending: "You stop attempting to infuse your attacks with magical energy.",
		Now:     "You stop infusing your attacks with magical energy.",
	},
	Enable: permabuff.Notice{
		Pending: "You will soon be infusing your attacks with magical energy.",
		Now:     "You begin infusing your attacks with magical energy.",
	},
}

var shroudBinding = permabuff.Binding{
	ID:     permabuff.Shroud,
	Cancel: permabuff.Notice{Now: "You dispel your protective shroud."},
	Enable: permabuff.Notice{
		Pending: "You will soon reconstruct your protective shroud.",
		Now:     "Space distorts slightly along a thin shroud covering your body.",
	},
	// A shroud dispelled mid-recharge keeps its full recharge delay so
	// recasting cannot skip it.
	OnCancel: func(d permabuff.Deps) {
		if d.Table.ShroudRecharge {
			d.Table.ShroudRecharge = false
			d.Durations.Increase(duration.ShroudOfGolubria, 25, 25)
		}
	},
}

var regenBinding = permabuff.Binding{
	ID:     permabuff.Regen,
	Cancel: permabuff.Notice{Now: "Your skin stops crawling."},
	Enable: permabuff.Notice{Now: "Your skin crawls."},
	Start:  permabuff.Companion{Reserve: 100},
	// Stops dropping and recasting to refill the reserve.
	OnCancel: func(d permabuff.Deps) {
		d.Durations.Increase(duration.Regeneration, 10, 25)
	},
}

// CastSongOfSlaying toggles song of slaying. The slaying bonus starts at
// zero on every activation and is cleared on cancel.
func (c *Caster) CastSongOfSlaying(power int) spell.Result {
	return c.toggler.Toggle(songBinding, c.failCheck(spell.SongOfSlaying, power))
}

// CastInfusion toggles infusion. Its power is computed per attack, so
// nothing is seeded here.
func (c *Caster) CastInfusion(power int) spell.Result {
	return c.toggler.Toggle(infusionBinding, c.failCheck(spell.Infusion, power))
}

// CastShroud toggles the shroud of Golubria.
func (c *Caster) CastShroud(power int) spell.Result {
	return c.toggler.Toggle(shroudBinding, c.failCheck(spell.ShroudOfGolubria, power))
}

// CastRegen toggles regeneration, seeding a healing reserve of 100.
func (c *Caster) CastRegen(power int) spell.Result {
	return c.toggler.Toggle(regenBinding, c.failCheck(spell.Regeneration, power))
}

// AddSlayingBonus raises the song of slaying bonus by n while the song is
// on. It reports whether the song was on.
func (c *Caster) AddSlayingBonus(n int) bool {
	comp := c.p.Permabuffs.Get(permabuff.Song).Companion
	comp.SlayingBonus += n
	return c.p.Permabuffs.SetCompanion(permabuff.Song, comp)
}

// AbsorbWithShroud records that the shroud has deflected a hit and must
// rebuild before it works again. It reports whether the shroud was working.
func (c *Caster) AbsorbWithShroud() bool {
	if !c.p.IsWorking(c.catalog, permabuff.Shroud) {
		return false
	}
	c.say("Your shroud bends the attack away.")
	c.p.Permabuffs.ShroudRecharge = true
	c.p.Durations.Set(duration.ShroudOfGolubria, c.rng.RandomRange(10, 20), "")
	c.p.Permabuffs.AddAux(permabuff.Shroud, permabuff.Aux{Benefit: 1})
	return true
}
