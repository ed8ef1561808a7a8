package selfench

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// DeathsDoorHP is the HP the caster is held at while in death's door.
func (c *Caster) DeathsDoorHP() int {
	return max(c.Power(spell.DeathsDoor)/10, 1)
}

// CastDeathsDoor sets HP to DeathsDoorHP and starts the death's door timer.
// Entering death's door suspends every permabuff: they stay on but must
// rebuild before working again.
func (c *Caster) CastDeathsDoor(power int) spell.Result {
	if !c.failCheck(spell.DeathsDoor, power)() {
		return spell.Abort
	}
	c.say("You stand defiantly in death's doorway!")
	c.sink.Say(message.Sound, "You seem to hear sand running through an hourglass...")

	c.p.SetHP(c.DeathsDoorHP())

	turns := 10 + c.rng.Random2Avg(13, 3) + c.rng.Random2(power)/10
	if turns > 25 {
		turns = 23 + c.rng.Random2(5)
	}
	c.p.Durations.Set(duration.DeathsDoor, turns, "")
	c.DropPermabuffs(permabuff.DropOptions{IncreaseDurations: true})
	return spell.Success
}

// RemoveIcyArmour ends icy armour immediately.
func (c *Caster) RemoveIcyArmour() {
	c.sink.Say(message.Duration, "Your icy armour melts away.")
	c.p.Durations.Expire(duration.IcyArmour)
	c.p.IcyArmourPower = 0
}

// CastIceArmour thickens or creates icy armour and sheds any bone armour.
func (c *Caster) CastIceArmour(power int) spell.Result {
	if !c.failCheck(spell.OzocubusArmour, power)() {
		return spell.Abort
	}
	switch {
	case c.p.Durations.Active(duration.IcyArmour):
		c.say("Your icy armour thickens.")
	case c.p.Form == form.IceBeast:
		c.say("Your icy body feels more resilient.")
	default:
		c.say("A film of ice covers your body!")
	}
	if c.p.Attributes.BoneArmour > 0 {
		c.p.Attributes.BoneArmour = 0
		c.say("Your corpse armour falls away.")
	}
	c.p.Durations.Increase(duration.IcyArmour, c.rng.RandomRange(80, 100), 100)
	c.p.IcyArmourPower = power
	return spell.Success
}

// CastDeflection grants permanent missile deflection.
func (c *Caster) CastDeflection(power int) spell.Result {
	if !c.failCheck(spell.DeflectMissiles, power)() {
		return spell.Abort
	}
	c.p.Attributes.DeflectMissiles = 1
	c.say("You feel very safe from missiles.")
	return spell.Success
}

// CastRevivification heals fully at the cost of some max HP and snaps the
// caster out of death's door, paralysing them.
func (c *Caster) CastRevivification(power int) spell.Result {
	if !c.failCheck(spell.Revivification, power)() {
		return spell.Abort
	}
	c.say("Your body is healed in an amazingly painful way.")

	loss := 6 + c.rng.Binomial(9, 8, power)
	c.p.DecMaxHP(loss * c.p.MaxHP / 100)
	c.p.SetHP(c.p.MaxHP)

	if c.p.Durations.Active(duration.DeathsDoor) {
		c.sink.Say(message.Duration, "Your life is in your own hands once again.")
		c.p.Durations.Increase(duration.Paralysis, 2+c.rng.Random2(6), 13)
		c.p.Durations.Expire(duration.DeathsDoor)
	}
	return spell.Success
}

// CastSwiftness makes the caster fast for a while.
func (c *Caster) CastSwiftness(power int) spell.Result {
	if !c.failCheck(spell.Swiftness, power)() {
		return spell.Abort
	}
	if c.p.InLiquid {
		ground := "liquid ground"
		if c.p.InWater {
			ground = "water"
		}
		c.say(fmt.Sprintf("The %s foams!", ground))
	}
	c.p.Durations.SetCapped(duration.Swiftness, 12+c.rng.Random2(power)/2, 30, "You feel quick.")
	c.p.Attributes.Swiftness = c.p.Durations.Remaining(duration.Swiftness)
	return spell.Success
}

// CastSilence silences the area around the caster.
func (c *Caster) CastSilence(power int) spell.Result {
	if !c.failCheck(spell.Silence, power)() {
		return spell.Abort
	}
	c.say("A profound silence engulfs you.")
	c.p.Durations.Increase(duration.Silence, 10+power/4+c.rng.Random2Avg(power/2, 2), 100)
	c.world.InvalidateAreas()
	if c.p.Beheld() {
		c.world.UpdateBeholders()
	}
	c.world.LearnedSomethingNew("you_silence")
	return spell.Success
}

// CastLiquefaction turns the surrounding ground to mud.
func (c *Caster) CastLiquefaction(power int) spell.Result {
	if !c.failCheck(spell.Liquefaction, power)() {
		return spell.Abort
	}
	c.world.FlashView("brown", 80)
	c.world.FlashView("yellow", 80)
	c.world.FlashView("brown", 140)
	c.say("The ground around you becomes liquefied!")
	c.p.Durations.Increase(duration.Liquefying, 10+c.rng.Random2Avg(power, 2), 100)
	c.world.InvalidateAreas()
	return spell.Success
}

// CastTransform changes the caster into target. A transformation the rules
// forbid, or one that would drop a stat to zero, aborts before the fail
// check is rolled. Permabuffs survive the change but must rebuild.
func (c *Caster) CastTransform(id spell.ID, target form.Form, power int) spell.Result {
	if err := c.forms.CanTransform(c.p.Form, target, power); err != nil {
		c.say(transformRefusal(err))
		c.logger.Debug("transformation refused", zap.Stringer("form", target), zap.Error(err))
		return spell.Abort
	}
	if !c.forms.StatSafe(c.p.Base, target) {
		c.say("Transforming would leave you too weak to go on.")
		return spell.Abort
	}
	if !c.failCheck(id, power)() {
		return spell.Abort
	}
	next, msg, err := c.forms.Transform(c.p.Form, target, power)
	if err != nil {
		// CanTransform passed with the same inputs.
		c.logger.Warn("transformation failed after dry run", zap.Error(err))
		return spell.Abort
	}
	c.p.Form = next
	if msg != "" {
		c.say(msg)
	}
	c.DropPermabuffs(permabuff.DropOptions{IncreaseDurations: true})
	return spell.Success
}

func transformRefusal(err error) string {
	switch {
	case errors.Is(err, form.ErrAlreadyInForm):
		return "You are already in that form."
	case errors.Is(err, form.ErrTooWeak):
		return "You lack the power to hold that form."
	default:
		return "You cannot take that form."
	}
}
