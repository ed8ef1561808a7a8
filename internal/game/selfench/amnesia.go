package selfench

import (
	"fmt"

	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// AmnesiaOutcome is the result of SelectiveAmnesia.
type AmnesiaOutcome int

const (
	// AmnesiaNothing means there was nothing to forget.
	AmnesiaNothing AmnesiaOutcome = iota
	// AmnesiaForgot means a spell was removed from memory.
	AmnesiaForgot
	// AmnesiaCancelled means the player backed out.
	AmnesiaCancelled
)

// SelectiveAmnesia asks the player which memorised spell to forget and
// removes it after confirmation. preMsg, when set, is shown just before
// the spell is forgotten.
func (c *Caster) SelectiveAmnesia(preMsg string) AmnesiaOutcome {
	if len(c.p.Memorised) == 0 {
		c.say("You don't know any spells.")
		return AmnesiaNothing
	}

	slot, ok := c.prompter.ChooseSpell("Forget which spell?", c.p.Memorised)
	if ok && slot >= 0 && slot < len(c.p.Memorised) {
		id := c.p.Memorised[slot]
		if c.prompter.Confirm(c.amnesiaPrompt(id)) {
			if preMsg != "" {
				c.say(preMsg)
			}
			c.p.Forget(slot)
			return AmnesiaForgot
		}
	}
	c.say("Okay, then.")
	return AmnesiaCancelled
}

func (c *Caster) amnesiaPrompt(id spell.ID) string {
	levels := 0
	if def, ok := c.book.Get(id); ok {
		levels = def.Level
	}
	plural := "s"
	if levels == 1 {
		plural = ""
	}
	warn := ""
	if !c.p.Library[id] {
		warn = " This spell is not in your library!"
	}
	return fmt.Sprintf("Forget %s, freeing %d spell level%s for a total of %d?%s",
		c.spellName(id), levels, plural, c.p.SpellLevelsFree(c.book)+levels, warn)
}
