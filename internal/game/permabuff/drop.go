package permabuff

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/message"
)

// DefaultDropDice is the extension rolled by IncreaseDurations when
// DropOptions.Dice is left zero.
var DefaultDropDice = dice.MustParse("2d10")

// DropOptions selects what a bulk sweep does.
// EndDurations and IncreaseDurations are mutually exclusive; at least one
// switch must be set.
type DropOptions struct {
	TurnOff           bool
	EndDurations      bool
	IncreaseDurations bool
	// Dice is the extension rolled per subscription by IncreaseDurations.
	Dice dice.Expression
}

// Dropper performs administrative sweeps over every subscription at once.
type Dropper struct {
	deps Deps
}

// NewDropper returns a Dropper operating on deps.
func NewDropper(deps Deps) *Dropper {
	return &Dropper{deps: deps}
}

// Drop applies opts to every subscription.
//
// A call with no switches, or with both EndDurations and IncreaseDurations,
// is a programmer error: it is reported on the warning channel and the sweep
// continues. When both duration switches are set, EndDurations wins.
func (dr *Dropper) Drop(opts DropOptions) {
	d := dr.deps
	if !opts.TurnOff && !opts.EndDurations && !opts.IncreaseDurations {
		dr.bug("BUG: permabuff drop called to do nothing.")
	}
	if opts.EndDurations && opts.IncreaseDurations {
		dr.bug("BUG: permabuff drop called to both end and increase durations.")
		opts.IncreaseDurations = false
	}
	if opts.Dice.Count == 0 {
		opts.Dice = DefaultDropDice
	}

	for _, id := range All() {
		def := d.Catalog.Get(id)
		if opts.TurnOff {
			d.Table.deactivate(id)
		}
		if opts.EndDurations {
			d.Durations.Expire(def.Duration)
		}
		if opts.IncreaseDurations && d.Table.Active(id) {
			roll := d.Rand.Roll(opts.Dice).Total()
			if roll > d.Durations.Remaining(def.Duration) {
				d.Durations.Set(def.Duration, roll, "")
			}
		}
		if opts.TurnOff && opts.EndDurations {
			d.Table.subs[id].Aux = Aux{}
		}
	}

	if opts.TurnOff {
		d.Table.ShroudRecharge = false
		if opts.EndDurations {
			d.Table.ProjectileDebt = 0
		}
	}

	d.Logger.Debug("permabuffs dropped",
		zap.Bool("turn_off", opts.TurnOff),
		zap.Bool("end_durations", opts.EndDurations),
		zap.Bool("increase_durations", opts.IncreaseDurations),
	)
}

func (dr *Dropper) bug(text string) {
	dr.deps.Sink.Say(message.Warn, text)
	dr.deps.Logger.Warn("permabuff drop contract violation", zap.String("detail", text))
}
