package permabuff

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Notice is a pair of messages chosen by whether the bound duration is
// still running. Pending is used while it is; Now otherwise. An empty
// Pending falls back to Now.
type Notice struct {
	Pending string
	Now     string
}

func (n Notice) pick(running bool) string {
	if running && n.Pending != "" {
		return n.Pending
	}
	return n.Now
}

// say prints the notice unless the binding left it blank.
func (n Notice) say(sink message.Sink, running bool) {
	if text := n.pick(running); text != "" {
		sink.Say(message.Plain, text)
	}
}

// Binding is one spell's instance of the toggle protocol.
type Binding struct {
	ID     ID
	Cancel Notice
	Enable Notice
	// Start is the companion state written on activation.
	Start Companion
	// OnCancel is the spell's compensating action, run after the
	// subscription has been switched off. nil means none.
	OnCancel func(d Deps)
}

// Toggler runs the shared on/off protocol for every permabuff spell.
type Toggler struct {
	deps Deps
}

// NewToggler returns a Toggler operating on deps.
func NewToggler(deps Deps) *Toggler {
	return &Toggler{deps: deps}
}

// Toggle switches b.ID off if it is on, or on if it is off.
//
// Cancelling never fails and never consults precondition. Enabling calls
// precondition first; if it reports false nothing changes and Abort is returned.
//
// Postcondition: a single call never both enables and disables.
func (tg *Toggler) Toggle(b Binding, precondition func() bool) spell.Result {
	d := tg.deps
	def := d.Catalog.Get(b.ID)
	running := d.Durations.Active(def.Duration)

	if d.Table.Active(b.ID) {
		b.Cancel.say(d.Sink, running)
		d.Table.deactivate(b.ID)
		if b.OnCancel != nil {
			b.OnCancel(d)
		}
		d.Logger.Debug("permabuff cancelled",
			zap.Stringer("permabuff", b.ID),
			zap.Int("duration", d.Durations.Remaining(def.Duration)),
		)
		return spell.PermaCancel
	}

	if precondition != nil && !precondition() {
		d.Logger.Debug("permabuff activation aborted", zap.Stringer("permabuff", b.ID))
		return spell.Abort
	}
	b.Enable.say(d.Sink, running)
	d.Table.activate(b.ID, b.Start)
	d.Logger.Debug("permabuff activated",
		zap.Stringer("permabuff", b.ID),
		zap.Bool("pending", running),
	)
	return spell.Success
}
