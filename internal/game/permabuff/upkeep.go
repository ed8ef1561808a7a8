package permabuff

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/message"
)

// Failure records one upkeep failure applied during a Tick.
type Failure struct {
	ID       ID
	Severity int
	Refresh  int
}

// Evaluator rolls upkeep failure for every active subscription once per tick.
// A failure costs a miscast and pushes the bound duration out; it never
// switches the subscription off.
type Evaluator struct {
	deps    Deps
	spells  SpellInfo
	checker SeverityRoller
	miscast MiscastApplier

	// Working is the external suppression predicate. nil treats every
	// active subscription as working.
	Working func(id ID) bool
	// Eligible is an extra per-permabuff gate, e.g. song only strains the
	// caster once it has built up a bonus. nil admits all.
	Eligible func(id ID, sub Subscription) bool
}

// NewEvaluator returns an Evaluator.
//
// Precondition: every argument must be non-nil.
func NewEvaluator(deps Deps, spells SpellInfo, checker SeverityRoller, miscast MiscastApplier) *Evaluator {
	return &Evaluator{deps: deps, spells: spells, checker: checker, miscast: miscast}
}

// FailureCheck rolls one chance in (nominal duration / failure cadence) for
// id and, when that hits, returns the failure severity. 0 means no failure.
func (e *Evaluator) FailureCheck(id ID) int {
	_, severity := e.roll(id)
	return severity
}

func (e *Evaluator) roll(id ID) (fired bool, severity int) {
	def := e.deps.Catalog.Get(id)
	odds := e.spells.NominalDuration(def.Spell) / def.FailureCadence
	if !e.deps.Rand.OneChanceIn(odds) {
		return false, 0
	}
	return true, e.checker.Severity(def.Spell, true)
}

// Tick evaluates every subscription once and returns the failures applied,
// in declaration order.
func (e *Evaluator) Tick() []Failure {
	var failures []Failure
	for _, id := range All() {
		sub := e.deps.Table.Get(id)
		if !sub.active {
			continue
		}
		if e.Working != nil && !e.Working(id) {
			continue
		}
		if e.Eligible != nil && !e.Eligible(id, sub) {
			continue
		}

		fired, severity := e.roll(id)
		if !fired {
			continue
		}
		if severity == 0 {
			// The roll fired but the severity check came up clean.
			e.deps.Logger.Debug("upkeep roll fired without effect", zap.Stringer("permabuff", id))
			continue
		}

		def := e.deps.Catalog.Get(id)
		announced := def.MiscastMessage != ""
		if announced {
			e.deps.Sink.Say(message.Duration, def.MiscastMessage)
		}
		e.miscast.ApplyMiscast(def.Spell, severity, !announced)
		refresh := e.deps.Rand.Roll(def.Refresh()).Total() + severity/4
		e.deps.Durations.Increase(def.Duration, refresh, def.RefreshCap)

		e.deps.Logger.Debug("upkeep failure",
			zap.Stringer("permabuff", id),
			zap.Int("severity", severity),
			zap.Int("refresh", refresh),
			zap.Int("duration", e.deps.Durations.Remaining(def.Duration)),
		)
		failures = append(failures, Failure{ID: id, Severity: severity, Refresh: refresh})
	}
	return failures
}
