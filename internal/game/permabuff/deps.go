package permabuff

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// Rand is the slice of the dice roller the permabuff code consumes.
type Rand interface {
	OneChanceIn(n int) bool
	Roll(expr dice.Expression) dice.RollResult
}

// SpellInfo supplies each spell's nominal duration.
type SpellInfo interface {
	NominalDuration(id spell.ID) int
}

// SeverityRoller computes how badly a failure roll went. 0 means no failure.
type SeverityRoller interface {
	Severity(id spell.ID, upkeep bool) int
}

// MiscastApplier applies a miscast penalty for spell at severity. The
// penalty always applies; flavour asks for a generic miscast message, which
// callers that already announced the failure leave off.
type MiscastApplier interface {
	ApplyMiscast(id spell.ID, severity int, flavour bool)
}

// Deps is the state and plumbing shared by Toggler, Evaluator and Dropper.
// All fields are required.
type Deps struct {
	Table     *Table
	Durations *duration.Store
	Catalog   *Catalog
	Rand      Rand
	Sink      message.Sink
	Logger    *zap.Logger
}
