package permabuff_test

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// fakeRand answers OneChanceIn with hit and rolls every expression as total.
type fakeRand struct {
	hit   bool
	total int
	odds  []int
}

func (f *fakeRand) OneChanceIn(n int) bool {
	f.odds = append(f.odds, n)
	return f.hit
}

func (f *fakeRand) Roll(expr dice.Expression) dice.RollResult {
	return dice.RollResult{Expression: expr.String(), Dice: []int{f.total}}
}

type fixedSeverity int

func (f fixedSeverity) Severity(spell.ID, bool) int { return int(f) }

type miscastCall struct {
	Spell    spell.ID
	Severity int
}

type miscastRecorder struct {
	calls []miscastCall
}

func (m *miscastRecorder) ApplyMiscast(id spell.ID, severity int, _ bool) {
	m.calls = append(m.calls, miscastCall{Spell: id, Severity: severity})
}

type fixture struct {
	deps permabuff.Deps
	rand *fakeRand
	buf  *message.Buffer
}

func newFixture() *fixture {
	buf := message.NewBuffer()
	r := &fakeRand{total: 7}
	return &fixture{
		rand: r,
		buf:  buf,
		deps: permabuff.Deps{
			Table:     permabuff.NewTable(),
			Durations: duration.NewStore(buf),
			Catalog:   permabuff.DefaultCatalog(),
			Rand:      r,
			Sink:      buf,
			Logger:    zap.NewNop(),
		},
	}
}

func regenBinding() permabuff.Binding {
	return permabuff.Binding{
		ID:     permabuff.Regen,
		Cancel: permabuff.Notice{Now: "Your skin stops crawling."},
		Enable: permabuff.Notice{Now: "Your skin crawls."},
		Start:  permabuff.Companion{Reserve: 100},
		OnCancel: func(d permabuff.Deps) {
			d.Durations.Increase(duration.Regeneration, 10, 25)
		},
	}
}

func pass() bool { return true }
func fail() bool { return false }
