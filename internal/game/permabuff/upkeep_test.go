package permabuff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

type helperT interface {
	require.TestingT
	Helper()
}

func activate(t helperT, f *fixture, id permabuff.ID) {
	t.Helper()
	res := permabuff.NewToggler(f.deps).Toggle(permabuff.Binding{ID: id}, pass)
	require.Equal(t, spell.Success, res)
}

func TestEvaluator_SkipsInactive(t *testing.T) {
	f := newFixture()
	f.rand.hit = true
	mr := &miscastRecorder{}
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(20), mr)

	assert.Empty(t, ev.Tick())
	assert.Empty(t, mr.calls)
	assert.Empty(t, f.rand.odds, "no roll may be made for inactive subscriptions")
}

func TestEvaluator_FailureAppliesMiscastAndRefresh(t *testing.T) {
	f := newFixture()
	activate(t, f, permabuff.Song)
	f.buf.Drain()
	f.rand.hit = true
	mr := &miscastRecorder{}
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(20), mr)

	got := ev.Tick()

	require.Len(t, got, 1)
	assert.Equal(t, permabuff.Failure{ID: permabuff.Song, Severity: 20, Refresh: 12}, got[0])
	assert.Equal(t, []miscastCall{{Spell: spell.SongOfSlaying, Severity: 20}}, mr.calls)
	assert.Equal(t, 12, f.deps.Durations.Remaining(duration.SongOfSlaying), "2d10 total 7 + 20/4")
	assert.Equal(t, []string{"You stumble over the syllables of your song."}, f.buf.Texts(message.Duration))
	assert.True(t, f.deps.Table.Active(permabuff.Song))
}

func TestEvaluator_OddsScaleWithNominalDurationAndCadence(t *testing.T) {
	f := newFixture()
	activate(t, f, permabuff.Song)
	activate(t, f, permabuff.Regen)
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(0), &miscastRecorder{})

	ev.Tick()
	// song: 40 / 2, regen: 40 / 4
	assert.Equal(t, []int{20, 10}, f.rand.odds)
}

func TestEvaluator_ZeroSeverityIsSilentNoOp(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	f := newFixture()
	f.deps.Logger = zap.New(core)
	activate(t, f, permabuff.Infusion)
	f.buf.Drain()
	f.rand.hit = true
	mr := &miscastRecorder{}
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(0), mr)

	assert.Empty(t, ev.Tick())
	assert.Empty(t, mr.calls)
	assert.Empty(t, f.buf.Entries())
	assert.Equal(t, 0, f.deps.Durations.Remaining(duration.Infusion))
	assert.Equal(t, 1, logs.FilterMessage("upkeep roll fired without effect").Len())
}

func TestEvaluator_RefreshRespectsCap(t *testing.T) {
	f := newFixture()
	activate(t, f, permabuff.Regen)
	f.rand.hit = true
	f.rand.total = 20
	f.deps.Durations.Set(duration.Regeneration, 20, "")
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(40), &miscastRecorder{})

	ev.Tick()
	assert.Equal(t, 25, f.deps.Durations.Remaining(duration.Regeneration))
}

func TestEvaluator_WorkingPredicateSuppresses(t *testing.T) {
	f := newFixture()
	activate(t, f, permabuff.Shroud)
	f.rand.hit = true
	mr := &miscastRecorder{}
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(10), mr)
	ev.Working = func(permabuff.ID) bool { return false }

	assert.Empty(t, ev.Tick())
	assert.Empty(t, mr.calls)
}

func TestEvaluator_EligibleGate(t *testing.T) {
	f := newFixture()
	activate(t, f, permabuff.Song)
	f.rand.hit = true
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(10), &miscastRecorder{})
	ev.Eligible = func(id permabuff.ID, sub permabuff.Subscription) bool {
		return sub.Companion.SlayingBonus > 0
	}

	assert.Empty(t, ev.Tick())
	require.True(t, f.deps.Table.SetCompanion(permabuff.Song, permabuff.Companion{SlayingBonus: 2}))
	assert.Len(t, ev.Tick(), 1)
}

func TestEvaluator_FailureCheck(t *testing.T) {
	f := newFixture()
	ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(), fixedSeverity(9), &miscastRecorder{})
	assert.Equal(t, 0, ev.FailureCheck(permabuff.Infusion))
	f.rand.hit = true
	assert.Equal(t, 9, ev.FailureCheck(permabuff.Infusion))
}

// Upkeep is a cost mechanism only: no sequence of ticks switches anything off.
func TestPropertyEvaluator_NeverToggles(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture()
		var on []permabuff.ID
		for _, id := range permabuff.All() {
			if rapid.Bool().Draw(rt, "on_"+id.String()) {
				activate(rt, f, id)
				on = append(on, id)
			}
		}
		ev := permabuff.NewEvaluator(f.deps, spell.DefaultBook(),
			fixedSeverity(rapid.IntRange(0, 100).Draw(rt, "severity")), &miscastRecorder{})
		for i, n := 0, rapid.IntRange(1, 50).Draw(rt, "ticks"); i < n; i++ {
			f.rand.hit = rapid.Bool().Draw(rt, "hit")
			f.rand.total = rapid.IntRange(2, 20).Draw(rt, "roll")
			ev.Tick()
			assert.Equal(rt, on, f.deps.Table.ActiveIDs())
		}
	})
}
