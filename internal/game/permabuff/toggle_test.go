package permabuff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

func TestToggle_AbortSuccessCancelScenario(t *testing.T) {
	f := newFixture()
	tg := permabuff.NewToggler(f.deps)
	table := f.deps.Table

	assert.Equal(t, spell.Abort, tg.Toggle(regenBinding(), fail))
	assert.False(t, table.Active(permabuff.Regen))
	assert.Empty(t, f.buf.Entries(), "an aborted cast must not announce anything")

	assert.Equal(t, spell.Success, tg.Toggle(regenBinding(), pass))
	assert.True(t, table.Active(permabuff.Regen))
	assert.Equal(t, 100, table.Get(permabuff.Regen).Companion.Reserve)

	assert.Equal(t, spell.PermaCancel, tg.Toggle(regenBinding(), pass))
	assert.False(t, table.Active(permabuff.Regen))
	assert.Equal(t, 0, table.Get(permabuff.Regen).Companion.Reserve)
}

func TestToggle_CancelNeverConsultsPrecondition(t *testing.T) {
	f := newFixture()
	tg := permabuff.NewToggler(f.deps)
	require.Equal(t, spell.Success, tg.Toggle(regenBinding(), pass))

	called := false
	res := tg.Toggle(regenBinding(), func() bool { called = true; return false })
	assert.Equal(t, spell.PermaCancel, res)
	assert.False(t, called)
}

func TestToggle_CompensatingHookRunsOnCancel(t *testing.T) {
	f := newFixture()
	tg := permabuff.NewToggler(f.deps)
	require.Equal(t, spell.Success, tg.Toggle(regenBinding(), pass))
	require.Equal(t, spell.PermaCancel, tg.Toggle(regenBinding(), pass))
	assert.Equal(t, 10, f.deps.Durations.Remaining(duration.Regeneration))

	// Recast and cancel again: the hook is capped at 25.
	require.Equal(t, spell.Success, tg.Toggle(regenBinding(), pass))
	require.Equal(t, spell.PermaCancel, tg.Toggle(regenBinding(), pass))
	require.Equal(t, spell.Success, tg.Toggle(regenBinding(), pass))
	require.Equal(t, spell.PermaCancel, tg.Toggle(regenBinding(), pass))
	assert.Equal(t, 25, f.deps.Durations.Remaining(duration.Regeneration))
}

func TestToggle_NoticeDependsOnBoundDuration(t *testing.T) {
	f := newFixture()
	tg := permabuff.NewToggler(f.deps)
	b := permabuff.Binding{
		ID:     permabuff.Song,
		Cancel: permabuff.Notice{Pending: "stop trying", Now: "stop singing"},
		Enable: permabuff.Notice{Pending: "will soon sing", Now: "start singing"},
	}

	f.deps.Durations.Set(duration.SongOfSlaying, 5, "")
	tg.Toggle(b, pass)
	tg.Toggle(b, pass)
	f.deps.Durations.Expire(duration.SongOfSlaying)
	tg.Toggle(b, pass)
	tg.Toggle(b, pass)

	var texts []string
	for _, e := range f.buf.Entries() {
		texts = append(texts, e.Text)
	}
	assert.Equal(t, []string{"will soon sing", "stop trying", "start singing", "stop singing"}, texts)
}

func TestToggle_BlankNoticeSaysNothing(t *testing.T) {
	f := newFixture()
	tg := permabuff.NewToggler(f.deps)
	silent := permabuff.Binding{ID: permabuff.Infusion}

	require.Equal(t, spell.Success, tg.Toggle(silent, pass))
	require.Equal(t, spell.PermaCancel, tg.Toggle(silent, pass))
	assert.Empty(t, f.buf.Entries())
}

func TestToggle_NilPreconditionPasses(t *testing.T) {
	f := newFixture()
	assert.Equal(t, spell.Success, permabuff.NewToggler(f.deps).Toggle(regenBinding(), nil))
}

// A Success is always followed by a PermaCancel; anything else is followed
// by Success or Abort. The active flag tracks the last non-Abort result.
func TestPropertyToggle_NeverStuck(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture()
		tg := permabuff.NewToggler(f.deps)
		id := permabuff.ID(rapid.IntRange(0, len(permabuff.All())-1).Draw(rt, "id"))
		b := permabuff.Binding{ID: id, Start: permabuff.Companion{Reserve: 100, SlayingBonus: 3}}

		prev := spell.Abort
		for i, n := 0, rapid.IntRange(1, 40).Draw(rt, "casts"); i < n; i++ {
			ok := rapid.Bool().Draw(rt, "precondition")
			res := tg.Toggle(b, func() bool { return ok })
			if prev == spell.Success {
				require.Equal(rt, spell.PermaCancel, res)
			} else {
				require.Contains(rt, []spell.Result{spell.Success, spell.Abort}, res)
			}
			switch res {
			case spell.Success:
				assert.True(rt, f.deps.Table.Active(id))
			case spell.PermaCancel, spell.Abort:
				assert.False(rt, f.deps.Table.Active(id))
				assert.Equal(rt, permabuff.Companion{}, f.deps.Table.Get(id).Companion)
			}
			prev = res
		}
	})
}
