package duration_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
)

func TestStore_StartsInactive(t *testing.T) {
	s := duration.NewStore(nil)
	for _, id := range duration.All() {
		assert.Equal(t, 0, s.Remaining(id), id.String())
		assert.False(t, s.Active(id))
	}
}

func TestStore_Set_AnnouncesOnlyOnActivation(t *testing.T) {
	buf := message.NewBuffer()
	s := duration.NewStore(buf)

	s.Set(duration.Swiftness, 10, "You feel quick.")
	s.Set(duration.Swiftness, 12, "You feel quick.")

	assert.Equal(t, 12, s.Remaining(duration.Swiftness))
	assert.Equal(t, []string{"You feel quick."}, buf.Texts(message.Duration))
}

func TestStore_Set_NegativeClampsToZero(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.Silence, -5, "")
	assert.Equal(t, 0, s.Remaining(duration.Silence))
}

func TestStore_SetCapped(t *testing.T) {
	s := duration.NewStore(nil)
	s.SetCapped(duration.Swiftness, 45, 30, "")
	assert.Equal(t, 30, s.Remaining(duration.Swiftness))
}

func TestStore_Increase_CapsExistingValue(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.IcyArmour, 80, "")
	s.Increase(duration.IcyArmour, 50, 100)
	assert.Equal(t, 100, s.Remaining(duration.IcyArmour))
}

func TestStore_Increase_SeedsInactive(t *testing.T) {
	s := duration.NewStore(nil)
	s.Increase(duration.Regeneration, 10, 25)
	assert.Equal(t, 10, s.Remaining(duration.Regeneration))
}

func TestStore_Increase_SeedAboveCapIsCapped(t *testing.T) {
	s := duration.NewStore(nil)
	s.Increase(duration.ShroudOfGolubria, 40, 25)
	assert.Equal(t, 25, s.Remaining(duration.ShroudOfGolubria))
}

func TestStore_Increase_Uncapped(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.SongOfSlaying, 90, "")
	s.Increase(duration.SongOfSlaying, 30, 0)
	assert.Equal(t, 120, s.Remaining(duration.SongOfSlaying))
}

func TestStore_Expire(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.Liquefying, 7, "")
	s.Expire(duration.Liquefying)
	assert.False(t, s.Active(duration.Liquefying))
}

func TestStore_Tick_ReturnsExpiredInOrder(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.Silence, 1, "")
	s.Set(duration.DeathsDoor, 2, "")
	s.Set(duration.Swiftness, 1, "")

	assert.Equal(t, []duration.ID{duration.Swiftness, duration.Silence}, s.Tick(1))
	assert.Equal(t, 1, s.Remaining(duration.DeathsDoor))
	assert.Equal(t, []duration.ID{duration.DeathsDoor}, s.Tick(5))
	assert.Empty(t, s.Tick(1))
}

func TestStore_OnChange_FiresOnlyOnChange(t *testing.T) {
	s := duration.NewStore(nil)
	var changed []duration.ID
	s.OnChange(func(id duration.ID) { changed = append(changed, id) })

	s.Set(duration.Silence, 5, "")
	s.Set(duration.Silence, 5, "")
	s.Expire(duration.Silence)
	assert.Equal(t, []duration.ID{duration.Silence, duration.Silence}, changed)
}

func TestStore_SnapshotRestore(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.Regeneration, 12, "")
	s.Set(duration.Paralysis, 3, "")

	snap := s.Snapshot()
	assert.Equal(t, map[string]int{"regeneration": 12, "paralysis": 3}, snap)

	other := duration.NewStore(nil)
	other.Set(duration.Silence, 9, "")
	require.NoError(t, other.Restore(snap))
	assert.Equal(t, 12, other.Remaining(duration.Regeneration))
	assert.Equal(t, 0, other.Remaining(duration.Silence))
}

func TestStore_CopyFrom_FiresOnChangeForDifferences(t *testing.T) {
	live := duration.NewStore(nil)
	live.Set(duration.Silence, 9, "")
	live.Set(duration.Swiftness, 4, "")
	var changed []duration.ID
	live.OnChange(func(id duration.ID) { changed = append(changed, id) })

	src := duration.NewStore(nil)
	src.Set(duration.Swiftness, 4, "")
	src.Set(duration.Regeneration, 6, "")
	live.CopyFrom(src)

	assert.Equal(t, 0, live.Remaining(duration.Silence))
	assert.Equal(t, 4, live.Remaining(duration.Swiftness))
	assert.Equal(t, 6, live.Remaining(duration.Regeneration))
	assert.ElementsMatch(t, []duration.ID{duration.Silence, duration.Regeneration}, changed)
}

func TestStore_Restore_UnknownNameLeavesStoreUnchanged(t *testing.T) {
	s := duration.NewStore(nil)
	s.Set(duration.Silence, 9, "")
	err := s.Restore(map[string]int{"haste": 4})
	require.Error(t, err)
	assert.Equal(t, 9, s.Remaining(duration.Silence))
}

func TestID_ParseAndText(t *testing.T) {
	id, err := duration.ParseID("shroud_of_golubria")
	require.NoError(t, err)
	assert.Equal(t, duration.ShroudOfGolubria, id)

	var parsed duration.ID
	require.NoError(t, parsed.UnmarshalText([]byte("silence")))
	assert.Equal(t, duration.Silence, parsed)

	_, err = duration.ParseID("haste")
	assert.Error(t, err)
	assert.Equal(t, "duration(99)", duration.ID(99).String())
}

// Increase never leaves a timer above its cap, whatever the sequence.
func TestPropertyStore_IncreaseRespectsCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := duration.NewStore(nil)
		id := duration.ID(rapid.IntRange(0, len(duration.All())-1).Draw(rt, "id"))
		s.Set(id, rapid.IntRange(0, 500).Draw(rt, "initial"), "")

		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			amount := rapid.IntRange(-20, 200).Draw(rt, "amount")
			maxTurns := rapid.IntRange(1, 150).Draw(rt, "cap")
			s.Increase(id, amount, maxTurns)
			assert.LessOrEqual(rt, s.Remaining(id), maxTurns)
			assert.GreaterOrEqual(rt, s.Remaining(id), 0)
		}
	})
}

func TestPropertyStore_TickNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := duration.NewStore(nil)
		s.Set(duration.Silence, rapid.IntRange(0, 20).Draw(rt, "turns"), "")
		for i, n := 0, rapid.IntRange(0, 30).Draw(rt, "ticks"); i < n; i++ {
			s.Tick(rapid.IntRange(0, 3).Draw(rt, "by"))
			assert.GreaterOrEqual(rt, s.Remaining(duration.Silence), 0)
		}
	})
}
