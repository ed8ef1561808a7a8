// Package duration implements the entity's table of named countdown timers.
package duration

import (
	"fmt"

	"github.com/cory-johannsen/selfench/internal/game/message"
)

// Store tracks turns remaining for every timer on one entity.
// Zero means inactive. Every ID exists from construction; none are ever removed.
//
// It is not safe for concurrent use; the owning game loop serialises access.
type Store struct {
	turns    [numIDs]int
	sink     message.Sink
	onChange func(ID)
}

// NewStore returns a Store with every timer at zero.
// A nil sink discards announcements.
func NewStore(sink message.Sink) *Store {
	if sink == nil {
		sink = message.Discard
	}
	return &Store{sink: sink}
}

// OnChange registers the redraw hook invoked after any timer changes value.
func (s *Store) OnChange(fn func(ID)) {
	s.onChange = fn
}

// Remaining returns the turns left on id.
func (s *Store) Remaining(id ID) int {
	if !id.Valid() {
		return 0
	}
	return s.turns[id]
}

// Active reports whether id has any turns left.
func (s *Store) Active(id ID) bool {
	return s.Remaining(id) > 0
}

// Set assigns turns to id unconditionally. When announce is non-empty and
// the timer was inactive, it is emitted once on the Duration channel.
//
// Postcondition: Remaining(id) == max(turns, 0).
func (s *Store) Set(id ID, turns int, announce string) {
	if !id.Valid() {
		return
	}
	if announce != "" && s.turns[id] == 0 && turns > 0 {
		s.sink.Say(message.Duration, announce)
	}
	s.write(id, turns)
}

// SetCapped is Set with the value limited to maxTurns. maxTurns <= 0 means uncapped.
func (s *Store) SetCapped(id ID, turns, maxTurns int, announce string) {
	if maxTurns > 0 && turns > maxTurns {
		turns = maxTurns
	}
	s.Set(id, turns, announce)
}

// Increase extends id by amount. An inactive timer is seeded at amount.
// The result never exceeds maxTurns, whatever the prior value; maxTurns <= 0 means uncapped.
//
// Postcondition: maxTurns > 0 implies Remaining(id) <= maxTurns.
func (s *Store) Increase(id ID, amount, maxTurns int) {
	if !id.Valid() {
		return
	}
	next := s.turns[id] + amount
	if maxTurns > 0 && next > maxTurns {
		next = maxTurns
	}
	s.write(id, next)
}

// Expire zeroes id.
func (s *Store) Expire(id ID) {
	s.Set(id, 0, "")
}

// Tick decays every active timer by n turns and returns the IDs that reached
// zero on this tick, in declaration order. This is the entry point the game
// loop's decay step relies on.
//
// Precondition: n >= 0.
func (s *Store) Tick(n int) []ID {
	if n <= 0 {
		return nil
	}
	var expired []ID
	for i := range s.turns {
		if s.turns[i] == 0 {
			continue
		}
		s.write(ID(i), s.turns[i]-n)
		if s.turns[i] == 0 {
			expired = append(expired, ID(i))
		}
	}
	return expired
}

// Snapshot returns every active timer keyed by name.
func (s *Store) Snapshot() map[string]int {
	out := make(map[string]int)
	for i, v := range s.turns {
		if v > 0 {
			out[idNames[i]] = v
		}
	}
	return out
}

// Restore replaces all timers with the values in snap. Timers absent from
// snap are zeroed. No announcements are emitted.
//
// Postcondition: on error the Store is unchanged.
func (s *Store) Restore(snap map[string]int) error {
	var next [numIDs]int
	for name, v := range snap {
		id, err := ParseID(name)
		if err != nil {
			return fmt.Errorf("restoring durations: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("restoring durations: %s has negative value %d", name, v)
		}
		next[id] = v
	}
	for i := range next {
		s.write(ID(i), next[i])
	}
	return nil
}

// CopyFrom overwrites every timer with src's value. OnChange fires for each
// timer that changes; src's hooks are ignored.
func (s *Store) CopyFrom(src *Store) {
	for i := range src.turns {
		s.write(ID(i), src.turns[i])
	}
}

func (s *Store) write(id ID, v int) {
	if v < 0 {
		v = 0
	}
	if s.turns[id] == v {
		return
	}
	s.turns[id] = v
	if s.onChange != nil {
		s.onChange(id)
	}
}
