package selfench

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
)

// expiryNotices are shown on the duration channel when a timer runs out.
var expiryNotices = map[duration.ID]string{
	duration.DeathsDoor:       "Your life is in your own hands again!",
	duration.IcyArmour:        "Your icy armour melts away.",
	duration.Swiftness:        "You feel sluggish.",
	duration.Silence:          "Your hearing returns.",
	duration.Liquefying:       "The ground is no longer liquid beneath you.",
	duration.Paralysis:        "You can move again.",
	duration.Regeneration:     "Your skin begins to crawl again.",
	duration.SongOfSlaying:    "You find your voice for the song of slaying.",
	duration.Infusion:         "Magical energy gathers around your hands.",
	duration.ShroudOfGolubria: "Your shroud knits itself back together.",
}

// regenPerTurn is the HP paid out of the regeneration reserve each turn.
const regenPerTurn = 1

// TurnReport summarises what EndTurn did.
type TurnReport struct {
	Failures []permabuff.Failure
	Expired  []duration.ID
	Healed   int
}

// Session drives a Caster through game turns.
type Session struct {
	*Caster
	evaluator *permabuff.Evaluator
	turn      int
}

// NewSession returns a Session for c. miscast receives every upkeep miscast.
//
// Precondition: c and miscast must be non-nil.
func NewSession(c *Caster, miscast permabuff.MiscastApplier) *Session {
	ev := permabuff.NewEvaluator(c.buffs, c.book, c.checker, miscast)
	ev.Working = func(id permabuff.ID) bool {
		return c.p.IsWorking(c.catalog, id)
	}
	// The song only strains the caster once it has built up a bonus.
	ev.Eligible = func(id permabuff.ID, sub permabuff.Subscription) bool {
		return id != permabuff.Song || sub.Companion.SlayingBonus > 0
	}
	return &Session{Caster: c, evaluator: ev}
}

// Turn returns the number of turns ended so far.
func (s *Session) Turn() int {
	return s.turn
}

// EndTurn is the per-turn hook: upkeep rolls first, then regeneration
// payout, then one turn of duration decay with expiry notices.
func (s *Session) EndTurn() TurnReport {
	s.turn++
	var rep TurnReport
	rep.Failures = s.evaluator.Tick()
	rep.Healed = s.payRegen()

	rep.Expired = s.p.Durations.Tick(1)
	for _, id := range rep.Expired {
		if id == duration.Swiftness {
			s.p.Attributes.Swiftness = 0
		}
		if id == duration.IcyArmour {
			s.p.IcyArmourPower = 0
		}
		if pb, ok := s.boundTo(id); ok && !s.p.Permabuffs.Active(pb) {
			// A switched-off permabuff has nothing to come back to.
			continue
		}
		if text, ok := expiryNotices[id]; ok {
			s.sink.Say(message.Duration, text)
		}
	}

	s.logger.Debug("turn ended",
		zap.Int("turn", s.turn),
		zap.Int("failures", len(rep.Failures)),
		zap.Int("expired", len(rep.Expired)),
		zap.Int("healed", rep.Healed),
	)
	return rep
}

func (s *Session) boundTo(id duration.ID) (permabuff.ID, bool) {
	for _, pb := range permabuff.All() {
		if s.catalog.Get(pb).Duration == id {
			return pb, true
		}
	}
	return 0, false
}

func (s *Session) payRegen() int {
	if !s.p.IsWorking(s.catalog, permabuff.Regen) || s.p.HP >= s.p.MaxHP {
		return 0
	}
	comp := s.p.Permabuffs.Get(permabuff.Regen).Companion
	heal := min(regenPerTurn, comp.Reserve, s.p.MaxHP-s.p.HP)
	if heal <= 0 {
		return 0
	}
	comp.Reserve -= heal
	s.p.Permabuffs.SetCompanion(permabuff.Regen, comp)
	s.p.SetHP(s.p.HP + heal)
	s.p.Permabuffs.AddAux(permabuff.Regen, permabuff.Aux{Benefit: heal})
	return heal
}

// DropPermabuffs runs a bulk sweep over every permabuff.
func (c *Caster) DropPermabuffs(opts permabuff.DropOptions) {
	c.dropper.Drop(opts)
}
