package selfench_test

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/player"
	"github.com/cory-johannsen/selfench/internal/game/selfench"
	"github.com/cory-johannsen/selfench/internal/game/spell"
)

// zeroSource makes every draw its minimum: Random2 is 0, every die shows 1,
// and OneChanceIn always hits.
type zeroSource struct{}

func (zeroSource) Intn(int) int { return 0 }

type stubChecker struct {
	pass     bool
	severity int
	checked  []spell.ID
}

func (s *stubChecker) Passes(id spell.ID, _ int) bool {
	s.checked = append(s.checked, id)
	return s.pass
}

func (s *stubChecker) Severity(spell.ID, bool) int { return s.severity }

type scriptedPrompter struct {
	slot    int
	choose  bool
	confirm bool
	asked   []string
}

func (p *scriptedPrompter) ChooseSpell(string, []spell.ID) (int, bool) {
	return p.slot, p.choose
}

func (p *scriptedPrompter) Confirm(prompt string) bool {
	p.asked = append(p.asked, prompt)
	return p.confirm
}

type worldRecorder struct {
	invalidated int
	beholders   int
	flashes     []string
	hints       []string
}

func (w *worldRecorder) InvalidateAreas() { w.invalidated++ }
func (w *worldRecorder) UpdateBeholders() { w.beholders++ }
func (w *worldRecorder) FlashView(colour string, _ int) { w.flashes = append(w.flashes, colour) }
func (w *worldRecorder) LearnedSomethingNew(h string) { w.hints = append(w.hints, h) }

type miscastRecorder struct {
	spells []spell.ID
}

func (m *miscastRecorder) ApplyMiscast(id spell.ID, _ int, _ bool) {
	m.spells = append(m.spells, id)
}

type fixture struct {
	caster   *selfench.Caster
	player   *player.Player
	checker  *stubChecker
	prompter *scriptedPrompter
	world    *worldRecorder
	buf      *message.Buffer
}

func newFixture() *fixture {
	buf := message.NewBuffer()
	p := player.New("Sigmund", 50, form.Stats{Str: 10, Int: 12, Dex: 10}, buf)
	f := &fixture{
		player:   p,
		checker:  &stubChecker{pass: true},
		prompter: &scriptedPrompter{},
		world:    &worldRecorder{},
		buf:      buf,
	}
	f.caster = selfench.NewCaster(selfench.Deps{
		Player:   p,
		Book:     spell.DefaultBook(),
		Checker:  f.checker,
		Rand:     dice.NewLoggedRoller(zeroSource{}, zap.NewNop()),
		Forms:    form.DefaultRules(),
		Catalog:  permabuff.DefaultCatalog(),
		Sink:     buf,
		Prompter: f.prompter,
		World:    f.world,
		Logger:   zap.NewNop(),
	})
	return f
}
