package scripting

import (
	"github.com/cory-johannsen/selfench/internal/game/duration"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/player"
)

// BindPlayer points every engine.player and engine.message callback at p
// and sink.
//
// Precondition: p and sink must be non-nil.
func (m *Manager) BindPlayer(p *player.Player, sink message.Sink) {
	m.GetPlayer = func() *PlayerInfo {
		return &PlayerInfo{Name: p.Name, HP: p.HP, MaxHP: p.MaxHP, Form: p.Form.String()}
	}
	m.ApplyDamage = func(hp int) {
		p.SetHP(p.HP - hp)
	}
	m.IncreaseDuration = func(name string, amount, maxTurns int) error {
		id, err := duration.ParseID(name)
		if err != nil {
			return err
		}
		p.Durations.Increase(id, amount, maxTurns)
		return nil
	}
	m.Say = func(channel, text string) {
		ch, _ := message.ParseChannel(channel)
		sink.Say(ch, text)
	}
}
