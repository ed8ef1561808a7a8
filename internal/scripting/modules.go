package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.{debug,info,warn,error}(msg)
//	engine.dice.roll(expr) -> {total, dice, modifier} | nil
//	engine.player.get() -> {name, hp, max_hp, form} | nil
//	engine.player.damage(hp)
//	engine.player.increase_duration(name, amount, cap) -> ok
//	engine.message.say(channel, text)
//
// Precondition: L must belong to a Sandbox.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "player", m.playerModule(L))
	L.SetField(engine, "message", m.messageModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			fn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			m.logger.Warn("scripting: bad dice expression", zap.Error(err))
			L.Push(lua.LNil)
			return 1
		}
		sum := 0
		for _, d := range res.Dice {
			sum += d
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "dice", lua.LNumber(sum))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.Push(t)
		return 1
	}))
	return mod
}

func (m *Manager) playerModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		if m.GetPlayer == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetPlayer()
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		t := L.NewTable()
		L.SetField(t, "name", lua.LString(info.Name))
		L.SetField(t, "hp", lua.LNumber(info.HP))
		L.SetField(t, "max_hp", lua.LNumber(info.MaxHP))
		L.SetField(t, "form", lua.LString(info.Form))
		L.Push(t)
		return 1
	}))
	L.SetField(mod, "damage", L.NewFunction(func(L *lua.LState) int {
		hp := L.CheckInt(1)
		if m.ApplyDamage != nil && hp > 0 {
			m.ApplyDamage(hp)
		}
		return 0
	}))
	L.SetField(mod, "increase_duration", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		amount := L.CheckInt(2)
		maxTurns := L.OptInt(3, 0)
		if m.IncreaseDuration == nil {
			L.Push(lua.LFalse)
			return 1
		}
		if err := m.IncreaseDuration(name, amount, maxTurns); err != nil {
			m.logger.Warn("scripting: increase_duration failed", zap.Error(err))
			L.Push(lua.LFalse)
			return 1
		}
		L.Push(lua.LTrue)
		return 1
	}))
	return mod
}

func (m *Manager) messageModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "say", L.NewFunction(func(L *lua.LState) int {
		ch := L.CheckString(1)
		text := L.CheckString(2)
		if m.Say != nil {
			m.Say(ch, text)
		}
		return 0
	}))
	return mod
}
