package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.log, engine.dice and engine.agent
// tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "agent", m.agentModule(L))
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

// diceModule exposes engine.dice.roll(expr), returning
// {total=, modifier=, dice={...}} or nil for an invalid expression.
func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			m.logger.Warn("scripting: engine.dice.roll", zap.Error(err))
			L.Push(lua.LNil)
			return 1
		}
		faces := L.NewTable()
		for _, d := range res.Dice {
			faces.Append(lua.LNumber(d))
		}
		t := L.NewTable()
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.SetField(t, "dice", faces)
		L.Push(t)
		return 1
	}))
	return mod
}

// agentModule exposes engine.agent.get(id).
func (m *Manager) agentModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.QueryAgent == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.QueryAgent(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(agentToTable(L, info))
		return 1
	}))
	return mod
}

func agentToTable(L *lua.LState, info *AgentInfo) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(info.ID))
	L.SetField(t, "archetype", lua.LString(info.Archetype))
	L.SetField(t, "state", lua.LString(info.State))
	L.SetField(t, "health", lua.LNumber(info.Health))
	L.SetField(t, "max_health", lua.LNumber(info.MaxHealth))
	L.SetField(t, "in_sight", lua.LBool(info.InSight))
	L.SetField(t, "distance", lua.LNumber(info.Distance))
	return t
}
