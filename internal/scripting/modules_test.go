package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	scope := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadArchetype(scope, dir, 0))
	ret, err := mgr.CallHook(scope, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	mgr, logs := newTestManager(t)
	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
			engine.log.error("e")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.FilterField(zap.String("source", "lua")).All() {
		levels[e.Level.String()] = true
	}
	assert.Equal(t, map[string]bool{"debug": true, "info": true, "warn": true, "error": true}, levels)
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function roll_it()
			local r = engine.dice.roll("2d6+1")
			assert(#r.dice == 2, "expected two dice")
			return r.total
		end
	`, "roll_it")
	// seqSource yields faces 3 and 5.
	assert.Equal(t, lua.LNumber(9), ret)
}

func TestEngineDice_Roll_InvalidExpressionIsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function roll_it()
			return engine.dice.roll("lots") == nil
		end
	`, "roll_it")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineDice_Roll_OversizedCountIsNil(t *testing.T) {
	mgr, logs := newTestManager(t)
	dir := writeTempLua(t, "roll.lua", `
		function roll_it()
			return engine.dice.roll("30000000d6") == nil
		end
	`)
	require.NoError(t, mgr.LoadArchetype("brawler", dir, 50))
	ret, err := mgr.CallHook("brawler", "roll_it")
	require.NoError(t, err)
	assert.Equal(t, lua.LTrue, ret)
	assert.Equal(t, 1, logs.FilterMessage("scripting: engine.dice.roll").Len())
}

func TestEngineAgent_Get_NilCallback_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `function get_it() return engine.agent.get("npc-1") end`, "get_it")
	assert.Equal(t, lua.LNil, ret)
}

func TestEngineAgent_Get_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.QueryAgent = func(id string) *scripting.AgentInfo {
		if id != "npc-1" {
			return nil
		}
		return &scripting.AgentInfo{ID: id, Archetype: "brawler", State: "chase", Health: 40, MaxHealth: 100, InSight: true, Distance: 3.5}
	}
	ret := runScript(t, mgr, `
		function get_it()
			local a = engine.agent.get("npc-1")
			assert(engine.agent.get("nobody") == nil)
			return a.state .. ":" .. a.health .. ":" .. tostring(a.in_sight) .. ":" .. a.distance
		end
	`, "get_it")
	assert.Equal(t, lua.LString("chase:40:true:3.5"), ret)
}

func TestEngineAgent_HookScalesByHealth(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.QueryAgent = func(id string) *scripting.AgentInfo {
		return &scripting.AgentInfo{ID: id, Health: 20, MaxHealth: 100}
	}
	dir := writeTempLua(t, "enrage.lua", `
		function adjust_damage(id, amount, is_light)
			local a = engine.agent.get(id)
			if a.health * 4 <= a.max_health then
				return amount * 0.5
			end
			return amount
		end
	`)
	require.NoError(t, mgr.LoadArchetype("enraged", dir, 0))
	mgr.Bind("npc-1", "enraged")
	assert.Equal(t, 5, mgr.AdjustDamage("npc-1", 10, false))
}
