package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/npcbrain/internal/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// Hook calls fall back to this VM when an agent's archetype has none.
const globalScope = "__global__"

// Hook names looked up as Lua globals.
const (
	HookAdjustDamage   = "adjust_damage"
	HookSelectReaction = "select_reaction"
)

// AgentInfo is a snapshot of an agent passed to Lua.
type AgentInfo struct {
	ID        string
	Archetype string
	State     string
	Health    int
	MaxHealth int
	InSight   bool
	Distance  float64
}

// vm is one sandboxed state. An LState is single-threaded, so every use
// holds mu.
type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per archetype and dispatches behavior
// hooks to the VM of the agent's archetype.
//
// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	vms      map[string]*vm
	bindings map[string]string
	roller   *dice.Roller
	logger   *zap.Logger

	// QueryAgent is injected after construction. nil makes engine.agent.get
	// return nil.
	QueryAgent func(agentID string) *AgentInfo
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a Manager with no VMs loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:      make(map[string]*vm),
		bindings: make(map[string]string),
		roller:   roller,
		logger:   logger,
	}
}

// LoadArchetype creates a sandboxed VM for archetypeID, registers the engine.*
// modules, then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: archetypeID must be non-empty; scriptDir must be a readable directory.
// Postcondition: the VM replaces any previous one for archetypeID.
func (m *Manager) LoadArchetype(archetypeID, scriptDir string, instLimit int) error {
	if archetypeID == "" {
		return fmt.Errorf("scripting: archetype id must not be empty")
	}
	return m.loadInto(archetypeID, scriptDir, instLimit)
}

// LoadGlobal creates the fallback VM shared by every archetype without its own.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L := NewSandboxedState()
	m.RegisterModules(L)
	for _, path := range luaFiles {
		release := arm(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.logger.Info("scripts loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Bind routes hook calls for agentID to archetypeID's VM.
func (m *Manager) Bind(agentID, archetypeID string) {
	m.mu.Lock()
	m.bindings[agentID] = archetypeID
	m.mu.Unlock()
}

// Unbind forgets agentID.
func (m *Manager) Unbind(agentID string) {
	m.mu.Lock()
	delete(m.bindings, agentID)
	m.mu.Unlock()
}

// Close releases every VM. Later hook calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*vm)
	m.mu.Unlock()
	for _, v := range vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
	}
}

// CallHook calls the named Lua global function in scope's VM, falling back to
// the global VM. Returns (LNil, nil) if the hook is not defined or no VM
// exists. Lua runtime errors are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.RLock()
	v, ok := m.vms[scope]
	if !ok {
		v = m.vms[globalScope]
	}
	m.mu.RUnlock()

	if v == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	fn := v.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := arm(v.L, v.limit)
	defer release()
	if err := v.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := v.L.Get(-1)
	v.L.Pop(1)
	return ret, nil
}

func (m *Manager) scopeOf(agentID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.bindings[agentID]; ok {
		return s
	}
	return globalScope
}

// AdjustDamage calls adjust_damage(agent_id, amount, is_light) and returns its
// result rounded to an int in [0, math.MaxInt32]. A missing hook, a
// non-numeric result or NaN keeps amount.
func (m *Manager) AdjustDamage(agentID string, amount int, isLightHit bool) int {
	ret, _ := m.CallHook(m.scopeOf(agentID), HookAdjustDamage,
		lua.LString(agentID), lua.LNumber(amount), lua.LBool(isLightHit))
	n, ok := ret.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) {
		return amount
	}
	f := math.Round(float64(n))
	switch {
	case f <= 0:
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	}
	return int(f)
}

// SelectReaction calls select_reaction(agent_id, count). The hook returns a
// 1-based variant; the result is converted to [0, count). Anything else
// reports false so the caller picks at random.
func (m *Manager) SelectReaction(agentID string, count int) (int, bool) {
	ret, _ := m.CallHook(m.scopeOf(agentID), HookSelectReaction,
		lua.LString(agentID), lua.LNumber(count))
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, false
	}
	f := float64(n)
	if f != math.Trunc(f) || f < 1 || f > float64(count) {
		m.logger.Warn("scripting: select_reaction out of range",
			zap.String("agent", agentID),
			zap.Float64("value", float64(n)),
			zap.Int("count", count),
		)
		return 0, false
	}
	return int(f) - 1, true
}
