package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scoped VM is found.
const globalScope = "__global__"

// PlayerInfo is a snapshot of the caster passed to Lua callbacks.
type PlayerInfo struct {
	Name  string
	HP    int
	MaxHP int
	Form  string
}

// Manager owns one sandboxed LState per scope and exposes hook dispatch.
// A scope is normally a spell ID, letting one spell override the shared
// global scripts.
//
// Manager is safe for concurrent CallHook after all Load calls complete.
// Each LState is single-threaded; calls are serialised per Manager.
type Manager struct {
	mu     sync.Mutex
	states map[string]*Sandbox
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetPlayer        func() *PlayerInfo
	ApplyDamage      func(hp int)
	IncreaseDuration func(name string, amount, maxTurns int) error
	Say              func(channel, text string)
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil; NewManager panics otherwise.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager requires a non-nil roller")
	}
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		states: make(map[string]*Sandbox),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: Scope VM is registered; returns error on Lua load failure.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the shared VM used as the CallHook fallback.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	sb := NewSandbox(instLimit)
	m.RegisterModules(sb.L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		sb.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := sb.DoFile(path); err != nil {
			sb.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.states[key]; ok {
		old.Close()
	}
	m.states[key] = sb
	m.mu.Unlock()
	m.logger.Debug("scripting: scope loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
		zap.Int("instruction_limit", sb.Limit()),
	)
	return nil
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the global VM is tried as a fallback. Returns (LNil, nil) if the
// hook is not defined or no VM exists. Lua runtime errors, including an
// exhausted instruction budget, are logged at Warn level and never propagated.
// Every call gets a fresh instruction budget.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sb, ok := m.states[scope]
	if !ok {
		sb = m.states[globalScope]
	}
	if sb == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	fn := sb.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	var ret lua.LValue = lua.LNil
	err := sb.Run(func(L *lua.LState) error {
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, args...); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Bool("budget_exhausted", errors.Is(err, ErrBudgetExhausted)),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	return ret, nil
}

// HasScope reports whether a VM is loaded for scope.
func (m *Manager) HasScope(scope string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.states[scope]
	return ok
}

// Close releases every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, sb := range m.states {
		sb.Close()
		delete(m.states, key)
	}
}
