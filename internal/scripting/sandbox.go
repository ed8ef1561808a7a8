// Package scripting provides a sandboxed GopherLua execution environment
// for miscast scripts. Game state is reached only through the callbacks
// injected into Manager; MiscastApplier adapts the hook to the upkeep
// evaluator.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes a single run
// may execute when no override is configured.
const DefaultInstructionLimit = 100_000

// ErrBudgetExhausted is wrapped by Sandbox.Run when a script used up its
// instruction budget.
var ErrBudgetExhausted = errors.New("scripting: instruction budget exhausted")

// unsafeGlobals are removed after the base library is opened.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "collectgarbage", "require"}

// budget is a context that cancels itself once Done has been called limit
// times. GopherLua polls Done once per opcode, so this counts instructions.
type budget struct {
	context.Context
	cancel    context.CancelFunc
	remaining atomic.Int64
}

func newBudget(limit int) *budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.remaining.Store(int64(limit))
	return b
}

func (b *budget) Done() <-chan struct{} {
	if b.remaining.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func (b *budget) exhausted() bool {
	return b.remaining.Load() <= 0
}

// Sandbox is one LState restricted to the base, table, string and math
// libraries. It is not safe for concurrent use.
type Sandbox struct {
	L     *lua.LState
	limit int
}

// NewSandbox creates a Sandbox whose runs are each limited to limit opcodes.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a Sandbox the caller must Close.
func NewSandbox(limit int) *Sandbox {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return &Sandbox{L: L, limit: limit}
}

// Limit returns the per-run instruction budget.
func (s *Sandbox) Limit() int { return s.limit }

// Run calls fn with a fresh instruction budget armed on the state.
//
// Postcondition: the budget is disarmed on return. An error caused by an
// exhausted budget wraps ErrBudgetExhausted.
func (s *Sandbox) Run(fn func(L *lua.LState) error) error {
	b := newBudget(s.limit)
	s.L.SetContext(b)
	defer func() {
		s.L.RemoveContext()
		b.cancel()
	}()

	err := fn(s.L)
	if err != nil && b.exhausted() {
		return fmt.Errorf("%w after %d instructions: %v", ErrBudgetExhausted, s.limit, err)
	}
	return err
}

// DoFile executes path under a fresh budget.
func (s *Sandbox) DoFile(path string) error {
	return s.Run(func(L *lua.LState) error { return L.DoFile(path) })
}

// DoString executes src under a fresh budget.
func (s *Sandbox) DoString(src string) error {
	return s.Run(func(L *lua.LState) error { return L.DoString(src) })
}

// Close releases the state.
func (s *Sandbox) Close() {
	s.L.Close()
}
