// Package sandbox executes designer-authored objective scripts in a
// restricted Lua interpreter.
//
// Safety is primarily by absence: only the base, math, string, and
// table libraries are opened, and the dangerous base functions that
// remain (load, dofile, print, ...) are rebound to nil before any body
// runs, so a script cannot resolve them even indirectly. The static
// deny-list in Config is a second, blunter layer on top.
//
// Execution is bounded by a hard wall-clock deadline. The interpreter
// offers no preemption hook, so on expiry the caller is unblocked
// immediately and the runaway interpreter goroutine is abandoned; it
// owns no shared state, so abandonment cannot corrupt the room.
package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shopify/go-lua"
	apperrors "github.com/louisbranch/emberfall/internal/errors"
)

var (
	// ErrDeadlineExceeded indicates the script exceeded its wall-clock
	// budget and was abandoned.
	ErrDeadlineExceeded = apperrors.New(apperrors.CodeObjectiveScriptTimeout, "script exceeded execution deadline")
	// ErrUnsupportedReturn indicates the script returned something
	// other than a boolean or a result-shaped table.
	ErrUnsupportedReturn = apperrors.New(apperrors.CodeObjectiveScriptRejected, "script must return boolean or ObjectiveResult")
)

// disarmedGlobals are base-library names rebound to nil before a body
// runs. The io, os, package, debug, and coroutine libraries are never
// opened at all.
var disarmedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"collectgarbage",
	"print",
	"rawset",
	"rawget",
	"rawequal",
	"rawlen",
	"setmetatable",
	"getmetatable",
}

// Sandbox runs validated scripts under an immutable security config.
type Sandbox struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a sandbox with the provided configuration. A nil logger
// falls back to slog.Default.
func New(cfg Config, logger *slog.Logger) *Sandbox {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sandbox{cfg: cfg, logger: logger}
}

// OutcomeKind discriminates what a script returned.
type OutcomeKind int

const (
	// OutcomeBoolean means the script returned a plain boolean.
	OutcomeBoolean OutcomeKind = iota
	// OutcomeTable means the script returned a result-shaped table.
	OutcomeTable
)

// Outcome is the decoded return value of a script run.
type Outcome struct {
	Kind   OutcomeKind
	Bool   bool
	Fields map[string]any
}

type runResult struct {
	outcome Outcome
	err     error
}

// Run executes a script body with the provided environment bound to
// the global "context". The environment may contain nil, bool, int,
// int64, float64, string, []any, and map[string]any values.
//
// Run does not validate the body; callers are expected to reject
// scripts with Validate first.
func (s *Sandbox) Run(ctx context.Context, src string, env map[string]any) (Outcome, error) {
	ch := make(chan runResult, 1)
	started := time.Now()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- runResult{err: fmt.Errorf("script panic: %v", r)}
			}
		}()
		outcome, err := execute(src, env)
		ch <- runResult{outcome: outcome, err: err}
	}()

	deadline := s.cfg.Deadline
	if deadline <= 0 {
		deadline = DefaultConfig().Deadline
	}
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.outcome, res.err
	case <-timer.C:
		s.logger.Warn("objective script abandoned",
			"deadline", deadline,
			"elapsed", time.Since(started),
		)
		return Outcome{}, ErrDeadlineExceeded
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func execute(src string, env map[string]any) (Outcome, error) {
	state := lua.NewState()
	openRestrictedLibraries(state)

	pushValue(state, env)
	state.SetGlobal("context")

	if err := lua.LoadString(state, src); err != nil {
		return Outcome{}, fmt.Errorf("load script: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return Outcome{}, fmt.Errorf("run script: %w", err)
	}

	defer state.Pop(1)
	switch state.TypeOf(-1) {
	case lua.TypeBoolean:
		return Outcome{Kind: OutcomeBoolean, Bool: state.ToBoolean(-1)}, nil
	case lua.TypeTable:
		return Outcome{Kind: OutcomeTable, Fields: decodeTable(state, -1, 0)}, nil
	default:
		return Outcome{}, ErrUnsupportedReturn
	}
}

// openRestrictedLibraries opens only the side-effect-free libraries
// and disarms the remaining dangerous base names.
func openRestrictedLibraries(state *lua.State) {
	lua.Require(state, "_G", lua.BaseOpen, true)
	state.Pop(1)
	lua.Require(state, "math", lua.MathOpen, true)
	state.Pop(1)
	lua.Require(state, "string", lua.StringOpen, true)
	state.Pop(1)
	lua.Require(state, "table", lua.TableOpen, true)
	state.Pop(1)

	for _, name := range disarmedGlobals {
		state.PushNil()
		state.SetGlobal(name)
	}
}

const maxDecodeDepth = 4

// pushValue pushes a Go value onto the Lua stack.
func pushValue(state *lua.State, value any) {
	switch v := value.(type) {
	case nil:
		state.PushNil()
	case bool:
		state.PushBoolean(v)
	case int:
		state.PushInteger(v)
	case int64:
		state.PushNumber(float64(v))
	case float64:
		state.PushNumber(v)
	case string:
		state.PushString(v)
	case []any:
		state.NewTable()
		for i, item := range v {
			pushValue(state, item)
			state.RawSetInt(-2, i+1)
		}
	case map[string]any:
		state.NewTable()
		for key, item := range v {
			pushValue(state, item)
			state.SetField(-2, key)
		}
	default:
		// Unsupported values become nil rather than leaking host types.
		state.PushNil()
	}
}

// decodeTable reads a Lua table into a map. Only string keys are kept;
// nesting is bounded to keep pathological returns cheap.
func decodeTable(state *lua.State, index int, depth int) map[string]any {
	if depth > maxDecodeDepth {
		return nil
	}

	fields := make(map[string]any)
	state.PushNil()
	for state.Next(index - 1) {
		// Stack: key at -2, value at -1.
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			fields[key] = decodeValue(state, -1, depth)
		}
		state.Pop(1)
	}
	return fields
}

func decodeValue(state *lua.State, index int, depth int) any {
	switch state.TypeOf(index) {
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeNumber:
		n, _ := state.ToNumber(index)
		return n
	case lua.TypeString:
		s, _ := state.ToString(index)
		return s
	case lua.TypeTable:
		return decodeTable(state, index, depth+1)
	default:
		return nil
	}
}
