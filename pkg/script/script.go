// Package script lets users define extra grammar predicates in Lua. Each
// predicate is a global Lua function returning a boolean; it can read the
// token window and the built-in predicates of the unit being analyzed.
package script

import (
	"context"
	"fmt"
	"os"
	"sort"

	"jsctx/errors"
	"jsctx/logging"
	"jsctx/pkg/disambig"
	"jsctx/pkg/lexer"

	lua "github.com/yuin/gopher-lua"
)

const (
	CodeLoadFailed       = "SCRIPT_LOAD_FAILED"
	CodeUnknownPredicate = "UNKNOWN_PREDICATE"
	CodePredicateFailed  = "PREDICATE_FAILED"
)

type Options struct {
	Logger logging.Logger
}

// Engine owns one Lua state bound to the predicates of one unit.
// Like the disambiguation context it serves, it is not safe for concurrent use.
type Engine struct {
	state  *lua.LState
	window disambig.TokenWindow
	preds  disambig.Predicates
	names  []string
	source string
	logger logging.Logger
}

// New creates a Lua state exposing window and preds to scripts
func New(window disambig.TokenWindow, preds disambig.Predicates, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	e := &Engine{
		state:  lua.NewState(lua.Options{SkipOpenLibs: true}),
		window: window,
		preds:  preds,
		logger: logger.WithComponent("script"),
	}
	e.openLibs()
	e.registerFunctions()
	return e
}

// openLibs loads the side-effect free standard libraries only
func (e *Engine) openLibs() {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		e.state.Push(e.state.NewFunction(lib.fn))
		e.state.Push(lua.LString(lib.name))
		e.state.Call(1, 0)
	}
}

func (e *Engine) registerFunctions() {
	L := e.state

	L.SetGlobal("lt", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.tokenTable(e.window.LT(L.CheckInt(1))))
		return 1
	}))
	L.SetGlobal("get", L.NewFunction(func(L *lua.LState) int {
		L.Push(e.tokenTable(e.window.Get(L.CheckInt(1))))
		return 1
	}))
	L.SetGlobal("index", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(e.window.LT(1).Index))
		return 1
	}))
	L.SetGlobal("prev", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(e.preds.Prev(L.CheckString(1))))
		return 1
	}))

	flags := map[string]func() bool{
		"is_strict":                 e.preds.IsStrict,
		"regex_possible":            e.preds.IsRegexPossible,
		"start_of_input":            e.preds.IsStartOfInput,
		"line_terminator_ahead":     e.preds.LineTerminatorAhead,
		"no_line_terminator_before": e.preds.NoLineTerminatorImmediatelyBefore,
		"next_is_close_brace":       e.preds.NextIsCloseBrace,
	}
	for name, fn := range flags {
		L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
			L.Push(lua.LBool(fn()))
			return 1
		}))
	}
}

func (e *Engine) tokenTable(tok lexer.Token) *lua.LTable {
	t := e.state.NewTable()
	e.state.SetField(t, "kind", lua.LString(tok.Type.String()))
	e.state.SetField(t, "text", lua.LString(tok.Text))
	e.state.SetField(t, "channel", lua.LString(tok.Channel.String()))
	e.state.SetField(t, "index", lua.LNumber(tok.Index))
	e.state.SetField(t, "line", lua.LNumber(tok.Line))
	e.state.SetField(t, "column", lua.LNumber(tok.Column))
	return t
}

// SetContext makes running scripts observe ctx cancellation
func (e *Engine) SetContext(ctx context.Context) {
	e.state.SetContext(ctx)
}

// Load runs a chunk and registers every global function it defines as a predicate
func (e *Engine) Load(name, code string) error {
	before := e.globalFunctions()

	if err := e.state.DoString(code); err != nil {
		return errors.NewScriptError(CodeLoadFailed, fmt.Sprintf("failed to load %s", name)).
			WithSource(name).Wrap(err)
	}

	for fn := range e.globalFunctions() {
		if !before[fn] {
			e.names = append(e.names, fn)
		}
	}
	sort.Strings(e.names)
	e.source = name

	e.logger.Debug("predicates loaded",
		logging.StringField("source", name),
		logging.IntField("count", len(e.names)))
	return nil
}

// LoadFile reads and loads a Lua file
func (e *Engine) LoadFile(path string) error {
	code, err := os.ReadFile(path)
	if err != nil {
		return errors.NewScriptError(CodeLoadFailed, "cannot read predicate script").
			WithSource(path).Wrap(err)
	}
	return e.Load(path, string(code))
}

func (e *Engine) globalFunctions() map[string]bool {
	out := make(map[string]bool)
	e.state.G.Global.ForEach(func(k, v lua.LValue) {
		if _, ok := v.(*lua.LFunction); !ok {
			return
		}
		if key, ok := k.(lua.LString); ok {
			out[string(key)] = true
		}
	})
	return out
}

// Names returns the predicates defined by loaded scripts, sorted
func (e *Engine) Names() []string {
	return e.names
}

// Eval calls the named predicate with no arguments and reports its truthiness
func (e *Engine) Eval(name string) (bool, error) {
	fn, ok := e.state.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return false, errors.NewScriptError(CodeUnknownPredicate,
			fmt.Sprintf("predicate %q is not defined", name)).WithSource(e.source)
	}

	if err := e.state.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return false, errors.NewScriptError(CodePredicateFailed,
			fmt.Sprintf("predicate %q failed", name)).WithSource(e.source).Wrap(err)
	}

	ret := e.state.Get(-1)
	e.state.Pop(1)
	return lua.LVAsBool(ret), nil
}

// EvalAll evaluates every loaded predicate and returns the names that held
func (e *Engine) EvalAll() ([]string, error) {
	var hits []string
	for _, name := range e.names {
		ok, err := e.Eval(name)
		if err != nil {
			return hits, err
		}
		if ok {
			hits = append(hits, name)
		}
	}
	return hits, nil
}

func (e *Engine) Close() {
	e.state.Close()
}
