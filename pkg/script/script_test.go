package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"jsctx/errors"
	"jsctx/pkg/disambig"
	"jsctx/pkg/lexer"
	"jsctx/pkg/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predicates = `
function after_return_newline()
  return prev("return") and line_terminator_ahead()
end

function at_identifier()
  return lt(1).kind == "IDENTIFIER"
end

function strict_here()
  return is_strict()
end

helper_value = 42
`

func newEngine(t *testing.T, src string) (*Engine, *stream.SimpleTokenStream) {
	t.Helper()
	ctx := disambig.NewContext(false)
	s := stream.NewTokenStream(lexer.NewLexer(src, ctx, lexer.Options{}))
	e := New(s, ctx.Predicates(s), Options{})
	t.Cleanup(e.Close)
	return e, s
}

func TestEngine_LoadRegistersGlobalFunctions(t *testing.T) {
	e, _ := newEngine(t, "x")
	require.NoError(t, e.Load("preds.lua", predicates))

	assert.Equal(t, []string{"after_return_newline", "at_identifier", "strict_here"}, e.Names())
}

func TestEngine_EvalFollowsCursor(t *testing.T) {
	e, s := newEngine(t, "return\nvalue")
	require.NoError(t, e.Load("preds.lua", predicates))

	ok, err := e.Eval("after_return_newline")
	require.NoError(t, err)
	assert.False(t, ok)

	s.Consume()
	ok, err = e.Eval("after_return_newline")
	require.NoError(t, err)
	assert.True(t, ok)

	hits, err := e.EvalAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"after_return_newline", "at_identifier"}, hits)
}

func TestEngine_TokenTables(t *testing.T) {
	e, _ := newEngine(t, "a // c")
	require.NoError(t, e.Load("t.lua", `
function hidden_second()
  local t = get(1)
  return t.channel == "HIDDEN" and t.kind == "WHITE_SPACES" and t.index == 1
end
function eof_out_of_range()
  return get(100).kind == "EOF" and get(100).index == -1 and lt(-1).kind == "EOF"
end
function current_index()
  return index() == 0 and lt(1).line == 1 and lt(1).column == 1 and lt(1).text == "a"
end
`))

	for _, name := range e.Names() {
		ok, err := e.Eval(name)
		require.NoError(t, err, name)
		assert.True(t, ok, name)
	}
}

func TestEngine_ErrorsAreScriptTyped(t *testing.T) {
	e, _ := newEngine(t, "x")

	err := e.Load("bad.lua", "function (")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScript))
	se, ok := errors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeLoadFailed, se.Code)
	assert.Equal(t, "bad.lua", se.Source)

	_, err = e.Eval("missing")
	se, ok = errors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeUnknownPredicate, se.Code)

	require.NoError(t, e.Load("boom.lua", `function boom() error("kaboom") end`))
	_, err = e.Eval("boom")
	se, ok = errors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodePredicateFailed, se.Code)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestEngine_SandboxHasNoOSLibrary(t *testing.T) {
	e, _ := newEngine(t, "x")
	require.NoError(t, e.Load("os.lua", `function has_os() return os ~= nil or io ~= nil end`))

	ok, err := e.Eval("has_os")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEngine_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preds.lua")
	require.NoError(t, os.WriteFile(path, []byte(predicates), 0o644))

	e, _ := newEngine(t, "'use strict'; x")
	require.NoError(t, e.LoadFile(path))

	ok, err := e.Eval("strict_here")
	require.NoError(t, err)
	assert.True(t, ok)

	err = e.LoadFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeScript))
}

func TestEngine_CancelledContext(t *testing.T) {
	e, _ := newEngine(t, "x")
	require.NoError(t, e.Load("loop.lua", `function spin() while true do end end`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e.SetContext(ctx)

	_, err := e.Eval("spin")
	assert.Error(t, err)
}
