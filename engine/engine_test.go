package engine

import (
	"context"
	"testing"

	"jsctx/container"
	"jsctx/errors"
	"jsctx/jobmanager"
	"jsctx/pkg/lexer"
	"jsctx/pkg/script"
	"jsctx/pkg/splitter"
	"jsctx/serialization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findText(t *testing.T, r *Result, text string, nth int) AnnotatedToken {
	t.Helper()
	for _, tok := range r.Tokens {
		if tok.Text == text {
			if nth == 0 {
				return tok
			}
			nth--
		}
	}
	t.Fatalf("token %q not found", text)
	return AnnotatedToken{}
}

func TestAnalyze_AnnotatesRegexPossible(t *testing.T) {
	r, err := Analyze(context.Background(), "div.js", "a = b / c; d = /re/g", Options{})
	require.NoError(t, err)

	div := findText(t, r, "/", 0)
	assert.Equal(t, lexer.TokenDivide, div.Type)
	assert.False(t, div.RegexPossible)

	re := findText(t, r, "/re/g", 0)
	assert.Equal(t, lexer.TokenRegularExpressionLiteral, re.Type)
	assert.True(t, re.RegexPossible)

	first := r.Tokens[0]
	assert.True(t, first.RegexPossible, "start of input allows a regex")
	assert.Equal(t, lexer.TokenEOF, r.Tokens[len(r.Tokens)-1].Type)
	assert.Len(t, r.Statements, 2)
	assert.Empty(t, r.Diagnostics)
}

func TestAnalyze_StrictAnnotations(t *testing.T) {
	r, err := Analyze(context.Background(), "strict.js", "'use strict'; a", Options{})
	require.NoError(t, err)

	assert.False(t, findText(t, r, "'use strict'", 0).Strict)
	assert.True(t, findText(t, r, ";", 0).Strict)
	assert.True(t, findText(t, r, "a", 0).Strict)

	require.Len(t, r.Statements, 2)
	assert.False(t, r.Statements[0].Strict)
	assert.True(t, r.Statements[1].Strict)
}

func TestAnalyze_ModuleIsStrictThroughout(t *testing.T) {
	r, err := Analyze(context.Background(), "mod.js", "let x = 010", Options{Module: true})
	require.NoError(t, err)

	for _, tok := range r.Significant() {
		assert.True(t, tok.Strict, tok.Text)
	}
	assert.Equal(t, lexer.TokenStrictLet, findText(t, r, "let", 0).Type)

	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, errors.CodeLegacyOctalInStrict, r.Diagnostics[0].Code)
	assert.False(t, r.HasErrors(), "legacy octal is a warning")
	assert.True(t, r.Module)
}

func TestAnalyze_Diagnostics(t *testing.T) {
	r, err := Analyze(context.Background(), "bad.js", "x = 'abc", Options{})
	require.NoError(t, err)

	require.NotEmpty(t, r.Diagnostics)
	assert.Equal(t, errors.CodeUnterminatedString, r.Diagnostics[0].Code)
	assert.Equal(t, "bad.js", r.Diagnostics[0].Source)
	assert.True(t, r.HasErrors())
}

func TestAnalyze_RestrictedProduction(t *testing.T) {
	r, err := Analyze(context.Background(), "ret.js", "function f() {\n  return\n  1\n}", Options{})
	require.NoError(t, err)

	require.Len(t, r.Statements, 1)
	fn := r.Statements[0]
	assert.Equal(t, splitter.StartFunction, fn.Kind)
	require.Len(t, fn.Children, 2)
	assert.Equal(t, splitter.ReasonRestricted, fn.Children[0].Reason)
}

func TestAnalyze_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Analyze(ctx, "x.js", "a b c", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_PredicateHits(t *testing.T) {
	preds := `
function after_return()
  return prev("return")
end
function strict_now()
  return is_strict()
end
`
	r, err := Analyze(context.Background(), "p.js", "return\nx", Options{PredicateScript: preds})
	require.NoError(t, err)
	x := findText(t, r, "x", 0)
	assert.Equal(t, []string{"after_return"}, r.PredicateHits[x.Index])
	assert.NotContains(t, r.PredicateHits, 0)

	r, err = Analyze(context.Background(), "s.js", "'use strict'; a", Options{PredicateScript: preds})
	require.NoError(t, err)
	assert.NotContains(t, r.PredicateHits, 0, "strictness is replayed per token")
	a := findText(t, r, "a", 0)
	assert.Equal(t, []string{"strict_now"}, r.PredicateHits[a.Index])
	assert.Len(t, r.Statements, 2, "splitter runs after the predicate walk")
}

func TestAnalyze_PredicateFailures(t *testing.T) {
	r, err := Analyze(context.Background(), "f.js", "a\nb", Options{
		PredicateScript: `function boom() if lt(1).text == "b" then error("no b") end return true end`,
	})
	require.NoError(t, err)
	require.Len(t, r.Diagnostics, 1)
	assert.Equal(t, script.CodePredicateFailed, r.Diagnostics[0].Code)
	assert.Equal(t, 2, r.Diagnostics[0].Line)
	assert.Equal(t, []string{"boom"}, r.PredicateHits[0])

	_, err = Analyze(context.Background(), "f.js", "a", Options{PredicateScript: "function ("})
	assert.True(t, errors.IsType(err, errors.ErrorTypeScript))

	_, err = Analyze(context.Background(), "f.js", "a", Options{PredicateFile: "/nonexistent/preds.lua"})
	assert.True(t, errors.IsType(err, errors.ErrorTypeScript))
}

func TestEngine_WiresServices(t *testing.T) {
	c := container.NewDIContainer()
	jm := jobmanager.NewJobManager(2)
	e, err := NewEngineWithConfig(Config{Container: c, JobManager: jm})
	require.NoError(t, err)
	defer e.Shutdown()

	assert.Same(t, jm, e.JobManager())
	assert.Equal(t, []string{container.ServiceJobManager, container.ServiceLogger, container.ServiceSerializers},
		c.ListDependencies())

	r, err := e.Analyze(context.Background(), "unit.js", "let a = 1 /* c */", Options{})
	require.NoError(t, err)

	for _, format := range []string{serialization.FormatFunbit, serialization.FormatJSON} {
		data, err := e.Export(r, format)
		require.NoError(t, err, format)
		s, err := e.Serializers().GetSerializer(format)
		require.NoError(t, err)
		restored, err := s.Deserialize(data)
		require.NoError(t, err, format)
		assert.Equal(t, r.Snapshot(), restored, format)
	}

	_, err = e.Export(r, "xml")
	assert.Error(t, err)
}

func TestEngine_RejectsMistypedService(t *testing.T) {
	c := container.NewDIContainer()
	require.NoError(t, c.RegisterInstance(container.ServiceLogger, "not a logger"))

	_, err := NewEngineWithConfig(Config{Container: c})
	se, ok := errors.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "INVALID_SERVICE_TYPE", se.Code)
}

func TestEngine_AnalyzeAll(t *testing.T) {
	e, err := NewEngineWithConfig(Config{Workers: 2})
	require.NoError(t, err)
	defer e.Shutdown()

	units := []Unit{
		{Name: "a.js", Source: "a = 1\nb = 2"},
		{Name: "b.js", Source: "'use strict'; c"},
		{Name: "c.js", Source: "x"},
	}
	results := e.AnalyzeAll(context.Background(), units, Options{})

	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, units[i].Name, res.Name)
		assert.Equal(t, jobmanager.StatusCompleted, res.Status)
		require.NoError(t, res.Err)
		require.NotNil(t, res.Result)
		assert.Equal(t, units[i].Name, res.Result.Name)
	}
	assert.Len(t, results[0].Result.Statements, 2)

	failed := e.AnalyzeAll(context.Background(), units[:1], Options{PredicateFile: "/nonexistent.lua"})
	assert.Equal(t, jobmanager.StatusFailed, failed[0].Status)
	assert.Nil(t, failed[0].Result)
	assert.Error(t, failed[0].Err)
}
