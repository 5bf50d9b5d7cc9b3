package disambig

import (
	"testing"

	"jsctx/pkg/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed mimics a tokenizer: hooks run before the token reaches Advance.
func feed(ctx *Context, tokens ...lexer.Token) {
	for _, t := range tokens {
		switch t.Type {
		case lexer.TokenOpenBrace:
			ctx.OnScopeEnter()
		case lexer.TokenCloseBrace:
			ctx.OnScopeExit()
		case lexer.TokenStringLiteral:
			ctx.OnStringLiteral(t.Text)
		}
		ctx.Advance(t)
	}
}

func TestContext_OnStringLiteralPositionGate(t *testing.T) {
	t.Run("start of input", func(t *testing.T) {
		ctx := NewContext(false)
		assert.True(t, ctx.OnStringLiteral(`"use strict"`))
		assert.True(t, ctx.IsStrict())
	})

	t.Run("directly after open brace", func(t *testing.T) {
		ctx := NewContext(false)
		feed(ctx, tok(lexer.TokenOpenBrace, "{"))
		assert.True(t, ctx.OnStringLiteral(`'use strict'`))
		assert.True(t, ctx.IsStrict())
	})

	t.Run("hidden tokens between brace and literal do not matter", func(t *testing.T) {
		ctx := NewContext(false)
		feed(ctx,
			tok(lexer.TokenOpenBrace, "{"),
			hidden(lexer.TokenLineTerminator, "\n"),
			hidden(lexer.TokenSingleLineComment, "// directive follows"))
		assert.True(t, ctx.OnStringLiteral(`"use strict"`))
	})

	t.Run("after any other significant token", func(t *testing.T) {
		ctx := NewContext(false)
		feed(ctx, tok(lexer.TokenOpenBrace, "{"), tok(lexer.TokenIdentifier, "x"), tok(lexer.TokenAssign, "="))
		assert.False(t, ctx.OnStringLiteral(`"use strict"`))
		assert.False(t, ctx.IsStrict())
	})

	t.Run("second directive position after a statement", func(t *testing.T) {
		ctx := NewContext(false)
		feed(ctx, tok(lexer.TokenStringLiteral, `"use asm"`), tok(lexer.TokenSemiColon, ";"))
		assert.False(t, ctx.OnStringLiteral(`"use strict"`))
	})
}

func TestContext_ScenarioNestedStrict(t *testing.T) {
	// { "use strict"; { ... } }
	ctx := NewContext(false)

	feed(ctx, tok(lexer.TokenOpenBrace, "{"), tok(lexer.TokenStringLiteral, `"use strict"`))
	assert.True(t, ctx.IsStrict(), "outer")
	feed(ctx, tok(lexer.TokenSemiColon, ";"), tok(lexer.TokenOpenBrace, "{"))
	assert.True(t, ctx.IsStrict(), "inner")
	feed(ctx, tok(lexer.TokenCloseBrace, "}"), tok(lexer.TokenCloseBrace, "}"))
	assert.Equal(t, 0, ctx.Strict().Depth())
}

func TestContext_ScenarioSiblingScope(t *testing.T) {
	// { "use strict"; } { ... }
	ctx := NewContext(false)

	feed(ctx,
		tok(lexer.TokenOpenBrace, "{"),
		tok(lexer.TokenStringLiteral, `"use strict"`),
		tok(lexer.TokenSemiColon, ";"),
		tok(lexer.TokenCloseBrace, "}"),
		tok(lexer.TokenOpenBrace, "{"))
	assert.False(t, ctx.IsStrict())
}

func TestContext_StrictInheritedByScopesEnteredWhileStrict(t *testing.T) {
	ctx := NewContext(false)
	feed(ctx, tok(lexer.TokenStringLiteral, `"use strict"`), tok(lexer.TokenSemiColon, ";"))

	for i := 0; i < 4; i++ {
		feed(ctx, tok(lexer.TokenOpenBrace, "{"))
		assert.True(t, ctx.IsStrict(), "depth %d", i+1)
	}
}

func TestContext_PredicateTable(t *testing.T) {
	ctx := NewContext(true)
	feed(ctx, tok(lexer.TokenReturn, "return"))

	w := newSliceWindow(2,
		tok(lexer.TokenReturn, "return"),
		hidden(lexer.TokenLineTerminator, "\n"),
		tok(lexer.TokenCloseBrace, "}"))

	var preds Predicates = ctx.Predicates(w)
	require.NotNil(t, preds)

	assert.True(t, preds.IsStrict())
	assert.True(t, preds.IsRegexPossible())
	assert.False(t, preds.IsStartOfInput())
	assert.True(t, preds.Prev("return"))
	assert.True(t, preds.Next("return"))
	assert.True(t, preds.TextEqualsAtOffset(1, "}"))
	assert.False(t, preds.NoLineTerminatorImmediatelyBefore())
	assert.True(t, preds.LineTerminatorAhead())
	assert.True(t, preds.NextIsCloseBrace())
	assert.True(t, preds.NextIsNotOpenBraceAndNotFunctionKeyword())
}

func TestContext_IndependentInstances(t *testing.T) {
	a := NewContext(false)
	b := NewContext(false)

	feed(a, tok(lexer.TokenStringLiteral, `"use strict"`), tok(lexer.TokenIdentifier, "x"))

	assert.True(t, a.IsStrict())
	assert.False(t, a.IsRegexPossible())
	assert.False(t, b.IsStrict())
	assert.True(t, b.IsStartOfInput())
	assert.True(t, b.IsRegexPossible())
}
