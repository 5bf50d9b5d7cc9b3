package disambig

import (
	"testing"

	"jsctx/pkg/lexer"

	"github.com/stretchr/testify/assert"
)

func TestLineTerminatorAhead(t *testing.T) {
	tests := []struct {
		name     string
		window   *sliceWindow
		expected bool
	}{
		{
			name: "line terminator directly before",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenLineTerminator, "\n"),
				tok(lexer.TokenIdentifier, "b")),
			expected: true,
		},
		{
			name: "whitespace then line terminator two back",
			window: newSliceWindow(3,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenLineTerminator, "\r\n"),
				hidden(lexer.TokenWhiteSpaces, "  "),
				tok(lexer.TokenIdentifier, "b")),
			expected: true,
		},
		{
			name: "multi-line comment containing newline",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenMultiLineComment, "/* x\n y */"),
				tok(lexer.TokenIdentifier, "b")),
			expected: true,
		},
		{
			name: "multi-line comment containing carriage return",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenMultiLineComment, "/* x\r*/"),
				tok(lexer.TokenIdentifier, "b")),
			expected: true,
		},
		{
			name: "whitespace then multi-line comment with newline",
			window: newSliceWindow(3,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenMultiLineComment, "/*\n*/"),
				hidden(lexer.TokenWhiteSpaces, " "),
				tok(lexer.TokenIdentifier, "b")),
			expected: true,
		},
		{
			name: "single-line multi-line comment",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenMultiLineComment, "/* x */"),
				tok(lexer.TokenIdentifier, "b")),
			expected: false,
		},
		{
			name: "single-line comment",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenSingleLineComment, "// x"),
				tok(lexer.TokenIdentifier, "b")),
			expected: false,
		},
		{
			name: "whitespace only",
			window: newSliceWindow(2,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenWhiteSpaces, " "),
				tok(lexer.TokenIdentifier, "b")),
			expected: false,
		},
		{
			name: "no hidden token",
			window: newSliceWindow(1,
				tok(lexer.TokenIdentifier, "a"),
				tok(lexer.TokenSemiColon, ";")),
			expected: false,
		},
		{
			name:     "start of stream",
			window:   newSliceWindow(0, tok(lexer.TokenIdentifier, "a")),
			expected: false,
		},
		{
			name: "line terminator further back than whitespace plus one",
			window: newSliceWindow(4,
				tok(lexer.TokenIdentifier, "a"),
				hidden(lexer.TokenLineTerminator, "\n"),
				hidden(lexer.TokenSingleLineComment, "// c"),
				hidden(lexer.TokenWhiteSpaces, " "),
				tok(lexer.TokenIdentifier, "b")),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLookaheadPredicates(tt.window)
			assert.Equal(t, tt.expected, p.LineTerminatorAhead())
		})
	}
}

func TestNoLineTerminatorImmediatelyBefore(t *testing.T) {
	returnNewline := newSliceWindow(2,
		tok(lexer.TokenReturn, "return"),
		hidden(lexer.TokenLineTerminator, "\n"),
		tok(lexer.TokenIdentifier, "x"))
	assert.False(t, NewLookaheadPredicates(returnNewline).NoLineTerminatorImmediatelyBefore())

	returnSpace := newSliceWindow(2,
		tok(lexer.TokenReturn, "return"),
		hidden(lexer.TokenWhiteSpaces, " "),
		tok(lexer.TokenIdentifier, "x"))
	assert.True(t, NewLookaheadPredicates(returnSpace).NoLineTerminatorImmediatelyBefore())

	// Only the slot immediately before is inspected.
	spaceAfterNewline := newSliceWindow(3,
		tok(lexer.TokenIdentifier, "i"),
		hidden(lexer.TokenLineTerminator, "\n"),
		hidden(lexer.TokenWhiteSpaces, " "),
		tok(lexer.TokenPlusPlus, "++"))
	assert.True(t, NewLookaheadPredicates(spaceAfterNewline).NoLineTerminatorImmediatelyBefore())

	atStart := newSliceWindow(0, tok(lexer.TokenIdentifier, "x"))
	assert.True(t, NewLookaheadPredicates(atStart).NoLineTerminatorImmediatelyBefore())
}

func TestNextIsCloseBrace(t *testing.T) {
	w := newSliceWindow(1,
		tok(lexer.TokenIdentifier, "a"),
		tok(lexer.TokenCloseBrace, "}"))
	assert.True(t, NewLookaheadPredicates(w).NextIsCloseBrace())

	w = newSliceWindow(2,
		tok(lexer.TokenIdentifier, "a"),
		hidden(lexer.TokenWhiteSpaces, " "),
		tok(lexer.TokenCloseBrace, "}"))
	assert.True(t, NewLookaheadPredicates(w).NextIsCloseBrace())

	for _, other := range []lexer.Token{
		tok(lexer.TokenOpenBrace, "{"),
		tok(lexer.TokenCloseParen, ")"),
		tok(lexer.TokenSemiColon, ";"),
		lexer.EOFToken(),
	} {
		w := newSliceWindow(1, tok(lexer.TokenIdentifier, "a"), other)
		assert.False(t, NewLookaheadPredicates(w).NextIsCloseBrace(), other.Type.String())
	}
}

func TestNextIsNotOpenBraceAndNotFunctionKeyword(t *testing.T) {
	tests := []struct {
		next     lexer.Token
		expected bool
	}{
		{tok(lexer.TokenOpenBrace, "{"), false},
		{tok(lexer.TokenFunction, "function"), false},
		{tok(lexer.TokenIdentifier, "f"), true},
		{tok(lexer.TokenOpenParen, "("), true},
		{tok(lexer.TokenClass, "class"), true},
	}

	for _, tt := range tests {
		t.Run(tt.next.Type.String(), func(t *testing.T) {
			w := newSliceWindow(0, tt.next)
			assert.Equal(t, tt.expected, NewLookaheadPredicates(w).NextIsNotOpenBraceAndNotFunctionKeyword())
		})
	}
}

func TestTextEqualsAtOffset(t *testing.T) {
	w := newSliceWindow(4,
		tok(lexer.TokenFor, "for"),
		tok(lexer.TokenOpenParen, "("),
		tok(lexer.TokenIdentifier, "of"),
		hidden(lexer.TokenWhiteSpaces, " "),
		tok(lexer.TokenIdentifier, "xs"))
	p := NewLookaheadPredicates(w)

	assert.True(t, p.TextEqualsAtOffset(-1, "of"))
	assert.True(t, p.TextEqualsAtOffset(-2, "("))
	assert.True(t, p.TextEqualsAtOffset(1, "xs"))
	assert.False(t, p.TextEqualsAtOffset(-1, " "))
	assert.True(t, p.Prev("of"))
	assert.True(t, p.P("of"))
	assert.False(t, p.Prev("xs"))
}

func TestNextReadsPreviousToken(t *testing.T) {
	w := newSliceWindow(1,
		tok(lexer.TokenIdentifier, "get"),
		tok(lexer.TokenIdentifier, "name"))
	p := NewLookaheadPredicates(w)

	assert.True(t, p.Next("get"))
	assert.True(t, p.N("get"))
	assert.False(t, p.Next("name"))
}

func TestHere(t *testing.T) {
	w := newSliceWindow(2,
		tok(lexer.TokenIdentifier, "a"),
		hidden(lexer.TokenMultiLineComment, "/**/"),
		tok(lexer.TokenIdentifier, "b"))
	p := NewLookaheadPredicates(w)

	assert.True(t, p.Here(lexer.TokenMultiLineComment))
	assert.False(t, p.Here(lexer.TokenLineTerminator))

	// A default-channel token of the requested kind does not count.
	w = newSliceWindow(1,
		tok(lexer.TokenLineTerminator, "\n"),
		tok(lexer.TokenIdentifier, "b"))
	assert.False(t, NewLookaheadPredicates(w).Here(lexer.TokenLineTerminator))
}
