package disambig

import (
	"strings"

	"jsctx/pkg/lexer"
)

// TokenWindow is the view of the token stream the predicates read.
//
// LT(k) addresses default-channel tokens relative to the current token:
// LT(1) is the current token, LT(-1) the previous significant one.
// Get(i) addresses any token by absolute stream index. Both return an EOF
// token on the default channel when the position is out of range.
type TokenWindow interface {
	LT(k int) lexer.Token
	Get(i int) lexer.Token
}

// LookaheadPredicates answers automatic-semicolon and alternative-selection
// questions over a TokenWindow. It never mutates the window.
type LookaheadPredicates struct {
	window TokenWindow
}

// NewLookaheadPredicates binds the predicates to a window
func NewLookaheadPredicates(window TokenWindow) *LookaheadPredicates {
	return &LookaheadPredicates{window: window}
}

// TextEqualsAtOffset compares the text of LT(offset) with str
func (p *LookaheadPredicates) TextEqualsAtOffset(offset int, str string) bool {
	return p.window.LT(offset).Text == str
}

// Prev reports whether the previous significant token's text equals str
func (p *LookaheadPredicates) Prev(str string) bool {
	return p.TextEqualsAtOffset(-1, str)
}

// P is short for Prev
func (p *LookaheadPredicates) P(str string) bool {
	return p.Prev(str)
}

// Next compares str against LT(-1), the same token Prev reads.
// Grammars written against it depend on that offset.
func (p *LookaheadPredicates) Next(str string) bool {
	return p.TextEqualsAtOffset(-1, str)
}

// N is short for Next
func (p *LookaheadPredicates) N(str string) bool {
	return p.Next(str)
}

// Here reports whether the token right before the current one is a hidden
// token of kind t.
func (p *LookaheadPredicates) Here(t lexer.TokenType) bool {
	ahead := p.window.Get(p.currentIndex() - 1)
	return ahead.Channel == lexer.ChannelHidden && ahead.Type == t
}

// NoLineTerminatorImmediatelyBefore implements the "[no LineTerminator here]" restriction
func (p *LookaheadPredicates) NoLineTerminatorImmediatelyBefore() bool {
	return !p.Here(lexer.TokenLineTerminator)
}

// LineTerminatorAhead reports whether a line break separates the current
// token from the previous one: a line terminator, whitespace preceded by a
// line terminator, or a multi-line comment spanning lines.
func (p *LookaheadPredicates) LineTerminatorAhead() bool {
	idx := p.currentIndex() - 1
	ahead := p.window.Get(idx)

	if ahead.Channel != lexer.ChannelHidden {
		return false
	}

	if ahead.Type == lexer.TokenLineTerminator {
		return true
	}

	if ahead.Type == lexer.TokenWhiteSpaces {
		ahead = p.window.Get(idx - 1)
	}

	switch ahead.Type {
	case lexer.TokenLineTerminator:
		return true
	case lexer.TokenMultiLineComment:
		return strings.ContainsAny(ahead.Text, "\r\n")
	default:
		return false
	}
}

// NextIsCloseBrace reports whether the current token is '}'
func (p *LookaheadPredicates) NextIsCloseBrace() bool {
	return p.window.LT(1).Type == lexer.TokenCloseBrace
}

// NextIsNotOpenBraceAndNotFunctionKeyword rules out blocks and function
// declarations at the start of an expression statement.
func (p *LookaheadPredicates) NextIsNotOpenBraceAndNotFunctionKeyword() bool {
	next := p.window.LT(1).Type
	return next != lexer.TokenOpenBrace && next != lexer.TokenFunction
}

func (p *LookaheadPredicates) currentIndex() int {
	return p.window.LT(1).Index
}
