// Package disambig holds the per-parse state and predicates that resolve
// JavaScript's context-sensitive lexical choices: regex literal versus
// division, strict-mode scopes, and line-terminator driven statement ends.
//
// A Context belongs to the parse of exactly one source unit and is not safe
// for concurrent use. Parse units in parallel with one Context each.
package disambig

import "jsctx/pkg/lexer"

// Predicates is the fixed set of decision functions a grammar engine consults.
type Predicates interface {
	IsRegexPossible() bool
	IsStrict() bool
	IsStartOfInput() bool
	TextEqualsAtOffset(offset int, str string) bool
	Prev(str string) bool
	Next(str string) bool
	NoLineTerminatorImmediatelyBefore() bool
	LineTerminatorAhead() bool
	NextIsCloseBrace() bool
	NextIsNotOpenBraceAndNotFunctionKeyword() bool
}

// Context is the disambiguation state for one parse.
type Context struct {
	history *TokenHistory
	strict  *StrictModeTracker
	regex   *RegexDisambiguator
}

// NewContext creates state for a fresh parse. defaultStrict is true for
// module code and false for scripts.
func NewContext(defaultStrict bool) *Context {
	history := NewTokenHistory()
	return &Context{
		history: history,
		strict:  NewStrictModeTracker(defaultStrict),
		regex:   NewRegexDisambiguator(history),
	}
}

// Advance passes every produced token through the history
func (c *Context) Advance(tok lexer.Token) lexer.Token {
	return c.history.Advance(tok)
}

// IsStartOfInput reports whether no significant token was produced yet
func (c *Context) IsStartOfInput() bool {
	return c.history.IsStartOfInput()
}

// IsRegexPossible reports whether '/' may start a regex literal here
func (c *Context) IsRegexPossible() bool {
	return c.regex.IsRegexPossible()
}

// IsStrict returns the strict flag in effect
func (c *Context) IsStrict() bool {
	return c.strict.IsStrict()
}

// OnScopeEnter must be called when '{' is recognised, before Advance
func (c *Context) OnScopeEnter() {
	c.strict.OnScopeEnter()
}

// OnScopeExit must be called when '}' is recognised, before Advance
func (c *Context) OnScopeExit() {
	c.strict.OnScopeExit()
}

// OnStringLiteral must be called for each string literal before Advance.
// The literal is treated as a directive candidate only at the start of
// input or directly after '{'. Reports whether strict mode was switched on.
func (c *Context) OnStringLiteral(text string) bool {
	last, ok := c.history.Last()
	if ok && last.Type != lexer.TokenOpenBrace {
		return false
	}
	return c.strict.OnDirectivePrologueCandidate(text)
}

// History exposes the token history
func (c *Context) History() *TokenHistory {
	return c.history
}

// Strict exposes the strict mode tracker
func (c *Context) Strict() *StrictModeTracker {
	return c.strict
}

// Predicates binds the context to a token window for use by a grammar engine
func (c *Context) Predicates(window TokenWindow) Predicates {
	return &predicateTable{
		Context:             c,
		LookaheadPredicates: NewLookaheadPredicates(window),
	}
}

type predicateTable struct {
	*Context
	*LookaheadPredicates
}

var _ Predicates = (*predicateTable)(nil)
