// Package splitter cuts a token stream into top-level statements using the
// automatic semicolon predicates, the way a grammar's end-of-statement rule
// would. It does not build a syntax tree.
package splitter

import (
	"jsctx/logging"
	"jsctx/pkg/disambig"
	"jsctx/pkg/lexer"
	"jsctx/pkg/stream"
)

// Reason says what terminated a statement
type Reason int

const (
	ReasonSemicolon Reason = iota
	ReasonLineTerminator
	ReasonCloseBrace
	ReasonEOF
	ReasonRestricted
)

func (r Reason) String() string {
	switch r {
	case ReasonSemicolon:
		return "semicolon"
	case ReasonLineTerminator:
		return "line-terminator"
	case ReasonCloseBrace:
		return "close-brace"
	case ReasonEOF:
		return "eof"
	case ReasonRestricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// StartKind classifies the first token of a statement
type StartKind int

const (
	StartOther StartKind = iota
	StartBlock
	StartFunction
)

func (k StartKind) String() string {
	switch k {
	case StartBlock:
		return "block"
	case StartFunction:
		return "function"
	default:
		return "other"
	}
}

type Statement struct {
	First    lexer.Token
	Last     lexer.Token
	Kind     StartKind
	Reason   Reason
	Strict   bool
	Children []Statement
}

// StrictLookup reports the strict flag that was in effect when the token
// with the given stream index was produced.
type StrictLookup func(index int) bool

type Options struct {
	Strict StrictLookup
	Logger logging.Logger
}

type Splitter struct {
	stream stream.TokenStream
	preds  disambig.Predicates
	strict StrictLookup
	logger logging.Logger
}

// New creates a splitter reading s. preds must be bound to s; when nil a
// script-mode table is created.
func New(s stream.TokenStream, preds disambig.Predicates, opts Options) *Splitter {
	if preds == nil {
		preds = disambig.NewContext(false).Predicates(s)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	strict := opts.Strict
	if strict == nil {
		strict = func(int) bool { return false }
	}
	return &Splitter{
		stream: s,
		preds:  preds,
		strict: strict,
		logger: logger.WithComponent("splitter"),
	}
}

// Split consumes the stream and returns the top-level statements
func (sp *Splitter) Split() []Statement {
	return sp.statements(false)
}

func (sp *Splitter) statements(inBlock bool) []Statement {
	var out []Statement
	for sp.stream.HasMore() {
		if inBlock && sp.preds.NextIsCloseBrace() {
			break
		}
		st := sp.statement()
		sp.logger.Debug("statement",
			logging.StringField("kind", st.Kind.String()),
			logging.StringField("reason", st.Reason.String()),
			logging.BoolField("strict", st.Strict),
			logging.IntField("line", st.First.Line),
			logging.IntField("column", st.First.Column))
		out = append(out, st)
	}
	return out
}

func (sp *Splitter) statement() Statement {
	first := sp.stream.LT(1)
	st := Statement{First: first, Strict: sp.strict(first.Index)}

	if !sp.preds.NextIsNotOpenBraceAndNotFunctionKeyword() {
		if first.Type == lexer.TokenFunction {
			st.Kind = StartFunction
			sp.functionHeader()
		} else {
			st.Kind = StartBlock
		}
		sp.block(&st)
		return st
	}

	st.Kind = StartOther
	sp.expressionOrOther(&st)
	return st
}

// functionHeader consumes everything up to the body's opening brace
func (sp *Splitter) functionHeader() {
	depth := 0
	for sp.stream.HasMore() {
		t := sp.stream.LT(1).Type
		if t == lexer.TokenOpenBrace && depth == 0 {
			return
		}
		switch t {
		case lexer.TokenOpenParen, lexer.TokenOpenBracket:
			depth++
		case lexer.TokenCloseParen, lexer.TokenCloseBracket:
			if depth > 0 {
				depth--
			}
		}
		sp.stream.Consume()
	}
}

func (sp *Splitter) block(st *Statement) {
	if sp.stream.LT(1).Type != lexer.TokenOpenBrace {
		st.Last = sp.stream.LT(-1)
		st.Reason = ReasonEOF
		return
	}
	sp.stream.Consume()
	st.Children = sp.statements(true)

	if sp.preds.NextIsCloseBrace() {
		st.Last = sp.stream.Consume()
		st.Reason = ReasonCloseBrace
		return
	}
	st.Last = sp.stream.LT(-1)
	st.Reason = ReasonEOF
}

func (sp *Splitter) expressionOrOther(st *Statement) {
	depth := 0
	for {
		next := sp.stream.LT(1)
		if depth == 0 {
			if next.Type == lexer.TokenSemiColon {
				st.Last = sp.stream.Consume()
				st.Reason = ReasonSemicolon
				return
			}
			if next.Type == lexer.TokenEOF {
				st.Last = sp.stream.LT(-1)
				st.Reason = ReasonEOF
				return
			}
			if next.Index != st.First.Index {
				if sp.preds.NextIsCloseBrace() {
					st.Last = sp.stream.LT(-1)
					st.Reason = ReasonCloseBrace
					return
				}
				if sp.restricted() {
					st.Last = sp.stream.LT(-1)
					st.Reason = ReasonRestricted
					return
				}
				// No grammar here: a braceless "if (a)\n b()" body is cut
				// after ")" like any call ending a line.
				if sp.preds.LineTerminatorAhead() && completes(sp.stream.LT(-1).Type) && !continues(next.Type) {
					st.Last = sp.stream.LT(-1)
					st.Reason = ReasonLineTerminator
					return
				}
			}
		} else if next.Type == lexer.TokenEOF {
			st.Last = sp.stream.LT(-1)
			st.Reason = ReasonEOF
			return
		}

		switch next.Type {
		case lexer.TokenOpenParen, lexer.TokenOpenBracket, lexer.TokenOpenBrace:
			depth++
		case lexer.TokenCloseParen, lexer.TokenCloseBracket, lexer.TokenCloseBrace:
			if depth > 0 {
				depth--
			}
		}
		sp.stream.Consume()
	}
}

var restrictedKeywords = []string{"return", "break", "continue", "throw", "yield"}

// restricted reports a [no LineTerminator here] production cut short by a line break
func (sp *Splitter) restricted() bool {
	if sp.preds.NoLineTerminatorImmediatelyBefore() && !sp.preds.LineTerminatorAhead() {
		return false
	}
	for _, kw := range restrictedKeywords {
		if sp.preds.Prev(kw) {
			return true
		}
	}
	return false
}

// completes reports whether a token of kind t can be the last token of a statement
func completes(t lexer.TokenType) bool {
	if disambig.EndsExpression(t) {
		return true
	}
	switch t {
	case lexer.TokenCloseBrace,
		lexer.TokenRegularExpressionLiteral,
		lexer.TokenTemplateStringLiteral,
		lexer.TokenHexIntegerLiteral,
		lexer.TokenOctalIntegerLiteral2,
		lexer.TokenBinaryIntegerLiteral,
		lexer.TokenBigHexIntegerLiteral,
		lexer.TokenBigOctalIntegerLiteral,
		lexer.TokenBigBinaryIntegerLiteral,
		lexer.TokenBigDecimalIntegerLiteral,
		lexer.TokenSuper,
		lexer.TokenDebugger,
		lexer.TokenReturn,
		lexer.TokenBreak,
		lexer.TokenContinue,
		lexer.TokenYield:
		return true
	}
	return false
}

// continues reports whether a token of kind t on a new line extends the
// previous expression instead of starting a statement.
func continues(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenDot, lexer.TokenQuestionMarkDot,
		lexer.TokenOpenParen, lexer.TokenOpenBracket,
		lexer.TokenTemplateStringLiteral,
		lexer.TokenComma, lexer.TokenQuestionMark, lexer.TokenColon, lexer.TokenArrow,
		lexer.TokenIn, lexer.TokenInstanceof,
		lexer.TokenElse, lexer.TokenCatch, lexer.TokenFinally:
		return true
	}
	return lexer.TokenAssign <= t && t <= lexer.TokenArrow && !isPrefixCapable(t)
}

// isPrefixCapable lists operators that may also open a new statement
func isPrefixCapable(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenPlusPlus, lexer.TokenMinusMinus,
		lexer.TokenNot, lexer.TokenBitNot, lexer.TokenEllipsis,
		lexer.TokenHashtag:
		return true
	}
	return false
}
