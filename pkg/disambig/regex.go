package disambig

import "jsctx/pkg/lexer"

// RegexDisambiguator decides whether '/' may start a regular expression literal.
type RegexDisambiguator struct {
	history *TokenHistory
}

// NewRegexDisambiguator reads the last significant token from history
func NewRegexDisambiguator(history *TokenHistory) *RegexDisambiguator {
	return &RegexDisambiguator{history: history}
}

// IsRegexPossible returns false right after a token that can end an
// expression, where '/' has to be division.
func (r *RegexDisambiguator) IsRegexPossible() bool {
	last, ok := r.history.Last()
	if !ok {
		// Nothing to divide at the start of input.
		return true
	}
	return !EndsExpression(last.Type)
}

// EndsExpression reports whether a token of kind t can terminate a value-producing expression.
func EndsExpression(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenIdentifier,
		lexer.TokenNullLiteral,
		lexer.TokenBooleanLiteral,
		lexer.TokenThis,
		lexer.TokenCloseBracket,
		lexer.TokenCloseParen,
		lexer.TokenOctalIntegerLiteral,
		lexer.TokenDecimalLiteral,
		lexer.TokenHexIntegerLiteral,
		lexer.TokenStringLiteral,
		lexer.TokenPlusPlus,
		lexer.TokenMinusMinus:
		return true
	default:
		return false
	}
}
