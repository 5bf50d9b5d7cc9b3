package disambig

import "jsctx/pkg/lexer"

// TokenHistory remembers the most recent token seen on the default channel.
type TokenHistory struct {
	last    lexer.Token
	hasLast bool
}

// NewTokenHistory creates an empty history positioned at start of input
func NewTokenHistory() *TokenHistory {
	return &TokenHistory{}
}

// Advance records tok when it is significant to the grammar and returns it unchanged.
func (h *TokenHistory) Advance(tok lexer.Token) lexer.Token {
	if tok.Channel == lexer.ChannelDefault {
		h.last = tok
		h.hasLast = true
	}
	return tok
}

// IsStartOfInput reports whether no significant token has been seen yet
func (h *TokenHistory) IsStartOfInput() bool {
	return !h.hasLast
}

// Last returns the last significant token, if any
func (h *TokenHistory) Last() (lexer.Token, bool) {
	return h.last, h.hasLast
}
