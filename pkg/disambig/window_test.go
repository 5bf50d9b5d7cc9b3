package disambig

import "jsctx/pkg/lexer"

// sliceWindow is a minimal TokenWindow over a fixed slice. p is the stream
// index of the current (LT(1)) token.
type sliceWindow struct {
	tokens []lexer.Token
	p      int
}

func newSliceWindow(p int, tokens ...lexer.Token) *sliceWindow {
	for i := range tokens {
		tokens[i].Index = i
	}
	return &sliceWindow{tokens: tokens, p: p}
}

func (w *sliceWindow) Get(i int) lexer.Token {
	if i < 0 || i >= len(w.tokens) {
		return lexer.EOFToken()
	}
	return w.tokens[i]
}

func (w *sliceWindow) LT(k int) lexer.Token {
	switch {
	case k > 0:
		for i := w.p; i < len(w.tokens); i++ {
			if w.tokens[i].Channel == lexer.ChannelDefault {
				k--
				if k == 0 {
					return w.tokens[i]
				}
			}
		}
	case k < 0:
		for i := w.p - 1; i >= 0; i-- {
			if w.tokens[i].Channel == lexer.ChannelDefault {
				k++
				if k == 0 {
					return w.tokens[i]
				}
			}
		}
	}
	return lexer.EOFToken()
}

func tok(t lexer.TokenType, text string) lexer.Token {
	return lexer.Token{Type: t, Text: text, Channel: lexer.ChannelDefault}
}

func hidden(t lexer.TokenType, text string) lexer.Token {
	return lexer.Token{Type: t, Text: text, Channel: lexer.ChannelHidden}
}
