package stream

import (
	"jsctx/pkg/lexer"
)

// TokenStream is a buffered, channel-aware view over a lexer's output.
// LT addresses default-channel tokens relative to the cursor, Get addresses
// any token by its absolute index.
type TokenStream interface {
	LT(k int) lexer.Token
	Get(i int) lexer.Token
	Index() int
	Consume() lexer.Token
	Seek(index int)
	Size() int
	HasMore() bool
	Clone() TokenStream
	Tokens() []lexer.Token
}

type SimpleTokenStream struct {
	tokens []lexer.Token
	p      int
}

// NewTokenStream drains l into the buffer. The lexer is not retained.
func NewTokenStream(l lexer.Lexer) *SimpleTokenStream {
	tokens := make([]lexer.Token, 0, 64)
	for {
		token := l.NextToken()
		tokens = append(tokens, token)
		if token.Type == lexer.TokenEOF {
			break
		}
	}
	return NewTokenStreamFromTokens(tokens)
}

// NewTokenStreamFromTokens wraps an already scanned token list, for example
// one restored from a snapshot. An EOF token is appended when missing.
func NewTokenStreamFromTokens(tokens []lexer.Token) *SimpleTokenStream {
	if n := len(tokens); n == 0 || tokens[n-1].Type != lexer.TokenEOF {
		eof := lexer.EOFToken()
		eof.Index = len(tokens)
		tokens = append(tokens, eof)
	}
	s := &SimpleTokenStream{tokens: tokens}
	s.p = s.nextOnChannel(0)
	return s
}

// nextOnChannel returns the first default-channel index at or after i
func (s *SimpleTokenStream) nextOnChannel(i int) int {
	last := len(s.tokens) - 1
	if i > last {
		return last
	}
	for i < last && s.tokens[i].Channel != lexer.ChannelDefault {
		i++
	}
	return i
}

// previousOnChannel returns the last default-channel index at or before i, or -1
func (s *SimpleTokenStream) previousOnChannel(i int) int {
	for i >= 0 && s.tokens[i].Channel != lexer.ChannelDefault {
		i--
	}
	return i
}

// LT returns the k-th default-channel token: LT(1) is the current token,
// LT(-1) the previous one. LT(0) and positions outside the buffer yield EOF.
func (s *SimpleTokenStream) LT(k int) lexer.Token {
	switch {
	case k == 0:
		return lexer.EOFToken()
	case k < 0:
		i := s.p
		for n := 0; n < -k; n++ {
			i = s.previousOnChannel(i - 1)
			if i < 0 {
				return lexer.EOFToken()
			}
		}
		return s.tokens[i]
	}

	i := s.p
	for n := 1; n < k; n++ {
		if s.tokens[i].Type == lexer.TokenEOF {
			return s.tokens[i]
		}
		i = s.nextOnChannel(i + 1)
	}
	return s.tokens[i]
}

// Get returns the token at absolute index i on any channel
func (s *SimpleTokenStream) Get(i int) lexer.Token {
	if i < 0 || i >= len(s.tokens) {
		return lexer.EOFToken()
	}
	return s.tokens[i]
}

// Index returns the absolute index of the current token
func (s *SimpleTokenStream) Index() int {
	return s.p
}

// Consume returns the current token and moves to the next default-channel one.
// At EOF the cursor stays put.
func (s *SimpleTokenStream) Consume() lexer.Token {
	token := s.tokens[s.p]
	if token.Type != lexer.TokenEOF {
		s.p = s.nextOnChannel(s.p + 1)
	}
	return token
}

// Seek moves the cursor to index, skipping forward over hidden tokens
func (s *SimpleTokenStream) Seek(index int) {
	if index < 0 {
		index = 0
	}
	s.p = s.nextOnChannel(index)
}

// Size returns the number of buffered tokens on both channels, EOF included
func (s *SimpleTokenStream) Size() int {
	return len(s.tokens)
}

func (s *SimpleTokenStream) HasMore() bool {
	return s.tokens[s.p].Type != lexer.TokenEOF
}

// Clone shares the immutable buffer but keeps an independent cursor
func (s *SimpleTokenStream) Clone() TokenStream {
	return &SimpleTokenStream{tokens: s.tokens, p: s.p}
}

// Tokens returns the whole buffer
func (s *SimpleTokenStream) Tokens() []lexer.Token {
	return s.tokens
}
