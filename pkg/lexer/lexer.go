package lexer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"jsctx/errors"
	"jsctx/logging"
)

// Hooks is the disambiguation state the lexer consults and feeds while
// scanning. Scope and string hooks run before the token is handed to
// Advance, so the state still reflects the previous significant token.
type Hooks interface {
	Advance(tok Token) Token
	IsStartOfInput() bool
	IsRegexPossible() bool
	IsStrict() bool
	OnScopeEnter()
	OnScopeExit()
	OnStringLiteral(text string) bool
}

type Lexer interface {
	NextToken() Token
	HasMore() bool
	Position() int
	Errors() []*errors.Error
}

// Options configures a SimpleLexer
type Options struct {
	// Source names the unit in diagnostics
	Source string
	Logger logging.Logger
}

const eof rune = -1

type cursor struct {
	pos     int
	current rune
	width   int
	line    int
	column  int
}

type SimpleLexer struct {
	input string
	cursor
	index  int
	done   bool
	eofTok Token

	hooks  Hooks
	errs   *errors.Collector
	logger logging.Logger
}

// NewLexer creates a lexer over input. hooks must not be nil.
func NewLexer(input string, hooks Hooks, opts Options) *SimpleLexer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	l := &SimpleLexer{
		input:  input,
		hooks:  hooks,
		errs:   errors.NewCollector(opts.Source),
		logger: logger.WithComponent("lexer"),
	}
	l.line = 1
	l.column = 1
	l.decode()
	return l
}

func (l *SimpleLexer) decode() {
	if l.pos >= len(l.input) {
		l.current = eof
		l.width = 0
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.current = r
	l.width = w
}

func (l *SimpleLexer) readChar() {
	if l.current == eof {
		return
	}
	switch l.current {
	case '\n', '\u2028', '\u2029':
		l.line++
		l.column = 1
	case '\r':
		if l.peekChar() != '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	default:
		l.column++
	}
	l.pos += l.width
	l.decode()
}

func (l *SimpleLexer) peekChar() rune {
	return l.peekAt(1)
}

// peekAt returns the rune n positions after the current one
func (l *SimpleLexer) peekAt(n int) rune {
	p := l.pos + l.width
	for i := 1; i < n; i++ {
		if p >= len(l.input) {
			return eof
		}
		_, w := utf8.DecodeRuneInString(l.input[p:])
		p += w
	}
	if p >= len(l.input) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(l.input[p:])
	return r
}

func (l *SimpleLexer) hasPrefix(s string) bool {
	return strings.HasPrefix(l.input[l.pos:], s)
}

// NextToken scans the next token on either channel. Once the input is
// exhausted it keeps returning the same EOF token.
func (l *SimpleLexer) NextToken() Token {
	if l.done {
		return l.eofTok
	}

	tok := l.scan()
	tok.Index = l.index
	l.index++

	if tok.Type == TokenEOF {
		l.done = true
		l.eofTok = l.hooks.Advance(tok)
		return l.eofTok
	}
	return l.hooks.Advance(tok)
}

func (l *SimpleLexer) HasMore() bool {
	return !l.done
}

// Position returns the byte offset of the next unread character
func (l *SimpleLexer) Position() int {
	return l.pos
}

// Errors returns the diagnostics reported so far
func (l *SimpleLexer) Errors() []*errors.Error {
	return l.errs.Errors()
}

func (l *SimpleLexer) report(code, msg string, line, col int, opts ...errors.ErrorOption) {
	e := l.errs.Add(errors.NewLexicalError(code, msg, line, col), opts...)
	l.logger.LogError(e)
}

func (l *SimpleLexer) scan() Token {
	start := l.cursor
	tok := Token{Line: l.line, Column: l.column, Start: l.pos}

	finish := func(t TokenType, ch Channel) Token {
		tok.Type = t
		tok.Channel = ch
		tok.Stop = l.pos
		tok.Text = l.input[start.pos:l.pos]
		return tok
	}

	switch c := l.current; {
	case c == eof:
		tok.Type = TokenEOF
		tok.Stop = l.pos
		return tok

	case c == '#' && l.peekChar() == '!' && l.hooks.IsStartOfInput():
		for l.current != eof && !isLineTerminator(l.current) {
			l.readChar()
		}
		return finish(TokenHashBangLine, ChannelDefault)

	case isLineTerminator(c):
		if c == '\r' && l.peekChar() == '\n' {
			l.readChar()
		}
		l.readChar()
		return finish(TokenLineTerminator, ChannelHidden)

	case isWhiteSpace(c):
		for isWhiteSpace(l.current) {
			l.readChar()
		}
		return finish(TokenWhiteSpaces, ChannelHidden)

	case c == '/':
		switch l.peekChar() {
		case '*':
			l.scanMultiLineComment(start)
			return finish(TokenMultiLineComment, ChannelHidden)
		case '/':
			for l.current != eof && !isLineTerminator(l.current) {
				l.readChar()
			}
			return finish(TokenSingleLineComment, ChannelHidden)
		}
		if l.hooks.IsRegexPossible() {
			if l.scanRegex() {
				return finish(TokenRegularExpressionLiteral, ChannelDefault)
			}
			l.report(errors.CodeUnterminatedRegex, "unterminated regular expression literal", start.line, start.column)
			l.cursor = start
		}
		l.readChar()
		if l.current == '=' {
			l.readChar()
			return finish(TokenDivideAssign, ChannelDefault)
		}
		return finish(TokenDivide, ChannelDefault)

	case c == '"' || c == '\'':
		if !l.scanString(c) {
			l.report(errors.CodeUnterminatedString, "unterminated string literal", start.line, start.column)
			return finish(TokenStringLiteral, ChannelDefault)
		}
		tok = finish(TokenStringLiteral, ChannelDefault)
		if l.hooks.OnStringLiteral(tok.Text) {
			l.logger.Debug("directive prologue enables strict mode",
				logging.IntField("line", tok.Line), logging.IntField("column", tok.Column))
		}
		return tok

	case c == '`':
		l.readChar()
		if !l.scanTemplateBody() {
			l.report(errors.CodeUnterminatedTemplate, "unterminated template literal", start.line, start.column)
		}
		return finish(TokenTemplateStringLiteral, ChannelDefault)

	case isDecimalDigit(c) || (c == '.' && isDecimalDigit(l.peekChar())):
		return finish(l.scanNumber(start), ChannelDefault)

	case isIdentifierStart(c) || (c == '\\' && l.peekChar() == 'u'):
		l.scanIdentifierPart()
		tok = finish(TokenIdentifier, ChannelDefault)
		tok.Type = LookupIdent(tok.Text, l.hooks.IsStrict())
		return tok

	case c == '{':
		l.hooks.OnScopeEnter()
		l.readChar()
		l.logger.Debug("scope enter", logging.BoolField("strict", l.hooks.IsStrict()),
			logging.IntField("line", tok.Line), logging.IntField("column", tok.Column))
		return finish(TokenOpenBrace, ChannelDefault)

	case c == '}':
		l.hooks.OnScopeExit()
		l.readChar()
		l.logger.Debug("scope exit", logging.BoolField("strict", l.hooks.IsStrict()),
			logging.IntField("line", tok.Line), logging.IntField("column", tok.Column))
		return finish(TokenCloseBrace, ChannelDefault)
	}

	if t, ok := l.scanPunctuator(); ok {
		return finish(t, ChannelDefault)
	}

	l.readChar()
	tok = finish(TokenUnexpectedCharacter, ChannelDefault)
	l.report(errors.CodeUnexpectedCharacter, "unexpected character "+quoteRune(tok.Text), tok.Line, tok.Column)
	return tok
}

func (l *SimpleLexer) scanMultiLineComment(start cursor) {
	l.readChar() // '/'
	l.readChar() // '*'
	for {
		if l.current == eof {
			l.report(errors.CodeUnterminatedComment, "unterminated multi-line comment", start.line, start.column)
			return
		}
		if l.current == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

// scanRegex consumes body and flags. Reports false when the literal is not
// closed before a line terminator or end of input.
func (l *SimpleLexer) scanRegex() bool {
	l.readChar() // opening '/'
	inClass := false
	for {
		switch c := l.current; {
		case c == eof || isLineTerminator(c):
			return false
		case c == '\\':
			l.readChar()
			if l.current == eof || isLineTerminator(l.current) {
				return false
			}
		case c == '[':
			inClass = true
		case c == ']':
			inClass = false
		case c == '/' && !inClass:
			l.readChar()
			for isIdentifierPart(l.current) {
				l.readChar()
			}
			return true
		}
		l.readChar()
	}
}

func (l *SimpleLexer) scanString(quote rune) bool {
	l.readChar()
	for {
		switch c := l.current; {
		case c == quote:
			l.readChar()
			return true
		case c == eof:
			return false
		case c == '\\':
			l.readChar()
			if l.current == eof {
				return false
			}
			if l.current == '\r' && l.peekChar() == '\n' {
				l.readChar()
			}
		case c == '\n' || c == '\r':
			return false
		}
		l.readChar()
	}
}

// scanTemplateBody consumes up to and including the closing backtick.
// Substitutions may nest braces, strings and further templates.
func (l *SimpleLexer) scanTemplateBody() bool {
	for {
		switch c := l.current; {
		case c == eof:
			return false
		case c == '`':
			l.readChar()
			return true
		case c == '\\':
			l.readChar()
			if l.current == eof {
				return false
			}
		case c == '$' && l.peekChar() == '{':
			l.readChar()
			l.readChar()
			if !l.scanSubstitution() {
				return false
			}
			continue
		}
		l.readChar()
	}
}

func (l *SimpleLexer) scanSubstitution() bool {
	depth := 1
	for {
		switch c := l.current; {
		case c == eof:
			return false
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				l.readChar()
				return true
			}
		case c == '"' || c == '\'':
			if !l.scanString(c) {
				return false
			}
			continue
		case c == '`':
			l.readChar()
			if !l.scanTemplateBody() {
				return false
			}
			continue
		}
		l.readChar()
	}
}

func (l *SimpleLexer) scanNumber(start cursor) TokenType {
	if l.current == '0' {
		switch l.peekChar() {
		case 'x', 'X':
			return l.prefixed(start, isHexDigit, TokenHexIntegerLiteral, TokenBigHexIntegerLiteral)
		case 'o', 'O':
			return l.prefixed(start, isOctalDigit, TokenOctalIntegerLiteral2, TokenBigOctalIntegerLiteral)
		case 'b', 'B':
			return l.prefixed(start, isBinaryDigit, TokenBinaryIntegerLiteral, TokenBigBinaryIntegerLiteral)
		}
		if isOctalDigit(l.peekChar()) {
			l.readChar()
			for isOctalDigit(l.current) {
				l.readChar()
			}
			if !isDecimalDigit(l.current) {
				if !l.hooks.IsStrict() {
					return TokenOctalIntegerLiteral
				}
				l.report(errors.CodeLegacyOctalInStrict, "legacy octal literal in strict mode code",
					start.line, start.column, errors.WithSeverityOption(errors.SeverityWarning))
				return TokenDecimalLiteral
			}
		}
	}

	integer := l.current != '.'
	l.digits(isDecimalDigit)
	if l.current == '.' {
		integer = false
		l.readChar()
		l.digits(isDecimalDigit)
	}
	if l.current == 'e' || l.current == 'E' {
		next := l.peekChar()
		if isDecimalDigit(next) || ((next == '+' || next == '-') && isDecimalDigit(l.peekAt(2))) {
			integer = false
			l.readChar()
			if l.current == '+' || l.current == '-' {
				l.readChar()
			}
			l.digits(isDecimalDigit)
		}
	}
	if integer {
		return l.bigInt(TokenDecimalLiteral, TokenBigDecimalIntegerLiteral)
	}
	return TokenDecimalLiteral
}

// prefixed scans a 0x, 0o or 0b literal. A prefix without digits is still
// one token, reported as malformed.
func (l *SimpleLexer) prefixed(start cursor, accept func(rune) bool, plain, big TokenType) TokenType {
	l.readChar()
	l.readChar()
	if !accept(l.current) {
		l.report(errors.CodeMalformedNumber, "numeric literal prefix without digits", start.line, start.column,
			errors.WithContextOption("prefix", l.input[start.pos:l.pos]))
	}
	l.digits(accept)
	return l.bigInt(plain, big)
}

// digits consumes a digit run allowing '_' separators
func (l *SimpleLexer) digits(accept func(rune) bool) {
	for accept(l.current) || (l.current == '_' && accept(l.peekChar())) {
		l.readChar()
	}
}

func (l *SimpleLexer) bigInt(plain, big TokenType) TokenType {
	if l.current == 'n' {
		l.readChar()
		return big
	}
	return plain
}

func (l *SimpleLexer) scanIdentifierPart() {
	for {
		if l.current == '\\' && l.peekChar() == 'u' {
			l.readChar()
			l.readChar()
			if l.current == '{' {
				for l.current != eof && l.current != '}' {
					l.readChar()
				}
				l.readChar()
				continue
			}
			for i := 0; i < 4 && isHexDigit(l.current); i++ {
				l.readChar()
			}
			continue
		}
		if !isIdentifierPart(l.current) {
			return
		}
		l.readChar()
	}
}

type punctuator struct {
	text string
	kind TokenType
}

var punctuators = func() []punctuator {
	table := []punctuator{
		{">>>=", TokenRightShiftLogicalAssign},
		{"===", TokenIdentityEquals},
		{"!==", TokenIdentityNotEquals},
		{"**=", TokenPowerAssign},
		{"...", TokenEllipsis},
		{">>>", TokenRightShiftLogical},
		{"<<=", TokenLeftShiftArithmeticAssign},
		{">>=", TokenRightShiftArithmeticAssign},
		{"??=", TokenNullishCoalescingAssign},
		{"=>", TokenArrow},
		{"==", TokenEquals},
		{"!=", TokenNotEquals},
		{"<=", TokenLessThanEquals},
		{">=", TokenGreaterThanEquals},
		{"&&", TokenAnd},
		{"||", TokenOr},
		{"??", TokenNullCoalesce},
		{"?.", TokenQuestionMarkDot},
		{"++", TokenPlusPlus},
		{"--", TokenMinusMinus},
		{"**", TokenPower},
		{"<<", TokenLeftShiftArithmetic},
		{">>", TokenRightShiftArithmetic},
		{"+=", TokenPlusAssign},
		{"-=", TokenMinusAssign},
		{"*=", TokenMultiplyAssign},
		{"%=", TokenModulusAssign},
		{"&=", TokenBitAndAssign},
		{"^=", TokenBitXorAssign},
		{"|=", TokenBitOrAssign},
		{"[", TokenOpenBracket},
		{"]", TokenCloseBracket},
		{"(", TokenOpenParen},
		{")", TokenCloseParen},
		{";", TokenSemiColon},
		{",", TokenComma},
		{"=", TokenAssign},
		{"?", TokenQuestionMark},
		{":", TokenColon},
		{".", TokenDot},
		{"+", TokenPlus},
		{"-", TokenMinus},
		{"~", TokenBitNot},
		{"!", TokenNot},
		{"*", TokenMultiply},
		{"%", TokenModulus},
		{"<", TokenLessThan},
		{">", TokenMoreThan},
		{"&", TokenBitAnd},
		{"^", TokenBitXOr},
		{"|", TokenBitOr},
		{"#", TokenHashtag},
	}
	sort.SliceStable(table, func(i, j int) bool {
		return len(table[i].text) > len(table[j].text)
	})
	return table
}()

func (l *SimpleLexer) scanPunctuator() (TokenType, bool) {
	for _, p := range punctuators {
		if !l.hasPrefix(p.text) {
			continue
		}
		// a?.5:b is a conditional, not optional chaining
		if p.kind == TokenQuestionMarkDot && isDecimalDigit(l.peekAt(2)) {
			continue
		}
		for range p.text {
			l.readChar()
		}
		return p.kind, true
	}
	return TokenEOF, false
}

func isLineTerminator(r rune) bool {
	return r == '\n' || r == '\r' || r == '\u2028' || r == '\u2029'
}

func isWhiteSpace(r rune) bool {
	switch r {
	case '\t', '\v', '\f', ' ', '\u00A0', '\uFEFF':
		return true
	}
	return r > unicode.MaxASCII && unicode.Is(unicode.Zs, r)
}

func isDecimalDigit(r rune) bool { return r >= '0' && r <= '9' }
func isOctalDigit(r rune) bool   { return r >= '0' && r <= '7' }
func isBinaryDigit(r rune) bool  { return r == '0' || r == '1' }

func isHexDigit(r rune) bool {
	return isDecimalDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentifierStart(r rune) bool {
	if r == '$' || r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
		return true
	}
	return r > unicode.MaxASCII && (unicode.IsLetter(r) || unicode.Is(unicode.Nl, r))
}

func isIdentifierPart(r rune) bool {
	if isIdentifierStart(r) || isDecimalDigit(r) {
		return true
	}
	if r == '\u200C' || r == '\u200D' {
		return true
	}
	return r > unicode.MaxASCII && unicode.In(r, unicode.Mn, unicode.Mc, unicode.Nd, unicode.Pc)
}

func quoteRune(s string) string {
	return "'" + s + "'"
}

// Tokenize scans the whole input and returns every token on both channels,
// ending with EOF, together with the diagnostics.
func Tokenize(input string, hooks Hooks, opts Options) ([]Token, []*errors.Error) {
	l := NewLexer(input, hooks, opts)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return tokens, l.Errors()
}
