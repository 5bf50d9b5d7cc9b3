package lexer

import "fmt"

type TokenType int

const (
	TokenEOF TokenType = iota
	TokenUnexpectedCharacter

	TokenHashBangLine

	// Hidden channel
	TokenMultiLineComment
	TokenSingleLineComment
	TokenWhiteSpaces
	TokenLineTerminator

	TokenRegularExpressionLiteral

	// Punctuators
	TokenOpenBracket  // [
	TokenCloseBracket // ]
	TokenOpenParen    // (
	TokenCloseParen   // )
	TokenOpenBrace    // {
	TokenCloseBrace   // }
	TokenSemiColon    // ;
	TokenComma        // ,
	TokenAssign       // =
	TokenQuestionMark // ?
	TokenQuestionMarkDot
	TokenColon
	TokenEllipsis
	TokenDot
	TokenPlusPlus
	TokenMinusMinus
	TokenPlus
	TokenMinus
	TokenBitNot
	TokenNot
	TokenMultiply
	TokenDivide
	TokenModulus
	TokenPower
	TokenNullCoalesce
	TokenHashtag
	TokenRightShiftArithmetic
	TokenLeftShiftArithmetic
	TokenRightShiftLogical
	TokenLessThan
	TokenMoreThan
	TokenLessThanEquals
	TokenGreaterThanEquals
	TokenEquals
	TokenNotEquals
	TokenIdentityEquals
	TokenIdentityNotEquals
	TokenBitAnd
	TokenBitXOr
	TokenBitOr
	TokenAnd
	TokenOr
	TokenMultiplyAssign
	TokenDivideAssign
	TokenModulusAssign
	TokenPlusAssign
	TokenMinusAssign
	TokenLeftShiftArithmeticAssign
	TokenRightShiftArithmeticAssign
	TokenRightShiftLogicalAssign
	TokenBitAndAssign
	TokenBitXorAssign
	TokenBitOrAssign
	TokenPowerAssign
	TokenNullishCoalescingAssign
	TokenArrow // =>

	// Literals
	TokenNullLiteral
	TokenBooleanLiteral
	TokenDecimalLiteral
	TokenHexIntegerLiteral
	TokenOctalIntegerLiteral  // legacy 0777, only outside strict mode
	TokenOctalIntegerLiteral2 // 0o777
	TokenBinaryIntegerLiteral
	TokenBigHexIntegerLiteral
	TokenBigOctalIntegerLiteral
	TokenBigBinaryIntegerLiteral
	TokenBigDecimalIntegerLiteral

	// Keywords
	TokenBreak
	TokenDo
	TokenInstanceof
	TokenTypeof
	TokenCase
	TokenElse
	TokenNew
	TokenVar
	TokenCatch
	TokenFinally
	TokenReturn
	TokenVoid
	TokenContinue
	TokenFor
	TokenSwitch
	TokenWhile
	TokenDebugger
	TokenFunction
	TokenThis
	TokenWith
	TokenDefault
	TokenIf
	TokenThrow
	TokenDelete
	TokenIn
	TokenTry
	TokenYield
	TokenClass
	TokenEnum
	TokenExtends
	TokenSuper
	TokenConst
	TokenExport
	TokenImport
	TokenAsync
	TokenAwait

	// Keywords recognised only in strict mode
	TokenImplements
	TokenStrictLet
	TokenPrivate
	TokenPublic
	TokenInterface
	TokenPackage
	TokenProtected
	TokenStatic

	// let outside strict mode
	TokenNonStrictLet

	TokenIdentifier
	TokenStringLiteral
	TokenTemplateStringLiteral
)

var tokenNames = map[TokenType]string{
	TokenEOF:                        "EOF",
	TokenUnexpectedCharacter:        "UNEXPECTED_CHARACTER",
	TokenHashBangLine:               "HASH_BANG_LINE",
	TokenMultiLineComment:           "MULTI_LINE_COMMENT",
	TokenSingleLineComment:          "SINGLE_LINE_COMMENT",
	TokenWhiteSpaces:                "WHITE_SPACES",
	TokenLineTerminator:             "LINE_TERMINATOR",
	TokenRegularExpressionLiteral:   "REGULAR_EXPRESSION_LITERAL",
	TokenOpenBracket:                "OPEN_BRACKET",
	TokenCloseBracket:               "CLOSE_BRACKET",
	TokenOpenParen:                  "OPEN_PAREN",
	TokenCloseParen:                 "CLOSE_PAREN",
	TokenOpenBrace:                  "OPEN_BRACE",
	TokenCloseBrace:                 "CLOSE_BRACE",
	TokenSemiColon:                  "SEMI_COLON",
	TokenComma:                      "COMMA",
	TokenAssign:                     "ASSIGN",
	TokenQuestionMark:               "QUESTION_MARK",
	TokenQuestionMarkDot:            "QUESTION_MARK_DOT",
	TokenColon:                      "COLON",
	TokenEllipsis:                   "ELLIPSIS",
	TokenDot:                        "DOT",
	TokenPlusPlus:                   "PLUS_PLUS",
	TokenMinusMinus:                 "MINUS_MINUS",
	TokenPlus:                       "PLUS",
	TokenMinus:                      "MINUS",
	TokenBitNot:                     "BIT_NOT",
	TokenNot:                        "NOT",
	TokenMultiply:                   "MULTIPLY",
	TokenDivide:                     "DIVIDE",
	TokenModulus:                    "MODULUS",
	TokenPower:                      "POWER",
	TokenNullCoalesce:               "NULL_COALESCE",
	TokenHashtag:                    "HASHTAG",
	TokenRightShiftArithmetic:       "RIGHT_SHIFT_ARITHMETIC",
	TokenLeftShiftArithmetic:        "LEFT_SHIFT_ARITHMETIC",
	TokenRightShiftLogical:          "RIGHT_SHIFT_LOGICAL",
	TokenLessThan:                   "LESS_THAN",
	TokenMoreThan:                   "MORE_THAN",
	TokenLessThanEquals:             "LESS_THAN_EQUALS",
	TokenGreaterThanEquals:          "GREATER_THAN_EQUALS",
	TokenEquals:                     "EQUALS",
	TokenNotEquals:                  "NOT_EQUALS",
	TokenIdentityEquals:             "IDENTITY_EQUALS",
	TokenIdentityNotEquals:          "IDENTITY_NOT_EQUALS",
	TokenBitAnd:                     "BIT_AND",
	TokenBitXOr:                     "BIT_XOR",
	TokenBitOr:                      "BIT_OR",
	TokenAnd:                        "AND",
	TokenOr:                         "OR",
	TokenMultiplyAssign:             "MULTIPLY_ASSIGN",
	TokenDivideAssign:               "DIVIDE_ASSIGN",
	TokenModulusAssign:              "MODULUS_ASSIGN",
	TokenPlusAssign:                 "PLUS_ASSIGN",
	TokenMinusAssign:                "MINUS_ASSIGN",
	TokenLeftShiftArithmeticAssign:  "LEFT_SHIFT_ARITHMETIC_ASSIGN",
	TokenRightShiftArithmeticAssign: "RIGHT_SHIFT_ARITHMETIC_ASSIGN",
	TokenRightShiftLogicalAssign:    "RIGHT_SHIFT_LOGICAL_ASSIGN",
	TokenBitAndAssign:               "BIT_AND_ASSIGN",
	TokenBitXorAssign:               "BIT_XOR_ASSIGN",
	TokenBitOrAssign:                "BIT_OR_ASSIGN",
	TokenPowerAssign:                "POWER_ASSIGN",
	TokenNullishCoalescingAssign:    "NULLISH_COALESCING_ASSIGN",
	TokenArrow:                      "ARROW",
	TokenNullLiteral:                "NULL_LITERAL",
	TokenBooleanLiteral:             "BOOLEAN_LITERAL",
	TokenDecimalLiteral:             "DECIMAL_LITERAL",
	TokenHexIntegerLiteral:          "HEX_INTEGER_LITERAL",
	TokenOctalIntegerLiteral:        "OCTAL_INTEGER_LITERAL",
	TokenOctalIntegerLiteral2:       "OCTAL_INTEGER_LITERAL2",
	TokenBinaryIntegerLiteral:       "BINARY_INTEGER_LITERAL",
	TokenBigHexIntegerLiteral:       "BIG_HEX_INTEGER_LITERAL",
	TokenBigOctalIntegerLiteral:     "BIG_OCTAL_INTEGER_LITERAL",
	TokenBigBinaryIntegerLiteral:    "BIG_BINARY_INTEGER_LITERAL",
	TokenBigDecimalIntegerLiteral:   "BIG_DECIMAL_INTEGER_LITERAL",
	TokenBreak:                      "BREAK",
	TokenDo:                         "DO",
	TokenInstanceof:                 "INSTANCEOF",
	TokenTypeof:                     "TYPEOF",
	TokenCase:                       "CASE",
	TokenElse:                       "ELSE",
	TokenNew:                        "NEW",
	TokenVar:                        "VAR",
	TokenCatch:                      "CATCH",
	TokenFinally:                    "FINALLY",
	TokenReturn:                     "RETURN",
	TokenVoid:                       "VOID",
	TokenContinue:                   "CONTINUE",
	TokenFor:                        "FOR",
	TokenSwitch:                     "SWITCH",
	TokenWhile:                      "WHILE",
	TokenDebugger:                   "DEBUGGER",
	TokenFunction:                   "FUNCTION",
	TokenThis:                       "THIS",
	TokenWith:                       "WITH",
	TokenDefault:                    "DEFAULT",
	TokenIf:                         "IF",
	TokenThrow:                      "THROW",
	TokenDelete:                     "DELETE",
	TokenIn:                         "IN",
	TokenTry:                        "TRY",
	TokenYield:                      "YIELD",
	TokenClass:                      "CLASS",
	TokenEnum:                       "ENUM",
	TokenExtends:                    "EXTENDS",
	TokenSuper:                      "SUPER",
	TokenConst:                      "CONST",
	TokenExport:                     "EXPORT",
	TokenImport:                     "IMPORT",
	TokenAsync:                      "ASYNC",
	TokenAwait:                      "AWAIT",
	TokenImplements:                 "IMPLEMENTS",
	TokenStrictLet:                  "STRICT_LET",
	TokenPrivate:                    "PRIVATE",
	TokenPublic:                     "PUBLIC",
	TokenInterface:                  "INTERFACE",
	TokenPackage:                    "PACKAGE",
	TokenProtected:                  "PROTECTED",
	TokenStatic:                     "STATIC",
	TokenNonStrictLet:               "NON_STRICT_LET",
	TokenIdentifier:                 "IDENTIFIER",
	TokenStringLiteral:              "STRING_LITERAL",
	TokenTemplateStringLiteral:      "TEMPLATE_STRING_LITERAL",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

var keywords = map[string]TokenType{
	"null":       TokenNullLiteral,
	"true":       TokenBooleanLiteral,
	"false":      TokenBooleanLiteral,
	"break":      TokenBreak,
	"do":         TokenDo,
	"instanceof": TokenInstanceof,
	"typeof":     TokenTypeof,
	"case":       TokenCase,
	"else":       TokenElse,
	"new":        TokenNew,
	"var":        TokenVar,
	"catch":      TokenCatch,
	"finally":    TokenFinally,
	"return":     TokenReturn,
	"void":       TokenVoid,
	"continue":   TokenContinue,
	"for":        TokenFor,
	"switch":     TokenSwitch,
	"while":      TokenWhile,
	"debugger":   TokenDebugger,
	"function":   TokenFunction,
	"this":       TokenThis,
	"with":       TokenWith,
	"default":    TokenDefault,
	"if":         TokenIf,
	"throw":      TokenThrow,
	"delete":     TokenDelete,
	"in":         TokenIn,
	"try":        TokenTry,
	"yield":      TokenYield,
	"class":      TokenClass,
	"enum":       TokenEnum,
	"extends":    TokenExtends,
	"super":      TokenSuper,
	"const":      TokenConst,
	"export":     TokenExport,
	"import":     TokenImport,
	"async":      TokenAsync,
	"await":      TokenAwait,
}

// strictKeywords are future reserved words that only become keywords in
// strict mode code; elsewhere they lex as identifiers.
var strictKeywords = map[string]TokenType{
	"implements": TokenImplements,
	"let":        TokenStrictLet,
	"private":    TokenPrivate,
	"public":     TokenPublic,
	"interface":  TokenInterface,
	"package":    TokenPackage,
	"protected":  TokenProtected,
	"static":     TokenStatic,
}

// LookupIdent classifies a word given the strict-mode flag in effect
func LookupIdent(word string, strict bool) TokenType {
	if tok, ok := keywords[word]; ok {
		return tok
	}
	if tok, ok := strictKeywords[word]; ok {
		if strict {
			return tok
		}
		if word == "let" {
			return TokenNonStrictLet
		}
	}
	return TokenIdentifier
}

// Channel separates tokens the grammar sees from those kept only for lookahead
type Channel int

const (
	ChannelDefault Channel = 0
	ChannelHidden  Channel = 1
)

func (c Channel) String() string {
	if c == ChannelHidden {
		return "HIDDEN"
	}
	return "DEFAULT"
}

type Token struct {
	Type    TokenType
	Text    string
	Channel Channel
	Index   int // position in the token stream, -1 when not part of a stream
	Line    int
	Column  int
	Start   int // byte offset of the first character
	Stop    int // byte offset after the last character
}

func (t Token) String() string {
	return fmt.Sprintf("Token{Type: %s, Text: %q, Channel: %s, Index: %d, Line: %d, Col: %d}",
		t.Type, t.Text, t.Channel, t.Index, t.Line, t.Column)
}

// IsHidden reports whether the token lives on the hidden channel
func (t Token) IsHidden() bool {
	return t.Channel == ChannelHidden
}

// EOFToken is returned for window accesses outside the buffered stream
func EOFToken() Token {
	return Token{Type: TokenEOF, Channel: ChannelDefault, Index: -1}
}
