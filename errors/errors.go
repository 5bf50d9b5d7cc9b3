package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeLexical ErrorType = "LEXICAL"
	ErrorTypeConfig  ErrorType = "CONFIG"
	ErrorTypeScript  ErrorType = "SCRIPT"
	ErrorTypeSystem  ErrorType = "SYSTEM"
	ErrorTypeUser    ErrorType = "USER"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

const (
	SeverityInfo    ErrorSeverity = "INFO"
	SeverityWarning ErrorSeverity = "WARNING"
	SeverityError   ErrorSeverity = "ERROR"
	SeverityFatal   ErrorSeverity = "FATAL"
)

// Lexical error codes reported by the tokenizer.
const (
	CodeUnterminatedString   = "UNTERMINATED_STRING"
	CodeUnterminatedTemplate = "UNTERMINATED_TEMPLATE"
	CodeUnterminatedComment  = "UNTERMINATED_COMMENT"
	CodeUnterminatedRegex    = "UNTERMINATED_REGEX"
	CodeUnexpectedCharacter  = "UNEXPECTED_CHARACTER"
	CodeLegacyOctalInStrict  = "LEGACY_OCTAL_IN_STRICT"
	CodeMalformedNumber      = "MALFORMED_NUMBER"
)

// Error represents a structured error with position information
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Source     string                 `json:"source,omitempty"`
	Line       int                    `json:"line,omitempty"`
	Col        int                    `json:"col,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
	Timestamp  time.Time              `json:"timestamp"`
	Severity   ErrorSeverity          `json:"severity"`
	Type       ErrorType              `json:"type"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	var builder strings.Builder

	// Format: [TYPE][CODE] message
	builder.WriteString(fmt.Sprintf("[%s][%s] %s", e.Type, e.Code, e.Message))

	if e.Source != "" {
		builder.WriteString(" in " + e.Source)
	}
	if e.Line > 0 {
		builder.WriteString(fmt.Sprintf(" line %d col %d", e.Line, e.Col))
	}
	if e.Cause != nil {
		builder.WriteString(": " + e.Cause.Error())
	}

	return builder.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *Error) Is(target error) bool {
	if other, ok := target.(*Error); ok {
		return e.Code == other.Code && e.Type == other.Type
	}
	return false
}

// WithContext adds context information to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSource sets the name of the source unit the error belongs to
func (e *Error) WithSource(source string) *Error {
	e.Source = source
	return e
}

// WithSeverity sets the severity level for the error
func (e *Error) WithSeverity(severity ErrorSeverity) *Error {
	e.Severity = severity
	return e
}

// WithPosition sets the line and column for the error
func (e *Error) WithPosition(line, col int) *Error {
	e.Line = line
	e.Col = col
	return e
}

// WithStackTrace captures and adds stack trace information
func (e *Error) WithStackTrace() *Error {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	e.StackTrace = string(buf[:n])
	return e
}

// Wrap wraps another error
func (e *Error) Wrap(err error) *Error {
	e.Cause = err
	return e
}

func newError(errorType ErrorType, severity ErrorSeverity, code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Severity:  severity,
		Type:      errorType,
		Context:   make(map[string]interface{}),
	}
}

// NewLexicalError creates a tokenizer diagnostic at the given position
func NewLexicalError(code, message string, line, col int) *Error {
	return newError(ErrorTypeLexical, SeverityError, code, message).WithPosition(line, col)
}

// NewConfigError creates a configuration error
func NewConfigError(code, message string) *Error {
	return newError(ErrorTypeConfig, SeverityError, code, message)
}

// NewScriptError creates an error raised while loading or running predicate scripts
func NewScriptError(code, message string) *Error {
	return newError(ErrorTypeScript, SeverityError, code, message)
}

// NewSystemError creates a new system error
func NewSystemError(code, message string) *Error {
	return newError(ErrorTypeSystem, SeverityError, code, message)
}

// NewUserError creates a new user error
func NewUserError(code, message string) *Error {
	return newError(ErrorTypeUser, SeverityInfo, code, message)
}

// WrapError wraps an existing error into a system error
func WrapError(err error, code, message string) *Error {
	return NewSystemError(code, message).Wrap(err)
}

// AsError extracts an *Error from an error chain
func AsError(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// IsType reports whether any *Error in the chain has the given type
func IsType(err error, errorType ErrorType) bool {
	if e, ok := AsError(err); ok {
		return e.Type == errorType
	}
	return false
}
