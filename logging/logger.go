package logging

import (
	"fmt"
	"jsctx/errors"
	"os"
	"runtime"
	"strings"
	"time"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// LookupLevel converts a configuration string into a LogLevel
func LookupLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "fatal":
		return LevelFatal, true
	}
	return LevelInfo, false
}

// ParseLevel is LookupLevel with unknown values falling back to LevelInfo
func ParseLevel(levelStr string) LogLevel {
	level, _ := LookupLevel(levelStr)
	return level
}

// LogField represents a key-value pair for structured logging
type LogField struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Error     error                  `json:"error,omitempty"`
	Component string                 `json:"component,omitempty"`
}

// Logger defines the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...LogField)
	Info(msg string, fields ...LogField)
	Warn(msg string, fields ...LogField)
	Error(msg string, fields ...LogField)

	// ErrorWithPosition logs an error message with position information
	ErrorWithPosition(msg string, line, column int, fields ...LogField)

	// LogError logs err, expanding code and position when it is an *errors.Error
	LogError(err error, fields ...LogField)

	WithFields(fields ...LogField) Logger
	WithError(err error) Logger
	WithComponent(component string) Logger

	SetLevel(level LogLevel)
	GetLevel() LogLevel
	Enabled(level LogLevel) bool
}

// Formatter defines the interface for log formatting
type Formatter interface {
	// Format formats a log entry into a byte slice
	Format(entry *LogEntry) ([]byte, error)

	// GetName returns the name of the formatter
	GetName() string
}

// Writer defines the interface for log output
type Writer interface {
	Write(data []byte) error
	Flush() error
	Close() error
	GetName() string
}

// LoggerConfig contains configuration for the logger
type LoggerConfig struct {
	Level      LogLevel
	Formatters []Formatter
	Writers    []Writer
	CallerSkip int
}

// DefaultLogger is the default implementation of Logger
type DefaultLogger struct {
	level      *LogLevel
	fields     map[string]interface{}
	error      error
	component  string
	formatters []Formatter
	writers    []Writer
	callerSkip int
}

// NewDefaultLogger creates a logger writing text to stderr at info level
func NewDefaultLogger() *DefaultLogger {
	return NewDefaultLoggerWithConfig(LoggerConfig{
		Level:      LevelInfo,
		Formatters: []Formatter{NewTextFormatter()},
		Writers:    []Writer{NewConsoleWriter(os.Stderr)},
	})
}

// NewDefaultLoggerWithConfig creates a new default logger with configuration
func NewDefaultLoggerWithConfig(config LoggerConfig) *DefaultLogger {
	level := config.Level
	logger := &DefaultLogger{
		level:      &level,
		fields:     make(map[string]interface{}),
		formatters: config.Formatters,
		writers:    config.Writers,
		callerSkip: config.CallerSkip,
	}

	if logger.formatters == nil {
		logger.formatters = []Formatter{NewJSONFormatter()}
	}
	if logger.writers == nil {
		logger.writers = []Writer{NewConsoleWriter(os.Stderr)}
	}
	if logger.callerSkip == 0 {
		logger.callerSkip = 3
	}

	return logger
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *DefaultLogger {
	return NewDefaultLoggerWithConfig(LoggerConfig{
		Level:   LevelFatal + 1,
		Writers: []Writer{},
	})
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, fields ...LogField) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, fields ...LogField) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, fields ...LogField) {
	l.log(LevelWarning, msg, fields...)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, fields ...LogField) {
	l.log(LevelError, msg, fields...)
}

// ErrorWithPosition logs an error message with position information
func (l *DefaultLogger) ErrorWithPosition(msg string, line, column int, fields ...LogField) {
	posFields := append(fields, LogField{Key: "line", Value: line}, LogField{Key: "column", Value: column})
	l.log(LevelError, msg, posFields...)
}

// LogError logs an error, expanding structured details when available
func (l *DefaultLogger) LogError(err error, fields ...LogField) {
	if err == nil {
		return
	}

	if e, ok := errors.AsError(err); ok {
		posFields := append(fields,
			LogField{Key: "error_code", Value: e.Code},
			LogField{Key: "error_type", Value: string(e.Type)})
		if e.Line > 0 {
			posFields = append(posFields,
				LogField{Key: "line", Value: e.Line},
				LogField{Key: "column", Value: e.Col})
		}
		if e.Source != "" {
			posFields = append(posFields, LogField{Key: "source", Value: e.Source})
		}
		level := LevelError
		if e.Severity == errors.SeverityWarning || e.Severity == errors.SeverityInfo {
			level = LevelWarning
		}
		l.log(level, e.Message, posFields...)
		return
	}

	errorFields := append(fields, LogField{Key: "error", Value: err.Error()})
	l.log(LevelError, err.Error(), errorFields...)
}

// WithFields returns a new logger with the specified fields
func (l *DefaultLogger) WithFields(fields ...LogField) Logger {
	newLogger := l.copy()
	for _, field := range fields {
		newLogger.fields[field.Key] = field.Value
	}
	return newLogger
}

// WithError returns a new logger with the specified error
func (l *DefaultLogger) WithError(err error) Logger {
	newLogger := l.copy()
	newLogger.error = err
	return newLogger
}

// WithComponent returns a new logger with the specified component
func (l *DefaultLogger) WithComponent(component string) Logger {
	newLogger := l.copy()
	newLogger.component = component
	return newLogger
}

// SetLevel sets the minimum log level. Derived loggers share the level.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	*l.level = level
}

// GetLevel returns the current minimum log level
func (l *DefaultLogger) GetLevel() LogLevel {
	return *l.level
}

// Enabled reports whether messages at level would be written
func (l *DefaultLogger) Enabled(level LogLevel) bool {
	return level >= *l.level
}

// Close flushes and closes every writer
func (l *DefaultLogger) Close() error {
	l.flush()
	var firstErr error
	for _, writer := range l.writers {
		if err := writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// log is the internal logging method
func (l *DefaultLogger) log(level LogLevel, msg string, fields ...LogField) {
	if !l.Enabled(level) {
		return
	}

	entry := &LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    make(map[string]interface{}),
		Caller:    l.getCaller(),
		Component: l.component,
		Error:     l.error,
	}

	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	for _, formatter := range l.formatters {
		data, err := formatter.Format(entry)
		if err != nil {
			errorMsg := fmt.Sprintf("Failed to format log entry: %v - Original message: %s\n", err, msg)
			l.writeToAllWriters([]byte(errorMsg))
			continue
		}

		l.writeToAllWriters(data)
	}
}

// writeToAllWriters writes data to all writers
func (l *DefaultLogger) writeToAllWriters(data []byte) {
	for _, writer := range l.writers {
		if err := writer.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write log: %v\n", err)
		}
	}
}

// flush flushes all writers
func (l *DefaultLogger) flush() {
	for _, writer := range l.writers {
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush log writer: %v\n", err)
		}
	}
}

// copy creates a copy of the logger
func (l *DefaultLogger) copy() *DefaultLogger {
	newLogger := &DefaultLogger{
		level:      l.level,
		fields:     make(map[string]interface{}, len(l.fields)),
		error:      l.error,
		component:  l.component,
		formatters: l.formatters,
		writers:    l.writers,
		callerSkip: l.callerSkip,
	}

	for k, v := range l.fields {
		newLogger.fields[k] = v
	}

	return newLogger
}

// getCaller returns the caller information
func (l *DefaultLogger) getCaller() string {
	_, file, line, ok := runtime.Caller(l.callerSkip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", file, line)
}

// Field creates a new field
func Field(key string, value interface{}) LogField {
	return LogField{Key: key, Value: value}
}

// StringField creates a new string field
func StringField(key, value string) LogField {
	return LogField{Key: key, Value: value}
}

// IntField creates a new int field
func IntField(key string, value int) LogField {
	return LogField{Key: key, Value: value}
}

// BoolField creates a new bool field
func BoolField(key string, value bool) LogField {
	return LogField{Key: key, Value: value}
}

// ErrorField creates a new error field
func ErrorField(key string, value error) LogField {
	return LogField{Key: key, Value: value.Error()}
}

// DurationField creates a new duration field
func DurationField(key string, value time.Duration) LogField {
	return LogField{Key: key, Value: value.String()}
}
