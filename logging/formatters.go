package logging

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// JSONFormatter writes one JSON object per line
type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

type jsonEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component,omitempty"`
	Message   string                 `json:"message"`
	Error     string                 `json:"error,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	out := jsonEntry{
		Timestamp: entry.Timestamp.Format(time.RFC3339),
		Level:     entry.Level.String(),
		Component: entry.Component,
		Message:   entry.Message,
		Caller:    entry.Caller,
		Fields:    entry.Fields,
	}
	if entry.Error != nil {
		out.Error = entry.Error.Error()
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (f *JSONFormatter) GetName() string {
	return "json"
}

// TextFormatter renders "[LEVEL] [component] message at L:C (error: ...) [k=v, ...]".
// The line and column fields are printed next to the message, not in the list.
type TextFormatter struct {
	IncludeTimestamp bool
	ColorOutput      bool
}

func NewTextFormatter() *TextFormatter {
	return &TextFormatter{IncludeTimestamp: true}
}

var levelColors = map[LogLevel]string{
	LevelDebug:   "36",
	LevelInfo:    "32",
	LevelWarning: "33",
	LevelError:   "31",
	LevelFatal:   "35",
}

func (f *TextFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.IncludeTimestamp {
		fmt.Fprintf(&b, "[%s] ", entry.Timestamp.Format("2006-01-02 15:04:05.000"))
	}

	level := entry.Level.String()
	if color, ok := levelColors[entry.Level]; ok && f.ColorOutput {
		level = "\x1b[" + color + "m" + level + "\x1b[0m"
	}
	fmt.Fprintf(&b, "[%s] ", level)

	if entry.Component != "" {
		fmt.Fprintf(&b, "[%s] ", entry.Component)
	}
	b.WriteString(entry.Message)

	if line, ok := entry.Fields["line"].(int); ok {
		fmt.Fprintf(&b, " at %d", line)
		if col, ok := entry.Fields["column"].(int); ok {
			fmt.Fprintf(&b, ":%d", col)
		}
	}
	if entry.Error != nil {
		fmt.Fprintf(&b, " (error: %s)", entry.Error)
	}

	var keys []string
	for key := range entry.Fields {
		if key != "line" && key != "column" {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		b.WriteString(" [")
		for i, key := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", key, entry.Fields[key])
		}
		b.WriteString("]")
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *TextFormatter) GetName() string {
	return "text"
}

// NewFormatter returns the formatter for a logging.format value
func NewFormatter(name string) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return NewTextFormatter(), nil
	case "json":
		return NewJSONFormatter(), nil
	}
	return nil, fmt.Errorf("unknown log format %q", name)
}
