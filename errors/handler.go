package errors

import (
	"fmt"
	"strings"
)

// ErrorOption is a function that modifies an Error
type ErrorOption func(*Error)

// WithSeverityOption sets the severity level for the error
func WithSeverityOption(severity ErrorSeverity) ErrorOption {
	return func(e *Error) {
		e.Severity = severity
	}
}

// WithContextOption adds context information to the error
func WithContextOption(key string, value interface{}) ErrorOption {
	return func(e *Error) {
		if e.Context == nil {
			e.Context = make(map[string]interface{})
		}
		e.Context[key] = value
	}
}

// Collector accumulates diagnostics for one source unit.
// It is not safe for concurrent use; each unit owns its own collector.
type Collector struct {
	source string
	items  []*Error
}

// NewCollector creates a collector that stamps every diagnostic with source
func NewCollector(source string) *Collector {
	return &Collector{source: source}
}

// Add records err, converting plain errors into system errors
func (c *Collector) Add(err error, options ...ErrorOption) *Error {
	if err == nil {
		return nil
	}

	e, ok := AsError(err)
	if !ok {
		e = WrapError(err, "UNKNOWN_ERROR", err.Error())
	}
	if e.Source == "" {
		e.Source = c.source
	}
	for _, option := range options {
		option(e)
	}

	c.items = append(c.items, e)
	return e
}

// Errors returns the collected diagnostics in insertion order
func (c *Collector) Errors() []*Error {
	return c.items
}

// Len returns the number of collected diagnostics
func (c *Collector) Len() int {
	return len(c.items)
}

// HasErrors reports whether any diagnostic has at least error severity
func (c *Collector) HasErrors() bool {
	for _, e := range c.items {
		if e.Severity == SeverityError || e.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Err returns nil when nothing was collected, otherwise a combined error
func (c *Collector) Err() error {
	switch len(c.items) {
	case 0:
		return nil
	case 1:
		return c.items[0]
	}

	messages := make([]string, 0, len(c.items))
	for _, e := range c.items {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("%d errors:\n  %s", len(c.items), strings.Join(messages, "\n  "))
}
