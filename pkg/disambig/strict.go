package disambig

const (
	doubleQuotedUseStrict = `"use strict"`
	singleQuotedUseStrict = `'use strict'`
)

// StrictModeTracker keeps one strict flag per open brace scope.
//
// OnScopeExit restores the flag of the scope being closed rather than the
// flag of the enclosing scope. Callers that need the enclosing value should
// query IsStrict after the next OnScopeEnter.
type StrictModeTracker struct {
	scopes        []bool
	current       bool
	defaultStrict bool
}

// NewStrictModeTracker creates a tracker whose default (and initial) flag is defaultStrict
func NewStrictModeTracker(defaultStrict bool) *StrictModeTracker {
	return &StrictModeTracker{
		scopes:        make([]bool, 0, 16),
		current:       defaultStrict,
		defaultStrict: defaultStrict,
	}
}

// SetDefault replaces the default flag and resets the current flag to it.
// Only meaningful before the first token is processed.
func (s *StrictModeTracker) SetDefault(strict bool) {
	s.defaultStrict = strict
	s.current = strict
}

// Default returns the configured default flag
func (s *StrictModeTracker) Default() bool {
	return s.defaultStrict
}

// OnScopeEnter opens a scope that inherits strictness from the enclosing one.
func (s *StrictModeTracker) OnScopeEnter() {
	flag := s.defaultStrict
	if n := len(s.scopes); n > 0 && s.scopes[n-1] {
		flag = true
	}
	s.scopes = append(s.scopes, flag)
	s.current = flag
}

// OnScopeExit closes the innermost scope. Unbalanced exits fall back to the default flag.
func (s *StrictModeTracker) OnScopeExit() {
	n := len(s.scopes)
	if n == 0 {
		s.current = s.defaultStrict
		return
	}
	s.current = s.scopes[n-1]
	s.scopes = s.scopes[:n-1]
}

// OnDirectivePrologueCandidate marks the current scope strict when text is a
// "use strict" directive. It reports whether the directive was applied.
func (s *StrictModeTracker) OnDirectivePrologueCandidate(text string) bool {
	if text != doubleQuotedUseStrict && text != singleQuotedUseStrict {
		return false
	}
	if n := len(s.scopes); n > 0 {
		s.scopes = s.scopes[:n-1]
	}
	s.current = true
	s.scopes = append(s.scopes, true)
	return true
}

// IsStrict returns the strict flag currently in effect
func (s *StrictModeTracker) IsStrict() bool {
	return s.current
}

// Depth returns the number of open scopes
func (s *StrictModeTracker) Depth() int {
	return len(s.scopes)
}
