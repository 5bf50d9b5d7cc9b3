package disambig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrictModeTracker_Defaults(t *testing.T) {
	assert.False(t, NewStrictModeTracker(false).IsStrict())
	assert.True(t, NewStrictModeTracker(true).IsStrict())

	s := NewStrictModeTracker(false)
	s.SetDefault(true)
	assert.True(t, s.Default())
	assert.True(t, s.IsStrict())
}

func TestStrictModeTracker_NestedScopesInheritStrict(t *testing.T) {
	// { "use strict"; { ... } }
	s := NewStrictModeTracker(false)

	s.OnScopeEnter()
	assert.False(t, s.IsStrict())

	assert.True(t, s.OnDirectivePrologueCandidate(`"use strict"`))
	assert.True(t, s.IsStrict(), "outer scope")

	s.OnScopeEnter()
	assert.True(t, s.IsStrict(), "inner scope")

	s.OnScopeEnter()
	assert.True(t, s.IsStrict(), "inner scopes keep inheriting")

	s.OnScopeExit()
	s.OnScopeExit()
	s.OnScopeExit()
	assert.Equal(t, 0, s.Depth())
}

func TestStrictModeTracker_SiblingScopeDoesNotInherit(t *testing.T) {
	// { "use strict"; } { ... }
	s := NewStrictModeTracker(false)

	s.OnScopeEnter()
	s.OnDirectivePrologueCandidate(`'use strict'`)
	s.OnScopeExit()

	s.OnScopeEnter()
	assert.False(t, s.IsStrict())
	s.OnScopeExit()
	assert.Equal(t, 0, s.Depth())
}

func TestStrictModeTracker_ExitRestoresExitingScopeFlag(t *testing.T) {
	s := NewStrictModeTracker(false)

	s.OnScopeEnter() // outer, non-strict
	s.OnScopeEnter() // inner
	s.OnDirectivePrologueCandidate(`"use strict"`)
	assert.True(t, s.IsStrict())

	// Closing the strict inner scope reports the inner flag, not the outer one.
	s.OnScopeExit()
	assert.True(t, s.IsStrict())
	assert.Equal(t, 1, s.Depth())

	// Closing the non-strict outer scope reports false.
	s.OnScopeExit()
	assert.False(t, s.IsStrict())
}

func TestStrictModeTracker_ExitOnEmptyStackUsesDefault(t *testing.T) {
	s := NewStrictModeTracker(true)
	s.OnDirectivePrologueCandidate(`"use strict"`)
	s.OnScopeExit()
	s.OnScopeExit()
	assert.True(t, s.IsStrict())
	assert.Equal(t, 0, s.Depth())

	s = NewStrictModeTracker(false)
	s.OnScopeExit()
	assert.False(t, s.IsStrict())
	assert.Equal(t, 0, s.Depth())
}

func TestStrictModeTracker_DirectiveAtStartOfInput(t *testing.T) {
	s := NewStrictModeTracker(false)

	s.OnDirectivePrologueCandidate(`"use strict"`)
	assert.True(t, s.IsStrict())
	assert.Equal(t, 1, s.Depth())

	s.OnScopeEnter()
	assert.True(t, s.IsStrict())
}

func TestStrictModeTracker_DirectiveReplacesTopEntry(t *testing.T) {
	s := NewStrictModeTracker(false)
	s.OnScopeEnter()
	s.OnScopeEnter()
	s.OnDirectivePrologueCandidate(`"use strict"`)
	assert.Equal(t, 2, s.Depth())
}

func TestStrictModeTracker_IgnoresOtherLiterals(t *testing.T) {
	for _, text := range []string{
		`"use asm"`,
		`"use  strict"`,
		`'use strict"`,
		`use strict`,
		`"USE STRICT"`,
		`"use\x20strict"`,
	} {
		t.Run(text, func(t *testing.T) {
			s := NewStrictModeTracker(false)
			s.OnScopeEnter()
			assert.False(t, s.OnDirectivePrologueCandidate(text))
			assert.False(t, s.IsStrict())
			assert.Equal(t, 1, s.Depth())
		})
	}
}

func TestStrictModeTracker_ModuleDefault(t *testing.T) {
	s := NewStrictModeTracker(true)
	s.OnScopeEnter()
	assert.True(t, s.IsStrict())
	s.OnScopeExit()
	s.OnScopeEnter()
	assert.True(t, s.IsStrict())
}

func TestStrictModeTracker_BalancedSequencesReturnToZeroDepth(t *testing.T) {
	s := NewStrictModeTracker(false)
	depths := []int{}
	for _, open := range []bool{true, true, false, true, true, false, false, false} {
		if open {
			s.OnScopeEnter()
		} else {
			s.OnScopeExit()
		}
		depths = append(depths, s.Depth())
	}
	assert.Equal(t, []int{1, 2, 1, 2, 3, 2, 1, 0}, depths)
}
