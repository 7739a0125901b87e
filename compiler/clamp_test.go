// ABOUTME: Tests for field clamping
// ABOUTME: Covers truncation, ellipsis placement and the character budget guarantee
package compiler

import (
	"testing"
	"testing/quick"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "hello", Clamp("  hello \n", 10))
	assert.Equal(t, "hello", Clamp("hello", 5))
}

func TestClampTruncatesWithEllipsis(t *testing.T) {
	assert.Equal(t, "abc…", Clamp("abcdef", 4))
	assert.Equal(t, "ab…", Clamp("ab cdef", 4), "whitespace before the cut is trimmed")
	assert.Equal(t, "…", Clamp("abcdef", 1))
	assert.Equal(t, "héé…", Clamp("hééééé", 4), "budget counts characters, not bytes")
}

func TestClampEmptyAndInvalidBudget(t *testing.T) {
	assert.Equal(t, "", Clamp("", 10))
	assert.Equal(t, "", Clamp("   ", 10))
	assert.Equal(t, "", Clamp("abc", 0))
}

func TestClampNeverExceedsBudget(t *testing.T) {
	prop := func(s string, n uint8) bool {
		max := int(n%200) + 1
		return utf8.RuneCountInString(Clamp(s, max)) <= max
	}
	require.NoError(t, quick.Check(prop, nil))
}
