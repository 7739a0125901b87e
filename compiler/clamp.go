// ABOUTME: Character budgets for free-text prompt fields
// ABOUTME: Truncates with a trailing ellipsis so output never exceeds the budget
package compiler

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const ellipsis = "…"

// Clamp trims s and, when it is longer than max characters, cuts it to
// max-1 characters plus an ellipsis. Lengths are counted in runes.
func Clamp(s string, max int) string {
	if s == "" || max < 1 {
		return ""
	}

	t := strings.TrimSpace(s)
	if utf8.RuneCountInString(t) <= max {
		return t
	}

	runes := []rune(t)
	cut := strings.TrimRightFunc(string(runes[:max-1]), unicode.IsSpace)
	return cut + ellipsis
}
