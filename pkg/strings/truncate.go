// Package strings holds string helpers for terminal output.
package strings

import (
	"strings"
)

// DefaultColumnMaxLen is the width table cells holding free text are
// shortened to.
const DefaultColumnMaxLen = 60

// minTruncateLen leaves room for one character and the ellipsis.
const minTruncateLen = 4

// Truncate collapses whitespace in s to single spaces and shortens the result
// to maxLen runes, ending in "..." when something was cut.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// TruncateList joins items with ", " and truncates the result.
func TruncateList(items []string, maxLen int) string {
	return Truncate(strings.Join(items, ", "), maxLen)
}
