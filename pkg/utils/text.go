// Package utils provides shared utilities for text formatting and logging.
package utils

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Truncate returns s truncated to maxLen characters, with "..." appended if truncated.
// If maxLen is 0 or negative, returns s unchanged.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// OneLine collapses runs of whitespace, including newlines, into single spaces.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatSize renders a byte count in megabytes with two decimals, e.g. "1.50 MB".
func FormatSize(n int64) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
