package util

import (
	"strings"
	"unicode/utf8"
)

// TruncateRunes cuts s to at most max code points without splitting a rune.
// max <= 0 disables the limit.
func TruncateRunes(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// CleanText drops NUL bytes and replaces invalid UTF-8 sequences, leaving a
// string Postgres TEXT columns and JSON encoders accept.
func CleanText(s string) string {
	if strings.IndexByte(s, 0) >= 0 {
		s = strings.ReplaceAll(s, "\x00", "")
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "\uFFFD")
	}
	return s
}
