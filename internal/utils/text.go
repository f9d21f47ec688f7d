package utils

import (
	"strings"
	"unicode/utf8"
)

// NilIfBlank trims s and returns nil when nothing is left, so blank form fields store NULL.
func NilIfBlank(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// ExceedsRunes reports whether s is longer than limit characters.
func ExceedsRunes(s string, limit int) bool {
	return utf8.RuneCountInString(s) > limit
}
