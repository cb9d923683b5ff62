package gopdm

import (
	"strings"
	"unicode"
)

// Reserved record keys. They can never be used as field keywords.
const (
	ClassKey = "Class"
	UUIDKey  = "UUID"
)

// IsValidKeyword reports whether s can name a field, class or method.
// Keywords are non-empty, do not start with a digit or punctuation, do not
// start with "xml" (any case) and contain no whitespace.
func IsValidKeyword(s string) bool {
	if s == "" {
		return false
	}
	first := []rune(s)[0]
	if unicode.IsDigit(first) || unicode.IsPunct(first) || unicode.IsSymbol(first) {
		return false
	}
	if len(s) >= 3 && strings.EqualFold(s[:3], "xml") {
		return false
	}
	return strings.IndexFunc(s, unicode.IsSpace) < 0
}

func isReservedKeyword(s string) bool { return s == ClassKey || s == UUIDKey }
