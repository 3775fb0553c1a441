package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Key trims and collapses whitespace in an identifier or category value.
// Returns "" if the input is nil or blank.
func Key(v *string) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return ""
	}
	return multiSpace.ReplaceAllString(s, " ")
}

// KeyString is Key for non-nullable columns.
func KeyString(s string) string {
	return Key(&s)
}
