package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Common date formats found in claims extracts.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"20060102",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate attempts to parse a date string in multiple common formats,
// falling back to dateparse for anything else.
// Returns nil if the input is nil, empty, or unparseable.
func ParseDate(v *string) *time.Time {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return &t
	}
	return nil
}
