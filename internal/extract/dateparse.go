package extract

import (
	"regexp"
	"strings"
	"time"
)

// Date normalization is deterministic and local: the model only points
// at date-bearing phrases, it never produces the canonical form.

// ordinalSuffix matches "1st", "22nd", "3rd", "15th" day numbers
var ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)

// dateLayouts are tried in order against the cleaned raw string.
// Two-digit years follow the Go convention: 00-68 resolve to 20xx,
// 69-99 to 19xx.
var dateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"2 January, 2006",
	"2 Jan, 2006",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"1-2-2006",
	"01/02/06",
	"1/2/06",
	"January 2, 06",
}

// NormalizeDate converts a raw date phrase to an ISO 8601 calendar
// date (YYYY-MM-DD). Normalizing an already-ISO date yields the same
// value. The second return value is false when the phrase cannot be
// parsed; such dates are dropped from results rather than emitted
// malformed.
func NormalizeDate(raw string) (string, bool) {
	cleaned := cleanDatePhrase(raw)
	if cleaned == "" {
		return "", false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

// cleanDatePhrase strips ordinal suffixes and connective filler so
// "the 15th day of January, 2024" parses as "January 15, 2024"
func cleanDatePhrase(raw string) string {
	s := strings.TrimSpace(raw)

	// "1st of March, 2024" -> "1 of March, 2024"
	s = ordinalSuffix.ReplaceAllString(s, "$1")

	// Drop filler tokens from legal long form
	for _, filler := range []string{" day of ", " of "} {
		s = strings.ReplaceAll(s, filler, " ")
	}
	s = strings.TrimPrefix(s, "the ")
	s = strings.TrimPrefix(s, "this ")

	// Collapse whitespace left behind
	s = strings.Join(strings.Fields(s), " ")

	// "15 January 2024" needs no comma handling; "January 15, 2024"
	// keeps its comma for the layout match
	return s
}
