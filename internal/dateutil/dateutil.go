// Package dateutil renders the catalog's added_at timestamps for display.
// Stored values come in mixed shapes: some carry timezone info, older rows
// are bare "YYYY-MM-DD HH:MM:SS" strings that were written as UTC.
package dateutil

import (
	"regexp"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

const displayLayout = "02.01.2006, 15:04"

var tzSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

var berlin = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		return time.UTC
	}
	return loc
})

// Normalize rewrites a stored timestamp into RFC 3339 shape: the separating
// space becomes 'T' and values without timezone info get a 'Z' appended,
// because tz-less rows were stored as UTC.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || tzSuffix.MatchString(s) {
		return s
	}
	if strings.Contains(s, " ") && !strings.Contains(s, "T") {
		s = strings.Replace(s, " ", "T", 1)
	}
	if !tzSuffix.MatchString(s) {
		s += "Z"
	}
	return s
}

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
}

// Parse returns the UTC instant for a stored timestamp. Absent or
// unparseable input maps to the Unix epoch so that "newest first" orderings
// place it last.
func Parse(s *string) time.Time {
	epoch := time.Unix(0, 0).UTC()
	if s == nil {
		return epoch
	}
	norm := Normalize(*s)
	if norm == "" {
		return epoch
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, norm); err == nil {
			return t.UTC()
		}
	}
	return epoch
}

// Format renders a stored timestamp in the household's display timezone
// (Europe/Berlin), or a dash when there is nothing to show.
func Format(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return "—"
	}
	norm := Normalize(*s)
	var parsed time.Time
	var err error
	for _, layout := range parseLayouts {
		parsed, err = time.Parse(layout, norm)
		if err == nil {
			break
		}
	}
	if err != nil {
		return "—"
	}
	return parsed.In(berlin()).Format(displayLayout)
}

// Stamp formats an instant the way the store writes added_at: a tz-less
// second-resolution UTC string, matching what the backend's own
// CURRENT_TIMESTAMP would produce.
func Stamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
