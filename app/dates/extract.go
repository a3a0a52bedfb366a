package dates

import (
	"regexp"
	"time"

	"github.com/araddon/dateparse"
)

// Deadline fields in conference listings are narrative text with dates
// embedded mid-sentence ("Abstracts due: August 7, 2024"). Only the
// "<Month> <D>, <YYYY>" shape is treated as a candidate; day ranges like
// "November 4-8, 2024" are deliberately not matched.
var embeddedDateRe = regexp.MustCompile(`[A-Za-z]+ \d{1,2}, \d{4}`)

// ExtractDates returns every candidate date substring found in free text,
// in source order. Zero matches is a normal outcome.
func ExtractDates(text string) []string {
	return embeddedDateRe.FindAllString(text, -1)
}

// ParseLoose parses a single candidate date string leniently and truncates
// the result to a UTC calendar day. Unlike ParseRange it tolerates format
// drift (abbreviated months, ordinal suffixes, varying separators), since
// extraction is pattern-based and upstream text is unreliable.
func ParseLoose(s string) (time.Time, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, &FormatError{Input: s, Reason: err.Error()}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
