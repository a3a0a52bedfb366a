// Package dates normalizes the free-text date formats found in
// human-authored conference listings.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ISODay is the canonical calendar-day layout used throughout the service.
const ISODay = "2006-01-02"

// FormatError reports input that cannot be decomposed into valid calendar
// dates. It is matchable with errors.As through wrapped errors.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("cannot parse %q: %s", e.Input, e.Reason)
}

// Range is a normalized start/end calendar date pair. Both dates are
// midnight UTC; no time-of-day or zone semantics are carried.
type Range struct {
	Start time.Time
	End   time.Time
}

func (r Range) StartISO() string {
	return r.Start.Format(ISODay)
}

func (r Range) EndISO() string {
	return r.End.Format(ISODay)
}

var (
	trailingYearRe = regexp.MustCompile(`(\d{4})\s*$`)
	monthCaser     = cases.Title(language.English)
)

// ParseRange converts a free-text date range such as
// "February 25 – March 4, 2025" or "August 7-8, 2024" into a normalized
// start/end pair. Listings are inconsistent about dash characters, end-month
// repetition and year placement: the end segment may omit the month (borrowed
// from the start segment) and the year may appear on either segment (resolved
// end segment first, then start segment). Conference ranges never span a year
// boundary, so a single year is applied to both sides.
func ParseRange(s string) (Range, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Range{}, &FormatError{Input: s, Reason: "empty input"}
	}

	// Prefer the en-dash: listings that use it also use ASCII hyphens
	// inside segments (e.g. ISO dates), so the en-dash is authoritative.
	sep := "–"
	if !strings.Contains(raw, sep) {
		sep = "-"
	}
	parts := strings.SplitN(raw, sep, 2)
	if len(parts) != 2 {
		return Range{}, &FormatError{Input: s, Reason: "expected a dash-separated range"}
	}
	startSeg := strings.TrimSpace(parts[0])
	endSeg := strings.TrimSpace(parts[1])
	if startSeg == "" || endSeg == "" {
		return Range{}, &FormatError{Input: s, Reason: "expected two non-empty date segments"}
	}

	// Already-normalized ranges ("2025-02-25 – 2025-03-04") round-trip
	// without the month/day reassembly below.
	if start, err := time.Parse(ISODay, startSeg); err == nil {
		if end, err := time.Parse(ISODay, endSeg); err == nil {
			return Range{Start: start, End: end}, nil
		}
	}

	year, err := resolveYear(s, endSeg, startSeg)
	if err != nil {
		return Range{}, err
	}

	startMonth, startDay, err := splitMonthDay(s, startSeg)
	if err != nil {
		return Range{}, err
	}

	endMonth, endDay := splitEndSegment(endSeg, startMonth)
	if endDay == "" {
		return Range{}, &FormatError{Input: s, Reason: "end segment has no day"}
	}

	start, err := parseAssembled(s, startMonth, startDay, year)
	if err != nil {
		return Range{}, err
	}
	end, err := parseAssembled(s, endMonth, endDay, year)
	if err != nil {
		return Range{}, err
	}

	return Range{Start: start, End: end}, nil
}

// resolveYear extracts a trailing 4-digit year, checking the end segment
// first and falling back to the start segment.
func resolveYear(input, endSeg, startSeg string) (string, error) {
	if m := trailingYearRe.FindStringSubmatch(endSeg); m != nil {
		return m[1], nil
	}
	if m := trailingYearRe.FindStringSubmatch(startSeg); m != nil {
		return m[1], nil
	}
	return "", &FormatError{Input: input, Reason: "no 4-digit year in either segment"}
}

// splitMonthDay decomposes a "<Month> <Day>" segment. A trailing year or
// comma on the day token is discarded.
func splitMonthDay(input, seg string) (string, string, error) {
	fields := strings.Fields(seg)
	if len(fields) < 2 {
		return "", "", &FormatError{Input: input, Reason: fmt.Sprintf("segment %q is not of the form <month> <day>", seg)}
	}
	return fields[0], strings.TrimSuffix(fields[1], ","), nil
}

// splitEndSegment decomposes the end segment, which takes one of three
// shapes: "<Month> <Day>" (cross-month), "<Day>" with the year stripped
// (same-month), or a bare "<Day>" (single-day range like "7-8"). The start
// month is borrowed whenever the end segment names none.
func splitEndSegment(seg, startMonth string) (string, string) {
	core := strings.TrimSpace(trailingYearRe.ReplaceAllString(seg, ""))
	core = strings.TrimSpace(strings.TrimSuffix(core, ","))

	if core == "" {
		return startMonth, ""
	}

	fields := strings.Fields(core)
	if len(fields) == 1 {
		tok := strings.TrimSuffix(fields[0], ",")
		if isNumeric(tok) {
			return startMonth, tok
		}
		return fields[0], ""
	}

	first := strings.TrimSuffix(fields[0], ",")
	second := strings.TrimSuffix(fields[1], ",")
	if isNumeric(first) {
		return startMonth, first
	}
	return first, second
}

// parseAssembled builds "<Month> <Day>, <Year>" and parses it strictly.
// Month tokens are title-cased first so "FEBRUARY" and "february" both
// resolve; full and abbreviated month names are accepted.
func parseAssembled(input, month, day, year string) (time.Time, error) {
	assembled := fmt.Sprintf("%s %s, %s", monthCaser.String(strings.ToLower(month)), day, year)

	for _, layout := range []string{"January 2, 2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, assembled); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &FormatError{Input: input, Reason: fmt.Sprintf("%q is not a valid calendar date", assembled)}
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
