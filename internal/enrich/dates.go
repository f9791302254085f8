// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/account-intel/pkg/types"
)

// monthNames only matches capitalised names, so words like "may" and "march"
// in running text are not read as months.
const monthNames = `(?-i:(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sept|Sep|Oct|Nov|Dec))`

// Date patterns, most precise first.
var (
	isoDateRe      = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDayYearRe = regexp.MustCompile(`(?i)\b` + monthNames + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthYearRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+` + monthNames + `\.?,?\s+(\d{4})\b`)
	monthYearRe    = regexp.MustCompile(`(?i)\b` + monthNames + `\.?,?\s+(\d{4})\b`)
	quarterNumRe   = regexp.MustCompile(`(?i)\bQ([1-4])\s*(?:FY\s*)?'?(\d{4})\b`)
	quarterWordRe  = regexp.MustCompile(`(?i)\b(first|second|third|fourth)\s+quarter(?:\s+of)?,?\s+(?:fiscal\s+)?(\d{4})\b`)
	bareYearRe     = regexp.MustCompile(`\b((?:19|20)\d{2})\b`)
)

// yearWindowBack and yearWindowAhead bound which bare years count as a
// publication date relative to the current year.
const (
	yearWindowBack  = 5
	yearWindowAhead = 1
)

var quarterWords = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4}

// ExtractDate returns the most precise date found in text and its precision.
// Patterns are tried from most to least precise and the first match wins, so
// a full date is reported even when a bare year appears earlier in the text.
// When nothing matches the date is empty and precision is unknown.
func (e *Enricher) ExtractDate(text string) (string, types.DatePrecision) {
	for _, m := range isoDateRe.FindAllStringSubmatch(text, -1) {
		if d, ok := buildDate(m[1], m[2], m[3]); ok {
			return d, types.PrecisionExact
		}
	}
	for _, m := range monthDayYearRe.FindAllStringSubmatch(text, -1) {
		if mon, ok := monthNumber(m[1]); ok {
			if d, ok := buildDate(m[3], strconv.Itoa(mon), m[2]); ok {
				return d, types.PrecisionExact
			}
		}
	}
	for _, m := range dayMonthYearRe.FindAllStringSubmatch(text, -1) {
		if mon, ok := monthNumber(m[2]); ok {
			if d, ok := buildDate(m[3], strconv.Itoa(mon), m[1]); ok {
				return d, types.PrecisionExact
			}
		}
	}
	if m := monthYearRe.FindStringSubmatch(text); m != nil {
		if mon, ok := monthNumber(m[1]); ok {
			return fmt.Sprintf("%s-%02d", m[2], mon), types.PrecisionMonth
		}
	}
	if m := quarterNumRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("Q%s %s", m[1], m[2]), types.PrecisionQuarter
	}
	if m := quarterWordRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("Q%d %s", quarterWords[strings.ToLower(m[1])], m[2]), types.PrecisionQuarter
	}

	current := e.now().Year()
	for _, m := range bareYearRe.FindAllStringSubmatch(text, -1) {
		y, _ := strconv.Atoi(m[1])
		if y >= current-yearWindowBack && y <= current+yearWindowAhead {
			return m[1], types.PrecisionYear
		}
	}
	return "", types.PrecisionUnknown
}

// buildDate validates a year/month/day triple and formats it as YYYY-MM-DD.
func buildDate(year, month, day string) (string, bool) {
	y, err1 := strconv.Atoi(year)
	mo, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return "", false
	}
	if mo < 1 || mo > 12 || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes Feb 30 into March; reject such dates.
	if t.Day() != d {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// monthNumber maps a full or abbreviated English month name to 1..12.
func monthNumber(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	if len(name) < 3 {
		return 0, false
	}
	if name == "sept" {
		name = "sep"
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return int(m), true
		}
	}
	return 0, false
}
