// Package normalize reconciles heterogeneous per-jurisdiction UCC filing
// records into the canonical shape the scoring engine consumes.
package normalize

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// dateLayouts are tried in order by ParseDate. Source systems emit ISO
// timestamps, bare ISO dates, and US-style dates.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006",
}

// ParseDate parses a date string from any supported source format into a
// UTC time. It never errors: empty or unparseable input reports ok=false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == model.DateUnknown {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a date in canonical ISO form, or the Unknown sentinel
// when the input could not be parsed.
func FormatDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return model.DateUnknown
	}
	return t.Format("2006-01-02")
}

// statusAliases maps lowercased source status strings to canonical values.
var statusAliases = map[string]model.FilingStatus{
	"active":     model.FilingActive,
	"filed":      model.FilingActive,
	"current":    model.FilingActive,
	"valid":      model.FilingActive,
	"lapsed":     model.FilingLapsed,
	"expired":    model.FilingLapsed,
	"inactive":   model.FilingLapsed,
	"terminated": model.FilingTerminated,
	"cancelled":  model.FilingTerminated,
	"discharged": model.FilingTerminated,
	"released":   model.FilingTerminated,
}

// NormalizeStatus maps a free-text filing status onto the canonical set.
// Unrecognized statuses are passed through capitalized, so applying the
// function twice is a no-op.
func NormalizeStatus(s string) model.FilingStatus {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return model.FilingUnknown
	}
	if status, ok := statusAliases[strings.ToLower(trimmed)]; ok {
		return status
	}
	return model.FilingStatus(capitalize(trimmed))
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// ExtractDateFromFileNumber recovers an approximate filing date from a
// filing number that encodes the year (and sometimes month) in its leading
// digits, e.g. "980000085041" -> 1998-01-01 and "201806358547" -> 2018-06-01.
// The day is always 01 and the result is a best-effort estimate, not exact
// provenance. Returns the Unknown sentinel when no plausible year is found.
func ExtractDateFromFileNumber(fileNumber string) string {
	if len(fileNumber) < 2 {
		return model.DateUnknown
	}

	// 4-digit year in [1990, 2099], optionally followed by a month.
	if len(fileNumber) >= 4 {
		if year, ok := atoi(fileNumber[:4]); ok && year >= 1990 && year <= 2099 {
			if len(fileNumber) >= 6 {
				if month, ok := atoi(fileNumber[4:6]); ok && month >= 1 && month <= 12 {
					return fmt.Sprintf("%04d-%02d-01", year, month)
				}
			}
			return fmt.Sprintf("%04d-01-01", year)
		}
	}

	// 2-digit year: 90-99 -> 1990s, 00-89 -> 2000s.
	year, ok := atoi(fileNumber[:2])
	if !ok {
		return model.DateUnknown
	}
	if year >= 90 {
		year += 1900
	} else {
		year += 2000
	}

	if len(fileNumber) >= 4 {
		if month, ok := atoi(fileNumber[2:4]); ok && month >= 1 && month <= 12 {
			return fmt.Sprintf("%04d-%02d-01", year, month)
		}
	}
	return fmt.Sprintf("%04d-01-01", year)
}

// atoi parses a string of ASCII digits. Unlike strconv.Atoi it rejects
// signs and whitespace, which never belong in a filing number segment.
func atoi(s string) (int, bool) {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}
