package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"iso date", "2025-04-04", "2025-04-04", true},
		{"iso timestamp zulu", "2025-04-04T14:17:00Z", "2025-04-04", true},
		{"iso timestamp offset", "2025-04-04T14:17:00-05:00", "2025-04-04", true},
		{"iso timestamp no zone", "2025-04-04T14:17:00", "2025-04-04", true},
		{"us slash format", "04/09/2025", "2025-04-09", true},
		{"empty", "", "", false},
		{"unknown sentinel", "Unknown", "", false},
		{"garbage", "not a date", "", false},
		{"month name", "Apr 4, 2025", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
				assert.Equal(t, time.UTC, got.Location())
			}
		})
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2018-06-01", FormatDate("06/01/2018"))
	assert.Equal(t, "2025-04-04", FormatDate("2025-04-04T14:17:00Z"))
	assert.Equal(t, model.DateUnknown, FormatDate(""))
	assert.Equal(t, model.DateUnknown, FormatDate("n/a"))
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.FilingStatus
	}{
		{"active", model.FilingActive},
		{"ACTIVE", model.FilingActive},
		{"Filed", model.FilingActive},
		{"current", model.FilingActive},
		{"valid", model.FilingActive},
		{"lapsed", model.FilingLapsed},
		{"Expired", model.FilingLapsed},
		{"INACTIVE", model.FilingLapsed},
		{"terminated", model.FilingTerminated},
		{"Cancelled", model.FilingTerminated},
		{"discharged", model.FilingTerminated},
		{"released", model.FilingTerminated},
		{"", model.FilingUnknown},
		{"  ", model.FilingUnknown},
		{"pending", model.FilingStatus("Pending")},
		// Some jurisdictions report statuses in accented text; the first
		// rune must upcase without byte-level corruption.
		{"éteint", model.FilingStatus("Éteint")},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeStatus(tt.in))
		})
	}
}

// Canonicalizing an already-canonical status must be a no-op.
func TestNormalizeStatusIdempotent(t *testing.T) {
	inputs := []string{"active", "Expired", "CANCELLED", "pending", "", "Filed"}
	for _, in := range inputs {
		once := NormalizeStatus(in)
		twice := NormalizeStatus(string(once))
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestExtractDateFromFileNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"two digit year 1990s", "980000085041", "1998-01-01"},
		{"four digit year with month", "201806358547", "2018-06-01"},
		{"four digit year no month", "200000012910", "2000-01-01"},
		{"two digit year 2000s with month", "040312345678", "2004-03-01"},
		{"two digit year only", "98", "1998-01-01"},
		{"too short", "9", "Unknown"},
		{"empty", "", "Unknown"},
		{"non numeric", "AB-1234", "Unknown"},
		{"four digit year invalid month", "20189935847", "2018-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDateFromFileNumber(tt.in))
		})
	}
}
