// Package retensi computes retention windows for archives. Dates are calendar
// dates; time of day is ignored.
package retensi

import (
	"strings"
	"time"
)

const (
	// DisplayLayout is day-month-year, as printed on screens and memos.
	DisplayLayout = "02-01-2006"

	// StorageLayout is year-month-day, as stored and compared.
	StorageLayout = "2006-01-02"
)

// ParseDate accepts either layout. The second return is false for blank or
// unparseable input.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) > len(StorageLayout) {
		// Tolerate timestamps such as "2023-12-31T00:00:00Z" or "2023-12-31 00:00:00".
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return toDate(t), true
		}
		s = s[:len(StorageLayout)]
	}

	for _, layout := range []string{StorageLayout, DisplayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func toDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsExpired reports whether now falls on a calendar day strictly after
// activeEnd. Missing or unparseable dates are never expired.
func IsExpired(activeEnd string, now time.Time) bool {
	end, ok := ParseDate(activeEnd)
	if !ok {
		return false
	}

	return toDate(now).After(end)
}

type Period struct {
	Start time.Time
	End   time.Time
}

func (p Period) StorageStart() string { return p.Start.Format(StorageLayout) }
func (p Period) StorageEnd() string   { return p.End.Format(StorageLayout) }
func (p Period) DisplayStart() string { return p.Start.Format(DisplayLayout) }
func (p Period) DisplayEnd() string   { return p.End.Format(DisplayLayout) }

// DeriveInactivePeriod starts the inactive period on Jan 1 of the year after
// activeEnd and ends it on Dec 31 of start year + years - 1. The second return
// is false when activeEnd is missing or unparseable or years is negative.
func DeriveInactivePeriod(activeEnd string, years int) (Period, bool) {
	end, ok := ParseDate(activeEnd)
	if !ok || years < 0 {
		return Period{}, false
	}

	startYear := end.Year() + 1
	return Period{
		Start: time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(startYear+years-1, time.December, 31, 0, 0, 0, 0, time.UTC),
	}, true
}
