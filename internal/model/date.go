package model

import (
	"strings"
	"time"
)

// The sheet stores dates in two layouts depending on which era of the
// spreadsheet a row was written in.
const (
	dateLayoutISO = "2006-01-02"
	dateLayoutDMY = "02-01-2006"
)

// ParseDate parses a sheet date string. Accepts YYYY-MM-DD and DD-MM-YYYY;
// an empty or unparseable value yields the zero time and false.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// DD-MM-YYYY has a two-character first segment.
	if i := strings.IndexByte(s, '-'); i == 2 {
		if t, err := time.Parse(dateLayoutDMY, s); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(dateLayoutISO, s); err == nil {
		return t, true
	}
	// Full timestamps slip in when the sheet serializes Date cells.
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatISO renders a time as YYYY-MM-DD, the layout used for new records.
func FormatISO(t time.Time) string { return t.Format(dateLayoutISO) }

// FormatDisplay renders a sheet date string as DD/MM/YYYY for human output.
// Unparseable input is returned as-is rather than dropped.
func FormatDisplay(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("02/01/2006")
}

// MonthLabel renders the short month-year label used for ledger buckets,
// e.g. "Jan 2024".
func MonthLabel(t time.Time) string { return t.Format("Jan 2006") }
