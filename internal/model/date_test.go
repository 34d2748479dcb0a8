package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string // ISO rendering of the parsed date
		ok   bool
	}{
		{"iso", "2024-01-15", "2024-01-15", true},
		{"dmy", "15-01-2024", "2024-01-15", true},
		{"rfc3339", "2024-01-15T00:00:00Z", "2024-01-15", true},
		{"empty", "", "", false},
		{"garbage", "yesterday", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, FormatISO(got))
			}
		})
	}
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "15/01/2024", FormatDisplay("2024-01-15"))
	assert.Equal(t, "15/01/2024", FormatDisplay("15-01-2024"))
	// Unparseable input passes through untouched.
	assert.Equal(t, "n/a", FormatDisplay("n/a"))
}

func TestMonthLabel(t *testing.T) {
	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Mar 2024", MonthLabel(d))
}
