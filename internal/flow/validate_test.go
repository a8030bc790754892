package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndDate(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"01.01.2030", true, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"15.03.2025", true, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{" 15.03.2025 ", true, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"2030-01-01", false, time.Time{}},
		{"31.02.2030", false, time.Time{}},
		{"", false, time.Time{}},
		{"1.1.2030", false, time.Time{}},
		{"15/03/2025", false, time.Time{}},
		{"15.03.25", false, time.Time{}},
		{"tomorrow", false, time.Time{}},
	}
	for _, tc := range cases {
		got, err := ParseEndDate(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			assert.True(t, got.Equal(tc.want), "input %q: got %v", tc.in, got)
		} else {
			assert.Error(t, err, "input %q must be rejected", tc.in)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want string
	}{
		{"+79991234567", true, "+79991234567"},
		{"79991234567", true, "+79991234567"},
		{"8 (999) 123-45-67", true, "+89991234567"},
		{"+7 999 123 45 67", true, "+79991234567"},
		{"hello", false, ""},
		{"", false, ""},
		{"+1234", false, ""},
		{"12345678901234567890", false, ""},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.ok {
			require.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		} else {
			assert.Error(t, err, "input %q must be rejected", tc.in)
		}
	}
}
