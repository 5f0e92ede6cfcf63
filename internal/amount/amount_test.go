package amount

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"grouped with short fraction", "1,234.5", "1234.50", true},
		{"currency symbol integer", "$12", "12.00", true},
		{"long fraction truncates", "12.999", "12.99", true},
		{"plain integer", "1234", "1234.00", true},
		{"two decimals unchanged", "1234.50", "1234.50", true},
		{"non-breaking space grouping", "1 234.50", "1234.50", true},
		{"embedded in label", "Total: $4,321.05 AUD", "4321.05", true},
		{"four digit fraction", "0.1234", "0.12", true},
		{"leading zeros collapse", "007.5", "7.50", true},
		{"zero", "0", "0.00", true},
		{"no digits", "abc", "", false},
		{"empty", "", "", false},
		{"symbols only", "$ ,.", "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Normalize(tc.input)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEqualIsExact(t *testing.T) {
	a, ok := Normalize("1,234.5")
	assert.True(t, ok)
	b, ok := Normalize("1234.50")
	assert.True(t, ok)
	assert.True(t, Equal(a, b))

	c, ok := Normalize("1234.51")
	assert.True(t, ok)
	assert.False(t, Equal(a, c))
}
