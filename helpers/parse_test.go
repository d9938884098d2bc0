package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected *int
	}{
		{"plain number", "12500", intPtr(12500)},
		{"currency with spaces", "R 12 500", intPtr(12500)},
		{"comma grouping", "1,200", intPtr(1200)},
		{"unit suffix", "95 m²", intPtr(95)},
		{"surrounding text", "Deposit: R9 000 once-off", intPtr(9000)},
		{"no digits", "Price on application", nil},
		{"empty string", "", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseInt(tc.input)
			if tc.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.expected, *got)
		})
	}
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "T12345", LastPathSegment("https://example.com/to-rent/flat/T12345"))
	assert.Equal(t, "T12345", LastPathSegment("https://example.com/to-rent/flat/T12345/"))
	assert.Equal(t, "solo", LastPathSegment("solo"))
	assert.Equal(t, "", LastPathSegment(""))
}

func intPtr(n int) *int {
	return &n
}
