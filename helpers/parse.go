package helpers

import (
	"strconv"
	"strings"
)

// ParseInt extracts the integer value embedded in a free-form site string
// such as "R 12 500" or "1,200 m²". All digit runs are concatenated in
// order before parsing, so grouping characters never matter. Returns nil
// when the input contains no digits.
func ParseInt(s string) *int {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return nil
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return nil
	}
	return &n
}

// LastPathSegment returns the final path segment of a URL, ignoring a
// trailing slash. Listing identifiers are the last segment of the
// listing URL.
func LastPathSegment(rawURL string) string {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}
