package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRun = regexp.MustCompile(`\d+`)

// ParsePrice extracts an integer dollar amount from free text like "$3,200"
// or "From $2,800/mo". Commas are treated as thousands separators. Returns
// ok=false when the text contains no digits ("N/A", "").
func ParsePrice(text string) (int, bool) {
	match := digitRun.FindString(strings.ReplaceAll(text, ",", ""))
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseSqft extracts a positive square footage from text like "650 ft²".
// Returns ok=false for "N/A", "- ft²" and anything else without a digit run.
func ParseSqft(text string) (int, bool) {
	n, ok := ParsePrice(text)
	if !ok || n <= 0 {
		return 0, false
	}
	return n, true
}
