package geo

import (
	"regexp"
	"strings"
)

var (
	unitSuffixRe  = regexp.MustCompile(`(?i)[,\s]*(?:#|apt\.?|unit)\s*\S+$`)
	houseStreetRe = regexp.MustCompile(`^(\d+[\w-]*)\s+(.+)$`)
)

// ParseAddress splits a StreetEasy address like "337 East 21st Street #3H"
// into its house number and street name, stripping a trailing unit suffix
// (#3H, "Apt 4B", ", Unit 5"). Returns ok=false when no leading house
// number token remains.
func ParseAddress(address string) (houseNumber, street string, ok bool) {
	cleaned := strings.TrimSpace(unitSuffixRe.ReplaceAllString(address, ""))
	m := houseStreetRe.FindStringSubmatch(cleaned)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FormatCrossStreets renders the low/high cross street names the way they
// appear in notifications, e.g. "between East 20th St & East 21st St".
func FormatCrossStreets(low, high string) string {
	return "between " + titleCase(low) + " & " + titleCase(high)
}

// titleCase collapses runs of whitespace and title-cases each word; the
// Geoclient API returns street names in all caps with padded spacing.
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
