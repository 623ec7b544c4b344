// Package match decides whether a listing satisfies a subscriber's filters.
package match

import (
	"regexp"
	"strings"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/neighborhoods"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
)

var bedNumRe = regexp.MustCompile(`\d+`)

// ListingMatchesUser reports whether a listing passes every active filter in
// the user's preference set. Filters AND together and short-circuit on the
// first failure. Missing listing data (unparseable price, unknown beds, no
// coordinates) always passes; absence of data never disqualifies.
//
// The no-fee flag is deliberately not checked here: fee status is not
// visible on scraped cards, so no-fee is enforced when the search URL is
// built, not as a post-hoc predicate.
func ListingMatchesUser(listing models.Listing, prefs *models.UserPreferences) bool {
	filters := prefs.Filters

	if !matchesNeighborhood(listing.Neighborhood, filters.Neighborhoods) {
		return false
	}
	if !matchesPrice(listing.Price, filters.MinPrice, filters.MaxPrice) {
		return false
	}
	if !matchesBeds(listing.Beds, filters.BedRooms) {
		return false
	}
	return filters.GeoBounds.Contains(listing.Longitude)
}

// matchesNeighborhood checks the listing label against every subscribed
// slug. An empty subscription list matches everything; a listing with no
// label matches nothing once areas are subscribed.
func matchesNeighborhood(label string, slugs []string) bool {
	if len(slugs) == 0 {
		return true
	}
	if label == "" {
		return false
	}
	for _, slug := range slugs {
		if neighborhoods.LabelMatchesArea(label, slug) {
			return true
		}
	}
	return false
}

// matchesPrice applies the user's price bounds. MaxPrice 0 disables the
// whole price filter (unlimited); an unparseable listing price passes.
func matchesPrice(priceText string, minPrice, maxPrice int) bool {
	if maxPrice <= 0 {
		return true
	}
	price, ok := parser.ParsePrice(priceText)
	if !ok {
		return true
	}
	if price > maxPrice {
		return false
	}
	if minPrice > 0 && price < minPrice {
		return false
	}
	return true
}

// matchesBeds checks the free-text bed descriptor against the user's bed
// types ("studio", "1", "2", ...). "1" matches "1 bed", "1 bedroom", etc.
func matchesBeds(bedsText string, bedTypes []string) bool {
	if len(bedTypes) == 0 {
		return true
	}
	beds := strings.ToLower(strings.TrimSpace(bedsText))
	if beds == "" || beds == "n/a" {
		return true
	}
	listingNum := bedNumRe.FindString(beds)
	for _, bt := range bedTypes {
		if strings.EqualFold(bt, "studio") && strings.Contains(beds, "studio") {
			return true
		}
		if wantNum := bedNumRe.FindString(bt); wantNum != "" && listingNum == wantNum {
			return true
		}
	}
	return false
}
