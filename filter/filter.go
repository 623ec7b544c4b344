// Package filter is the pure dedup-and-reject pipeline applied to raw
// scraped listings for one search area.
package filter

import (
	"log"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/neighborhoods"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
)

// Pipeline filters raw listings scraped for one search area. It touches no
// network and no store; the same inputs always produce the same output.
type Pipeline struct {
	area     string
	maxPrice int
}

// New creates a Pipeline for a search area with a price ceiling.
func New(area string, maxPrice int) *Pipeline {
	return &Pipeline{area: area, maxPrice: maxPrice}
}

// Apply runs the three filter steps in order: dedup by URL keeping the first
// occurrence, price ceiling, then area membership.
func (p *Pipeline) Apply(raw []models.Listing) []models.Listing {
	unique := dedup(raw)
	inBudget := p.underCeiling(unique)
	return p.inArea(inBudget)
}

// dedup removes repeat URLs; featured listings recur across pages.
func dedup(listings []models.Listing) []models.Listing {
	seen := make(map[string]bool, len(listings))
	var out []models.Listing
	for _, l := range listings {
		if seen[l.URL] {
			continue
		}
		seen[l.URL] = true
		out = append(out, l)
	}
	return out
}

// underCeiling drops listings priced above the area maximum. Sponsored
// placements routinely ignore the search's price filter. An unparseable
// price is not disqualifying.
func (p *Pipeline) underCeiling(listings []models.Listing) []models.Listing {
	var out []models.Listing
	for _, l := range listings {
		if price, ok := parser.ParsePrice(l.Price); ok && price > p.maxPrice {
			log.Printf("Filtered out %s (%s) - above max $%d", l.Address, l.Price, p.maxPrice)
			continue
		}
		out = append(out, l)
	}
	return out
}

// inArea keeps only listings whose label is in the area's alias set.
// Listings with an empty label are rejected too: on search pages those are
// almost always sponsored placements without the standard neighborhood
// line. An area without an alias table is left unfiltered.
func (p *Pipeline) inArea(listings []models.Listing) []models.Listing {
	allowed := neighborhoods.Aliases(p.area)
	if allowed == nil {
		return listings
	}
	var out []models.Listing
	for _, l := range listings {
		if l.Neighborhood != "" && allowed[l.Neighborhood] {
			out = append(out, l)
			continue
		}
		log.Printf("  Rejected: %s - neighborhood %q not in %s", l.Address, l.Neighborhood, p.area)
	}
	if removed := len(listings) - len(out); removed > 0 {
		log.Printf("  Filtered %d sponsored/unrelated listing(s)", removed)
	}
	return out
}
