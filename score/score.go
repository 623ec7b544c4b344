// Package score computes the 0-10 value score used to rank listings.
package score

import (
	"math"
	"sort"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
	"github.com/alvinlee00/nyc-apartment-tracker/subway"
)

// Sub-score weights. Price-vs-median dominates because it is the signal
// with the best data coverage.
const (
	weightPriceVsMedian = 0.4
	weightPricePerSqft  = 0.3
	weightSubway        = 0.3

	neutral = 5.0
)

// Score is a computed value score with its display grade and embed color.
type Score struct {
	Score float64
	Grade string
	Color int
}

// Median returns the standard median of values; 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	s := make([]float64, n)
	copy(s, values)
	sort.Float64s(s)
	mid := n / 2
	if n%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

// NeighborhoodMedians computes the median asking price per neighborhood
// across all tracked listings. Entries without a neighborhood label or a
// parseable price are skipped.
func NeighborhoodMedians(tracked map[string]*models.TrackedListing) map[string]float64 {
	pricesByHood := make(map[string][]float64)
	for _, entry := range tracked {
		if entry.Neighborhood == "" {
			continue
		}
		if price, ok := parser.ParsePrice(entry.Price); ok {
			pricesByHood[entry.Neighborhood] = append(pricesByHood[entry.Neighborhood], float64(price))
		}
	}
	medians := make(map[string]float64, len(pricesByHood))
	for hood, prices := range pricesByHood {
		medians[hood] = Median(prices)
	}
	return medians
}

// Compute returns the weighted value score for a listing, or nil when the
// price is unparseable (scoring requires a price). Each sub-score degrades
// to a neutral 5.0 when its input is missing, so identical inputs always
// yield identical output.
func Compute(listing models.Listing, medians map[string]float64, nearby []subway.Nearby) *Score {
	price, ok := parser.ParsePrice(listing.Price)
	if !ok {
		return nil
	}

	// Price vs neighborhood median: at or below 80% of median scores 10,
	// at median scores 5, at or above 120% scores 0.
	priceScore := neutral
	if median := medians[listing.Neighborhood]; median > 0 {
		ratio := float64(price) / median
		priceScore = clamp((1.2 - ratio) / 0.04)
	}

	// Price per square foot: under $3 scores 10, $5 scores 5, $7+ scores 0.
	sqftScore := neutral
	if sqft, ok := parser.ParseSqft(listing.Sqft); ok {
		ppsf := float64(price) / float64(sqft)
		sqftScore = clamp((7 - ppsf) / 0.4)
	}

	// Subway proximity: at the station scores 10, 0.25 mi scores 5,
	// 0.5 mi or further scores 0.
	subwayScore := neutral
	if len(nearby) > 0 {
		closest := nearby[0].DistanceMi
		subwayScore = clamp((0.5 - closest) / 0.05)
	}

	composite := priceScore*weightPriceVsMedian + sqftScore*weightPricePerSqft + subwayScore*weightSubway
	composite = math.Round(composite*10) / 10

	grade, color := gradeFor(composite)
	return &Score{Score: composite, Grade: grade, Color: color}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

func gradeFor(score float64) (string, int) {
	switch {
	case score >= 8:
		return "A", 0x2ECC71
	case score >= 6:
		return "B", 0x27AE60
	case score >= 4:
		return "C", 0xF39C12
	case score >= 2:
		return "D", 0xE67E22
	default:
		return "F", 0xE74C3C
	}
}
