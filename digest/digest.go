// Package digest computes the daily market summary over the tracked set.
package digest

import (
	"sort"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
	"github.com/alvinlee00/nyc-apartment-tracker/score"
)

// Trend directions for a neighborhood's average asking price, comparing the
// last 7 days of first-seen listings against the 7 days before that. Changes
// within 2% count as stable.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Deal is a tracked listing ranked by value score.
type Deal struct {
	URL          string
	Address      string
	Price        string
	Neighborhood string
	Score        float64
	Grade        string
}

// StaleListing has sat on the market for at least 30 days.
type StaleListing struct {
	URL          string
	Address      string
	Price        string
	Neighborhood string
	Days         int
}

// Analytics summarizes the whole tracked set for the digest.
type Analytics struct {
	AvgByHood     map[string]int
	Trends        map[string]string
	TopDeals      []Deal
	StaleListings []StaleListing
	TotalTracked  int
	OverallAvg    int
}

// Recent returns tracked listings first seen within the last 24 hours.
func Recent(tracked map[string]*models.TrackedListing, now time.Time) []*models.TrackedListing {
	cutoff := now.Add(-24 * time.Hour)

	var recent []*models.TrackedListing
	for _, rec := range tracked {
		if !rec.FirstSeen.IsZero() && !rec.FirstSeen.Before(cutoff) {
			recent = append(recent, rec)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].URL < recent[j].URL })
	return recent
}

// Compute builds analytics over every tracked listing.
func Compute(tracked map[string]*models.TrackedListing, now time.Time) *Analytics {
	a := &Analytics{
		AvgByHood:    make(map[string]int),
		Trends:       make(map[string]string),
		TotalTracked: len(tracked),
	}

	pricesByHood := make(map[string][]float64)
	var allPrices []float64
	for _, rec := range tracked {
		if rec.Neighborhood == "" {
			continue
		}
		if price, ok := parser.ParsePrice(rec.Price); ok {
			pricesByHood[rec.Neighborhood] = append(pricesByHood[rec.Neighborhood], float64(price))
			allPrices = append(allPrices, float64(price))
		}
	}
	for hood, prices := range pricesByHood {
		a.AvgByHood[hood] = roundAvg(prices)
	}
	if len(allPrices) > 0 {
		a.OverallAvg = roundAvg(allPrices)
	}

	a.Trends = computeTrends(tracked, now)
	a.TopDeals = topDeals(tracked)
	a.StaleListings = staleListings(tracked, now)
	return a
}

func roundAvg(prices []float64) int {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return int(sum/float64(len(prices)) + 0.5)
}

func computeTrends(tracked map[string]*models.TrackedListing, now time.Time) map[string]string {
	cutoff7d := now.AddDate(0, 0, -7)
	cutoff14d := now.AddDate(0, 0, -14)

	recentByHood := make(map[string][]float64)
	prevByHood := make(map[string][]float64)
	for _, rec := range tracked {
		price, ok := parser.ParsePrice(rec.Price)
		if rec.Neighborhood == "" || !ok || rec.FirstSeen.IsZero() {
			continue
		}
		switch {
		case !rec.FirstSeen.Before(cutoff7d):
			recentByHood[rec.Neighborhood] = append(recentByHood[rec.Neighborhood], float64(price))
		case !rec.FirstSeen.Before(cutoff14d):
			prevByHood[rec.Neighborhood] = append(prevByHood[rec.Neighborhood], float64(price))
		}
	}

	trends := make(map[string]string)
	for hood, recent := range recentByHood {
		prev, ok := prevByHood[hood]
		if !ok {
			continue
		}
		recentAvg := avg(recent)
		prevAvg := avg(prev)
		if prevAvg <= 0 {
			continue
		}
		changePct := (recentAvg - prevAvg) / prevAvg * 100
		switch {
		case changePct > 2:
			trends[hood] = TrendUp
		case changePct < -2:
			trends[hood] = TrendDown
		default:
			trends[hood] = TrendStable
		}
	}
	return trends
}

func avg(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// topDeals ranks tracked listings by value score and keeps the best five.
// Records carry no sqft or subway data, so scoring here leans on the
// price-vs-median component alone.
func topDeals(tracked map[string]*models.TrackedListing) []Deal {
	medians := score.NeighborhoodMedians(tracked)

	var deals []Deal
	for _, rec := range tracked {
		listing := models.Listing{
			Price:        rec.Price,
			Neighborhood: rec.Neighborhood,
			Sqft:         "N/A",
		}
		vs := score.Compute(listing, medians, nil)
		if vs == nil {
			continue
		}
		deals = append(deals, Deal{
			URL:          rec.URL,
			Address:      rec.Address,
			Price:        rec.Price,
			Neighborhood: rec.Neighborhood,
			Score:        vs.Score,
			Grade:        vs.Grade,
		})
	}
	sort.Slice(deals, func(i, j int) bool {
		if deals[i].Score != deals[j].Score {
			return deals[i].Score > deals[j].Score
		}
		return deals[i].URL < deals[j].URL
	})
	if len(deals) > 5 {
		deals = deals[:5]
	}
	return deals
}

// staleListings returns listings tracked 30+ days, oldest first, capped at 10.
func staleListings(tracked map[string]*models.TrackedListing, now time.Time) []StaleListing {
	var stale []StaleListing
	for _, rec := range tracked {
		days := rec.DaysTracked(now)
		if days >= 30 {
			stale = append(stale, StaleListing{
				URL:          rec.URL,
				Address:      rec.Address,
				Price:        rec.Price,
				Neighborhood: rec.Neighborhood,
				Days:         days,
			})
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		if stale[i].Days != stale[j].Days {
			return stale[i].Days > stale[j].Days
		}
		return stale[i].URL < stale[j].URL
	})
	if len(stale) > 10 {
		stale = stale[:10]
	}
	return stale
}
