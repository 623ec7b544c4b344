package notify

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/digest"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
	"github.com/alvinlee00/nyc-apartment-tracker/score"
)

// Embed colors. Listing messages take their color from the value score grade
// when one is available.
const (
	colorListing   = 0x00B4D8
	colorPriceDrop = 0xFF8C00
	colorSummary   = 0x2ECC71
	colorDigest    = 0x3498DB
)

// Discord caps embed descriptions at 4096 characters.
const maxDescription = 4096

// GoogleMapsURL builds a maps search link for an NYC address.
func GoogleMapsURL(address string) string {
	query := url.QueryEscape(address + ", New York, NY")
	return "https://www.google.com/maps/search/?api=1&query=" + query
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func daysTrackedValue(days int) string {
	v := fmt.Sprintf("%d days", days)
	if days >= 30 {
		v += " (may be negotiable!)"
	}
	return v
}

func formatPrice(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return "$" + s
}

// NewListing builds the alert for a freshly discovered listing. daysTracked
// below zero omits the field; vs may be nil when the score is uncomputable.
func NewListing(listing models.Listing, daysTracked int, vs *score.Score, now time.Time) Message {
	fields := []Field{
		{Name: "💰 Price", Value: orNA(listing.Price), Inline: true},
		{Name: "🛏️ Beds", Value: orNA(listing.Beds), Inline: true},
		{Name: "🚿 Baths", Value: orNA(listing.Baths), Inline: true},
		{Name: "📐 Size", Value: orNA(listing.Sqft), Inline: true},
		{Name: "📍 Neighborhood", Value: orNA(listing.Neighborhood), Inline: true},
		{Name: "🗺️ Map", Value: fmt.Sprintf("[View on Google Maps](%s)", GoogleMapsURL(listing.Address)), Inline: true},
	}
	if listing.CrossStreets != "" {
		fields = append(fields, Field{Name: "🚦 Cross Streets", Value: listing.CrossStreets, Inline: true})
	}
	if listing.SubwayInfo != "" {
		fields = append(fields, Field{Name: "🚇 Nearby Subway", Value: listing.SubwayInfo})
	}
	if daysTracked >= 0 {
		fields = append(fields, Field{Name: "📅 Days Tracked", Value: daysTrackedValue(daysTracked), Inline: true})
	}

	color := colorListing
	if vs != nil {
		fields = append(fields, Field{
			Name:   "📊 Value Score",
			Value:  fmt.Sprintf("%v/10 (Grade: %s)", vs.Score, vs.Grade),
			Inline: true,
		})
		color = vs.Color
	}

	msg := Message{
		Title:      "🏠 " + listing.Address,
		URL:        listing.URL,
		Color:      color,
		Fields:     fields,
		FooterText: "NYC Apartment Tracker • StreetEasy",
		Timestamp:  now,
	}
	if strings.HasPrefix(listing.ImageURL, "http") {
		msg.ImageURL = listing.ImageURL
	}
	return msg
}

// PriceDrop builds the alert for a reduced asking price.
func PriceDrop(listing models.Listing, change models.PriceChange, daysTracked int, now time.Time) Message {
	fields := []Field{
		{
			Name:   "💰 Price",
			Value:  fmt.Sprintf("~~%s~~ → **%s**", formatPrice(change.OldPrice), formatPrice(change.NewPrice)),
			Inline: true,
		},
		{
			Name:   "💵 Savings",
			Value:  fmt.Sprintf("%s/mo (%v%% off)", formatPrice(change.Savings), change.Pct),
			Inline: true,
		},
		{Name: "📍 Neighborhood", Value: orNA(listing.Neighborhood), Inline: true},
		{Name: "🗺️ Map", Value: fmt.Sprintf("[View on Google Maps](%s)", GoogleMapsURL(listing.Address)), Inline: true},
	}
	if daysTracked >= 0 {
		fields = append(fields, Field{Name: "📅 Days Tracked", Value: daysTrackedValue(daysTracked), Inline: true})
	}

	return Message{
		Title:      "📉 Price Drop! " + listing.Address,
		URL:        listing.URL,
		Color:      colorPriceDrop,
		Fields:     fields,
		FooterText: "NYC Apartment Tracker • Price Drop",
		Timestamp:  now,
	}
}

// FirstRunSummary condenses an initial scrape into one message instead of
// flooding the channel with per-listing alerts.
func FirstRunSummary(listings []models.Listing, now time.Time) Message {
	byHood := make(map[string]int)
	var prices []int
	for _, l := range listings {
		hood := l.Neighborhood
		if hood == "" {
			hood = "Unknown"
		}
		byHood[hood]++
		if p, ok := parser.ParsePrice(l.Price); ok {
			prices = append(prices, p)
		}
	}

	hoods := make([]string, 0, len(byHood))
	for hood := range byHood {
		hoods = append(hoods, hood)
	}
	sort.Slice(hoods, func(i, j int) bool {
		if byHood[hoods[i]] != byHood[hoods[j]] {
			return byHood[hoods[i]] > byHood[hoods[j]]
		}
		return hoods[i] < hoods[j]
	})
	var hoodLines []string
	for _, hood := range hoods {
		hoodLines = append(hoodLines, fmt.Sprintf("• **%s**: %d listings", hood, byHood[hood]))
	}

	priceRange := "N/A"
	if len(prices) > 0 {
		sort.Ints(prices)
		priceRange = fmt.Sprintf("%s – %s", formatPrice(prices[0]), formatPrice(prices[len(prices)-1]))
	}

	description := fmt.Sprintf(
		"Found **%d listings** matching your criteria. "+
			"These have been saved — you'll only be notified about **new** listings from now on.\n\n"+
			"**Price range:** %s\n\n"+
			"**By neighborhood:**\n%s",
		len(listings), priceRange, strings.Join(hoodLines, "\n"))

	return Message{
		Title:       "🚀 Apartment Tracker Started",
		Description: description,
		Color:       colorSummary,
		FooterText:  "NYC Apartment Tracker • First Run Summary",
		Timestamp:   now,
	}
}

func hoodSummaryLines(recent []*models.TrackedListing) []string {
	byHood := make(map[string][]*models.TrackedListing)
	for _, rec := range recent {
		hood := rec.Neighborhood
		if hood == "" {
			hood = "Unknown"
		}
		byHood[hood] = append(byHood[hood], rec)
	}

	hoods := make([]string, 0, len(byHood))
	for hood := range byHood {
		hoods = append(hoods, hood)
	}
	sort.Slice(hoods, func(i, j int) bool {
		if len(byHood[hoods[i]]) != len(byHood[hoods[j]]) {
			return len(byHood[hoods[i]]) > len(byHood[hoods[j]])
		}
		return hoods[i] < hoods[j]
	})

	var lines []string
	for _, hood := range hoods {
		entries := byHood[hood]
		var prices []int
		for _, rec := range entries {
			if p, ok := parser.ParsePrice(rec.Price); ok {
				prices = append(prices, p)
			}
		}
		priceStr := "N/A"
		if len(prices) == 1 {
			priceStr = formatPrice(prices[0])
		} else if len(prices) > 1 {
			sort.Ints(prices)
			priceStr = fmt.Sprintf("%s–%s", formatPrice(prices[0]), formatPrice(prices[len(prices)-1]))
		}
		lines = append(lines, fmt.Sprintf("• **%s**: %d listing(s) — %s", hood, len(entries), priceStr))
	}
	return lines
}

func trendIcon(trend string) string {
	switch trend {
	case digest.TrendUp:
		return " ↑"
	case digest.TrendDown:
		return " ↓"
	case digest.TrendStable:
		return " →"
	}
	return ""
}

func truncateDescription(description string) string {
	if len(description) > maxDescription {
		return description[:maxDescription-3] + "..."
	}
	return description
}

// DailyDigest builds the broadcast digest: new listings grouped by
// neighborhood plus full market analytics.
func DailyDigest(recent []*models.TrackedListing, analytics *digest.Analytics, now time.Time) Message {
	newListingsDesc := "No new listings today."
	if lines := hoodSummaryLines(recent); len(lines) > 0 {
		newListingsDesc = strings.Join(lines, "\n")
	}

	sections := []string{
		fmt.Sprintf("**%d new listing(s)** found in the last 24 hours.\n", len(recent)),
		newListingsDesc,
	}

	if analytics != nil {
		if analytics.TotalTracked > 0 && analytics.OverallAvg > 0 {
			sections = append(sections, fmt.Sprintf("\n**Market Summary**: %d listings tracked, avg %s/mo",
				analytics.TotalTracked, formatPrice(analytics.OverallAvg)))
		}

		if len(analytics.AvgByHood) > 0 {
			hoods := make([]string, 0, len(analytics.AvgByHood))
			for hood := range analytics.AvgByHood {
				hoods = append(hoods, hood)
			}
			sort.Strings(hoods)
			var avgLines []string
			for _, hood := range hoods {
				avgLines = append(avgLines, fmt.Sprintf("• %s: %s%s",
					hood, formatPrice(analytics.AvgByHood[hood]), trendIcon(analytics.Trends[hood])))
			}
			sections = append(sections, "\n**Avg Price by Neighborhood:**\n"+strings.Join(avgLines, "\n"))
		}

		if len(analytics.TopDeals) > 0 {
			var dealLines []string
			for _, d := range analytics.TopDeals {
				dealLines = append(dealLines, fmt.Sprintf("• [%s](%s) — %s (%s, %v/10)",
					d.Address, d.URL, d.Price, d.Grade, d.Score))
			}
			sections = append(sections, "\n**Top 5 Best Deals:**\n"+strings.Join(dealLines, "\n"))
		}

		if len(analytics.StaleListings) > 0 {
			var staleLines []string
			for i, s := range analytics.StaleListings {
				if i == 5 {
					break
				}
				staleLines = append(staleLines, fmt.Sprintf("• [%s](%s) — %s (%dd)",
					s.Address, s.URL, s.Price, s.Days))
			}
			sections = append(sections, "\n**Negotiation Targets (30+ days):**\n"+strings.Join(staleLines, "\n"))
		}
	}

	return Message{
		Title:       "📊 Daily Digest — " + now.UTC().Format("Jan 02, 2006"),
		Description: truncateDescription(strings.Join(sections, "\n")),
		Color:       colorDigest,
		FooterText:  "NYC Apartment Tracker • Daily Digest",
		Timestamp:   now,
	}
}

// UserDigest builds the shorter per-subscriber digest, scoped to the
// listings that matched the user's filters.
func UserDigest(userRecent []*models.TrackedListing, analytics *digest.Analytics, now time.Time) Message {
	desc := fmt.Sprintf("**%d new listing(s)** matching your filters in the last 24 hours.\n\n", len(userRecent))
	if lines := hoodSummaryLines(userRecent); len(lines) > 0 {
		desc += strings.Join(lines, "\n")
	} else {
		desc += "No matching listings today."
	}
	if analytics != nil && analytics.TotalTracked > 0 {
		desc += fmt.Sprintf("\n\n**Total tracked**: %d listings", analytics.TotalTracked)
	}

	return Message{
		Title:       "📊 Daily Digest — " + now.UTC().Format("Jan 02, 2006"),
		Description: truncateDescription(desc),
		Color:       colorDigest,
		FooterText:  "NYC Apartment Tracker • Daily Digest",
		Timestamp:   now,
	}
}
