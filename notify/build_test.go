package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/digest"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/score"
)

var now = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

func fieldValue(msg Message, name string) (string, bool) {
	for _, f := range msg.Fields {
		if strings.Contains(f.Name, name) {
			return f.Value, true
		}
	}
	return "", false
}

func TestGoogleMapsURL(t *testing.T) {
	got := GoogleMapsURL("337 East 21st Street")
	want := "https://www.google.com/maps/search/?api=1&query=337+East+21st+Street%2C+New+York%2C+NY"
	if got != want {
		t.Errorf("GoogleMapsURL() = %q, want %q", got, want)
	}
}

func TestNewListing(t *testing.T) {
	listing := models.Listing{
		URL:          "https://streeteasy.com/building/a/1",
		Address:      "337 East 21st Street",
		Price:        "$3,200",
		Beds:         "1 bed",
		Baths:        "1 bath",
		Sqft:         "650 ft²",
		Neighborhood: "Gramercy Park",
		ImageURL:     "https://photos.example.com/1.jpg",
		CrossStreets: "between First Avenue & Second Avenue",
		SubwayInfo:   "6 at 23 St (0.2 mi)",
	}
	vs := &score.Score{Score: 7.5, Grade: "B", Color: 0x27AE60}

	msg := NewListing(listing, 45, vs, now)

	if msg.Title != "🏠 337 East 21st Street" {
		t.Errorf("Title = %q", msg.Title)
	}
	if msg.URL != listing.URL {
		t.Errorf("URL = %q", msg.URL)
	}
	if msg.Color != vs.Color {
		t.Errorf("Color = %#x, want the grade color %#x", msg.Color, vs.Color)
	}
	if msg.ImageURL != listing.ImageURL {
		t.Errorf("ImageURL = %q", msg.ImageURL)
	}
	if !msg.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v", msg.Timestamp)
	}

	if v, ok := fieldValue(msg, "Price"); !ok || v != "$3,200" {
		t.Errorf("price field = %q, ok=%v", v, ok)
	}
	if v, ok := fieldValue(msg, "Value Score"); !ok || v != "7.5/10 (Grade: B)" {
		t.Errorf("value score field = %q, ok=%v", v, ok)
	}
	if v, ok := fieldValue(msg, "Days Tracked"); !ok || v != "45 days (may be negotiable!)" {
		t.Errorf("days tracked field = %q, ok=%v", v, ok)
	}
	if v, ok := fieldValue(msg, "Cross Streets"); !ok || v != listing.CrossStreets {
		t.Errorf("cross streets field = %q, ok=%v", v, ok)
	}
	if v, ok := fieldValue(msg, "Map"); !ok || !strings.Contains(v, "google.com/maps") {
		t.Errorf("map field = %q, ok=%v", v, ok)
	}
}

func TestNewListingOmissions(t *testing.T) {
	listing := models.Listing{
		URL:     "https://streeteasy.com/building/b/2",
		Address: "100 West 80th Street",
		Price:   "$2,800",
	}
	msg := NewListing(listing, -1, nil, now)

	if msg.Color != colorListing {
		t.Errorf("Color = %#x, want the default %#x without a score", msg.Color, colorListing)
	}
	if _, ok := fieldValue(msg, "Value Score"); ok {
		t.Error("no score must mean no score field")
	}
	if _, ok := fieldValue(msg, "Days Tracked"); ok {
		t.Error("negative daysTracked must omit the field")
	}
	if _, ok := fieldValue(msg, "Cross Streets"); ok {
		t.Error("no cross streets must omit the field")
	}
	if msg.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", msg.ImageURL)
	}
}

func TestPriceDrop(t *testing.T) {
	listing := models.Listing{
		URL:          "https://streeteasy.com/building/a/1",
		Address:      "337 East 21st Street",
		Neighborhood: "Gramercy Park",
	}
	change := models.PriceChange{OldPrice: 3000, NewPrice: 2800, Savings: 200, Pct: 6.7}

	msg := PriceDrop(listing, change, 12, now)

	if msg.Title != "📉 Price Drop! 337 East 21st Street" {
		t.Errorf("Title = %q", msg.Title)
	}
	if msg.Color != colorPriceDrop {
		t.Errorf("Color = %#x", msg.Color)
	}
	if v, _ := fieldValue(msg, "Price"); v != "~~$3,000~~ → **$2,800**" {
		t.Errorf("price field = %q", v)
	}
	if v, _ := fieldValue(msg, "Savings"); v != "$200/mo (6.7% off)" {
		t.Errorf("savings field = %q", v)
	}
	if v, _ := fieldValue(msg, "Days Tracked"); v != "12 days" {
		t.Errorf("days tracked field = %q", v)
	}
}

func TestFirstRunSummary(t *testing.T) {
	listings := []models.Listing{
		{Price: "$2,500", Neighborhood: "East Village"},
		{Price: "$3,100", Neighborhood: "East Village"},
		{Price: "$2,900", Neighborhood: "SoHo"},
		{Price: "N/A", Neighborhood: ""},
	}
	msg := FirstRunSummary(listings, now)

	if msg.Color != colorSummary {
		t.Errorf("Color = %#x", msg.Color)
	}
	if !strings.Contains(msg.Description, "Found **4 listings**") {
		t.Errorf("description missing count: %q", msg.Description)
	}
	if !strings.Contains(msg.Description, "$2,500 – $3,100") {
		t.Errorf("description missing price range: %q", msg.Description)
	}
	if !strings.Contains(msg.Description, "**East Village**: 2 listings") {
		t.Errorf("description missing neighborhood breakdown: %q", msg.Description)
	}
	if !strings.Contains(msg.Description, "**Unknown**: 1 listings") {
		t.Errorf("unlabeled listings should group under Unknown: %q", msg.Description)
	}
}

func TestDailyDigest(t *testing.T) {
	recent := []*models.TrackedListing{
		{URL: "u1", Address: "a1", Price: "$2,900", Neighborhood: "East Village"},
		{URL: "u2", Address: "a2", Price: "$3,300", Neighborhood: "East Village"},
	}
	analytics := &digest.Analytics{
		AvgByHood:    map[string]int{"East Village": 3100},
		Trends:       map[string]string{"East Village": digest.TrendDown},
		TopDeals:     []digest.Deal{{URL: "u1", Address: "a1", Price: "$2,900", Grade: "A", Score: 8.2}},
		TotalTracked: 40,
		OverallAvg:   3200,
		StaleListings: []digest.StaleListing{
			{URL: "u9", Address: "a9", Price: "$3,000", Days: 44},
		},
	}

	msg := DailyDigest(recent, analytics, now)

	if msg.Title != "📊 Daily Digest — Aug 31, 2026" {
		t.Errorf("Title = %q", msg.Title)
	}
	for _, want := range []string{
		"**2 new listing(s)**",
		"**East Village**: 2 listing(s) — $2,900–$3,300",
		"**Market Summary**: 40 listings tracked, avg $3,200/mo",
		"East Village: $3,100 ↓",
		"[a1](u1) — $2,900 (A, 8.2/10)",
		"[a9](u9) — $3,000 (44d)",
	} {
		if !strings.Contains(msg.Description, want) {
			t.Errorf("description missing %q:\n%s", want, msg.Description)
		}
	}
}

func TestDailyDigestEmpty(t *testing.T) {
	msg := DailyDigest(nil, &digest.Analytics{}, now)
	if !strings.Contains(msg.Description, "No new listings today.") {
		t.Errorf("empty digest description = %q", msg.Description)
	}
}

func TestUserDigest(t *testing.T) {
	recent := []*models.TrackedListing{
		{URL: "u1", Address: "a1", Price: "$2,900", Neighborhood: "SoHo"},
	}
	msg := UserDigest(recent, &digest.Analytics{TotalTracked: 12}, now)

	if !strings.Contains(msg.Description, "**1 new listing(s)** matching your filters") {
		t.Errorf("description = %q", msg.Description)
	}
	if !strings.Contains(msg.Description, "**Total tracked**: 12 listings") {
		t.Errorf("description missing total tracked: %q", msg.Description)
	}

	empty := UserDigest(nil, nil, now)
	if !strings.Contains(empty.Description, "No matching listings today.") {
		t.Errorf("empty user digest = %q", empty.Description)
	}
}

func TestDescriptionTruncation(t *testing.T) {
	long := strings.Repeat("x", maxDescription+100)
	if got := truncateDescription(long); len(got) != maxDescription {
		t.Errorf("truncated length = %d, want %d", len(got), maxDescription)
	}
	short := "fine"
	if truncateDescription(short) != short {
		t.Error("short descriptions must pass through unchanged")
	}
}
