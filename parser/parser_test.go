package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}
	return doc
}

func listingCard(url, address, price, title string, extras string) string {
	return fmt.Sprintf(`
		<div data-testid="listing-card">
			<a class="addressTextAction_x1" href="%s">%s</a>
			<span class="PriceInfo_price">%s</span>
			<p class="ListingDescription-module__title">%s</p>
			%s
		</div>`, url, address, price, title, extras)
}

func TestListings(t *testing.T) {
	html := `<html><body>
		<div data-testid="listing-card">
			<a class="addressTextAction_x1" href="/building/foo/1a?featured=1">337 East 21st Street #3H</a>
			<span class="PriceInfo_price">$3,200</span>
			<p class="ListingDescription-module__title">Rental unit in Gramercy Park at 337 East 21st</p>
			<span class="BedsBathsSqft_item">1 bed</span>
			<span class="BedsBathsSqft_item">1 bath</span>
			<span class="BedsBathsSqft_item">650 ft²</span>
			<img src="https://photos.example.com/1.jpg"/>
		</div>
		<div data-testid="listing-card">
			<a class="addressTextAction_x1" href="https://streeteasy.com/building/bar/2b">100 West 80th Street</a>
			<span class="PriceInfo_price">$2,850</span>
			<p class="ListingDescription-module__title">Rental unit in Upper West Side</p>
			<span class="BedsBathsSqft_item">Studio</span>
			<span class="BedsBathsSqft_item">- ft²</span>
		</div>
		<div data-testid="listing-card">
			<span>ad shell without an address link</span>
		</div>
	</body></html>`

	listings := Listings(docFromHTML(t, html))
	if len(listings) != 2 {
		t.Fatalf("got %d listings, want 2", len(listings))
	}

	first := listings[0]
	if first.URL != "https://streeteasy.com/building/foo/1a" {
		t.Errorf("URL = %q, want tracking params stripped and host prepended", first.URL)
	}
	if first.Address != "337 East 21st Street #3H" {
		t.Errorf("Address = %q", first.Address)
	}
	if first.Price != "$3,200" {
		t.Errorf("Price = %q", first.Price)
	}
	if first.Neighborhood != "Gramercy Park" {
		t.Errorf("Neighborhood = %q, want Gramercy Park", first.Neighborhood)
	}
	if first.Beds != "1 bed" || first.Baths != "1 bath" || first.Sqft != "650 ft²" {
		t.Errorf("beds/baths/sqft = %q/%q/%q", first.Beds, first.Baths, first.Sqft)
	}
	if first.ImageURL != "https://photos.example.com/1.jpg" {
		t.Errorf("ImageURL = %q", first.ImageURL)
	}

	second := listings[1]
	if second.Beds != "Studio" {
		t.Errorf("Beds = %q, want Studio", second.Beds)
	}
	if second.Sqft != "N/A" {
		t.Errorf("Sqft = %q, want N/A for the dash placeholder", second.Sqft)
	}
	if second.Neighborhood != "Upper West Side" {
		t.Errorf("Neighborhood = %q, want Upper West Side", second.Neighborhood)
	}
}

func TestListingsFallbackSelector(t *testing.T) {
	html := `<html><body>
		<div class="ListingCard-module__cardContainer_abc">
			<a href="/building/baz/3c" class="other">55 Bond Street</a>
			<span class="price">$4,100</span>
		</div>
	</body></html>`

	listings := Listings(docFromHTML(t, html))
	if len(listings) != 1 {
		t.Fatalf("got %d listings, want 1 via fallback selectors", len(listings))
	}
	if listings[0].Address != "55 Bond Street" {
		t.Errorf("Address = %q", listings[0].Address)
	}
	if listings[0].Price != "$4,100" {
		t.Errorf("Price = %q", listings[0].Price)
	}
}

func TestStripTrackingParams(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://streeteasy.com/building/x/1?featured=1", "https://streeteasy.com/building/x/1"},
		{"https://streeteasy.com/building/x/1", "https://streeteasy.com/building/x/1"},
		{"https://streeteasy.com/building/x/1?a=1&b=2", "https://streeteasy.com/building/x/1"},
	}
	for _, tt := range tests {
		if got := StripTrackingParams(tt.input); got != tt.expected {
			t.Errorf("StripTrackingParams(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMaxPage(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected int
	}{
		{
			"no pagination",
			`<html><body>` + listingCard("/building/a/1", "1 Main St", "$2,000", "Rental unit in SoHo", "") + `</body></html>`,
			1,
		},
		{
			"several pages",
			`<html><body><div class="paginationContainer_x">
				<a href="?page=2">2</a>
				<a href="?page=3">3</a>
				<a href="?page=7">7</a>
			</div></body></html>`,
			7,
		},
		{
			"links outside pagination ignored",
			`<html><body><a href="?page=9">9</a></body></html>`,
			1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxPage(docFromHTML(t, tt.html)); got != tt.expected {
				t.Errorf("MaxPage() = %d, want %d", got, tt.expected)
			}
		})
	}
}
