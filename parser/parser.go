// Package parser extracts listing data from StreetEasy search result pages.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// Base is the StreetEasy origin, used to absolutize relative card links.
const Base = "https://streeteasy.com"

var (
	neighborhoodRe = regexp.MustCompile(`in\s+(.+?)(?:\s+at|$)`)
	pageParamRe    = regexp.MustCompile(`page=(\d+)`)
)

// Listings extracts all listing cards from a search results page. Cards that
// lack an address link are skipped; everything else is returned as-is, junk
// included; filtering is the pipeline's job, not the parser's.
func Listings(doc *goquery.Document) []models.Listing {
	var listings []models.Listing

	cards := doc.Find("div[data-testid='listing-card']")
	if cards.Length() == 0 {
		// Fallback: class-based selector for older markup
		cards = doc.Find("div[class*='ListingCard-module__cardContainer']")
	}

	cards.Each(func(_ int, card *goquery.Selection) {
		if l := parseCard(card); l != nil {
			listings = append(listings, *l)
		}
	})

	return listings
}

// parseCard parses one listing card. Returns nil when the card has no
// address link (section headers and ad shells match the card selector too).
func parseCard(card *goquery.Selection) *models.Listing {
	addrLink := card.Find("a[class*='addressTextAction']").First()
	if addrLink.Length() == 0 {
		addrLink = card.Find("a[href*='/building/']").First()
	}
	if addrLink.Length() == 0 {
		return nil
	}

	href, _ := addrLink.Attr("href")
	if href == "" {
		return nil
	}
	if !strings.HasPrefix(href, "http") {
		href = Base + href
	}

	listing := &models.Listing{
		URL:     StripTrackingParams(href),
		Address: strings.TrimSpace(addrLink.Text()),
		Price:   "N/A",
		Beds:    "N/A",
		Baths:   "N/A",
		Sqft:    "N/A",
	}

	priceEl := card.Find("span[class*='PriceInfo']").First()
	if priceEl.Length() == 0 {
		priceEl = card.Find("span[class*='price']").First()
	}
	if priceEl.Length() > 0 {
		listing.Price = strings.TrimSpace(priceEl.Text())
	}

	titleEl := card.Find("p[class*='ListingDescription']").First()
	if titleEl.Length() == 0 {
		titleEl = card.Find("p[class*='title']").First()
	}
	if titleEl.Length() > 0 {
		if m := neighborhoodRe.FindStringSubmatch(strings.TrimSpace(titleEl.Text())); m != nil {
			listing.Neighborhood = strings.TrimSpace(m[1])
		}
	}

	card.Find("span[class*='BedsBathsSqft']").Each(func(_ int, span *goquery.Selection) {
		text := strings.TrimSpace(span.Text())
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "bed") || strings.Contains(lower, "studio"):
			listing.Beds = text
		case strings.Contains(lower, "bath"):
			listing.Baths = text
		case strings.Contains(lower, "ft"):
			// StreetEasy renders "- ft²" when the size is unknown
			if digitRun.MatchString(text) {
				listing.Sqft = text
			}
		}
	})

	if img := card.Find("img").First(); img.Length() > 0 {
		listing.ImageURL, _ = img.Attr("src")
	}

	return listing
}

// StripTrackingParams removes the query string from a listing URL so that
// featured placements (?featured=1) dedupe against their organic twin.
func StripTrackingParams(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// MaxPage returns the highest page number linked from the pagination
// container, or 1 when the page has no pagination.
func MaxPage(doc *goquery.Document) int {
	maxPage := 1
	doc.Find("div[class*='paginationContainer'] a").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if m := pageParamRe.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > maxPage {
				maxPage = n
			}
		}
	})
	return maxPage
}
