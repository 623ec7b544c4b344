// Package tracker orchestrates a run: scrape the configured areas, reconcile
// against the tracked set, decide what to send, deliver and persist.
package tracker

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/fetcher"
	"github.com/alvinlee00/nyc-apartment-tracker/filter"
	"github.com/alvinlee00/nyc-apartment-tracker/geo"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/notify"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
	"github.com/alvinlee00/nyc-apartment-tracker/store"
	"github.com/alvinlee00/nyc-apartment-tracker/subway"
)

// Pages per area are capped to keep a run polite regardless of what the
// pagination claims.
const maxPagesCap = 5

// Stale records are re-checked after a week without a sighting, at most this
// many per run.
const maxStaleChecks = 10

// PageFetcher is the slice of the fetcher the engine needs.
type PageFetcher interface {
	Fetch(url string) (*fetcher.Page, error)
	CheckStatus(url string) models.ListingStatus
}

// Locator resolves an address to cross streets and coordinates.
type Locator interface {
	Lookup(address string) (*geo.Result, error)
}

// SearchOptions describes what to look for.
type SearchOptions struct {
	Neighborhoods []string
	MinPrice      int
	MaxPrice      int
	BedRooms      []int
	NoFee         bool
	GeoBounds     *models.GeoBounds
}

// Params wires a Tracker. Broadcast, DM, Geo and Users may be nil; the
// corresponding behavior is skipped.
type Params struct {
	Fetcher   PageFetcher
	Geo       Locator
	Stations  *subway.Stations
	Tracked   store.TrackedStore
	Users     store.UserStore
	Log       store.NotificationLog
	Broadcast notify.Broadcaster
	DM        notify.Messenger

	Search SearchOptions

	// RequestDelay paces page fetches and status checks; SendDelay paces
	// notification sends.
	RequestDelay time.Duration
	SendDelay    time.Duration

	// Now defaults to time.Now. Injected by tests.
	Now func() time.Time
}

// Tracker runs the scrape-reconcile-notify cycle.
type Tracker struct {
	fetch     PageFetcher
	geo       Locator
	stations  *subway.Stations
	tracked   store.TrackedStore
	users     store.UserStore
	notifyLog store.NotificationLog
	broadcast notify.Broadcaster
	dm        notify.Messenger

	search    SearchOptions
	delay     time.Duration
	sendDelay time.Duration
	now       func() time.Time
}

func New(p Params) *Tracker {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Stations == nil {
		p.Stations = subway.FromStations(nil)
	}
	return &Tracker{
		fetch:     p.Fetcher,
		geo:       p.Geo,
		stations:  p.Stations,
		tracked:   p.Tracked,
		users:     p.Users,
		notifyLog: p.Log,
		broadcast: p.Broadcast,
		dm:        p.DM,
		search:    p.Search,
		delay:     p.RequestDelay,
		sendDelay: p.SendDelay,
		now:       p.Now,
	}
}

// BuildSearchURL builds the rental search URL for one area slug.
func (t *Tracker) BuildSearchURL(area string) string {
	priceFilter := fmt.Sprintf("price:-%d", t.search.MaxPrice)
	if t.search.MinPrice > 0 {
		priceFilter = fmt.Sprintf("price:%d-%d", t.search.MinPrice, t.search.MaxPrice)
	}

	filters := priceFilter
	if beds := t.search.BedRooms; len(beds) > 0 {
		bedsParam := fmt.Sprintf("%d", beds[0])
		if len(beds) > 1 {
			bedsParam = fmt.Sprintf("%d-%d", beds[0], beds[len(beds)-1])
		}
		filters += "|beds:" + bedsParam
	}
	if t.search.NoFee {
		filters += "|no_fee:1"
	}

	return fmt.Sprintf("%s/for-rent/%s/%s", parser.Base, area, filters)
}

// scrapeArea fetches every result page for one area and runs the listings
// through the filter pipeline. A failed page fetch ends pagination but keeps
// what earlier pages produced.
func (t *Tracker) scrapeArea(area string) []models.Listing {
	baseURL := t.BuildSearchURL(area)
	log.Printf("Scraping %s -> %s", area, baseURL)

	page, err := t.fetch.Fetch(baseURL)
	if err != nil {
		log.Printf("Failed to fetch %s: %v", baseURL, err)
		return nil
	}

	raw := parser.Listings(page.Doc)
	log.Printf("  Page 1: found %d listings", len(raw))

	maxPage := parser.MaxPage(page.Doc)
	if maxPage > maxPagesCap {
		maxPage = maxPagesCap
	}
	for n := 2; n <= maxPage; n++ {
		pageURL := fmt.Sprintf("%s?page=%d", baseURL, n)
		page, err := t.fetch.Fetch(pageURL)
		if err != nil {
			log.Printf("Failed to fetch %s: %v", pageURL, err)
			break
		}
		listings := parser.Listings(page.Doc)
		if len(listings) == 0 {
			break
		}
		raw = append(raw, listings...)
		log.Printf("  Page %d: found %d listings", n, len(listings))
	}

	filtered := filter.New(area, t.search.MaxPrice).Apply(raw)
	log.Printf("  %s: %d raw -> %d after filters", area, len(raw), len(filtered))
	return filtered
}

// areasToScrape returns the union of the configured areas and every
// subscriber's areas, sorted.
func (t *Tracker) areasToScrape() []string {
	set := make(map[string]struct{})
	for _, area := range t.search.Neighborhoods {
		set[area] = struct{}{}
	}
	if t.users != nil {
		users, err := t.users.AllSubscribed()
		if err != nil {
			log.Printf("Failed to load subscribed users: %v", err)
		}
		for _, u := range users {
			for _, area := range u.Filters.Neighborhoods {
				set[area] = struct{}{}
			}
		}
	}

	areas := make([]string, 0, len(set))
	for area := range set {
		areas = append(areas, area)
	}
	sort.Strings(areas)
	return areas
}

// withinBounds applies the configured longitude box. Unknown longitude and
// missing bounds both pass.
func (t *Tracker) withinBounds(longitude *float64) bool {
	return t.search.GeoBounds.Contains(longitude)
}

func formatDollars(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return "$" + s
}

func (t *Tracker) pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

func logBanner(title string, now time.Time) {
	line := strings.Repeat("=", 60)
	log.Println(line)
	log.Printf("%s at %s", title, now.UTC().Format(time.RFC3339))
	log.Println(line)
}
