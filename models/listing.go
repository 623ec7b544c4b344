package models

import "time"

// ListingStatus is the result of a live status check against StreetEasy.
type ListingStatus int

const (
	// StatusActive means the listing page loaded and still advertises the unit.
	StatusActive ListingStatus = iota
	// StatusGone means the listing is confirmed removed (404, or the page says
	// no longer available / off market).
	StatusGone
	// StatusUnknown covers network errors, 403 rate limiting and every other
	// ambiguous response. Unknown never triggers a deletion.
	StatusUnknown
)

func (s ListingStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Listing is one scraped search result. All scraped fields are free text
// straight from the page. The identity of a listing is its URL with the
// query string stripped; featured placements carry tracking params like
// ?featured=1 that would otherwise split one posting into several.
type Listing struct {
	URL          string
	Address      string
	Price        string // e.g. "$3,200", may be "N/A"
	Beds         string // e.g. "1 bed", "Studio"
	Baths        string
	Sqft         string // e.g. "650 ft²", "N/A" when the card shows no number
	Neighborhood string // display label, e.g. "East Village"; empty on many sponsored cards
	ImageURL     string

	// Enrichment, filled in when a Geoclient lookup succeeds.
	CrossStreets string
	Latitude     *float64
	Longitude    *float64
	SubwayInfo   string
}

// PricePoint is one entry in a tracked listing's append-only price history.
type PricePoint struct {
	Price int       `json:"price"`
	Date  time.Time `json:"date"`
}

// TrackedListing is the persistent record for one listing URL across runs.
// It is created on first observation, refreshed on every re-observation and
// removed only by a confirmed-gone status check or a corrective geo-bounds
// deletion. A zero LastScraped means the record was never re-confirmed and
// sorts as maximally stale.
type TrackedListing struct {
	URL          string       `json:"-"`
	FirstSeen    time.Time    `json:"first_seen"`
	LastScraped  time.Time    `json:"last_scraped,omitempty"`
	Address      string       `json:"address"`
	Price        string       `json:"price"` // display string, updated on drops
	Neighborhood string       `json:"neighborhood"`
	Latitude     *float64     `json:"latitude,omitempty"`
	Longitude    *float64     `json:"longitude,omitempty"`
	PriceHistory []PricePoint `json:"price_history,omitempty"`
}

// HasCoordinates reports whether the record has been geocoded.
func (t *TrackedListing) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// DaysTracked returns whole days since the listing was first seen, or -1 if
// FirstSeen was never recorded.
func (t *TrackedListing) DaysTracked(now time.Time) int {
	if t.FirstSeen.IsZero() {
		return -1
	}
	return int(now.Sub(t.FirstSeen).Hours() / 24)
}

// PriceChange describes a detected price drop on a tracked listing.
type PriceChange struct {
	OldPrice int
	NewPrice int
	Savings  int
	Pct      float64
}
