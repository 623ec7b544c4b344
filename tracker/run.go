package tracker

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/geo"
	"github.com/alvinlee00/nyc-apartment-tracker/match"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/notify"
	"github.com/alvinlee00/nyc-apartment-tracker/parser"
	"github.com/alvinlee00/nyc-apartment-tracker/score"
	"github.com/alvinlee00/nyc-apartment-tracker/store"
	"github.com/alvinlee00/nyc-apartment-tracker/subway"
)

// PriceDrop pairs a reduced listing with its detected change.
type PriceDrop struct {
	Listing     models.Listing
	Change      models.PriceChange
	DaysTracked int
}

// Plan is what one scrape run decided to announce. On the first run the new
// listings collapse into a single summary instead of individual alerts.
type Plan struct {
	FirstRun    bool
	NewListings []models.Listing
	PriceDrops  []PriceDrop

	TotalFound int
	Removed    int
}

// DetectPriceChange compares a record's stored price against the currently
// observed one. Only a decrease counts; increases and unparseable stored
// prices return nil.
func DetectPriceChange(rec *models.TrackedListing, currentPrice int) *models.PriceChange {
	oldPrice, ok := parser.ParsePrice(rec.Price)
	if !ok || currentPrice <= 0 || currentPrice >= oldPrice {
		return nil
	}
	savings := oldPrice - currentPrice
	pct := math.Round(float64(savings)/float64(oldPrice)*1000) / 10
	return &models.PriceChange{
		OldPrice: oldPrice,
		NewPrice: currentPrice,
		Savings:  savings,
		Pct:      pct,
	}
}

// applyPriceDrop records the new price in the history and updates the
// display price.
func applyPriceDrop(rec *models.TrackedListing, newPrice int, now time.Time) {
	rec.PriceHistory = append(rec.PriceHistory, models.PricePoint{Price: newPrice, Date: now})
	rec.Price = formatDollars(newPrice)
}

// RunScrape executes a full cycle: scrape, reconcile, notify, clean up,
// persist. The returned Plan reports what was found and announced.
func (t *Tracker) RunScrape() (*Plan, error) {
	now := t.now().UTC()
	logBanner("NYC Apartment Tracker starting", now)

	seen, err := t.tracked.LoadAll()
	if err != nil {
		return nil, err
	}
	log.Printf("Previously seen: %d listings", len(seen))

	plan := &Plan{FirstRun: len(seen) == 0}
	if plan.FirstRun {
		log.Println("First run detected - will send summary instead of individual notifications")
	}

	// Medians reflect the tracked set before this run touches it.
	medians := score.NeighborhoodMedians(seen)

	areas := t.areasToScrape()
	log.Printf("Scraping %d areas, max %s", len(areas), formatDollars(t.search.MaxPrice))

	for _, area := range areas {
		for _, listing := range t.scrapeArea(area) {
			plan.TotalFound++
			t.reconcile(listing, seen, plan, now)
		}
	}

	t.deliverBroadcasts(plan, medians, now)

	if !plan.FirstRun && t.dm != nil && t.users != nil && t.notifyLog != nil {
		t.sendPersonalized(plan, medians, now)
	}

	plan.Removed = t.cleanupStale(seen, now)
	if plan.Removed > 0 {
		log.Printf("Cleaned up %d stale/rented listing(s)", plan.Removed)
	}

	if t.notifyLog != nil {
		if err := t.notifyLog.Purge(now.Add(-store.RetentionWindow)); err != nil {
			log.Printf("Failed to purge notification log: %v", err)
		}
	}

	log.Printf("Done. Found %d total listings, %d new, %d price drops.",
		plan.TotalFound, len(plan.NewListings), len(plan.PriceDrops))
	log.Printf("Tracking %d listings total.", len(seen))
	return plan, nil
}

// reconcile folds one scraped listing into the tracked set, updating the
// plan with anything worth announcing.
func (t *Tracker) reconcile(listing models.Listing, seen map[string]*models.TrackedListing, plan *Plan, now time.Time) {
	url := listing.URL
	currentPrice, priceOK := parser.ParsePrice(listing.Price)

	if rec, ok := seen[url]; ok {
		rec.LastScraped = now

		// Lazy geo backfill for records predating coordinate capture.
		if t.geo != nil && !rec.HasCoordinates() {
			if res, err := t.geo.Lookup(rec.Address); err != nil {
				log.Printf("Failed geoclient lookup for %s: %v", rec.Address, err)
			} else if res != nil {
				rec.Latitude, rec.Longitude = res.Latitude, res.Longitude
				if !t.withinBounds(res.Longitude) {
					log.Printf("REMOVING (geo bounds): %s", rec.Address)
					t.remove(seen, url)
					return
				}
			}
		}

		if priceOK && !plan.FirstRun {
			if change := DetectPriceChange(rec, currentPrice); change != nil {
				log.Printf("PRICE DROP: %s - $%d -> $%d (%v%%)",
					rec.Address, change.OldPrice, change.NewPrice, change.Pct)
				plan.PriceDrops = append(plan.PriceDrops, PriceDrop{
					Listing: models.Listing{
						URL:          url,
						Address:      rec.Address,
						Neighborhood: rec.Neighborhood,
					},
					Change:      *change,
					DaysTracked: rec.DaysTracked(now),
				})
				applyPriceDrop(rec, currentPrice, now)
			}
		}
		t.persist(url, rec)
		return
	}

	// New listing. Geocode before admitting it so the bounds filter can veto.
	var res *geo.Result
	if t.geo != nil {
		r, err := t.geo.Lookup(listing.Address)
		if err != nil {
			log.Printf("Failed geoclient lookup for %s: %v", listing.Address, err)
		} else {
			res = r
		}
	}
	var longitude *float64
	if res != nil {
		longitude = res.Longitude
	}
	if !t.withinBounds(longitude) {
		log.Printf("FILTERED (geo bounds): %s", listing.Address)
		return
	}

	rec := &models.TrackedListing{
		URL:          url,
		FirstSeen:    now,
		LastScraped:  now,
		Address:      listing.Address,
		Price:        listing.Price,
		Neighborhood: listing.Neighborhood,
	}
	if res != nil {
		listing.CrossStreets = res.CrossStreets
		if res.Latitude != nil && res.Longitude != nil {
			rec.Latitude, rec.Longitude = res.Latitude, res.Longitude
			listing.Latitude, listing.Longitude = res.Latitude, res.Longitude
			nearby := t.stations.Nearest(*res.Latitude, *res.Longitude,
				subway.DefaultMaxStations, subway.DefaultMaxMiles)
			if len(nearby) > 0 {
				listing.SubwayInfo = subway.FormatNearby(nearby)
			}
		}
	}

	seen[url] = rec
	t.persist(url, rec)
	plan.NewListings = append(plan.NewListings, listing)
	log.Printf("NEW: %s - %s - %s", listing.Price, listing.Address, listing.Neighborhood)
}

func (t *Tracker) persist(url string, rec *models.TrackedListing) {
	if err := t.tracked.Upsert(url, rec); err != nil {
		log.Printf("Failed to persist %s: %v", url, err)
	}
}

func (t *Tracker) remove(seen map[string]*models.TrackedListing, url string) {
	delete(seen, url)
	if err := t.tracked.Delete(url); err != nil {
		log.Printf("Failed to delete %s: %v", url, err)
	}
}

// valueScore computes a listing's value score, using nearby stations when
// the listing is geocoded.
func (t *Tracker) valueScore(listing models.Listing, medians map[string]float64) *score.Score {
	var nearby []subway.Nearby
	if listing.Latitude != nil && listing.Longitude != nil {
		nearby = t.stations.Nearest(*listing.Latitude, *listing.Longitude,
			subway.DefaultMaxStations, subway.DefaultMaxMiles)
	}
	return score.Compute(listing, medians, nearby)
}

// deliverBroadcasts sends the shared-channel announcements from the plan.
func (t *Tracker) deliverBroadcasts(plan *Plan, medians map[string]float64, now time.Time) {
	if t.broadcast == nil {
		return
	}

	if plan.FirstRun {
		if len(plan.NewListings) == 0 {
			return
		}
		if err := t.broadcast.Send(notify.FirstRunSummary(plan.NewListings, now)); err != nil {
			log.Printf("Failed to send first-run summary: %v", err)
			return
		}
		log.Printf("Sent first-run summary notification (%d listings)", len(plan.NewListings))
		return
	}

	for _, drop := range plan.PriceDrops {
		msg := notify.PriceDrop(drop.Listing, drop.Change, drop.DaysTracked, now)
		if err := t.broadcast.Send(msg); err != nil {
			log.Printf("Failed to send price drop notification: %v", err)
		}
		t.pause(t.sendDelay)
	}
	for _, listing := range plan.NewListings {
		vs := t.valueScore(listing, medians)
		if err := t.broadcast.Send(notify.NewListing(listing, -1, vs, now)); err != nil {
			log.Printf("Failed to send listing notification: %v", err)
		}
		t.pause(t.sendDelay)
	}
}

// sendPersonalized fans the plan out to each subscriber whose filters match,
// deduplicating through the notification log.
func (t *Tracker) sendPersonalized(plan *Plan, medians map[string]float64, now time.Time) {
	users, err := t.users.AllSubscribed()
	if err != nil {
		log.Printf("Failed to load subscribed users: %v", err)
		return
	}
	if len(users) == 0 {
		log.Println("No subscribed users - skipping personalized notifications")
		return
	}

	totalSent := 0
	for _, user := range users {
		if user.Notifications.NewListings {
			for _, listing := range plan.NewListings {
				if !match.ListingMatchesUser(listing, user) {
					continue
				}
				if t.alreadySent(user.UserID, listing.URL, store.KindNewListing) {
					continue
				}
				vs := t.valueScore(listing, medians)
				if t.sendDM(user.UserID, listing.URL, store.KindNewListing,
					notify.NewListing(listing, -1, vs, now), now) {
					totalSent++
				}
				t.pause(t.sendDelay)
			}
		}

		if user.Notifications.PriceDrops {
			for _, drop := range plan.PriceDrops {
				if !match.ListingMatchesUser(drop.Listing, user) {
					continue
				}
				if t.alreadySent(user.UserID, drop.Listing.URL, store.KindPriceDrop) {
					continue
				}
				msg := notify.PriceDrop(drop.Listing, drop.Change, drop.DaysTracked, now)
				if t.sendDM(user.UserID, drop.Listing.URL, store.KindPriceDrop, msg, now) {
					totalSent++
				}
				t.pause(t.sendDelay)
			}
		}
	}
	log.Printf("Sent %d personalized DMs to %d users", totalSent, len(users))
}

func (t *Tracker) alreadySent(userID, listingURL, kind string) bool {
	sent, err := t.notifyLog.WasSent(userID, listingURL, kind)
	if err != nil {
		log.Printf("Failed to check notification log: %v", err)
		return false
	}
	return sent
}

// sendDM delivers one message and logs the attempt either way, so a failed
// send is not retried on the next run.
func (t *Tracker) sendDM(userID, listingURL, kind string, msg notify.Message, now time.Time) bool {
	err := t.dm.SendTo(userID, msg)
	if err != nil {
		log.Printf("Failed to send DM to user %s: %v", userID, err)
	}
	if logErr := t.notifyLog.Log(userID, listingURL, kind, err == nil, now); logErr != nil {
		log.Printf("Failed to log notification: %v", logErr)
	}
	return err == nil
}

// cleanupStale re-checks records not sighted for a week, oldest first, and
// drops the ones whose listing pages are confirmed gone.
func (t *Tracker) cleanupStale(seen map[string]*models.TrackedListing, now time.Time) int {
	cutoff := now.Add(-7 * 24 * time.Hour)

	var stale []*models.TrackedListing
	for _, rec := range seen {
		if rec.LastScraped.IsZero() || rec.LastScraped.Before(cutoff) {
			stale = append(stale, rec)
		}
	}
	// Zero LastScraped sorts first; those records are the likeliest corpses.
	sort.Slice(stale, func(i, j int) bool {
		if stale[i].LastScraped.Equal(stale[j].LastScraped) {
			return stale[i].URL < stale[j].URL
		}
		return stale[i].LastScraped.Before(stale[j].LastScraped)
	})
	if len(stale) > maxStaleChecks {
		stale = stale[:maxStaleChecks]
	}

	removed := 0
	for i, rec := range stale {
		if i > 0 {
			t.pause(t.delay)
		}
		if _, ok := seen[rec.URL]; !ok {
			continue
		}

		if t.geo != nil && !rec.HasCoordinates() {
			if res, err := t.geo.Lookup(rec.Address); err != nil {
				log.Printf("Failed geoclient lookup for %s: %v", rec.Address, err)
			} else if res != nil {
				rec.Latitude, rec.Longitude = res.Latitude, res.Longitude
				if !t.withinBounds(res.Longitude) {
					log.Printf("REMOVING (geo bounds during cleanup): %s", rec.Address)
					t.remove(seen, rec.URL)
					removed++
					continue
				}
			}
		}

		switch t.fetch.CheckStatus(rec.URL) {
		case models.StatusGone:
			log.Printf("REMOVING (rented/gone): %s - %s", rec.Address, rec.URL)
			t.remove(seen, rec.URL)
			removed++
		case models.StatusActive:
			rec.LastScraped = now
			t.persist(rec.URL, rec)
		default:
			// Unknown: leave it, retry next run.
		}
	}
	return removed
}
