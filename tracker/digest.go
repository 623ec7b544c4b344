package tracker

import (
	"log"

	"github.com/alvinlee00/nyc-apartment-tracker/digest"
	"github.com/alvinlee00/nyc-apartment-tracker/match"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/notify"
	"github.com/alvinlee00/nyc-apartment-tracker/store"
)

// RunDigest summarizes the last 24 hours and the tracked market. It always
// sends, even with no new listings; the analytics stand on their own.
func (t *Tracker) RunDigest() error {
	now := t.now().UTC()
	logBanner("NYC Apartment Tracker - Daily Digest", now)

	seen, err := t.tracked.LoadAll()
	if err != nil {
		return err
	}

	recent := digest.Recent(seen, now)
	log.Printf("Found %d listings in the last 24 hours (out of %d total)", len(recent), len(seen))

	analytics := digest.Compute(seen, now)

	if t.broadcast != nil {
		if err := t.broadcast.Send(notify.DailyDigest(recent, analytics, now)); err != nil {
			log.Printf("Failed to send daily digest: %v", err)
		} else {
			log.Printf("Sent daily digest with %d new listings and analytics", len(recent))
		}
	}

	if t.dm == nil || t.users == nil || t.notifyLog == nil {
		return nil
	}

	users, err := t.users.AllSubscribed()
	if err != nil {
		log.Printf("Failed to load subscribed users: %v", err)
		return nil
	}

	// One digest per user per calendar day, deduped like any other send.
	dedupKey := "digest-" + now.Format("Jan 02, 2006")
	dmCount := 0
	for _, user := range users {
		if !user.Notifications.DailyDigest {
			continue
		}
		if t.alreadySent(user.UserID, dedupKey, store.KindDailyDigest) {
			continue
		}

		var userRecent []*models.TrackedListing
		for _, rec := range recent {
			listing := models.Listing{
				URL:          rec.URL,
				Address:      rec.Address,
				Price:        rec.Price,
				Neighborhood: rec.Neighborhood,
			}
			if match.ListingMatchesUser(listing, user) {
				userRecent = append(userRecent, rec)
			}
		}

		msg := notify.UserDigest(userRecent, analytics, now)
		if t.sendDM(user.UserID, dedupKey, store.KindDailyDigest, msg, now) {
			dmCount++
		}
		t.pause(t.sendDelay)
	}
	log.Printf("Sent %d per-user digest DMs", dmCount)
	return nil
}
