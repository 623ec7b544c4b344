// Package store persists tracked listings, user preferences and the
// notification log. Two backends exist: a JSON file (tracked listings only,
// for single-user setups) and PostgreSQL.
package store

import (
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// Notification kinds logged for dedup.
const (
	KindNewListing  = "new_listing"
	KindPriceDrop   = "price_drop"
	KindDailyDigest = "daily_digest"
)

// RetentionWindow bounds how long notification-log entries are kept. An
// entry's only purpose is resend suppression; a month is plenty.
const RetentionWindow = 30 * 24 * time.Hour

// TrackedStore holds one record per listing URL ever seen.
type TrackedStore interface {
	// LoadAll returns every tracked record keyed by listing URL.
	LoadAll() (map[string]*models.TrackedListing, error)
	Upsert(url string, rec *models.TrackedListing) error
	Delete(url string) error
	// Get returns (nil, nil) when the URL is not tracked.
	Get(url string) (*models.TrackedListing, error)
}

// UserStore holds one preference record per subscriber.
type UserStore interface {
	// Get returns (nil, nil) when the user is unknown.
	Get(userID string) (*models.UserPreferences, error)
	Create(prefs *models.UserPreferences) error
	Update(prefs *models.UserPreferences) error
	// SetSubscribed pauses or resumes delivery without touching filters.
	SetSubscribed(userID string, subscribed bool) error
	Delete(userID string) (bool, error)
	AllSubscribed() ([]*models.UserPreferences, error)
	All() ([]*models.UserPreferences, error)
}

// NotificationLog is the append-only dedup log for personalized sends.
// Absence of an entry means "not yet sent". Any logged entry, success or
// failure, suppresses a resend: a delivery that failed once is not worth
// re-spamming on every subsequent run.
type NotificationLog interface {
	WasSent(userID, listingURL, kind string) (bool, error)
	Log(userID, listingURL, kind string, success bool, at time.Time) error
	// Purge drops entries older than the cutoff.
	Purge(olderThan time.Time) error
}
