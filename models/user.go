package models

import "time"

// GeoBounds is a longitude bounding box. StreetEasy neighborhoods span
// narrow east-west bands, so a longitude range is enough to cut off
// waterfront outliers (e.g. FDR Drive buildings).
type GeoBounds struct {
	WestLongitude float64 `json:"west_longitude" yaml:"west_longitude"`
	EastLongitude float64 `json:"east_longitude" yaml:"east_longitude"`
}

// Contains reports whether a longitude falls inside the box. A nil receiver
// or missing longitude always passes: absence of data never disqualifies.
func (g *GeoBounds) Contains(longitude *float64) bool {
	if g == nil || longitude == nil {
		return true
	}
	return g.WestLongitude <= *longitude && *longitude <= g.EastLongitude
}

// Filters is one subscriber's listing filter set. Zero values mean "no
// constraint": an empty Neighborhoods slice matches every area, MaxPrice 0
// means unlimited, an empty BedRooms slice matches any bed count.
type Filters struct {
	Neighborhoods []string   `json:"neighborhoods"`
	MinPrice      int        `json:"min_price"`
	MaxPrice      int        `json:"max_price"`
	BedRooms      []string   `json:"bed_rooms"`
	NoFee         bool       `json:"no_fee"`
	GeoBounds     *GeoBounds `json:"geo_bounds,omitempty"`
}

// NotificationSettings toggles the three notification kinds per subscriber.
type NotificationSettings struct {
	NewListings bool `json:"new_listings"`
	PriceDrops  bool `json:"price_drops"`
	DailyDigest bool `json:"daily_digest"`
}

// UserPreferences is the persistent per-subscriber record, keyed by the chat
// platform user id. Subscribed toggles delivery without deleting the record
// (pause and delete are distinct operations).
type UserPreferences struct {
	UserID        string               `json:"user_id"`
	Username      string               `json:"username"`
	Subscribed    bool                 `json:"subscribed"`
	Filters       Filters              `json:"filters"`
	Notifications NotificationSettings `json:"notification_settings"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DefaultFilters returns the filter set new subscribers start with.
func DefaultFilters() Filters {
	return Filters{
		Neighborhoods: nil,
		MinPrice:      0,
		MaxPrice:      5000,
		BedRooms:      nil,
		NoFee:         false,
		GeoBounds:     nil,
	}
}

// DefaultNotificationSettings enables every notification kind.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{NewListings: true, PriceDrops: true, DailyDigest: true}
}

// NewUserPreferences builds a subscriber record with defaults.
func NewUserPreferences(userID, username string, now time.Time) *UserPreferences {
	return &UserPreferences{
		UserID:        userID,
		Username:      username,
		Subscribed:    true,
		Filters:       DefaultFilters(),
		Notifications: DefaultNotificationSettings(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
