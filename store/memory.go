package store

import (
	"sort"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// MemoryTracked is a map-backed TrackedStore. Used when no database is
// configured and in tests.
type MemoryTracked struct {
	records map[string]*models.TrackedListing
}

func NewMemoryTracked() *MemoryTracked {
	return &MemoryTracked{records: make(map[string]*models.TrackedListing)}
}

func (m *MemoryTracked) LoadAll() (map[string]*models.TrackedListing, error) {
	out := make(map[string]*models.TrackedListing, len(m.records))
	for url, rec := range m.records {
		out[url] = rec
	}
	return out, nil
}

func (m *MemoryTracked) Get(url string) (*models.TrackedListing, error) {
	return m.records[url], nil
}

func (m *MemoryTracked) Upsert(url string, rec *models.TrackedListing) error {
	m.records[url] = rec
	return nil
}

func (m *MemoryTracked) Delete(url string) error {
	delete(m.records, url)
	return nil
}

// MemoryUsers is a map-backed UserStore.
type MemoryUsers struct {
	users map[string]*models.UserPreferences
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]*models.UserPreferences)}
}

func (m *MemoryUsers) Get(userID string) (*models.UserPreferences, error) {
	return m.users[userID], nil
}

func (m *MemoryUsers) Create(prefs *models.UserPreferences) error {
	m.users[prefs.UserID] = prefs
	return nil
}

func (m *MemoryUsers) Update(prefs *models.UserPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	m.users[prefs.UserID] = prefs
	return nil
}

func (m *MemoryUsers) SetSubscribed(userID string, subscribed bool) error {
	if prefs, ok := m.users[userID]; ok {
		prefs.Subscribed = subscribed
		prefs.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (m *MemoryUsers) Delete(userID string) (bool, error) {
	if _, ok := m.users[userID]; !ok {
		return false, nil
	}
	delete(m.users, userID)
	return true, nil
}

func (m *MemoryUsers) AllSubscribed() ([]*models.UserPreferences, error) {
	all, _ := m.All()
	subscribed := all[:0:0]
	for _, prefs := range all {
		if prefs.Subscribed {
			subscribed = append(subscribed, prefs)
		}
	}
	return subscribed, nil
}

func (m *MemoryUsers) All() ([]*models.UserPreferences, error) {
	users := make([]*models.UserPreferences, 0, len(m.users))
	for _, prefs := range m.users {
		users = append(users, prefs)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

// MemoryLog is a map-backed NotificationLog.
type MemoryLog struct {
	entries map[logKey]time.Time
}

type logKey struct {
	userID     string
	listingURL string
	kind       string
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{entries: make(map[logKey]time.Time)}
}

func (m *MemoryLog) WasSent(userID, listingURL, kind string) (bool, error) {
	_, ok := m.entries[logKey{userID, listingURL, kind}]
	return ok, nil
}

func (m *MemoryLog) Log(userID, listingURL, kind string, success bool, at time.Time) error {
	m.entries[logKey{userID, listingURL, kind}] = at
	return nil
}

func (m *MemoryLog) Purge(olderThan time.Time) error {
	for key, at := range m.entries {
		if at.Before(olderThan) {
			delete(m.entries, key)
		}
	}
	return nil
}
