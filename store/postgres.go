package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// Postgres bundles the three persistence concerns over one PostgreSQL
// connection. Each facet satisfies its interface separately so callers can
// depend on just the slice they need.
type Postgres struct {
	conn *sql.DB

	Listings *PostgresListings
	Users    *PostgresUsers
	Log      *PostgresLog
}

// NewPostgres opens a connection, pings it and creates the schema.
func NewPostgres(dsn string) (*Postgres, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Postgres{conn: conn}
	p.Listings = &PostgresListings{conn: conn}
	p.Users = &PostgresUsers{conn: conn}
	p.Log = &PostgresLog{conn: conn}
	if err := p.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return p, nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.conn.Close()
}

// initSchema creates the necessary tables if they don't exist.
func (p *Postgres) initSchema() error {
	_, err := p.conn.Exec(`
		CREATE TABLE IF NOT EXISTS tracked_listings (
			url           TEXT PRIMARY KEY,
			first_seen    TIMESTAMPTZ NOT NULL,
			last_scraped  TIMESTAMPTZ,
			address       TEXT NOT NULL DEFAULT '',
			price         TEXT NOT NULL DEFAULT '',
			neighborhood  TEXT NOT NULL DEFAULT '',
			latitude      DOUBLE PRECISION,
			longitude     DOUBLE PRECISION,
			price_history JSONB NOT NULL DEFAULT '[]'
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tracked_listings table: %w", err)
	}

	_, err = p.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_preferences (
			user_id               TEXT PRIMARY KEY,
			username              TEXT NOT NULL DEFAULT '',
			subscribed            BOOLEAN NOT NULL DEFAULT TRUE,
			filters               JSONB NOT NULL DEFAULT '{}',
			notification_settings JSONB NOT NULL DEFAULT '{}',
			created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_preferences table: %w", err)
	}

	_, err = p.conn.Exec(`
		CREATE TABLE IF NOT EXISTS notification_log (
			id          SERIAL PRIMARY KEY,
			user_id     TEXT NOT NULL,
			listing_url TEXT NOT NULL,
			kind        TEXT NOT NULL,
			success     BOOLEAN NOT NULL,
			sent_at     TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notification_log table: %w", err)
	}

	if _, err = p.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_notification_log_dedup
		ON notification_log(user_id, listing_url, kind)
	`); err != nil {
		log.Printf("Warning: Failed to create index on notification_log: %v", err)
	}
	if _, err = p.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_notification_log_sent_at
		ON notification_log(sent_at)
	`); err != nil {
		log.Printf("Warning: Failed to create index on notification_log.sent_at: %v", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// PostgresListings implements TrackedStore.
type PostgresListings struct {
	conn *sql.DB
}

func (s *PostgresListings) LoadAll() (map[string]*models.TrackedListing, error) {
	rows, err := s.conn.Query(`
		SELECT url, first_seen, last_scraped, address, price, neighborhood,
		       latitude, longitude, price_history
		FROM tracked_listings
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracked listings: %w", err)
	}
	defer rows.Close()

	tracked := make(map[string]*models.TrackedListing)
	for rows.Next() {
		rec, err := scanTracked(rows)
		if err != nil {
			return nil, err
		}
		tracked[rec.URL] = rec
	}
	return tracked, rows.Err()
}

func (s *PostgresListings) Get(url string) (*models.TrackedListing, error) {
	row := s.conn.QueryRow(`
		SELECT url, first_seen, last_scraped, address, price, neighborhood,
		       latitude, longitude, price_history
		FROM tracked_listings WHERE url = $1
	`, url)
	rec, err := scanTracked(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanTracked(row rowScanner) (*models.TrackedListing, error) {
	var (
		rec         models.TrackedListing
		lastScraped sql.NullTime
		historyJSON []byte
	)
	err := row.Scan(&rec.URL, &rec.FirstSeen, &lastScraped, &rec.Address,
		&rec.Price, &rec.Neighborhood, &rec.Latitude, &rec.Longitude, &historyJSON)
	if err != nil {
		return nil, err
	}
	if lastScraped.Valid {
		rec.LastScraped = lastScraped.Time
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &rec.PriceHistory); err != nil {
			return nil, fmt.Errorf("failed to decode price history for %s: %w", rec.URL, err)
		}
	}
	return &rec, nil
}

func (s *PostgresListings) Upsert(url string, rec *models.TrackedListing) error {
	historyJSON, err := json.Marshal(rec.PriceHistory)
	if err != nil {
		return fmt.Errorf("failed to encode price history: %w", err)
	}
	var lastScraped *time.Time
	if !rec.LastScraped.IsZero() {
		lastScraped = &rec.LastScraped
	}

	_, err = s.conn.Exec(`
		INSERT INTO tracked_listings
			(url, first_seen, last_scraped, address, price, neighborhood,
			 latitude, longitude, price_history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (url) DO UPDATE SET
			last_scraped  = EXCLUDED.last_scraped,
			address       = EXCLUDED.address,
			price         = EXCLUDED.price,
			neighborhood  = EXCLUDED.neighborhood,
			latitude      = EXCLUDED.latitude,
			longitude     = EXCLUDED.longitude,
			price_history = EXCLUDED.price_history
	`, url, rec.FirstSeen, lastScraped, rec.Address, rec.Price, rec.Neighborhood,
		rec.Latitude, rec.Longitude, historyJSON)
	if err != nil {
		return fmt.Errorf("failed to upsert tracked listing: %w", err)
	}
	return nil
}

func (s *PostgresListings) Delete(url string) error {
	if _, err := s.conn.Exec(`DELETE FROM tracked_listings WHERE url = $1`, url); err != nil {
		return fmt.Errorf("failed to delete tracked listing: %w", err)
	}
	return nil
}

// PostgresUsers implements UserStore.
type PostgresUsers struct {
	conn *sql.DB
}

func (s *PostgresUsers) Get(userID string) (*models.UserPreferences, error) {
	row := s.conn.QueryRow(`
		SELECT user_id, username, subscribed, filters, notification_settings,
		       created_at, updated_at
		FROM user_preferences WHERE user_id = $1
	`, userID)
	prefs, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return prefs, err
}

func scanUser(row rowScanner) (*models.UserPreferences, error) {
	var (
		prefs       models.UserPreferences
		filtersJSON []byte
		notifJSON   []byte
	)
	err := row.Scan(&prefs.UserID, &prefs.Username, &prefs.Subscribed,
		&filtersJSON, &notifJSON, &prefs.CreatedAt, &prefs.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(filtersJSON, &prefs.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filters for %s: %w", prefs.UserID, err)
	}
	if err := json.Unmarshal(notifJSON, &prefs.Notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notification settings for %s: %w", prefs.UserID, err)
	}
	return &prefs, nil
}

func (s *PostgresUsers) Create(prefs *models.UserPreferences) error {
	return s.write(prefs, `
		INSERT INTO user_preferences
			(user_id, username, subscribed, filters, notification_settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
}

func (s *PostgresUsers) Update(prefs *models.UserPreferences) error {
	prefs.UpdatedAt = time.Now().UTC()
	return s.write(prefs, `
		INSERT INTO user_preferences
			(user_id, username, subscribed, filters, notification_settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			username              = EXCLUDED.username,
			subscribed            = EXCLUDED.subscribed,
			filters               = EXCLUDED.filters,
			notification_settings = EXCLUDED.notification_settings,
			updated_at            = EXCLUDED.updated_at
	`)
}

func (s *PostgresUsers) write(prefs *models.UserPreferences, query string) error {
	filtersJSON, err := json.Marshal(prefs.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	notifJSON, err := json.Marshal(prefs.Notifications)
	if err != nil {
		return fmt.Errorf("failed to encode notification settings: %w", err)
	}
	_, err = s.conn.Exec(query, prefs.UserID, prefs.Username, prefs.Subscribed,
		filtersJSON, notifJSON, prefs.CreatedAt, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to write user %s: %w", prefs.UserID, err)
	}
	return nil
}

func (s *PostgresUsers) SetSubscribed(userID string, subscribed bool) error {
	_, err := s.conn.Exec(`
		UPDATE user_preferences SET subscribed = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, subscribed)
	if err != nil {
		return fmt.Errorf("failed to set subscription for %s: %w", userID, err)
	}
	return nil
}

func (s *PostgresUsers) Delete(userID string) (bool, error) {
	res, err := s.conn.Exec(`DELETE FROM user_preferences WHERE user_id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete user %s: %w", userID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *PostgresUsers) AllSubscribed() ([]*models.UserPreferences, error) {
	return s.query(`
		SELECT user_id, username, subscribed, filters, notification_settings,
		       created_at, updated_at
		FROM user_preferences WHERE subscribed = TRUE
	`)
}

func (s *PostgresUsers) All() ([]*models.UserPreferences, error) {
	return s.query(`
		SELECT user_id, username, subscribed, filters, notification_settings,
		       created_at, updated_at
		FROM user_preferences
	`)
}

func (s *PostgresUsers) query(query string) ([]*models.UserPreferences, error) {
	rows, err := s.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserPreferences
	for rows.Next() {
		prefs, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, prefs)
	}
	return users, rows.Err()
}

// PostgresLog implements NotificationLog.
type PostgresLog struct {
	conn *sql.DB
}

func (s *PostgresLog) WasSent(userID, listingURL, kind string) (bool, error) {
	var exists bool
	err := s.conn.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM notification_log
			WHERE user_id = $1 AND listing_url = $2 AND kind = $3
		)
	`, userID, listingURL, kind).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check notification log: %w", err)
	}
	return exists, nil
}

func (s *PostgresLog) Log(userID, listingURL, kind string, success bool, at time.Time) error {
	_, err := s.conn.Exec(`
		INSERT INTO notification_log (user_id, listing_url, kind, success, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, listingURL, kind, success, at)
	if err != nil {
		return fmt.Errorf("failed to log notification: %w", err)
	}
	return nil
}

func (s *PostgresLog) Purge(olderThan time.Time) error {
	if _, err := s.conn.Exec(`DELETE FROM notification_log WHERE sent_at < $1`, olderThan); err != nil {
		return fmt.Errorf("failed to purge notification log: %w", err)
	}
	return nil
}
