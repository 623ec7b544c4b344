package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/alvinlee00/nyc-apartment-tracker/config"
	"github.com/alvinlee00/nyc-apartment-tracker/fetcher"
	"github.com/alvinlee00/nyc-apartment-tracker/geo"
	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/notify"
	"github.com/alvinlee00/nyc-apartment-tracker/sheets"
	"github.com/alvinlee00/nyc-apartment-tracker/store"
	"github.com/alvinlee00/nyc-apartment-tracker/subway"
	"github.com/alvinlee00/nyc-apartment-tracker/tracker"
)

const subwayDataPath = "data/subway_stations.json"

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	digestMode := flag.Bool("digest", false, "Send daily digest instead of scraping")
	flag.Parse()

	// Load .env file if present (development convenience)
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env file")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Storage: PostgreSQL when DATABASE_URL is set, else a local JSON file.
	// Per-user features need the database.
	var (
		trackedStore store.TrackedStore
		userStore    store.UserStore
		notifyLog    store.NotificationLog
	)
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		pg, err := store.NewPostgres(dsn)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		trackedStore = pg.Listings
		userStore = pg.Users
		notifyLog = pg.Log
		log.Println("Using PostgreSQL storage; per-user notifications enabled")
	} else {
		trackedStore = store.NewFileStore("seen_listings.json")
		log.Println("DATABASE_URL not set; using seen_listings.json, per-user notifications disabled")
	}

	// Notification backends. Discord webhook broadcasts; the bot token adds
	// per-user DMs. Telegram covers both roles when Discord is absent.
	var (
		broadcast notify.Broadcaster
		dm        notify.Messenger
	)
	if webhookURL := os.Getenv("DISCORD_WEBHOOK_URL"); webhookURL != "" {
		broadcast = notify.NewDiscordWebhook(webhookURL, cfg.Discord.Username, cfg.Discord.AvatarURL)
	}
	if botToken := os.Getenv("DISCORD_BOT_TOKEN"); botToken != "" {
		dm = notify.NewDiscordBot(botToken)
	}
	if broadcast == nil && dm == nil {
		if tgToken := os.Getenv("TELEGRAM_BOT_TOKEN"); tgToken != "" {
			tg, err := notify.NewTelegram(tgToken, cfg.Telegram.ChatID)
			if err != nil {
				log.Fatalf("Failed to create telegram bot: %v", err)
			}
			if cfg.Telegram.ChatID != 0 {
				broadcast = tg
			}
			dm = tg
		}
	}
	if broadcast == nil && dm == nil {
		log.Println("Warning: no notification backend configured - will scrape but skip notifications")
	}

	var locator tracker.Locator
	if gc := geo.New(os.Getenv("NYC_GEOCLIENT_KEY")); gc != nil {
		locator = gc
	} else {
		log.Println("NYC_GEOCLIENT_KEY not set - cross streets will be omitted")
	}

	stations, err := subway.Load(subwayDataPath)
	if err != nil {
		log.Printf("Could not load subway station data: %v", err)
	}

	var bounds *models.GeoBounds
	if cfg.Search.GeoBounds != nil {
		bounds = &models.GeoBounds{
			WestLongitude: cfg.Search.GeoBounds.WestLongitude,
			EastLongitude: cfg.Search.GeoBounds.EastLongitude,
		}
	}

	delay := time.Duration(cfg.Scraper.RequestDelaySeconds) * time.Second
	t := tracker.New(tracker.Params{
		Fetcher:   fetcher.New(delay),
		Geo:       locator,
		Stations:  stations,
		Tracked:   trackedStore,
		Users:     userStore,
		Log:       notifyLog,
		Broadcast: broadcast,
		DM:        dm,
		Search: tracker.SearchOptions{
			Neighborhoods: cfg.Search.Neighborhoods,
			MinPrice:      cfg.Search.MinPrice,
			MaxPrice:      cfg.Search.MaxPrice,
			BedRooms:      cfg.Search.BedRooms,
			NoFee:         cfg.Search.NoFee,
			GeoBounds:     bounds,
		},
		RequestDelay: delay,
		SendDelay:    time.Second,
	})

	if *digestMode {
		if err := t.RunDigest(); err != nil {
			log.Fatalf("Digest run failed: %v", err)
		}
		return
	}

	if _, err := t.RunScrape(); err != nil {
		log.Fatalf("Scrape run failed: %v", err)
	}

	exportSnapshot(cfg, trackedStore)
}

// exportSnapshot writes the tracked set to Google Sheets when configured.
func exportSnapshot(cfg *config.Config, trackedStore store.TrackedStore) {
	if cfg.Sheets.SpreadsheetURL == "" {
		return
	}
	writer, err := sheets.NewWriter(sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL), cfg.Sheets.CredentialsFile)
	if err != nil {
		log.Printf("Sheets export disabled: %v", err)
		return
	}
	tracked, err := trackedStore.LoadAll()
	if err != nil {
		log.Printf("Failed to load tracked listings for export: %v", err)
		return
	}
	if err := writer.WriteSnapshot(tracked, time.Now().UTC()); err != nil {
		log.Printf("Failed to export snapshot: %v", err)
	}
}
