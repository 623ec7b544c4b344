// Package config loads the tracker configuration from a YAML file.
// Secrets (tokens, connection strings, API keys) never live in the file;
// they come from the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GeoBounds is a longitude box for filtering listings geographically.
type GeoBounds struct {
	WestLongitude float64 `yaml:"west_longitude"`
	EastLongitude float64 `yaml:"east_longitude"`
}

// Config is the full tracker configuration.
type Config struct {
	Search struct {
		Neighborhoods []string   `yaml:"neighborhoods"`
		MinPrice      int        `yaml:"min_price"`
		MaxPrice      int        `yaml:"max_price"`
		BedRooms      []int      `yaml:"bed_rooms"`
		NoFee         bool       `yaml:"no_fee"`
		GeoBounds     *GeoBounds `yaml:"geo_bounds"`
	} `yaml:"search"`

	Scraper struct {
		RequestDelaySeconds int `yaml:"request_delay_seconds"`
	} `yaml:"scraper"`

	Discord struct {
		Username  string `yaml:"username"`
		AvatarURL string `yaml:"avatar_url"`
	} `yaml:"discord"`

	Telegram struct {
		ChatID int64 `yaml:"chat_id"`
	} `yaml:"telegram"`

	Sheets struct {
		SpreadsheetURL  string `yaml:"spreadsheet_url"`
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"sheets"`
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Search.MaxPrice <= 0 {
		return nil, fmt.Errorf("search.max_price must be set")
	}
	if len(cfg.Search.Neighborhoods) == 0 {
		return nil, fmt.Errorf("search.neighborhoods must not be empty")
	}
	return cfg, nil
}

// Default returns a configuration with sensible defaults; Load overlays the
// file on top of it.
func Default() *Config {
	cfg := &Config{}
	cfg.Search.MaxPrice = 5000
	cfg.Search.BedRooms = []int{0, 1}
	cfg.Search.NoFee = false
	cfg.Scraper.RequestDelaySeconds = 2
	cfg.Discord.Username = "NYC Apartment Tracker"
	return cfg
}
