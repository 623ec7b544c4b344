// Package sheets exports a snapshot of the tracked set to Google Sheets.
// The export is optional; runs without a configured spreadsheet skip it.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// Writer handles writing tracked listings to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewWriter creates a new Google Sheets writer. Credentials come from the
// given file path, or from the GOOGLE_SHEETS_CREDENTIALS environment
// variable when the path is empty.
func NewWriter(spreadsheetID string, credentialsPath string) (*Writer, error) {
	ctx := context.Background()

	var credsJSON []byte
	var err error
	if credentialsPath != "" {
		credsJSON, err = os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	// Validate that it's a service account credentials file
	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// WriteSnapshot replaces the sheet contents with the current tracked set,
// ordered oldest first.
func (w *Writer) WriteSnapshot(tracked map[string]*models.TrackedListing, now time.Time) error {
	if len(tracked) == 0 {
		log.Println("No tracked listings to export")
		return nil
	}

	records := make([]*models.TrackedListing, 0, len(tracked))
	for _, rec := range tracked {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].FirstSeen.Equal(records[j].FirstSeen) {
			return records[i].FirstSeen.Before(records[j].FirstSeen)
		}
		return records[i].URL < records[j].URL
	})

	values := [][]interface{}{
		{"Address", "Neighborhood", "Price", "Days Tracked", "Price Changes", "First Seen", "Last Scraped", "URL"},
	}
	for _, rec := range records {
		lastScraped := ""
		if !rec.LastScraped.IsZero() {
			lastScraped = rec.LastScraped.UTC().Format("2006-01-02")
		}
		values = append(values, []interface{}{
			rec.Address,
			rec.Neighborhood,
			rec.Price,
			rec.DaysTracked(now),
			len(rec.PriceHistory),
			rec.FirstSeen.UTC().Format("2006-01-02"),
			lastScraped,
			rec.URL,
		})
	}

	range_ := "Sheet1!A1"
	clearReq := &sheets.ClearValuesRequest{}
	if _, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, "Sheet1", clearReq).Do(); err != nil {
		log.Printf("Warning: Failed to clear existing data: %v", err)
		// Continue anyway
	}

	valueRange := &sheets.ValueRange{Values: values}
	_, err := w.service.Spreadsheets.Values.Update(w.spreadsheetID, range_, valueRange).
		ValueInputOption("RAW").
		Do()
	if err != nil {
		return fmt.Errorf("failed to write to sheets: %w", err)
	}

	log.Printf("Exported %d tracked listings to Google Sheets", len(records))
	return nil
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
// like https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit.
func ExtractSpreadsheetID(url string) string {
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return url // assume it's already a bare ID
	}
	id := parts[1]
	if i := strings.IndexAny(id, "/?#"); i >= 0 {
		id = id[:i]
	}
	return id
}
