package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

// FileStore is the JSON-file TrackedStore used when no DATABASE_URL is
// configured. Every mutation is read-modify-write on the whole file; the
// tracked set is small (hundreds of listings) so this stays cheap.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at the given path. The file does not
// need to exist yet; a missing file reads as an empty store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) LoadAll() (map[string]*models.TrackedListing, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]*models.TrackedListing{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}

	tracked := make(map[string]*models.TrackedListing)
	if err := json.Unmarshal(data, &tracked); err != nil {
		// Legacy format: a bare JSON array of URLs. Migrate each entry to a
		// record first-seen now.
		var urls []string
		if legacyErr := json.Unmarshal(data, &urls); legacyErr != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
		now := time.Now().UTC()
		for _, url := range urls {
			tracked[url] = &models.TrackedListing{FirstSeen: now}
		}
	}
	for url, rec := range tracked {
		rec.URL = url
	}
	return tracked, nil
}

func (f *FileStore) Get(url string) (*models.TrackedListing, error) {
	tracked, err := f.LoadAll()
	if err != nil {
		return nil, err
	}
	return tracked[url], nil
}

func (f *FileStore) Upsert(url string, rec *models.TrackedListing) error {
	tracked, err := f.LoadAll()
	if err != nil {
		return err
	}
	tracked[url] = rec
	return f.saveAll(tracked)
}

func (f *FileStore) Delete(url string) error {
	tracked, err := f.LoadAll()
	if err != nil {
		return err
	}
	delete(tracked, url)
	return f.saveAll(tracked)
}

func (f *FileStore) saveAll(tracked map[string]*models.TrackedListing) error {
	data, err := json.MarshalIndent(tracked, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tracked listings: %w", err)
	}
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	return nil
}
