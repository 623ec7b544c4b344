// Package fetcher retrieves StreetEasy pages over HTTP with a fixed
// inter-request delay. It is the only package that talks to the site.
package fetcher

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Page is a successfully fetched and parsed page.
type Page struct {
	Doc        *goquery.Document
	StatusCode int
}

// HTTPError is a response with a 4xx/5xx status. The engine distinguishes
// 404 (confirmed gone) from 403 (blocked/rate-limited) from the rest.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Fetcher wraps a colly collector configured for single-connection,
// delay-throttled fetching. Not safe for concurrent use; a run is
// single-threaded.
type Fetcher struct {
	collector *colly.Collector

	lastBody   []byte
	lastStatus int
	lastErr    error
}

// New creates a Fetcher with the given delay between successive requests.
func New(delay time.Duration) *Fetcher {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(30 * time.Second)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		Delay:       delay,
	})

	f := &Fetcher{collector: c}
	c.OnResponse(func(r *colly.Response) {
		f.lastBody = r.Body
		f.lastStatus = r.StatusCode
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			f.lastStatus = r.StatusCode
		}
		f.lastErr = err
	})
	return f
}

// Fetch retrieves one page. On a 4xx/5xx response the returned error is an
// *HTTPError; any other error is a transport failure.
func (f *Fetcher) Fetch(url string) (*Page, error) {
	f.lastBody, f.lastStatus, f.lastErr = nil, 0, nil

	if err := f.collector.Visit(url); err != nil {
		if f.lastStatus >= 400 {
			return nil, &HTTPError{StatusCode: f.lastStatus, URL: url}
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if f.lastStatus >= 400 {
		return nil, &HTTPError{StatusCode: f.lastStatus, URL: url}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(f.lastBody))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return &Page{Doc: doc, StatusCode: f.lastStatus}, nil
}

// CheckStatus reports whether a listing is still live. 404 and an on-page
// removal notice are the only confirmed-gone signals; 403 (rate-limited)
// and transport errors report unknown so the caller retries next run.
func (f *Fetcher) CheckStatus(url string) models.ListingStatus {
	page, err := f.Fetch(url)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == 404 {
				return models.StatusGone
			}
			return models.StatusUnknown
		}
		log.Printf("Status check failed for %s: %v", url, err)
		return models.StatusUnknown
	}

	text := strings.ToLower(page.Doc.Text())
	if strings.Contains(text, "no longer available") || strings.Contains(text, "off market") {
		return models.StatusGone
	}
	return models.StatusActive
}
