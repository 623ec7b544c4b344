// Package geo wraps the NYC Geoclient v2 address endpoint: given a street
// address it returns optional cross streets and coordinates.
package geo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const geoclientBase = "https://api.nyc.gov/geoclient/v2/address"

// Result is a successful lookup. Any field may be absent; callers treat
// missing data as "no enrichment", never as an error.
type Result struct {
	CrossStreets string // "" when either cross street is unknown
	Latitude     *float64
	Longitude    *float64
}

// Client calls the Geoclient API. A nil *Client is a valid "feature
// disabled" client whose Lookup always reports no result.
type Client struct {
	http    *resty.Client
	borough string
}

// New builds a Client with the given subscription key. Returns nil when the
// key is empty so callers can pass the result straight through.
func New(key string) *Client {
	if key == "" {
		return nil
	}
	httpClient := resty.New().
		SetBaseURL(geoclientBase).
		SetHeader("Ocp-Apim-Subscription-Key", key).
		SetTimeout(10 * time.Second)
	return &Client{http: httpClient, borough: "Manhattan"}
}

type addressResponse struct {
	Address struct {
		LowCrossStreetName1  string   `json:"lowCrossStreetName1"`
		HighCrossStreetName1 string   `json:"highCrossStreetName1"`
		Latitude             *float64 `json:"latitude"`
		Longitude            *float64 `json:"longitude"`
	} `json:"address"`
}

// Lookup resolves an address to cross streets and coordinates. Returns
// (nil, nil) when the address cannot be split into house number + street;
// a non-nil error only for transport or HTTP failures.
func (c *Client) Lookup(address string) (*Result, error) {
	if c == nil {
		return nil, nil
	}
	houseNumber, street, ok := ParseAddress(address)
	if !ok {
		return nil, nil
	}

	var body addressResponse
	resp, err := c.http.R().
		SetQueryParams(map[string]string{
			"houseNumber": houseNumber,
			"street":      street,
			"borough":     c.borough,
		}).
		SetResult(&body).
		Get("")
	if err != nil {
		return nil, fmt.Errorf("geoclient request for %q: %w", address, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("geoclient HTTP %d for %q", resp.StatusCode(), address)
	}

	result := &Result{
		Latitude:  body.Address.Latitude,
		Longitude: body.Address.Longitude,
	}
	low := strings.TrimSpace(body.Address.LowCrossStreetName1)
	high := strings.TrimSpace(body.Address.HighCrossStreetName1)
	if low != "" && high != "" {
		result.CrossStreets = FormatCrossStreets(low, high)
	}
	return result, nil
}
