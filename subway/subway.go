// Package subway answers "which stations are near this listing" from a
// static station dataset loaded once at startup.
package subway

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
)

const (
	earthRadiusMiles = 3958.8

	// DefaultMaxStations and DefaultMaxMiles bound a proximity query.
	DefaultMaxStations = 3
	DefaultMaxMiles    = 0.5
)

// Station is one subway station with the routes that stop there.
type Station struct {
	Name      string   `json:"name"`
	Routes    []string `json:"routes"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// Nearby is a station within range of a query point.
type Nearby struct {
	Name       string
	Routes     []string
	DistanceMi float64
}

// Stations holds the loaded dataset. Constructed once in main and injected
// wherever proximity lookups happen; there is no package-level cache.
type Stations struct {
	stations []Station
}

// Load reads the station dataset from a JSON file. A missing or corrupt
// file yields an empty (but usable) dataset and an error the caller may
// log and ignore: transit proximity degrades to neutral, it never fails a run.
func Load(path string) (*Stations, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Stations{}, fmt.Errorf("read subway data: %w", err)
	}
	var stations []Station
	if err := json.Unmarshal(data, &stations); err != nil {
		return &Stations{}, fmt.Errorf("parse subway data: %w", err)
	}
	return &Stations{stations: stations}, nil
}

// FromStations wraps an in-memory dataset; used by tests.
func FromStations(stations []Station) *Stations {
	return &Stations{stations: stations}
}

// Len returns the number of loaded stations.
func (s *Stations) Len() int {
	if s == nil {
		return 0
	}
	return len(s.stations)
}

// Nearest returns up to maxStations stations within maxMiles of the point,
// closest first. Distances are rounded to hundredths of a mile.
func (s *Stations) Nearest(lat, lon float64, maxStations int, maxMiles float64) []Nearby {
	if s == nil {
		return nil
	}
	var results []Nearby
	for _, st := range s.stations {
		dist := Haversine(lat, lon, st.Latitude, st.Longitude)
		if dist <= maxMiles {
			results = append(results, Nearby{
				Name:       st.Name,
				Routes:     st.Routes,
				DistanceMi: math.Round(dist*100) / 100,
			})
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].DistanceMi < results[j].DistanceMi })
	if len(results) > maxStations {
		results = results[:maxStations]
	}
	return results
}

// Haversine returns the great-circle distance in miles between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)
	a := math.Pow(math.Sin(dlat/2), 2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Pow(math.Sin(dlon/2), 2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatNearby renders stations for a notification field, one per line,
// e.g. "6 at 23rd St (0.12 mi)".
func FormatNearby(stations []Nearby) string {
	lines := make([]string, 0, len(stations))
	for _, st := range stations {
		lines = append(lines, fmt.Sprintf("%s at %s (%g mi)", strings.Join(st.Routes, ", "), st.Name, st.DistanceMi))
	}
	return strings.Join(lines, "\n")
}
