package score

import (
	"testing"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
	"github.com/alvinlee00/nyc-apartment-tracker/subway"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{3000}, 3000},
		{"odd", []float64{1000, 3000, 2000}, 2000},
		{"even", []float64{1000, 2000, 3000, 4000}, 2500},
		{"input order irrelevant", []float64{4000, 1000, 3000, 2000}, 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Median(tt.values); got != tt.expected {
				t.Errorf("Median(%v) = %v, want %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestNeighborhoodMedians(t *testing.T) {
	tracked := map[string]*models.TrackedListing{
		"u1": {Neighborhood: "East Village", Price: "$3,000"},
		"u2": {Neighborhood: "East Village", Price: "$3,400"},
		"u3": {Neighborhood: "East Village", Price: "$2,600"},
		"u4": {Neighborhood: "SoHo", Price: "$4,000"},
		"u5": {Neighborhood: "", Price: "$1,000"},    // no label, skipped
		"u6": {Neighborhood: "SoHo", Price: "N/A"},   // unparseable, skipped
	}

	medians := NeighborhoodMedians(tracked)
	if medians["East Village"] != 3000 {
		t.Errorf("East Village median = %v, want 3000", medians["East Village"])
	}
	if medians["SoHo"] != 4000 {
		t.Errorf("SoHo median = %v, want 4000", medians["SoHo"])
	}
	if _, ok := medians[""]; ok {
		t.Error("unlabeled listings must not produce a median")
	}
}

func TestComputeUnparseablePrice(t *testing.T) {
	if got := Compute(models.Listing{Price: "N/A"}, nil, nil); got != nil {
		t.Errorf("Compute with unparseable price = %+v, want nil", got)
	}
}

func TestComputeAnchors(t *testing.T) {
	medians := map[string]float64{"East Village": 3000}

	tests := []struct {
		name     string
		listing  models.Listing
		nearby   []subway.Nearby
		expected float64
		grade    string
	}{
		{
			"all neutral without data",
			models.Listing{Price: "$3,200", Neighborhood: "Nowhere", Sqft: "N/A"},
			nil,
			5.0, "C",
		},
		{
			"at median is neutral",
			models.Listing{Price: "$3,000", Neighborhood: "East Village", Sqft: "N/A"},
			nil,
			5.0, "C",
		},
		{
			"20 percent below median maxes the price component",
			models.Listing{Price: "$2,400", Neighborhood: "East Village", Sqft: "N/A"},
			nil,
			7.0, "B",
		},
		{
			"20 percent above median zeroes the price component",
			models.Listing{Price: "$3,600", Neighborhood: "East Village", Sqft: "N/A"},
			nil,
			3.0, "D",
		},
		{
			"cheap per sqft",
			models.Listing{Price: "$3,000", Neighborhood: "East Village", Sqft: "1,000 ft²"},
			nil,
			6.5, "B",
		},
		{
			"doorstep subway",
			models.Listing{Price: "$3,200", Neighborhood: "Nowhere", Sqft: "N/A"},
			[]subway.Nearby{{Name: "Astor Pl", DistanceMi: 0}},
			6.5, "B",
		},
		{
			"everything good",
			models.Listing{Price: "$2,400", Neighborhood: "East Village", Sqft: "800 ft²"},
			[]subway.Nearby{{Name: "Astor Pl", DistanceMi: 0}},
			10.0, "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.listing, medians, tt.nearby)
			if got == nil {
				t.Fatal("Compute returned nil")
			}
			if got.Score != tt.expected {
				t.Errorf("Score = %v, want %v", got.Score, tt.expected)
			}
			if got.Grade != tt.grade {
				t.Errorf("Grade = %q, want %q", got.Grade, tt.grade)
			}
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	medians := map[string]float64{"East Village": 3000}
	listing := models.Listing{Price: "$2,750", Neighborhood: "East Village", Sqft: "650 ft²"}

	first := Compute(listing, medians, nil)
	for i := 0; i < 5; i++ {
		again := Compute(listing, medians, nil)
		if *again != *first {
			t.Fatalf("Compute not deterministic: %+v vs %+v", again, first)
		}
	}
}

func TestGradeBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		grade string
	}{
		{10, "A"}, {8, "A"}, {7.9, "B"}, {6, "B"}, {5.9, "C"},
		{4, "C"}, {3.9, "D"}, {2, "D"}, {1.9, "F"}, {0, "F"},
	}
	for _, tt := range tests {
		if grade, _ := gradeFor(tt.score); grade != tt.grade {
			t.Errorf("gradeFor(%v) = %q, want %q", tt.score, grade, tt.grade)
		}
	}
}
