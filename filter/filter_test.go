package filter

import (
	"testing"

	"github.com/alvinlee00/nyc-apartment-tracker/models"
)

func listing(url, price, neighborhood string) models.Listing {
	return models.Listing{
		URL:          url,
		Address:      "addr for " + url,
		Price:        price,
		Neighborhood: neighborhood,
	}
}

func TestApply(t *testing.T) {
	raw := []models.Listing{
		listing("https://streeteasy.com/building/a/1", "$3,000", "East Village"),
		listing("https://streeteasy.com/building/b/2", "$2,500", "East Village"),
		listing("https://streeteasy.com/building/a/1", "$3,000", "East Village"), // featured repeat
		listing("https://streeteasy.com/building/c/3", "$6,000", "East Village"), // over budget
		listing("https://streeteasy.com/building/d/4", "$2,800", ""),             // sponsored, no label
		listing("https://streeteasy.com/building/e/5", "$2,900", "Greenpoint"),   // wrong area
		listing("https://streeteasy.com/building/f/6", "$3,400", "East Village"),
	}

	got := New("east-village", 3500).Apply(raw)
	if len(got) != 3 {
		t.Fatalf("got %d listings, want 3: %+v", len(got), got)
	}
	wantURLs := []string{
		"https://streeteasy.com/building/a/1",
		"https://streeteasy.com/building/b/2",
		"https://streeteasy.com/building/f/6",
	}
	for i, want := range wantURLs {
		if got[i].URL != want {
			t.Errorf("listing %d: URL = %q, want %q", i, got[i].URL, want)
		}
	}
}

func TestApplyIsSubset(t *testing.T) {
	raw := []models.Listing{
		listing("u1", "$2,000", "SoHo"),
		listing("u2", "N/A", "SoHo"),
		listing("u3", "$9,999", "SoHo"),
	}
	got := New("soho", 3000).Apply(raw)

	inputs := make(map[string]bool)
	for _, l := range raw {
		inputs[l.URL] = true
	}
	for _, l := range got {
		if !inputs[l.URL] {
			t.Errorf("output contains %q which was not in the input", l.URL)
		}
	}
}

func TestUnparseablePricePasses(t *testing.T) {
	raw := []models.Listing{listing("u1", "N/A", "SoHo")}
	got := New("soho", 3000).Apply(raw)
	if len(got) != 1 {
		t.Fatalf("unparseable price should pass the ceiling, got %d listings", len(got))
	}
}

func TestDedupKeepsFirst(t *testing.T) {
	raw := []models.Listing{
		listing("u1", "$2,000", "SoHo"),
		{URL: "u1", Address: "different later copy", Price: "$2,100", Neighborhood: "SoHo"},
	}
	got := New("soho", 3000).Apply(raw)
	if len(got) != 1 {
		t.Fatalf("got %d listings, want 1", len(got))
	}
	if got[0].Address != "addr for u1" {
		t.Errorf("dedup kept %q, want the first occurrence", got[0].Address)
	}
}

func TestApplyIdempotent(t *testing.T) {
	raw := []models.Listing{
		listing("u1", "$2,000", "SoHo"),
		listing("u2", "$2,500", "SoHo"),
	}
	p := New("soho", 3000)
	once := p.Apply(raw)
	twice := p.Apply(once)
	if len(once) != len(twice) {
		t.Fatalf("second application changed the result: %d vs %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].URL != twice[i].URL {
			t.Errorf("listing %d changed between applications", i)
		}
	}
}

func TestUnknownAreaUnfiltered(t *testing.T) {
	raw := []models.Listing{
		listing("u1", "$2,000", "Somewhere"),
		listing("u2", "$2,500", ""),
	}
	got := New("noho", 3000).Apply(raw)
	if len(got) != 2 {
		t.Fatalf("area without an alias table must not area-filter, got %d listings", len(got))
	}
}
