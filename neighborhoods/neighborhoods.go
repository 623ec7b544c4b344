// Package neighborhoods maps canonical StreetEasy search slugs to the raw
// neighborhood labels the site attaches to listings in that area.
package neighborhoods

// aliases maps a search slug to the set of labels StreetEasy legitimately
// reports for listings in that area, sub-neighborhoods included. Sponsored
// listings from unrelated areas (e.g. Greenpoint on an East Village page)
// carry labels outside the set and get filtered out.
var aliases = map[string]map[string]bool{
	"east-village":       set("East Village"),
	"west-village":       set("West Village"),
	"upper-west-side":    set("Upper West Side", "Manhattan Valley", "Lincoln Square"),
	"chelsea":            set("Chelsea", "West Chelsea"),
	"les":                set("Lower East Side", "Two Bridges", "Chinatown"),
	"upper-east-side":    set("Upper East Side", "Yorkville", "Carnegie Hill", "Lenox Hill"),
	"hells-kitchen":      set("Hell's Kitchen", "Midtown West"),
	"murray-hill":        set("Murray Hill", "Kips Bay"),
	"gramercy-park":      set("Gramercy Park", "Gramercy", "Kips Bay"),
	"flatiron":           set("Flatiron", "NoMad"),
	"kips-bay":           set("Kips Bay"),
	"greenwich-village":  set("Greenwich Village"),
	"soho":               set("SoHo"),
	"tribeca":            set("Tribeca"),
	"financial-district": set("Financial District", "FiDi"),
	"williamsburg":       set("Williamsburg", "East Williamsburg"),
	"greenpoint":         set("Greenpoint"),
	"park-slope":         set("Park Slope"),
	"bushwick":           set("Bushwick"),
	"bed-stuy":           set("Bedford-Stuyvesant", "Bed-Stuy"),
	"astoria":            set("Astoria"),
	"long-island-city":   set("Long Island City"),
}

// displayNames lists every search slug the tracker supports with its
// canonical display name.
var displayNames = map[string]string{
	// Manhattan
	"battery-park-city":  "Battery Park City",
	"carnegie-hill":      "Carnegie Hill",
	"chelsea":            "Chelsea",
	"chinatown":          "Chinatown",
	"civic-center":       "Civic Center",
	"east-village":       "East Village",
	"financial-district": "Financial District",
	"flatiron":           "Flatiron",
	"fulton-seaport":     "Fulton / Seaport",
	"gramercy-park":      "Gramercy Park",
	"greenwich-village":  "Greenwich Village",
	"hells-kitchen":      "Hell's Kitchen",
	"hudson-yards":       "Hudson Yards",
	"kips-bay":           "Kips Bay",
	"lenox-hill":         "Lenox Hill",
	"les":                "Lower East Side",
	"little-italy":       "Little Italy",
	"manhattan-valley":   "Manhattan Valley",
	"midtown":            "Midtown",
	"midtown-east":       "Midtown East",
	"midtown-south":      "Midtown South",
	"midtown-west":       "Midtown West",
	"murray-hill":        "Murray Hill",
	"noho":               "NoHo",
	"nolita":             "Nolita",
	"nomad":              "NoMad",
	"soho":               "SoHo",
	"stuyvesant-town":    "Stuyvesant Town",
	"tribeca":            "Tribeca",
	"two-bridges":        "Two Bridges",
	"upper-east-side":    "Upper East Side",
	"upper-west-side":    "Upper West Side",
	"west-village":       "West Village",
	"yorkville":          "Yorkville",
	// Brooklyn
	"bay-ridge":         "Bay Ridge",
	"bed-stuy":          "Bedford-Stuyvesant",
	"boerum-hill":       "Boerum Hill",
	"brooklyn-heights":  "Brooklyn Heights",
	"bushwick":          "Bushwick",
	"carroll-gardens":   "Carroll Gardens",
	"clinton-hill":      "Clinton Hill",
	"cobble-hill":       "Cobble Hill",
	"crown-heights":     "Crown Heights",
	"downtown-brooklyn": "Downtown Brooklyn",
	"dumbo":             "DUMBO",
	"flatbush":          "Flatbush",
	"fort-greene":       "Fort Greene",
	"gowanus":           "Gowanus",
	"greenpoint":        "Greenpoint",
	"kensington":        "Kensington",
	"park-slope":        "Park Slope",
	"prospect-heights":  "Prospect Heights",
	"red-hook":          "Red Hook",
	"sunset-park":       "Sunset Park",
	"williamsburg":      "Williamsburg",
	"windsor-terrace":   "Windsor Terrace",
	// Queens
	"astoria":          "Astoria",
	"flushing":         "Flushing",
	"forest-hills":     "Forest Hills",
	"jackson-heights":  "Jackson Heights",
	"long-island-city": "Long Island City",
	"ridgewood":        "Ridgewood",
	"sunnyside":        "Sunnyside",
	"woodside":         "Woodside",
	// Upper Manhattan
	"east-harlem":         "East Harlem",
	"hamilton-heights":    "Hamilton Heights",
	"harlem":              "Harlem",
	"inwood":              "Inwood",
	"morningside-heights": "Morningside Heights",
	"washington-heights":  "Washington Heights",
}

func set(labels ...string) map[string]bool {
	m := make(map[string]bool, len(labels))
	for _, l := range labels {
		m[l] = true
	}
	return m
}

// Aliases returns the label set for a search slug, or nil if the slug has no
// alias table. Callers must treat nil as "no filtering possible", not as
// "everything matches".
func Aliases(slug string) map[string]bool {
	return aliases[slug]
}

// DisplayName returns the canonical display name for a slug, or "" if the
// slug is unknown.
func DisplayName(slug string) string {
	return displayNames[slug]
}

// IsValidSlug reports whether the slug is a supported search area.
func IsValidSlug(slug string) bool {
	_, ok := displayNames[slug]
	return ok
}

// LabelMatchesArea reports whether a raw listing label belongs to the given
// search area. Used on the matching side: besides the alias set it also
// accepts exact equality with the area's display name, so slugs without an
// alias entry (e.g. "noho") still match their own label. An empty label
// never matches.
func LabelMatchesArea(label, slug string) bool {
	if label == "" {
		return false
	}
	if aliases[slug][label] {
		return true
	}
	display := displayNames[slug]
	return display != "" && label == display
}
