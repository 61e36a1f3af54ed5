package scoring

import "strings"

// Category is the closed set of idea categories. Anything that does not
// parse maps to CategoryOther.
type Category string

const (
	CategoryTechnology     Category = "technology"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryInfrastructure Category = "infrastructure"
	CategoryAgriculture    Category = "agriculture"
	CategoryOther          Category = "other"
)

// Location is the closed set of author/idea location tags. Anything that
// does not parse maps to LocationUnknown.
type Location string

const (
	LocationUrban    Location = "urban"
	LocationSuburban Location = "suburban"
	LocationCoastal  Location = "coastal"
	LocationInland   Location = "inland"
	LocationRural    Location = "rural"
	LocationUnknown  Location = "unknown"
)

var categories = []Category{
	CategoryTechnology,
	CategoryHealthcare,
	CategoryEducation,
	CategoryInfrastructure,
	CategoryAgriculture,
	CategoryOther,
}

var locations = []Location{
	LocationUrban,
	LocationSuburban,
	LocationCoastal,
	LocationInland,
	LocationRural,
	LocationUnknown,
}

// Categories returns the closed category set in feature order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Locations returns the closed location set in feature order.
func Locations() []Location {
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// ParseCategory matches case-insensitively against the closed set and
// falls back to CategoryOther. It never fails.
func ParseCategory(s string) Category {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, c := range categories {
		if normalized == string(c) {
			return c
		}
	}
	return CategoryOther
}

// ParseLocation matches case-insensitively against the closed set and
// falls back to LocationUnknown. It never fails.
func ParseLocation(s string) Location {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, l := range locations {
		if normalized == string(l) {
			return l
		}
	}
	return LocationUnknown
}

// ResolveLocation applies the precedence rule for an idea's location: the
// idea's own declared location wins unless it resolves to the unknown
// fallback, in which case the author's profile location is used.
func ResolveLocation(ideaLocation, authorLocation string) Location {
	if loc := ParseLocation(ideaLocation); loc != LocationUnknown {
		return loc
	}
	return ParseLocation(authorLocation)
}

// IdeaSignal is the structured input for one prediction. Fields arrive as
// raw collaborator values; unknown categorical strings and out-of-range
// numerics are absorbed by the encoder, never rejected.
type IdeaSignal struct {
	Category        string  `json:"category"`
	RequiredFunding float64 `json:"required_funding"`
	TargetAudience  string  `json:"target_audience"`
	AuthorLocation  string  `json:"author_location"`
}
