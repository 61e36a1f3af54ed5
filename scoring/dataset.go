package scoring

import "strings"

// TrainingExample pairs an encoded feature vector with its synthetic label.
// The sampled raw fields are kept for the audit export.
type TrainingExample struct {
	Features        []float64
	Label           int
	Category        Category
	Location        Location
	RequiredFunding float64
	TargetAudience  string
}

// generatorFundingCap bounds the sampled funding requests. It sits well
// below the encoder's normalization cap so the funding penalty dominates
// near the top of the sampled range.
const generatorFundingCap = 300_000

var audienceVocabulary = []string{
	"students", "farmers", "clinics", "teachers", "parents",
	"founders", "villages", "hospitals", "commuters", "retailers",
}

var audienceTargetLengths = []int{20, 60, 120, 180}

// Generate produces count labeled examples from the given seed. Repeated
// calls with the same arguments yield identical sequences.
func Generate(count int, seed int64) []TrainingExample {
	src := NewSource(seed)
	examples := make([]TrainingExample, 0, count)

	for i := 0; i < count; i++ {
		category := categories[src.intn(len(categories))]
		location := locations[src.intn(len(locations))]
		funding := src.Float64() * generatorFundingCap
		audience := sampleAudience(src)
		noise := src.Float64()*0.6 - 0.3

		signal := IdeaSignal{
			Category:        string(category),
			RequiredFunding: funding,
			TargetAudience:  audience,
			AuthorLocation:  string(location),
		}

		label := 0
		if desirability(category, location, funding, audienceFeature(audience), noise) > 0 {
			label = 1
		}

		examples = append(examples, TrainingExample{
			Features:        Encode(signal),
			Label:           label,
			Category:        category,
			Location:        location,
			RequiredFunding: funding,
			TargetAudience:  audience,
		})
	}

	return examples
}

func sampleAudience(src *Source) string {
	target := audienceTargetLengths[src.intn(len(audienceTargetLengths))]
	var b strings.Builder
	for b.Len() < target {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(audienceVocabulary[src.intn(len(audienceVocabulary))])
	}
	return b.String()
}

// Hidden labeling rule. Only the generator consults it; the trainer sees
// feature vectors and labels and must recover the structure on its own.
var categoryBase = map[Category]float64{
	CategoryTechnology:     1.20,
	CategoryHealthcare:     0.90,
	CategoryEducation:      0.70,
	CategoryInfrastructure: 0.50,
	CategoryAgriculture:    0.40,
	CategoryOther:          0.10,
}

var locationBase = map[Location]float64{
	LocationUrban:    0.50,
	LocationSuburban: 0.35,
	LocationCoastal:  0.30,
	LocationInland:   0.20,
	LocationRural:    0.10,
	LocationUnknown:  0.00,
}

func desirability(category Category, location Location, funding, audience, noise float64) float64 {
	return categoryBase[category] -
		1.6*funding/generatorFundingCap +
		0.8*audience +
		locationBase[location] +
		noise
}
