package scoring

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ExplanationTerm describes one feature's contribution to a prediction.
// Scalar terms carry the encoded feature value; one-hot terms always
// contribute their full weight.
type ExplanationTerm struct {
	Feature string  `json:"feature"`
	Weight  float64 `json:"weight"`
	Value   float64 `json:"value,omitempty"`
	Scalar  bool    `json:"scalar,omitempty"`
}

// Impact labels the direction of the term from the sign of its weight.
func (t ExplanationTerm) Impact() string {
	if t.Weight < 0 {
		return "negative"
	}
	return "positive"
}

// Explanation decomposes one prediction: the model bias plus one term per
// active one-hot dimension and one per scalar dimension.
type Explanation struct {
	Probability float64           `json:"probability"`
	Bias        float64           `json:"bias"`
	Terms       []ExplanationTerm `json:"terms"`
}

var narrator = message.NewPrinter(language.English)

// Sentences renders the explanation as one natural-language sentence per
// term, preceded by a summary line. Funding amounts are written with
// locale-aware grouping.
func Sentences(signal IdeaSignal, e Explanation) []string {
	out := make([]string, 0, len(e.Terms)+1)
	out = append(out, narrator.Sprintf("Estimated success rate is %.0f%%.", e.Probability*100))

	for _, term := range e.Terms {
		verb := "raises"
		if term.Weight < 0 {
			verb = "lowers"
		}
		switch term.Feature {
		case "funding":
			out = append(out, narrator.Sprintf(
				"The requested funding of %d %s the estimate (weight %+.2f).",
				int64(signal.RequiredFunding), verb, term.Weight))
		case "audience":
			out = append(out, narrator.Sprintf(
				"The target audience description (%.0f%% of the useful detail range) %s the estimate (weight %+.2f).",
				term.Value*100, verb, term.Weight))
		default:
			out = append(out, fmt.Sprintf(
				"The trait %q %s the estimate (weight %+.2f).",
				term.Feature, verb, term.Weight))
		}
	}

	return out
}
