package scoring

import (
	"fmt"
	"math"
)

const (
	fundingNormCap = 1_000_000
	audienceCap    = 200

	// Normalization scheme identifiers recorded in the persisted model.
	FundingNormScheme  = "log1p-1e6"
	AudienceNormScheme = "cap-200"
)

// FeatureDim is the fixed FeatureVector length:
// one-hot category block + funding + audience + one-hot location block.
func FeatureDim() int {
	return len(categories) + 2 + len(locations)
}

// FeatureNames returns one label per feature dimension, in vector order.
func FeatureNames() []string {
	names := make([]string, 0, FeatureDim())
	for _, c := range categories {
		names = append(names, fmt.Sprintf("category=%s", c))
	}
	names = append(names, "funding", "audience")
	for _, l := range locations {
		names = append(names, fmt.Sprintf("location=%s", l))
	}
	return names
}

// Encode maps a signal to its fixed-length feature vector. It is total:
// unrecognized categoricals land in the fallback buckets and invalid
// numerics are coerced to zero.
func Encode(signal IdeaSignal) []float64 {
	vec := make([]float64, 0, FeatureDim())

	category := ParseCategory(signal.Category)
	for _, c := range categories {
		if c == category {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	vec = append(vec, fundingFeature(signal.RequiredFunding))
	vec = append(vec, audienceFeature(signal.TargetAudience))

	location := ParseLocation(signal.AuthorLocation)
	for _, l := range locations {
		if l == location {
			vec = append(vec, 1)
		} else {
			vec = append(vec, 0)
		}
	}

	return vec
}

// fundingFeature grows sub-linearly and stays in [0,1] up to the 1e6 cap.
// Amounts above the cap push it slightly past 1; that is intentional and
// must not be clamped here, the sigmoid bounds the final probability.
func fundingFeature(funding float64) float64 {
	if math.IsNaN(funding) || funding < 0 {
		funding = 0
	}
	return math.Log1p(funding) / math.Log1p(fundingNormCap)
}

// audienceFeature saturates at 1 for descriptions of 200+ characters.
func audienceFeature(audience string) float64 {
	length := float64(len(audience))
	if length >= audienceCap {
		return 1
	}
	return length / audienceCap
}
