package scoring

import "math"

// Model is a logistic classifier over idea feature vectors: the success
// probability is sigmoid(bias + dot(weights, features)). Weights start at
// zero and are only mutated by Fit.
type Model struct {
	Weights []float64
	Bias    float64
}

// NewModel returns a zero-initialized model for the given feature dimension.
func NewModel(dim int) *Model {
	return &Model{Weights: make([]float64, dim)}
}

// Score returns the success probability for an encoded feature vector.
func (m *Model) Score(features []float64) float64 {
	z := m.Bias
	for i, w := range m.Weights {
		if i >= len(features) {
			break
		}
		z += w * features[i]
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
