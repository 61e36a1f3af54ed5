package scoring

import (
	"errors"
	"fmt"
)

// TrainerConfig holds the gradient-descent hyperparameters. Zero values are
// replaced by the defaults.
type TrainerConfig struct {
	LearningRate float64
	Epochs       int
}

// DefaultTrainerConfig returns the standard hyperparameters.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		LearningRate: 0.4,
		Epochs:       400,
	}
}

// Fit runs full-batch gradient descent over the examples for the fixed
// epoch count. The per-epoch update is applied once from the aggregate
// gradient, not per example. Fit works on a scratch copy of the parameters
// and installs them into model only when every epoch completed, so a failed
// run never leaves partially trained weights behind.
func Fit(model *Model, examples []TrainingExample, cfg TrainerConfig) error {
	if model == nil {
		return errors.New("model is nil")
	}
	if len(examples) == 0 {
		return errors.New("examples are empty")
	}
	dim := len(model.Weights)
	for i, ex := range examples {
		if len(ex.Features) != dim {
			return fmt.Errorf("example %d has %d features, model expects %d", i, len(ex.Features), dim)
		}
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = DefaultTrainerConfig().LearningRate
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultTrainerConfig().Epochs
	}

	weights := append([]float64(nil), model.Weights...)
	bias := model.Bias
	gradW := make([]float64, dim)
	n := float64(len(examples))

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		for i := range gradW {
			gradW[i] = 0
		}
		gradB := 0.0

		for _, ex := range examples {
			z := bias
			for i, w := range weights {
				z += w * ex.Features[i]
			}
			residual := sigmoid(z) - float64(ex.Label)
			for i, f := range ex.Features {
				gradW[i] += residual * f
			}
			gradB += residual
		}

		step := cfg.LearningRate / n
		for i := range weights {
			weights[i] -= step * gradW[i]
		}
		bias -= step * gradB
	}

	model.Weights = weights
	model.Bias = bias
	return nil
}
