package scoring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// PersistedModel is the on-disk model document. Besides the parameters it
// records the feature layout in effect at training time; the weight count
// is validated on load, the value sets are kept for diagnostics.
type PersistedModel struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	Categories   []string  `json:"categories"`
	Locations    []string  `json:"locations"`
	FundingNorm  string    `json:"funding_norm"`
	AudienceNorm string    `json:"audience_norm"`
	TrainedAt    time.Time `json:"trained_at"`
	Examples     int       `json:"examples"`
}

// ModelStore persists model parameters as a JSON file.
type ModelStore struct {
	path   string
	logger *zap.Logger
}

func NewModelStore(path string, logger *zap.Logger) *ModelStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelStore{path: path, logger: logger}
}

// Path returns the file the store reads and writes.
func (s *ModelStore) Path() string {
	return s.path
}

// Save writes the model and its layout fingerprint, creating the containing
// directory first and overwriting any prior content.
func (s *ModelStore) Save(model *Model, examples int) error {
	doc := PersistedModel{
		Weights:      model.Weights,
		Bias:         model.Bias,
		Categories:   categoryStrings(),
		Locations:    locationStrings(),
		FundingNorm:  FundingNormScheme,
		AudienceNorm: AudienceNormScheme,
		TrainedAt:    time.Now().UTC(),
		Examples:     examples,
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create model dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	return nil
}

// Load reads the persisted model. A missing file, unparsable content or a
// weight count that does not match expectedDim all return (nil, nil): the
// stored model is treated as absent and the caller retrains.
func (s *ModelStore) Load(expectedDim int) (*Model, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("model file unreadable, treating as absent",
				zap.String("path", s.path), zap.Error(err))
		}
		return nil, nil
	}

	var doc PersistedModel
	if err := json.Unmarshal(payload, &doc); err != nil {
		s.logger.Warn("model file malformed, treating as absent",
			zap.String("path", s.path), zap.Error(err))
		return nil, nil
	}
	if len(doc.Weights) != expectedDim {
		s.logger.Warn("model layout incompatible, treating as absent",
			zap.String("path", s.path),
			zap.Int("stored_weights", len(doc.Weights)),
			zap.Int("expected", expectedDim))
		return nil, nil
	}

	return &Model{Weights: doc.Weights, Bias: doc.Bias}, nil
}

func categoryStrings() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func locationStrings() []string {
	out := make([]string, len(locations))
	for i, l := range locations {
		out[i] = string(l)
	}
	return out
}
