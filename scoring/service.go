package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// ErrNotInitialized is returned by Predict and Explain before a successful
// Initialize.
var ErrNotInitialized = errors.New("scoring service not initialized")

// AuditSink receives the synthetic training set whenever the service trains
// a fresh model during initialization. Optional.
type AuditSink interface {
	RecordTraining(runID string, seed int64, cfg TrainerConfig, examples []TrainingExample) error
}

// ServiceConfig configures the scoring service. Zero values fall back to
// the defaults.
type ServiceConfig struct {
	ModelPath    string
	DatasetSize  int
	DatasetSeed  int64
	LearningRate float64
	Epochs       int
	CacheSize    int
}

// DefaultServiceConfig returns the standard engine configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ModelPath:    "models/success_rate.json",
		DatasetSize:  1500,
		DatasetSeed:  42,
		LearningRate: DefaultTrainerConfig().LearningRate,
		Epochs:       DefaultTrainerConfig().Epochs,
		CacheSize:    1024,
	}
}

// Service is the scoring façade. It owns the single live model for the
// process: Initialize adopts a persisted model or trains one exactly once,
// after which Predict and Explain are safe for concurrent use.
type Service struct {
	cfg    ServiceConfig
	store  *ModelStore
	logger *zap.Logger
	audit  AuditSink

	once    sync.Once
	initErr error

	mu    sync.RWMutex
	model *Model

	cache *lru.Cache[string, float64]

	predictions atomic.Uint64
	cacheHits   atomic.Uint64

	watcher *modelWatcher
}

// NewService creates an uninitialized service. logger may be nil; audit may
// be nil to disable the training audit export.
func NewService(cfg ServiceConfig, logger *zap.Logger, audit AuditSink) *Service {
	defaults := DefaultServiceConfig()
	if cfg.ModelPath == "" {
		cfg.ModelPath = defaults.ModelPath
	}
	if cfg.DatasetSize <= 0 {
		cfg.DatasetSize = defaults.DatasetSize
	}
	if cfg.DatasetSeed == 0 {
		cfg.DatasetSeed = defaults.DatasetSeed
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaults.CacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache, _ := lru.New[string, float64](cfg.CacheSize)
	return &Service{
		cfg:    cfg,
		store:  NewModelStore(cfg.ModelPath, logger),
		logger: logger,
		audit:  audit,
		cache:  cache,
	}
}

// Initialize loads the persisted model or, when none is usable, generates
// the synthetic dataset, trains, and persists the result. It runs at most
// once per service; later calls return the first outcome. A failed save is
// logged and not fatal since the in-memory model still serves.
func (s *Service) Initialize() error {
	s.once.Do(func() {
		s.initErr = s.initialize()
	})
	return s.initErr
}

func (s *Service) initialize() error {
	dim := FeatureDim()

	model, err := s.store.Load(dim)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}
	if model != nil {
		s.adopt(model)
		s.logger.Info("scoring model loaded",
			zap.String("path", s.store.Path()),
			zap.Int("dim", dim))
		return nil
	}

	s.logger.Info("no usable persisted model, training",
		zap.Int("examples", s.cfg.DatasetSize),
		zap.Int64("seed", s.cfg.DatasetSeed))

	started := time.Now()
	examples := Generate(s.cfg.DatasetSize, s.cfg.DatasetSeed)
	trainerCfg := TrainerConfig{LearningRate: s.cfg.LearningRate, Epochs: s.cfg.Epochs}

	model = NewModel(dim)
	if err := Fit(model, examples, trainerCfg); err != nil {
		return fmt.Errorf("train model: %w", err)
	}
	s.adopt(model)
	s.logger.Info("scoring model trained",
		zap.Int("examples", len(examples)),
		zap.Duration("elapsed", time.Since(started)))

	if err := s.store.Save(model, len(examples)); err != nil {
		s.logger.Warn("model save failed, serving from memory only", zap.Error(err))
	}

	if s.audit != nil {
		runID := uuid.NewString()
		if err := s.audit.RecordTraining(runID, s.cfg.DatasetSeed, trainerCfg, examples); err != nil {
			s.logger.Warn("training audit export failed",
				zap.String("run_id", runID), zap.Error(err))
		} else {
			s.logger.Info("training audit exported", zap.String("run_id", runID))
		}
	}

	return nil
}

func (s *Service) adopt(model *Model) {
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	s.cache.Purge()
}

func (s *Service) snapshot() *Model {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

// Predict returns the success probability for the signal, clamped into
// [0,1] as a guard against numeric edge cases.
func (s *Service) Predict(signal IdeaSignal) (float64, error) {
	model := s.snapshot()
	if model == nil {
		return 0, ErrNotInitialized
	}
	s.predictions.Add(1)

	key := cacheKey(signal)
	if prob, ok := s.cache.Get(key); ok {
		s.cacheHits.Add(1)
		return prob, nil
	}

	prob := clamp01(model.Score(Encode(signal)))
	s.cache.Add(key, prob)
	return prob, nil
}

// Explain returns the probability together with its contribution
// decomposition: one term for the active category, the two scalar terms,
// and one term for the active location.
func (s *Service) Explain(signal IdeaSignal) (Explanation, error) {
	model := s.snapshot()
	if model == nil {
		return Explanation{}, ErrNotInitialized
	}

	features := Encode(signal)
	category := ParseCategory(signal.Category)
	location := ParseLocation(signal.AuthorLocation)

	catIdx := categoryIndex(category)
	fundingIdx := len(categories)
	audienceIdx := fundingIdx + 1
	locIdx := audienceIdx + 1 + locationIndex(location)

	terms := []ExplanationTerm{
		{Feature: fmt.Sprintf("category=%s", category), Weight: model.Weights[catIdx]},
		{Feature: "funding", Weight: model.Weights[fundingIdx], Value: features[fundingIdx], Scalar: true},
		{Feature: "audience", Weight: model.Weights[audienceIdx], Value: features[audienceIdx], Scalar: true},
		{Feature: fmt.Sprintf("location=%s", location), Weight: model.Weights[locIdx]},
	}

	return Explanation{
		Probability: clamp01(model.Score(features)),
		Bias:        model.Bias,
		Terms:       terms,
	}, nil
}

// Stats reports the service counters since startup.
func (s *Service) Stats() (predictions, cacheHits uint64) {
	return s.predictions.Load(), s.cacheHits.Load()
}

func cacheKey(signal IdeaSignal) string {
	// Only the audience length feeds the feature vector, so the key uses it
	// instead of the full text.
	return string(ParseCategory(signal.Category)) + "|" +
		strconv.FormatFloat(signal.RequiredFunding, 'g', -1, 64) + "|" +
		strconv.Itoa(len(signal.TargetAudience)) + "|" +
		string(ParseLocation(signal.AuthorLocation))
}

func categoryIndex(category Category) int {
	for i, c := range categories {
		if c == category {
			return i
		}
	}
	return len(categories) - 1
}

func locationIndex(location Location) int {
	for i, l := range locations {
		if l == location {
			return i
		}
	}
	return len(locations) - 1
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
