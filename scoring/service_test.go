package scoring

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testServiceConfig(t *testing.T) ServiceConfig {
	t.Helper()
	return ServiceConfig{
		ModelPath:   filepath.Join(t.TempDir(), "models", "success_rate.json"),
		DatasetSize: 300,
		DatasetSeed: 42,
		Epochs:      120,
	}
}

func TestServiceInitializeTrainsAndPersists(t *testing.T) {
	cfg := testServiceConfig(t)
	service := NewService(cfg, nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		t.Fatalf("expected persisted model: %v", err)
	}
}

func TestServiceInitializeReusesPersistedModel(t *testing.T) {
	cfg := testServiceConfig(t)
	first := NewService(cfg, nil, nil)
	if err := first.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signal := IdeaSignal{Category: "technology", RequiredFunding: 40_000, TargetAudience: "students and teachers", AuthorLocation: "urban"}
	want, err := first.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// a second service over the same path must adopt, not retrain
	second := NewService(ServiceConfig{ModelPath: cfg.ModelPath, DatasetSize: 10, DatasetSeed: 999, Epochs: 1}, nil, nil)
	if err := second.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := second.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected persisted model to be reused: %v vs %v", got, want)
	}
}

func TestServicePredictBounds(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signals := []IdeaSignal{
		{},
		{Category: "???", RequiredFunding: -10, TargetAudience: "", AuthorLocation: "atlantis"},
		{Category: "technology", RequiredFunding: 50_000_000, TargetAudience: text(5000), AuthorLocation: "urban"},
		{Category: "agriculture", RequiredFunding: 0, TargetAudience: "", AuthorLocation: "rural"},
	}
	for i, signal := range signals {
		prob, err := service.Predict(signal)
		if err != nil {
			t.Fatalf("signal %d: unexpected error: %v", i, err)
		}
		if prob < 0 || prob > 1 {
			t.Fatalf("signal %d: probability out of range: %v", i, prob)
		}
	}
}

func TestServicePredictBeforeInitialize(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if _, err := service.Predict(IdeaSignal{}); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if _, err := service.Explain(IdeaSignal{}); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
}

func TestServicePredictCaches(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signal := IdeaSignal{Category: "education", RequiredFunding: 15_000, TargetAudience: "teachers", AuthorLocation: "suburban"}
	if _, err := service.Predict(signal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.Predict(signal); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	predictions, hits := service.Stats()
	if predictions != 2 {
		t.Fatalf("expected 2 predictions, got %d", predictions)
	}
	if hits != 1 {
		t.Fatalf("expected 1 cache hit, got %d", hits)
	}
}

func TestServiceExplainFallbackBuckets(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	explanation, err := service.Explain(IdeaSignal{Category: "other", AuthorLocation: "unknown"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(explanation.Terms) != 4 {
		t.Fatalf("expected exactly 4 terms, got %d", len(explanation.Terms))
	}
	if explanation.Terms[0].Feature != "category=other" {
		t.Fatalf("unexpected category term: %q", explanation.Terms[0].Feature)
	}
	if explanation.Terms[1].Feature != "funding" || !explanation.Terms[1].Scalar {
		t.Fatalf("unexpected funding term: %+v", explanation.Terms[1])
	}
	if explanation.Terms[2].Feature != "audience" || !explanation.Terms[2].Scalar {
		t.Fatalf("unexpected audience term: %+v", explanation.Terms[2])
	}
	if explanation.Terms[3].Feature != "location=unknown" {
		t.Fatalf("unexpected location term: %q", explanation.Terms[3].Feature)
	}
}

func TestServiceExplainActiveDimensions(t *testing.T) {
	service := NewService(testServiceConfig(t), nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signal := IdeaSignal{Category: "Technology", RequiredFunding: 120_000, TargetAudience: text(80), AuthorLocation: "coastal"}
	explanation, err := service.Explain(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explanation.Terms[0].Feature != "category=technology" {
		t.Fatalf("unexpected category term: %q", explanation.Terms[0].Feature)
	}
	if explanation.Terms[3].Feature != "location=coastal" {
		t.Fatalf("unexpected location term: %q", explanation.Terms[3].Feature)
	}
	if explanation.Terms[2].Value != 0.4 {
		t.Fatalf("expected audience value 0.4, got %v", explanation.Terms[2].Value)
	}
	if explanation.Probability < 0 || explanation.Probability > 1 {
		t.Fatalf("probability out of range: %v", explanation.Probability)
	}
}

func TestServiceReloadFromStore(t *testing.T) {
	cfg := testServiceConfig(t)
	service := NewService(cfg, nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signal := IdeaSignal{Category: "healthcare", RequiredFunding: 20_000, TargetAudience: "clinics", AuthorLocation: "inland"}
	before, err := service.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// overwrite the persisted model with distinctly different parameters
	replacement := NewModel(FeatureDim())
	replacement.Bias = 3
	if err := NewModelStore(cfg.ModelPath, nil).Save(replacement, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.reloadFromStore()

	after, err := service.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(after-before) < 1e-9 {
		t.Fatal("expected reloaded model to change predictions")
	}
	if math.Abs(after-sigmoid(3)) > 1e-9 {
		t.Fatalf("expected reloaded parameters to be in effect, got %v", after)
	}
}

func TestServiceReloadIgnoresIncompatibleFile(t *testing.T) {
	cfg := testServiceConfig(t)
	service := NewService(cfg, nil, nil)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	signal := IdeaSignal{Category: "technology", AuthorLocation: "urban"}
	before, err := service.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := os.WriteFile(cfg.ModelPath, []byte(`{"weights":[1,2,3],"bias":9}`), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	service.reloadFromStore()

	after, err := service.Predict(signal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after != before {
		t.Fatalf("incompatible model file must not be adopted: %v vs %v", after, before)
	}
}

type captureSink struct {
	runID    string
	seed     int64
	examples int
}

func (c *captureSink) RecordTraining(runID string, seed int64, _ TrainerConfig, examples []TrainingExample) error {
	c.runID = runID
	c.seed = seed
	c.examples = len(examples)
	return nil
}

func TestServiceAuditExportOnTraining(t *testing.T) {
	cfg := testServiceConfig(t)
	sink := &captureSink{}
	service := NewService(cfg, nil, sink)
	if err := service.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sink.runID == "" || !strings.Contains(sink.runID, "-") {
		t.Fatalf("expected a run id, got %q", sink.runID)
	}
	if sink.seed != cfg.DatasetSeed {
		t.Fatalf("expected seed %d, got %d", cfg.DatasetSeed, sink.seed)
	}
	if sink.examples != cfg.DatasetSize {
		t.Fatalf("expected %d examples, got %d", cfg.DatasetSize, sink.examples)
	}
}
