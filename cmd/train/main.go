package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"

	"ideaspark/db"
	"ideaspark/scoring"
)

func main() {
	count := flag.Int("count", 1500, "number of synthetic examples")
	seed := flag.Int64("seed", 42, "dataset seed")
	modelPath := flag.String("model_path", "./models/success_rate.json", "model output path")
	learningRate := flag.Float64("learning_rate", 0.4, "gradient descent learning rate")
	epochs := flag.Int("epochs", 400, "training epochs")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	auditPath := flag.String("audit_db", "", "optional sqlite audit database path")
	csvPath := flag.String("csv", "", "optional csv dump of the training rows")
	flag.Parse()

	examples := scoring.Generate(*count, *seed)
	train, test := splitDataset(examples, *testRatio)

	trainerCfg := scoring.TrainerConfig{LearningRate: *learningRate, Epochs: *epochs}
	model := scoring.NewModel(scoring.FeatureDim())
	if err := scoring.Fit(model, train, trainerCfg); err != nil {
		log.Fatalf("failed to train model: %v", err)
	}

	accuracy, precision, recall := evaluateModel(model, test)
	log.Printf("accuracy=%.2f precision=%.2f recall=%.2f", accuracy, precision, recall)

	store := scoring.NewModelStore(*modelPath, nil)
	if err := store.Save(model, len(train)); err != nil {
		log.Fatalf("failed to save model: %v", err)
	}

	runID := uuid.NewString()
	if *auditPath != "" {
		if err := exportAudit(*auditPath, runID, *seed, trainerCfg, accuracy, examples); err != nil {
			log.Fatalf("failed to export audit rows: %v", err)
		}
		log.Printf("audit rows exported to %s (run %s)", *auditPath, runID)
	}
	if *csvPath != "" {
		if err := exportCSV(*csvPath, examples); err != nil {
			log.Fatalf("failed to write csv: %v", err)
		}
		log.Printf("training rows written to %s", *csvPath)
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func splitDataset(examples []scoring.TrainingExample, testRatio float64) (train, test []scoring.TrainingExample) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	split := int(float64(len(examples)) * (1 - testRatio))
	return examples[:split], examples[split:]
}

func evaluateModel(model *scoring.Model, test []scoring.TrainingExample) (accuracy, precision, recall float64) {
	if len(test) == 0 {
		return 0, 0, 0
	}

	var correct int
	var truePositive int
	var predictedPositive int
	var actualPositive int

	for _, ex := range test {
		label := 0
		if model.Score(ex.Features) > 0.5 {
			label = 1
		}
		if label == ex.Label {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if ex.Label == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(test))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}

func exportAudit(path, runID string, seed int64, cfg scoring.TrainerConfig, accuracy float64, examples []scoring.TrainingExample) error {
	store, err := db.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordRun(db.TrainingRun{
		RunID:        runID,
		Seed:         seed,
		Examples:     len(examples),
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
		Accuracy:     accuracy,
	}); err != nil {
		return err
	}
	return store.RecordExamples(runID, examples)
}

func exportCSV(path string, examples []scoring.TrainingExample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"category", "location", "required_funding", "target_audience", "label"}); err != nil {
		return err
	}
	for _, ex := range examples {
		record := []string{
			string(ex.Category),
			string(ex.Location),
			strconv.FormatFloat(ex.RequiredFunding, 'f', 2, 64),
			ex.TargetAudience,
			strconv.Itoa(ex.Label),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}
