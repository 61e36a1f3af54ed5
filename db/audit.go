package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ideaspark/scoring"

	_ "github.com/mattn/go-sqlite3"
)

// TrainingRun records one synthetic training run in the audit store.
type TrainingRun struct {
	RunID        string
	Seed         int64
	Examples     int
	LearningRate float64
	Epochs       int
	Accuracy     float64
	CreatedAt    time.Time
}

// AuditStore keeps the tabular export of synthetic training rows in SQLite
// so every run stays reproducible and inspectable after the fact.
type AuditStore struct {
	db *sql.DB
}

// Open creates (or opens) the audit database at path and ensures its schema.
func Open(path string) (*AuditStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create audit dir: %w", err)
		}
	}

	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS training_runs (
        run_id VARCHAR(36) PRIMARY KEY,
        seed INTEGER,
        examples INTEGER,
        learning_rate REAL,
        epochs INTEGER,
        accuracy REAL,
        created_at DATETIME
    );
    CREATE TABLE IF NOT EXISTS training_examples (
        id INTEGER PRIMARY KEY,
        run_id VARCHAR(36),
        seq INTEGER,
        category VARCHAR(20),
        location VARCHAR(20),
        required_funding REAL,
        target_audience TEXT,
        label INTEGER,
        UNIQUE(run_id, seq)
    );`
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &AuditStore{db: database}, nil
}

// Close releases the underlying database.
func (s *AuditStore) Close() error {
	return s.db.Close()
}

// RecordRun inserts the run header row.
func (s *AuditStore) RecordRun(run TrainingRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO training_runs (run_id, seed, examples, learning_rate, epochs, accuracy, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Seed, run.Examples, run.LearningRate, run.Epochs, run.Accuracy, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert training run: %w", err)
	}
	return nil
}

// RecordExamples inserts the sampled training rows for a run in one
// transaction.
func (s *AuditStore) RecordExamples(runID string, examples []scoring.TrainingExample) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO training_examples (run_id, seq, category, location, required_funding, target_audience, label)
         VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare example insert: %w", err)
	}
	defer stmt.Close()

	for i, ex := range examples {
		if _, err := stmt.Exec(runID, i, string(ex.Category), string(ex.Location),
			ex.RequiredFunding, ex.TargetAudience, ex.Label); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert example %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

// RecordTraining implements scoring.AuditSink.
func (s *AuditStore) RecordTraining(runID string, seed int64, cfg scoring.TrainerConfig, examples []scoring.TrainingExample) error {
	if err := s.RecordRun(TrainingRun{
		RunID:        runID,
		Seed:         seed,
		Examples:     len(examples),
		LearningRate: cfg.LearningRate,
		Epochs:       cfg.Epochs,
	}); err != nil {
		return err
	}
	return s.RecordExamples(runID, examples)
}

// Runs lists recorded training runs, newest first.
func (s *AuditStore) Runs() ([]TrainingRun, error) {
	rows, err := s.db.Query(
		`SELECT run_id, seed, examples, learning_rate, epochs, accuracy, created_at
         FROM training_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query training runs: %w", err)
	}
	defer rows.Close()

	var runs []TrainingRun
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(&run.RunID, &run.Seed, &run.Examples,
			&run.LearningRate, &run.Epochs, &run.Accuracy, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan training run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ExampleCount returns the number of audit rows stored for a run.
func (s *AuditStore) ExampleCount(runID string) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM training_examples WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count examples: %w", err)
	}
	return count, nil
}
