package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"ideaspark/db"
	"ideaspark/logging"
	"ideaspark/scoring"
)

type Config struct {
	Model struct {
		Path  string `yaml:"path"`
		Watch bool   `yaml:"watch"`
	} `yaml:"model"`
	Dataset struct {
		Size int   `yaml:"size"`
		Seed int64 `yaml:"seed"`
	} `yaml:"dataset"`
	Training struct {
		LearningRate float64 `yaml:"learning_rate"`
		Epochs       int     `yaml:"epochs"`
	} `yaml:"training"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Audit struct {
		Path string `yaml:"path"`
	} `yaml:"audit"`
	Log logging.Config `yaml:"log"`
}

func main() {
	// 1. Load config
	config, err := loadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Open the training audit store
	var audit scoring.AuditSink
	var auditStore *db.AuditStore
	if config.Audit.Path != "" {
		auditStore, err = db.Open(config.Audit.Path)
		if err != nil {
			logger.Fatal("failed to open audit store", zap.Error(err))
		}
		defer auditStore.Close()
		audit = auditStore
	}

	// 3. Initialize the scoring engine: load the persisted model or train
	// and persist a fresh one
	service := scoring.NewService(scoring.ServiceConfig{
		ModelPath:    config.Model.Path,
		DatasetSize:  config.Dataset.Size,
		DatasetSeed:  config.Dataset.Seed,
		LearningRate: config.Training.LearningRate,
		Epochs:       config.Training.Epochs,
		CacheSize:    config.Cache.Size,
	}, logger, audit)
	if err := service.Initialize(); err != nil {
		logger.Fatal("failed to initialize scoring engine", zap.Error(err))
	}

	if config.Model.Watch {
		if err := service.StartModelWatch(); err != nil {
			logger.Fatal("failed to watch model file", zap.Error(err))
		}
		defer service.StopModelWatch()
	}

	// 4. Run until shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	predictions, cacheHits := service.Stats()
	logger.Info("shutting down",
		zap.Uint64("predictions", predictions),
		zap.Uint64("cache_hits", cacheHits))
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
