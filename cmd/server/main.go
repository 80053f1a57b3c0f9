package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/api"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/config"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/engine"
	"github.com/felipelopes7/ODS1-AP2-FelipeAlvesLopes/internal/storage"
)

func main() {
	// Setup Logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	entry := logger.WithField("service", "recommender-api")

	entry.Info("Starting Manga Recommender API Service")

	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		entry.Fatalf("Failed to load configuration: %v", err)
	}

	// 2. Rating Storage
	store, err := newRatingStore(cfg)
	if err != nil {
		entry.Fatalf("Failed to initialize rating store: %v", err)
	}

	// 3. Engine (loads the catalog and builds the vector space)
	eng, err := engine.NewEngine(cfg, entry, store)
	if err != nil {
		entry.Fatalf("Failed to initialize engine: %v", err)
	}

	// 4. API Server
	server := api.NewServer(eng, entry)

	entry.Infof("Manga recommender ready on %s", cfg.Server.Port)
	if err := server.Start(cfg.Server.Port); err != nil {
		entry.Fatal(err)
	}
}

func newRatingStore(cfg *config.Config) (storage.RatingStore, error) {
	switch cfg.Storage.Backend {
	case "redis":
		return storage.NewRedisStore(cfg.Storage.RedisURL, cfg.Storage.RedisPassword, cfg.Storage.RedisDB)
	case "csv":
		return storage.NewCSVStore(cfg.Storage.CSVPath), nil
	default:
		return nil, fmt.Errorf("unknown ratings backend %q", cfg.Storage.Backend)
	}
}
