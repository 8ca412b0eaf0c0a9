// Command seed builds the vector index from local files, without going
// through the HTTP API. Useful for preparing a knowledge base before the
// service starts.
//
//	go run ./cmd/seed flights.json visa_rules.md
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"flight-rag/internal/repository"
	"flight-rag/internal/service"
	"flight-rag/pkg/config"
	"flight-rag/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("usage: %s <flights.json> <visa_rules.md>", filepath.Base(os.Args[0]))
	}
	flightsPath, visaPath := os.Args[1], os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	flightsContent, err := os.ReadFile(flightsPath)
	if err != nil {
		appLogger.Fatal("Failed to read flights file", zap.Error(err))
	}
	visaContent, err := os.ReadFile(visaPath)
	if err != nil {
		appLogger.Fatal("Failed to read visa rules file", zap.Error(err))
	}

	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	indexRepo := repository.NewIndexRepository(cfg.RAG.IndexPath, cfg.RAG.PassagesPath, appLogger)
	ingestService := service.NewIngestService(indexRepo, llmService, cfg.RAG.IndexPath, appLogger)

	appLogger.Info("Building vector index",
		zap.String("flights_file", flightsPath),
		zap.String("visa_rules_file", visaPath),
	)

	resp, err := ingestService.CreateEmbeddings(
		context.Background(),
		filepath.Base(flightsPath), flightsContent,
		filepath.Base(visaPath), visaContent,
	)
	if err != nil {
		appLogger.Fatal("Failed to build index", zap.Error(err))
	}

	appLogger.Info("Index build completed",
		zap.Int("documents", resp.DocumentCount),
		zap.Float64("seconds", resp.ProcessingTimeSeconds),
	)
}
