package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flight-rag/internal/api"
	"flight-rag/internal/api/handlers"
	"flight-rag/internal/repository"
	"flight-rag/internal/service"
	"flight-rag/pkg/config"
	"flight-rag/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration; a missing GIGACHAT_API_KEY is fatal here
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting flight-rag service")

	// Initialize repositories
	indexRepo := repository.NewIndexRepository(cfg.RAG.IndexPath, cfg.RAG.PassagesPath, appLogger)
	sessionRepo := repository.NewSessionRepository(appLogger)

	// Initialize services
	llmService, err := service.NewLLMService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM service", zap.Error(err))
	}
	defer llmService.Close()

	ingestService := service.NewIngestService(indexRepo, llmService, cfg.RAG.IndexPath, appLogger)
	chatService := service.NewChatService(sessionRepo, indexRepo, llmService, llmService, cfg.RAG.TopK, appLogger)

	// Initialize handlers
	ingestHandler := handlers.NewIngestHandler(ingestService, appLogger)
	chatHandler := handlers.NewChatHandler(chatService, appLogger)

	// Setup router
	app := api.SetupRouter(ingestHandler, chatHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
