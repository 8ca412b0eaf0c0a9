package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"flight-rag/internal/dto"
	"flight-rag/internal/models"
	"flight-rag/internal/repository"

	"go.uber.org/zap"
)

// Embedder computes embedding vectors through the external embedding model.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

type IngestService struct {
	indexRepo *repository.IndexRepository
	embedder  Embedder
	indexPath string
	logger    *zap.Logger
}

func NewIngestService(indexRepo *repository.IndexRepository, embedder Embedder, indexPath string, logger *zap.Logger) *IngestService {
	return &IngestService{
		indexRepo: indexRepo,
		embedder:  embedder,
		indexPath: indexPath,
		logger:    logger,
	}
}

// CreateEmbeddings validates both uploads, formats them into passages, embeds
// every passage and replaces the persisted index. The prior index is
// overwritten wholesale; there is no versioning.
func (s *IngestService) CreateEmbeddings(
	ctx context.Context,
	flightsName string, flightsContent []byte,
	visaName string, visaContent []byte,
) (*dto.IngestResponse, error) {
	start := time.Now()

	uploads := []Upload{
		{Name: flightsName, Content: flightsContent},
		{Name: visaName, Content: visaContent},
	}
	if err := ValidateUploads(uploads...); err != nil {
		return nil, err
	}

	flights, err := ParseFlights(flightsContent)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(flights))
	for _, flight := range flights {
		texts = append(texts, FlightPassage(flight))
	}
	texts = append(texts, VisaPassages(string(visaContent))...)

	s.logger.Info("Processed documents",
		zap.String("flights_file", flightsName),
		zap.String("visa_rules_file", visaName),
		zap.Int("documents", len(texts)),
	)

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed passages: %w", err)
	}

	passages := make([]models.Passage, len(texts))
	for i, text := range texts {
		passages[i] = models.Passage{Text: text, Embedding: vectors[i]}
	}

	if err := s.indexRepo.Save(ctx, passages); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	elapsed := time.Since(start).Seconds()
	s.logger.Info("Vector index created", zap.Float64("elapsed_seconds", elapsed))

	return &dto.IngestResponse{
		Status:                "success",
		Message:               fmt.Sprintf("Vector store created and saved to %s", s.indexPath),
		DocumentCount:         len(passages),
		ProcessingTimeSeconds: math.Round(elapsed*100) / 100,
	}, nil
}
