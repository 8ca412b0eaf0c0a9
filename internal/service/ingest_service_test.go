package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flight-rag/internal/repository"
)

// countingEmbedder returns a fixed-size vector per text without caring about
// content, and fails on demand.
type countingEmbedder struct {
	err   error
	calls int
}

func (e *countingEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i), 1}
	}
	return out, nil
}

func (e *countingEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

const flightsJSON = `[{
	"airline": "PIA", "alliance": "oneworld",
	"from": "Karachi", "to": "Dubai",
	"departure_date": "2025-12-01", "return_date": "2025-12-10",
	"layovers": [], "price_usd": 250, "refundable": true
}]`

func newTestIngest(t *testing.T, embedder Embedder) (*IngestService, *repository.IndexRepository) {
	t.Helper()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.db")
	indexRepo := repository.NewIndexRepository(indexPath, filepath.Join(dir, "passages.txt"), zap.NewNop())
	return NewIngestService(indexRepo, embedder, indexPath, zap.NewNop()), indexRepo
}

func TestIngestService_CreateEmbeddings(t *testing.T) {
	ingest, indexRepo := newTestIngest(t, &countingEmbedder{})

	resp, err := ingest.CreateEmbeddings(
		context.Background(),
		"flights.json", []byte(flightsJSON),
		"visa_rules.md", []byte("Visa required. Apply online."),
	)
	require.NoError(t, err)

	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, 3, resp.DocumentCount) // 1 flight passage + 2 visa fragments
	assert.Contains(t, resp.Message, "Vector store created and saved to")
	assert.GreaterOrEqual(t, resp.ProcessingTimeSeconds, 0.0)

	passages, err := indexRepo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, passages, 3)
	assert.Contains(t, passages[0].Text, "Flight from Karachi to Dubai on PIA (oneworld)")
	assert.Equal(t, "Visa required.", passages[1].Text)
	assert.Equal(t, "Apply online.", passages[2].Text)
}

func TestIngestService_ValidationFailureBeforeEmbedding(t *testing.T) {
	embedder := &countingEmbedder{}
	ingest, indexRepo := newTestIngest(t, embedder)

	_, err := ingest.CreateEmbeddings(
		context.Background(),
		"flights.csv", []byte(flightsJSON),
		"visa_rules.md", []byte("Visa required."),
	)
	require.ErrorIs(t, err, ErrInvalidExtension)
	assert.Zero(t, embedder.calls)

	// Nothing was persisted
	_, err = indexRepo.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrIndexNotFound)
}

func TestIngestService_EmbeddingFailurePropagates(t *testing.T) {
	embedErr := errors.New("embedding model unavailable")
	ingest, _ := newTestIngest(t, &countingEmbedder{err: embedErr})

	_, err := ingest.CreateEmbeddings(
		context.Background(),
		"flights.json", []byte(flightsJSON),
		"visa_rules.md", []byte("Visa required."),
	)
	require.ErrorIs(t, err, embedErr)
	assert.False(t, IsValidationError(err))
}

func TestIngestService_RebuildReplacesIndex(t *testing.T) {
	ingest, indexRepo := newTestIngest(t, &countingEmbedder{})
	ctx := context.Background()

	_, err := ingest.CreateEmbeddings(ctx,
		"flights.json", []byte(flightsJSON),
		"visa_rules.md", []byte("Visa required. Apply online."))
	require.NoError(t, err)

	resp, err := ingest.CreateEmbeddings(ctx,
		"flights.json", []byte(flightsJSON),
		"visa_rules.md", []byte("No visa needed."))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.DocumentCount)

	passages, err := indexRepo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "No visa needed.", passages[1].Text)
}
